// Package conkas is the driver (C9): it wires the disassembler, the
// exploration engine, the vulnerability analyses and the source-map
// resolver into the single end-to-end pipeline spec.md §2's data-flow
// diagram describes, and renders findings in spec.md §6's wire format.
// Grounded on the teacher's cmd/cvm-style "build one config, run one
// pipeline, print results" driver shape, generalized from "run a VM"
// to "run an exploration and report findings."
package conkas

import (
	"time"

	"github.com/core-coin/conkas/internal/clog"
	"github.com/core-coin/conkas/internal/engine"
	"github.com/core-coin/conkas/internal/solver"
	"github.com/core-coin/conkas/internal/vuln"
)

// Config carries every knob spec.md §6 "Configuration" names, plus the
// two solver tunables of §4.7/§9 that the CLI also exposes.
type Config struct {
	// MaxDepth caps analyzed basic blocks per trace (default
	// engine.DefaultMaxDepth).
	MaxDepth int

	// VulnTypes selects the analyses to run; nil/empty means all of
	// vuln.AllTypes, per spec.md §6 "(default all)".
	VulnTypes []vuln.VulnTypeName

	// FindAllVulnerabilities disables first-finding short-circuiting
	// within each analysis (spec.md §6 "find_all_vulnerabilities").
	FindAllVulnerabilities bool

	// Timeout bounds a single solver query (spec.md §6, default 100ms).
	Timeout time.Duration

	// MulOverflowTimeoutScale multiplies Timeout for the MUL overflow
	// query (spec.md §9 Open Questions), default 1000.
	MulOverflowTimeoutScale int

	// Verbosity sets the root logger's level (spec.md §6 "Log verbosity
	// level").
	Verbosity clog.Level
}

// DefaultConfig mirrors spec.md §6's stated defaults.
func DefaultConfig() Config {
	sc := solver.DefaultConfig()
	return Config{
		MaxDepth:                engine.DefaultMaxDepth,
		Timeout:                 sc.Timeout,
		MulOverflowTimeoutScale: sc.MulOverflowTimeoutScale,
		Verbosity:               clog.LvlInfo,
	}
}

func (c Config) solverConfig() solver.Config {
	return solver.Config{Timeout: c.Timeout, MulOverflowTimeoutScale: c.MulOverflowTimeoutScale}
}

func (c Config) analysisOptions() vuln.Options {
	return vuln.Options{FindAll: c.FindAllVulnerabilities, MaxDepth: c.MaxDepth}
}
