package vuln

import (
	"github.com/core-coin/conkas/internal/engine"
	"github.com/core-coin/conkas/internal/solver"
)

// VulnTypeName is a selector string from spec.md §6's `vuln_types` option.
type VulnTypeName string

const (
	Arithmetic                      VulnTypeName = "arithmetic"
	ReentrancyType                  VulnTypeName = "reentrancy"
	TimeManipulationType            VulnTypeName = "time_manipulation"
	TransactionOrderingDependenceT  VulnTypeName = "transaction_ordering_dependence"
	UncheckedLLCalls                VulnTypeName = "unchecked_ll_calls"
)

// Analysis is the common signature every vuln.* entry point shares.
type Analysis func(traces []*engine.Trace, cfg solver.Config, opts Options) []*Vulnerability

// Registry maps spec.md §6's vuln_types names to their analysis.
var Registry = map[VulnTypeName]Analysis{
	Arithmetic:                     Overflow,
	ReentrancyType:                 Reentrancy,
	TimeManipulationType:           TimeManipulation,
	TransactionOrderingDependenceT: TransactionOrderingDependence,
	UncheckedLLCalls:               UncheckedLowLevelCall,
}

// AllTypes lists every selector, in spec.md §6's declared order — the
// default when no subset is requested.
var AllTypes = []VulnTypeName{
	Arithmetic, ReentrancyType, TimeManipulationType, TransactionOrderingDependenceT, UncheckedLLCalls,
}

// Run executes the named analyses in order and concatenates their
// findings, deduplicating at the end (spec.md §3 "Equality uses (type,
// line_number or instruction_offset)").
func Run(types []VulnTypeName, traces []*engine.Trace, cfg solver.Config, opts Options) []*Vulnerability {
	if len(types) == 0 {
		types = AllTypes
	}
	var out []*Vulnerability
	for _, name := range types {
		analysis, ok := Registry[name]
		if !ok {
			continue
		}
		out = append(out, analysis(traces, cfg, opts)...)
	}
	return Dedup(out)
}
