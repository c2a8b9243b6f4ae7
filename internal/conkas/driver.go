package conkas

import (
	"fmt"

	"github.com/core-coin/conkas/internal/clog"
	"github.com/core-coin/conkas/internal/disasm"
	"github.com/core-coin/conkas/internal/engine"
	"github.com/core-coin/conkas/internal/srcmap"
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
	"github.com/core-coin/conkas/internal/vuln"
)

// Contract is one unit of input to the driver (spec.md §6 "Inputs"): a
// named runtime-bytecode blob, plus an optional compiler source map and
// the source texts it indexes (both empty when the input was raw
// bytecode rather than a compiled solidity-file).
type Contract struct {
	Name      string
	Code      []byte
	SourceMap string
	Sources   map[int][]byte
}

// Result is one contract's analysis outcome.
type Result struct {
	Contract        string
	Vulnerabilities []*vuln.Vulnerability
	Err             error
}

// Driver assembles C1-C9 into the single pipeline of spec.md §2's data
// flow: bytecode -> (disasm.Lift) -> SSA CFG -> (engine.Explore) ->
// traces -> (vuln.Run) -> findings -> (srcmap) -> rendered output.
type Driver struct {
	Config Config
}

func New(cfg Config) *Driver {
	return &Driver{Config: cfg}
}

// AnalyzeAll runs AnalyzeOne over every contract, in order, logging and
// continuing past a per-contract failure (spec.md §7: a malformed
// instruction or unsupported opcode "is fatal for that instruction; the
// enclosing analysis of the contract logs and aborts the contract (next
// contract continues)").
func (d *Driver) AnalyzeAll(contracts []Contract) []Result {
	results := make([]Result, 0, len(contracts))
	for _, c := range contracts {
		res := d.AnalyzeOne(c)
		if res.Err != nil {
			clog.Error("contract analysis aborted", "contract", c.Name, "err", res.Err)
		}
		results = append(results, res)
	}
	return results
}

// AnalyzeOne lifts, explores and analyzes a single contract, returning its
// deduplicated findings with line numbers resolved where a source map was
// supplied.
func (d *Driver) AnalyzeOne(c Contract) Result {
	cfg := disasm.Lift(c.Name, c.Code)

	fn, entry, err := mainEntry(cfg)
	if err != nil {
		return Result{Contract: c.Name, Err: err}
	}
	functions := map[string]*ssa.Function{fn.Name: fn}

	env := state.NewEnvironment(c.Name, c.Code)
	initial := state.New(env)
	jt := engine.NewJumpTable()

	traces, err := engine.Explore(entry, functions, initial, jt, d.Config.MaxDepth)
	if err != nil {
		return Result{Contract: c.Name, Err: fmt.Errorf("conkas: exploring %s: %w", c.Name, err)}
	}

	findings := vuln.Run(d.Config.VulnTypes, traces, d.Config.solverConfig(), d.Config.analysisOptions())

	if c.SourceMap != "" {
		resolver := srcmap.NewResolver()
		resolver.AddContract(c.Name, c.SourceMap, ssa.InstructionPCs(cfg), c.Sources)
		for _, f := range findings {
			if line, ok := resolver.Line(c.Name, f.PC); ok {
				l := line
				f.LineNumber = &l
			}
		}
	}

	return Result{Contract: c.Name, Vulnerabilities: findings}
}

// mainEntry picks the lifter's single function and its entry block. A CFG
// with no functions or an entryless function is itself a malformed-input
// signal (spec.md §7 "malformed instruction... fatal for the contract").
func mainEntry(cfg *ssa.CFG) (*ssa.Function, *ssa.Block, error) {
	if len(cfg.Functions) == 0 {
		return nil, nil, fmt.Errorf("conkas: %s: %w (no functions lifted)", cfg.Contract, engine.ErrMalformedInstruction)
	}
	fn := cfg.Functions[0]
	if fn.Entry == nil {
		return nil, nil, fmt.Errorf("conkas: %s: %w (empty entry block)", cfg.Contract, engine.ErrMalformedInstruction)
	}
	return fn, fn.Entry, nil
}
