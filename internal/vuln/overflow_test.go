package vuln

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/core-coin/conkas/internal/disasm"
	"github.com/core-coin/conkas/internal/engine"
	"github.com/core-coin/conkas/internal/solver"
	"github.com/core-coin/conkas/internal/ssa"
	"github.com/core-coin/conkas/internal/state"
)

// explore lifts code and runs the explorer with a fresh environment,
// mirroring conkas.Driver.AnalyzeOne's pipeline shape (internal/conkas/driver.go)
// without the vuln/srcmap steps the tests drive themselves.
func explore(t *testing.T, code []byte) []*engine.Trace {
	t.Helper()
	cfg := disasm.Lift("t", code)
	require.Len(t, cfg.Functions, 1)
	fn := cfg.Functions[0]
	functions := map[string]*ssa.Function{fn.Name: fn}
	env := state.NewEnvironment("t", code)
	initial := state.New(env)
	jt := engine.NewJumpTable()
	traces, err := engine.Explore(fn.Entry, functions, initial, jt, engine.DefaultMaxDepth)
	require.NoError(t, err)
	return traces
}

func TestOverflowConcreteAdd(t *testing.T) {
	// spec.md §8 scenario 1 with 0xFF..FF on top of the stack: PUSH1 2;
	// PUSH32 0xFF..FF; ADD; STOP -- both operands concrete, ADD's first
	// operand a is the top of the stack, and the sum wraps below it.
	ones := make([]byte, 32)
	for i := range ones {
		ones[i] = 0xff
	}
	code := []byte{0x60, 0x02} // PUSH1 2
	code = append(code, byte(0x5f+len(ones)))
	code = append(code, ones...) // PUSH32 0xFF..FF
	code = append(code, 0x01)    // ADD
	code = append(code, 0x00)       // STOP

	traces := explore(t, code)
	findings := Overflow(traces, solver.DefaultConfig(), Options{FindAll: true})
	require.Len(t, findings, 1)
	require.Equal(t, IntegerOverflow, findings[0].Type)

	// spec.md §8 scenario 1 expects witness {a = 2^256-1, b = 2}.
	require.Equal(t, ones, findings[0].Model["a"].Bytes())
	require.Equal(t, uint64(2), findings[0].Model["b"].Uint64())
}

func TestOverflowSymbolicSubUnderflow(t *testing.T) {
	// spec.md §8 scenario 2: PUSH2 1000; CALLVALUE; SUB; STOP. The stack
	// at SUB is [callvalue, 1000] top-first, so the subtraction computes
	// callvalue - 1000 (spec.md §4.3's "a - b", a = top of stack) and
	// underflows whenever callvalue < 1000 -- satisfiable, so the solver
	// must confirm it.
	code := []byte{
		0x61, 0x03, 0xe8, // PUSH2 1000
		0x34, // CALLVALUE
		0x03, // SUB
		0x00, // STOP
	}

	traces := explore(t, code)
	findings := Overflow(traces, solver.DefaultConfig(), Options{FindAll: true})
	require.Len(t, findings, 1)
	require.Equal(t, IntegerUnderflow, findings[0].Type)
	require.NotNil(t, findings[0].Model)
}

func TestOverflowSymbolicMulOverflow(t *testing.T) {
	// PUSH1 2; CALLVALUE; MUL; STOP -- callvalue*2 overflows whenever
	// callvalue > (2^256-1)/2, satisfiable, so MulOverflow must find a
	// witness rather than the unsatisfiable self-comparison a*b != c would.
	code := []byte{
		0x60, 0x02, // PUSH1 2
		0x34, // CALLVALUE
		0x02, // MUL
		0x00, // STOP
	}

	traces := explore(t, code)
	findings := Overflow(traces, solver.DefaultConfig(), Options{FindAll: true})
	require.Len(t, findings, 1)
	require.Equal(t, IntegerOverflow, findings[0].Type)
	require.NotNil(t, findings[0].Model)
}

func TestOverflowNoFindingOnSafeAdd(t *testing.T) {
	code := []byte{
		0x60, 0x01, // PUSH1 1
		0x60, 0x02, // PUSH1 2
		0x01, // ADD
		0x00, // STOP
	}

	traces := explore(t, code)
	findings := Overflow(traces, solver.DefaultConfig(), Options{FindAll: true})
	require.Empty(t, findings)
}
