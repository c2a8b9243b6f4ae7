package vuln

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/core-coin/conkas/internal/solver"
)

func TestTimeManipulationBranchAndStore(t *testing.T) {
	// spec.md §8 scenario 5: PUSH2 1000; TIMESTAMP; LT; PUSH1 <dest>;
	// JUMPI branches on timestamp < 1000, and the jump target SSTOREs a
	// fresh TIMESTAMP word. Both explored traces' branch edge carries a
	// timestamp-naming constraint (spec.md §4.8 "(a)"), and the taken
	// branch's SSTORE is itself time-dependent ("(d)") -- two distinct
	// findings once Run's final Dedup collapses the two traces' identical-
	// key constraint findings into one (spec.md §3 "Equality uses (type,
	// line_number or instruction_offset)").
	code := []byte{
		0x61, 0x03, 0xe8, // PUSH2 1000               PC0-2
		0x42,       // TIMESTAMP                       PC3
		0x10,       // LT                               PC4
		0x60, 0x09, // PUSH1 9 (dest)                   PC5-6
		0x57,       // JUMPI                            PC7
		0x00,       // STOP (fallthrough)               PC8
		0x5b,       // JUMPDEST (dest)                  PC9
		0x42, // TIMESTAMP (value)                      PC10
		0x60, 0x00, // PUSH1 0 (key, top of stack)      PC11-12
		0x55, // SSTORE                                 PC13
		0x00, // STOP                                   PC14
	}

	traces := explore(t, code)
	require.Len(t, traces, 2)

	findings := Run([]VulnTypeName{TimeManipulationType}, traces, solver.DefaultConfig(), Options{FindAll: true})
	require.Len(t, findings, 2)
	for _, f := range findings {
		require.Equal(t, TimeManipulationFinding, f.Type)
	}
}
