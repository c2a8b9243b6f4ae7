package vuln

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/core-coin/conkas/internal/solver"
)

func sevenPush0() []byte {
	out := make([]byte, 0, 14)
	for i := 0; i < 7; i++ {
		out = append(out, 0x60, 0x00)
	}
	return out
}

func TestUncheckedLowLevelCallUnguarded(t *testing.T) {
	// spec.md §8 scenario 6: a CALL whose success flag is never
	// referenced by any later constraint.
	code := append(sevenPush0(), 0xf1, 0x00) // CALL; STOP

	traces := explore(t, code)
	findings := UncheckedLowLevelCall(traces, solver.DefaultConfig(), Options{FindAll: true})
	require.Len(t, findings, 1)
	require.Equal(t, UncheckedLowLevelCallFinding, findings[0].Type)
}

func TestUncheckedLowLevelCallCheckedNotFlagged(t *testing.T) {
	// CALL; ISZERO; PUSH1 <dest>; JUMPI; STOP; JUMPDEST dest: STOP --
	// require(success)-style guard branches on the CALL's own result, so
	// the branch edge's constraint names the CALL's SSA result variable
	// and mentionsVariable finds it.
	code := []byte{}
	code = append(code, sevenPush0()...)
	code = append(code,
		0xf1,       // CALL                     PC14
		0x15,       // ISZERO                   PC15
		0x60, 0x14, // PUSH1 20 (dest)          PC16-17
		0x57, // JUMPI                          PC18
		0x00, // STOP (success path)            PC19
		0x5b, // JUMPDEST (dest)                PC20
		0x00, // STOP (failure path)            PC21
	)

	traces := explore(t, code)
	require.Len(t, traces, 2)
	findings := UncheckedLowLevelCall(traces, solver.DefaultConfig(), Options{FindAll: true})
	require.Empty(t, findings)
}
