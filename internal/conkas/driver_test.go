package conkas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/core-coin/conkas/internal/vuln"
)

func TestDriverAnalyzeOneEndToEnd(t *testing.T) {
	// spec.md §8 scenario 1, driven through the full C9 pipeline: lift,
	// explore, analyze, report -- no source map supplied, so LineNumber
	// stays nil and Format renders the empty line-number field (spec.md
	// §6 "Line number: <N or empty>", matching original_source/conkas.py's
	// f-string for the unresolved case).
	ones := make([]byte, 32)
	for i := range ones {
		ones[i] = 0xff
	}
	code := append([]byte{byte(0x5f + len(ones))}, ones...)
	code = append(code, 0x60, 0x02) // PUSH1 2
	code = append(code, 0x01)       // ADD
	code = append(code, 0x00)       // STOP

	cfg := DefaultConfig()
	cfg.FindAllVulnerabilities = true
	cfg.VulnTypes = []vuln.VulnTypeName{vuln.Arithmetic}
	d := New(cfg)

	res := d.AnalyzeOne(Contract{Name: "t.bin", Code: code})
	require.NoError(t, res.Err)
	require.Len(t, res.Vulnerabilities, 1)
	require.Equal(t, vuln.IntegerOverflow, res.Vulnerabilities[0].Type)
	require.Nil(t, res.Vulnerabilities[0].LineNumber)

	var out strings.Builder
	require.NoError(t, WriteReport(&out, []Result{res}))
	require.Contains(t, out.String(), "Vulnerability: Integer Overflow.")
	require.Contains(t, out.String(), "Line number: .")
}

func TestDriverAnalyzeOneEmptyCodeNoFindings(t *testing.T) {
	// Empty code still lifts to a single, instruction-less entry block
	// (disasm.scanBoundaries always seeds PC 0), so AnalyzeOne succeeds
	// with no findings rather than erroring.
	d := New(DefaultConfig())
	res := d.AnalyzeOne(Contract{Name: "empty.bin", Code: nil})
	require.NoError(t, res.Err)
	require.Empty(t, res.Vulnerabilities)
}
