package conkas

import (
	"fmt"
	"io"
	"sort"

	"github.com/core-coin/conkas/internal/vuln"
)

// Format renders one finding exactly as spec.md §6 "Finding output"
// specifies: a header line, followed by one "If"/"and" line per model
// variable, sorted by name for deterministic output (the model itself is
// an unordered map).
func Format(v *vuln.Vulnerability) string {
	line := ""
	if v.LineNumber != nil {
		line = fmt.Sprintf("%d", *v.LineNumber)
	}
	out := fmt.Sprintf("Vulnerability: %s. Maybe in function: %s. PC: 0x%x. Line number: %s.\n",
		v.Type, v.FunctionName, v.PC, line)

	if len(v.Model) == 0 {
		return out
	}
	names := make([]string, 0, len(v.Model))
	for name := range v.Model {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		prefix := "and"
		if i == 0 {
			prefix = "If"
		}
		out += fmt.Sprintf("%s %s = %s\n", prefix, name, v.Model[name].Hex())
	}
	return out
}

// WriteReport renders every finding of every result to w, in order. It
// never returns an error from a nil finding set; only I/O failures on w
// propagate.
func WriteReport(w io.Writer, results []Result) error {
	for _, r := range results {
		for _, v := range r.Vulnerabilities {
			if _, err := io.WriteString(w, Format(v)); err != nil {
				return err
			}
		}
	}
	return nil
}
