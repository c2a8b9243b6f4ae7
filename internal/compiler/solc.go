// Package compiler is the external-compiler collaborator spec.md §1 calls
// out of scope for the core ("The high-level compiler that produces
// runtime bytecode and the source map... specified only by the interface
// the core consumes from them"): it shells out to solc and adapts its
// combined-json output into conkas.Contract values. Grounded on
// original_source/solidity/source_map.py's own `solc --combined-json`
// invocation, carried into Go's os/exec the way the teacher's build/ci.go
// shells out to external tools rather than reimplementing them.
package compiler

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/core-coin/conkas/internal/conkas"
)

// combinedJSON mirrors the subset of `solc --combined-json
// bin-runtime,srcmap-runtime` output this package consumes.
type combinedJSON struct {
	Contracts map[string]struct {
		BinRuntime    string `json:"bin-runtime"`
		SrcMapRuntime string `json:"srcmap-runtime"`
	} `json:"contracts"`
	SourceList []string `json:"sourceList"`
}

// CompileFile runs solcPath (empty means "solc" from PATH) against file
// and returns one conkas.Contract per contract solc emitted, each carrying
// its runtime bytecode, source map, and the indexed source texts
// srcmap.Resolver needs (spec.md §4.6 "per-fileIdx source texts").
func CompileFile(solcPath, file string) ([]conkas.Contract, error) {
	if solcPath == "" {
		solcPath = "solc"
	}

	cmd := exec.Command(solcPath, "--combined-json", "bin-runtime,srcmap-runtime", file)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("compiler: solc failed: %w: %s", err, stderr.String())
	}

	var parsed combinedJSON
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		return nil, fmt.Errorf("compiler: parsing solc output: %w", err)
	}

	sources := make(map[int][]byte, len(parsed.SourceList))
	for idx, path := range parsed.SourceList {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("compiler: reading source %s: %w", path, err)
		}
		sources[idx] = data
	}

	contracts := make([]conkas.Contract, 0, len(parsed.Contracts))
	for name, c := range parsed.Contracts {
		if c.BinRuntime == "" {
			continue
		}
		code, err := hex.DecodeString(c.BinRuntime)
		if err != nil {
			return nil, fmt.Errorf("compiler: decoding bin-runtime for %s: %w", name, err)
		}
		contracts = append(contracts, conkas.Contract{
			Name:      name,
			Code:      code,
			SourceMap: c.SrcMapRuntime,
			Sources:   sources,
		})
	}
	return contracts, nil
}
