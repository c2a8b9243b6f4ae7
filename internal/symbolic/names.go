package symbolic

import (
	"fmt"
	"strings"
)

// Name-formatting functions for the wire-level symbolic variable naming
// convention of spec.md §6. Several vulnerability analyses parse these
// back out (spec.md §9 "Symbolic variable names as a side channel");
// centralizing the formatters here gives any future redesign that carries
// this metadata as a structured tag a single seam to change.

// StorageVarName formats the name an SLOAD of an unset key produces.
// keyDesc is the key's decimal string (concrete) or its expression string
// (symbolic); symbolic indicates which.
func StorageVarName(keyDesc string, symbolic bool) string {
	kind := "conc"
	if symbolic {
		kind = "sym"
	}
	return fmt.Sprintf("storage,%s,%s", keyDesc, kind)
}

// CalldataLoadName formats the name a CALLDATALOAD at a given offset
// produces.
func CalldataLoadName(offsetDesc string, symbolic bool) string {
	if symbolic {
		return fmt.Sprintf("calldataload_sym_%s", offsetDesc)
	}
	return fmt.Sprintf("calldataload_%s", offsetDesc)
}

// ParseStorageVarName reverses StorageVarName: given a free variable name,
// it reports whether it parses as `storage,<key>,<"sym"|"conc">` and, if
// so, the key descriptor and whether it names a symbolic key. Several
// analyses key off this encoding (spec.md §4.8 reentrancy/TOD).
func ParseStorageVarName(name string) (keyDesc string, isSymbolic bool, ok bool) {
	if !strings.HasPrefix(name, "storage,") {
		return "", false, false
	}
	rest := name[len("storage,"):]
	idx := strings.LastIndex(rest, ",")
	if idx < 0 {
		return "", false, false
	}
	keyDesc, kind := rest[:idx], rest[idx+1:]
	switch kind {
	case "conc":
		return keyDesc, false, true
	case "sym":
		return keyDesc, true, true
	default:
		return "", false, false
	}
}

// IsTimestamp reports whether name is literally the block-timestamp
// context variable (spec.md §4.8 "Time manipulation").
func IsTimestamp(name string) bool { return name == "timestamp" }
