package ssa

import "sort"

// InstructionPCs returns every instruction PC appearing in cfg, deduplicated
// and sorted ascending. A linear-sweep lifter visits each bytecode
// instruction exactly once, so this reconstructs the original instruction
// order the compiler's source map was generated against (srcmap.Resolver,
// spec.md §4.6).
func InstructionPCs(cfg *CFG) []uint64 {
	seen := make(map[uint64]bool)
	var pcs []uint64
	for _, fn := range cfg.Functions {
		for _, b := range fn.Blocks {
			for _, instr := range b.Instructions {
				if seen[instr.PC] {
					continue
				}
				seen[instr.PC] = true
				pcs = append(pcs, instr.PC)
			}
		}
	}
	sort.Slice(pcs, func(i, j int) bool { return pcs[i] < pcs[j] })
	return pcs
}
