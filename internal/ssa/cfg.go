// Package ssa defines the control-flow-graph data model the external
// disassembler/SSA lifter is specified to produce (spec.md §1, §3): a set
// of functions, each a set of basic blocks of SSA instructions with typed
// stack-value operands, joined by fallthrough/jump edges plus the
// synthetic InternalCall/ConditionalInternalCall/PHI edges.
//
// This is the interface boundary the core consumes; spec.md places the
// lifter itself out of scope. internal/disasm provides one concrete
// implementation.
package ssa

import "github.com/core-coin/conkas/internal/isa"

// StackValue is the SSA operand sum type (spec.md §9 "SSA-value
// polymorphism"): either a concrete literal or a reference to another
// instruction's SSA result, resolved uniformly by the transfer layer
// rather than through an inheritance hierarchy.
type StackValue struct {
	IsConst bool
	// Const holds the literal value's big-endian bytes when IsConst.
	Const []byte
	// Ref is the SSA index of the defining instruction when !IsConst.
	Ref int
}

func ConstValue(b []byte) StackValue { return StackValue{IsConst: true, Const: b} }
func RefValue(idx int) StackValue    { return StackValue{IsConst: false, Ref: idx} }

// Instruction is one SSA instruction: an opcode, its operands, the PC it
// was lifted from, and the SSA index it defines (-1 if it has no result).
type Instruction struct {
	Op        isa.Op
	Operands  []StackValue
	PC        uint64
	SSAIndex  int
	HasResult bool
	// Args is used only by PHI: the candidate SSA indices to choose among,
	// in the order the lifter found them; opPhi tries them by descending
	// SSA index (spec.md §4.3).
	Args []int
}

// EdgeKind distinguishes structural CFG edges from the lifter's synthetic
// inter-function edges (spec.md §1).
type EdgeKind int

const (
	Fallthrough EdgeKind = iota
	Jump
	InternalCallEdge
	ConditionalInternalCallEdge
)

// Edge is an inter-block edge in the lifted CFG.
type Edge struct {
	Kind EdgeKind
	To   *Block
}

// Block is a basic block: a straight-line run of SSA instructions plus its
// structural successor edges (not to be confused with the edges a transfer
// function returns at execution time — those may differ, e.g. a JUMPI's
// transfer function narrows the two structural successors to the ones the
// branch condition allows).
type Block struct {
	ID           int
	Function     *Function
	Instructions []*Instruction
	Successors   []Edge
}

// Function is one lifted function (spec.md calls the dispatch entry "the
// first block of the first function").
type Function struct {
	Name   string
	Entry  *Block
	Blocks []*Block
}

// CFG is the full lifted program: all functions of a single contract.
type CFG struct {
	Contract  string
	Functions []*Function
	Code      []byte
}
