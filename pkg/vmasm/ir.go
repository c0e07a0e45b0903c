// Package vmasm lowers a parsed VM module (pkg/vm) straight down to Hack
// assembly text, bypassing the Assembler dialect entirely. Splitting the IR
// out of the VM package (rather than reusing asm.Statement) keeps the VM
// Translator's one optimization pass — the Push/Pop peephole below — a
// concern of the lowerer, not something bolted onto the Assembler's own
// lowering/codegen pipeline.
package vmasm

import "fmt"

// Node is a single IR instruction. Each concrete type renders deterministically
// to one or more lines of Hack assembly text; a translated program is the
// concatenation, in order, of every node's rendering.
type Node interface {
	Render() []string
}

// Push appends the value currently held in D onto the stack, advancing SP.
type Push struct{}

func (Push) Render() []string {
	return []string{"@SP", "M=M+1", "A=M-1", "M=D"}
}

// Pop retracts SP by one and loads the popped value into D. A now addresses
// the cell that held it, which DecAssign relies on to reach the operand below.
type Pop struct{}

func (Pop) Render() []string {
	return []string{"@SP", "AM=M-1", "D=M"}
}

// DecAssign steps A down by one (from the address Pop just left it at, to the
// operand beneath) then performs 'dest=comp'. Used for binary arithmetic ops,
// which Pop the right-hand operand into D and then combine it with the
// left-hand operand now addressed by A-1.
type DecAssign struct{ Dest, Comp string }

func (n DecAssign) Render() []string {
	return []string{"A=A-1", fmt.Sprintf("%s=%s", n.Dest, n.Comp)}
}

// TopAssign operates on the stack's current top in place, for unary ops that
// never change the stack depth.
type TopAssign struct{ Dest, Comp string }

func (n TopAssign) Render() []string {
	return []string{"@SP", "A=M-1", fmt.Sprintf("%s=%s", n.Dest, n.Comp)}
}

// LoadOffset dereferences a pointer-segment cell (local/argument/this/that) at
// the given offset into D, ready for a following Push.
type LoadOffset struct {
	Segment string // the built-in register holding the segment base (LCL, ARG, THIS, THAT)
	Offset  uint16
}

func (n LoadOffset) Render() []string {
	return []string{
		fmt.Sprintf("@%s", n.Segment), "D=M",
		fmt.Sprintf("@%d", n.Offset), "A=D+A", "D=M",
	}
}

// StoreOffset computes a pointer-segment cell's effective address and stashes
// it in R13, for a following Pop + DerefWrite(R13) to complete the write.
type StoreOffset struct {
	Segment string
	Offset  uint16
}

func (n StoreOffset) Render() []string {
	return []string{
		fmt.Sprintf("@%s", n.Segment), "D=M",
		fmt.Sprintf("@%d", n.Offset), "D=D+A",
		"@R13", "M=D",
	}
}

// LoadConstant loads an immediate value into D, ready for a following Push.
type LoadConstant struct{ Value uint16 }

func (n LoadConstant) Render() []string {
	return []string{fmt.Sprintf("@%d", n.Value), "D=A"}
}

// LoadAddress dereferences a directly-addressed cell (static, pointer, temp)
// into D, ready for a following Push.
type LoadAddress struct{ Label string }

func (n LoadAddress) Render() []string { return []string{fmt.Sprintf("@%s", n.Label), "D=M"} }

// WriteToAddress writes D into a directly-addressed cell, following a Pop.
type WriteToAddress struct{ Label string }

func (n WriteToAddress) Render() []string { return []string{fmt.Sprintf("@%s", n.Label), "M=D"} }

// DerefWrite writes D through the pointer stashed in register (by StoreOffset),
// completing a pointer-segment pop.
type DerefWrite struct{ Register string }

func (n DerefWrite) Render() []string {
	return []string{fmt.Sprintf("@%s", n.Register), "A=M", "M=D"}
}

// Jump emits a conditional jump against D, testing the Hack jump predicate
// 'cond' (e.g. JGT, JEQ, JLT, or the always-true JMP).
type Jump struct{ Label, Cond string }

func (n Jump) Render() []string { return []string{fmt.Sprintf("@%s", n.Label), fmt.Sprintf("D;%s", n.Cond)} }

// Label declares a jump target.
type Label struct{ Name string }

func (n Label) Render() []string { return []string{fmt.Sprintf("(%s)", n.Name)} }

// Assign is the bare Hack 'dest=comp' statement, used to build up multi-step
// idioms (the eq/gt/lt sequence in particular) from smaller primitives.
type Assign struct{ Dest, Comp string }

func (n Assign) Render() []string { return []string{fmt.Sprintf("%s=%s", n.Dest, n.Comp)} }

// Address is the bare Hack '@label' statement.
type Address struct{ Label string }

func (n Address) Render() []string { return []string{fmt.Sprintf("@%s", n.Label)} }

// Comment carries a source comment through the lowering pass so the emitted
// .asm retains some of the .vm file's narrative. It renders to nothing
// executable; Optimize emits a Comment found between a collapsed Push/Pop
// pair ahead of the replacement.
type Comment struct{ Text string }

func (n Comment) Render() []string { return []string{fmt.Sprintf("// %s", n.Text)} }
