package irfacade

import "tinygo.org/x/go-llvm"

// AddBasicBlock appends a new basic block named name to fn. Named blocks
// are left unnamed ("") when name is empty; LLVM numbers them itself, which
// is how the teacher's genIf/genWhile emit blocks in ir/llvm/transform.go.
func (c *Context) AddBasicBlock(fn Value, name string) BasicBlock {
	return llvm.AddBasicBlock(fn, name)
}

// Br emits an unconditional branch to target.
func (b *Builder) Br(target BasicBlock) Value {
	return b.llb.CreateBr(target)
}

// CondBr emits a conditional branch: to thenBB if cond is true, elseBB
// otherwise.
func (b *Builder) CondBr(cond Value, thenBB, elseBB BasicBlock) Value {
	return b.llb.CreateCondBr(cond, thenBB, elseBB)
}

// Ret emits a return of v.
func (b *Builder) Ret(v Value) Value {
	return b.llb.CreateRet(v)
}

// RetVoid emits a bare return (used for the unit-returning function body
// completion rule of spec §4.6, where the actual IR return type is the
// empty unit struct, not void — callers generally prefer Ret with a
// zero-initialized unit value; RetVoid remains for true void externs).
func (b *Builder) RetVoid() Value {
	return b.llb.CreateRetVoid()
}

// Select emits a two-way select instruction, the concrete lowering of a
// concretized ternary expression (spec §4.5).
func (b *Builder) Select(cond, then, els Value) Value {
	return b.llb.CreateSelect(cond, then, els, "")
}

// Phi creates a phi node of type t with no incoming edges registered yet;
// call AddIncoming once per predecessor block before leaving the joining
// basic block (spec §4.1, "phi(type) with incoming-edge registration").
func (b *Builder) Phi(t Type) Value {
	return b.llb.CreatePHI(t, "")
}

// AddIncoming registers one incoming edge on a phi node produced by Phi.
func AddIncoming(phi Value, values []Value, blocks []BasicBlock) {
	phi.AddIncoming(values, blocks)
}

// IsBlockTerminated reports whether bb's last instruction is already a
// terminator (br, condbr, ret, unreachable). Statement lowering does not
// call it: it tracks whether a block is closed through the reachability
// flag its statement generators return (spec §8: "no basic block... has
// two terminators").
func IsBlockTerminated(bb BasicBlock) bool {
	last := bb.LastInstruction()
	if last.IsNil() {
		return false
	}
	switch last.InstructionOpcode() {
	case llvm.Ret, llvm.Br, llvm.Switch, llvm.IndirectBr, llvm.Invoke, llvm.Unreachable:
		return true
	default:
		return false
	}
}
