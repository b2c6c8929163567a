package irfacade

import "tinygo.org/x/go-llvm"

// Builder wraps an LLVM IR builder. A Builder is always positioned at
// exactly one basic block while emitting (spec §4.1 invariant); callers
// reposition it with PositionAtEnd before emitting into a different block.
type Builder struct {
	ctx *Context
	llb llvm.Builder
}

// Dispose releases the underlying LLVM builder.
func (b *Builder) Dispose() {
	b.llb.Dispose()
}

// PositionAtEnd moves the builder's insertion point to the end of bb.
func (b *Builder) PositionAtEnd(bb BasicBlock) {
	b.llb.SetInsertPointAtEnd(bb)
}

// CurrentBlock returns the block the builder is presently positioned at,
// used to register a phi's incoming edge from whichever block the
// preceding expression actually left the builder in (short-circuit
// evaluation can leave that block different from the one lowering of the
// enclosing expression started in).
func (b *Builder) CurrentBlock() BasicBlock {
	return b.llb.GetInsertBlock()
}

// Unreachable marks a path the code generator has proven dead (e.g. past an
// aborting bounds check) as LLVM's unreachable terminator.
func (b *Builder) Unreachable() Value {
	return b.llb.CreateUnreachable()
}

// Param returns the nth parameter (0-indexed) of a function Value.
func Param(fn Value, n int) Value {
	return fn.Param(n)
}

// ----- Integer arithmetic -----

func (b *Builder) Add(l, r Value) Value  { return b.llb.CreateAdd(l, r, "") }
func (b *Builder) Sub(l, r Value) Value  { return b.llb.CreateSub(l, r, "") }
func (b *Builder) Mul(l, r Value) Value  { return b.llb.CreateMul(l, r, "") }
func (b *Builder) SDiv(l, r Value) Value { return b.llb.CreateSDiv(l, r, "") }
func (b *Builder) UDiv(l, r Value) Value { return b.llb.CreateUDiv(l, r, "") }
func (b *Builder) SRem(l, r Value) Value { return b.llb.CreateSRem(l, r, "") }
func (b *Builder) URem(l, r Value) Value { return b.llb.CreateURem(l, r, "") }
func (b *Builder) Neg(v Value) Value     { return b.llb.CreateNeg(v, "") }

// ----- Floating point arithmetic -----

func (b *Builder) FAdd(l, r Value) Value { return b.llb.CreateFAdd(l, r, "") }
func (b *Builder) FSub(l, r Value) Value { return b.llb.CreateFSub(l, r, "") }
func (b *Builder) FMul(l, r Value) Value { return b.llb.CreateFMul(l, r, "") }
func (b *Builder) FDiv(l, r Value) Value { return b.llb.CreateFDiv(l, r, "") }
func (b *Builder) FRem(l, r Value) Value { return b.llb.CreateFRem(l, r, "") }
func (b *Builder) FNeg(v Value) Value    { return b.llb.CreateFNeg(v, "") }

// ----- Bitwise -----

func (b *Builder) And(l, r Value) Value  { return b.llb.CreateAnd(l, r, "") }
func (b *Builder) Or(l, r Value) Value   { return b.llb.CreateOr(l, r, "") }
func (b *Builder) Xor(l, r Value) Value  { return b.llb.CreateXor(l, r, "") }
func (b *Builder) Shl(l, r Value) Value  { return b.llb.CreateShl(l, r, "") }
func (b *Builder) AShr(l, r Value) Value { return b.llb.CreateAShr(l, r, "") }
func (b *Builder) LShr(l, r Value) Value { return b.llb.CreateLShr(l, r, "") }
func (b *Builder) Not(v Value) Value     { return b.llb.CreateNot(v, "") }

// IntPredicate and FloatPredicate re-export the comparison predicate enums
// so callers never import tinygo.org/x/go-llvm directly.
type (
	IntPredicate   = llvm.IntPredicate
	FloatPredicate = llvm.FloatPredicate
)

// Integer comparison predicates (spec §4.5 "Comparisons").
const (
	IntEQ  = llvm.IntEQ
	IntNE  = llvm.IntNE
	IntSLT = llvm.IntSLT
	IntSLE = llvm.IntSLE
	IntSGT = llvm.IntSGT
	IntSGE = llvm.IntSGE
	IntULT = llvm.IntULT
	IntULE = llvm.IntULE
	IntUGT = llvm.IntUGT
	IntUGE = llvm.IntUGE
)

// Float comparison predicates, all ordered (NaN-intolerant) per spec §4.5.
const (
	FloatOEQ = llvm.FloatOEQ
	FloatONE = llvm.FloatONE
	FloatOLT = llvm.FloatOLT
	FloatOLE = llvm.FloatOLE
	FloatOGT = llvm.FloatOGT
	FloatOGE = llvm.FloatOGE
)

func (b *Builder) ICmp(pred IntPredicate, l, r Value) Value {
	return b.llb.CreateICmp(pred, l, r, "")
}

func (b *Builder) FCmp(pred FloatPredicate, l, r Value) Value {
	return b.llb.CreateFCmp(pred, l, r, "")
}
