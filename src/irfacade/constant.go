package irfacade

import (
	"math/big"

	"tinygo.org/x/go-llvm"
)

// ConstInt returns a constant integer of type t with value n, sign-extended
// if signExtend is set (matters only when n's top bit is set and t is
// wider than 64 bits, which never happens for Reso's primitive widths but
// is threaded through for fidelity to the underlying binding).
func (c *Context) ConstInt(t Type, n uint64, signExtend bool) Value {
	return llvm.ConstInt(t, n, signExtend)
}

// ConstIntFromBig returns a constant integer of type t from an arbitrary
// precision decimal value, used for untyped integer literals wider than 64
// bits can hold precisely.
func (c *Context) ConstIntFromBig(t Type, v *big.Int) Value {
	return llvm.ConstIntFromString(t, v.String(), 10)
}

// ConstFloat returns a constant floating point value of type t.
func (c *Context) ConstFloat(t Type, v float64) Value {
	return llvm.ConstFloat(t, v)
}

// ConstBool returns the i1 constant true or false.
func (c *Context) ConstBool(v bool) Value {
	n := uint64(0)
	if v {
		n = 1
	}
	return llvm.ConstInt(c.Bool(), n, false)
}

// ConstNullPointer returns the null pointer constant of pointer type t.
func (c *Context) ConstNullPointer(t Type) Value {
	return llvm.ConstPointerNull(t)
}

// ConstNamedStruct returns a constant value of the named struct type t with
// the given field values, in declaration order.
func (c *Context) ConstNamedStruct(t Type, fields []Value) Value {
	return llvm.ConstNamedStruct(t, fields)
}

// ConstZero returns the zero value ("zeroinitializer") of type t, used for
// the unit value and for main's implicit fallthrough return.
func (c *Context) ConstZero(t Type) Value {
	return llvm.ConstNull(t)
}

// SizeOf returns the runtime byte size of t as a usize value, computed with
// the standard null-pointer-GEP trick (gep (T*)null, 1; ptrtoint to usize)
// rather than a data layout query, since the module's data layout is
// stamped only after code generation and verification.
func (b *Builder) SizeOf(t Type) Value {
	ptr := b.ctx.Pointer(t)
	null := llvm.ConstPointerNull(ptr)
	one := llvm.ConstInt(b.ctx.Usize(), 1, false)
	gep := b.llb.CreateGEP(null, []Value{one}, "")
	return b.llb.CreatePtrToInt(gep, b.ctx.Usize(), "")
}

// GlobalStringPtr returns an i8* pointing at a NUL-terminated global
// constant holding s, deduplicated by content within Module m so repeated
// literals (including the internal literals used by to_string) share
// storage.
func (m *Module) GlobalStringPtr(b *Builder, s, namePrefix string) Value {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.strings[s]; ok {
		return v
	}
	v := b.llb.CreateGlobalStringPtr(s, namePrefix)
	m.strings[s] = v
	return v
}
