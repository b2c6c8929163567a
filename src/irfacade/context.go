// Package irfacade is the thin abstraction over the external LLVM-like IR
// builder described by spec §4.1. It is the only layer that knows
// tinygo.org/x/go-llvm binding details; every other package in this module
// talks to LLVM exclusively through irfacade's Context/Module/Builder
// surface.
package irfacade

import (
	"sync"

	"tinygo.org/x/go-llvm"
)

// Type, Value and BasicBlock are re-exported so callers never need to
// import tinygo.org/x/go-llvm directly. The facade's value is in the
// operations it exposes on them, not in hiding the representation.
type (
	Type       = llvm.Type
	Value      = llvm.Value
	BasicBlock = llvm.BasicBlock
)

// Context owns an LLVM context and the name-keyed opaque struct cache that
// makes struct_named idempotent, which is what lets recursive resource
// references resolve (spec §9: "Recursive resources").
type Context struct {
	llctx llvm.Context

	mu      sync.Mutex
	structs map[string]Type

	// PointerBits is the target's pointer width, used for isize/usize.
	PointerBits int
}

// NewContext creates a Context for a target with the given pointer width
// (32 or 64).
func NewContext(pointerBits int) *Context {
	return &Context{
		llctx:       llvm.NewContext(),
		structs:     make(map[string]Type),
		PointerBits: pointerBits,
	}
}

// Dispose releases the underlying LLVM context. Callers must not use the
// Context afterwards (spec §5: scoped acquisition with guaranteed release).
func (c *Context) Dispose() {
	c.llctx.Dispose()
}

// NewModule creates a named Module bound to this Context.
func (c *Context) NewModule(name string) *Module {
	return &Module{ctx: c, llmod: c.llctx.NewModule(name), strings: make(map[string]Value)}
}

// NewBuilder creates a Builder bound to this Context.
func (c *Context) NewBuilder() *Builder {
	return &Builder{ctx: c, llb: c.llctx.NewBuilder()}
}

// ----- Primitive and composite types (spec §4.1 "Types") -----

// Int returns the n-bit integer type.
func (c *Context) Int(n int) Type {
	return c.llctx.IntType(n)
}

// Bool returns the i1 type used for bool.
func (c *Context) Bool() Type {
	return c.llctx.Int1Type()
}

// Char returns the i32 type used for the 32-bit Unicode scalar char.
func (c *Context) Char() Type {
	return c.llctx.Int32Type()
}

// Isize returns the pointer-sized signed integer type.
func (c *Context) Isize() Type {
	return c.llctx.IntType(c.PointerBits)
}

// Usize returns the pointer-sized unsigned integer type (same IR
// representation as Isize; signedness lives in the Reso type system, not
// in LLVM's untyped integers).
func (c *Context) Usize() Type {
	return c.llctx.IntType(c.PointerBits)
}

// Float32 returns the IEEE-754 single precision type.
func (c *Context) Float32() Type {
	return c.llctx.FloatType()
}

// Float64 returns the IEEE-754 double precision type.
func (c *Context) Float64() Type {
	return c.llctx.DoubleType()
}

// Void returns LLVM's void type, used for the GC_init and abort externs.
func (c *Context) Void() Type {
	return c.llctx.VoidType()
}

// Unit returns the empty struct type used for Reso's unit value.
func (c *Context) Unit() Type {
	return c.llctx.StructType(nil, false)
}

// Pointer returns a pointer to t in the default address space.
func (c *Context) Pointer(t Type) Type {
	return llvm.PointerType(t, 0)
}

// Array returns an array of n elements of type t.
func (c *Context) Array(t Type, n int) Type {
	return llvm.ArrayType(t, n)
}

// Function returns a function type. variadic marks a C-style varargs tail
// (used only for printf/snprintf).
func (c *Context) Function(ret Type, params []Type, variadic bool) Type {
	return llvm.FunctionType(ret, params, variadic)
}

// StructNamed returns the opaque named struct type for name, creating it if
// this is the first request. Idempotent: Pass A of signature registration
// relies on repeated calls for the same name returning the same type.
func (c *Context) StructNamed(name string) Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.structs[name]; ok {
		return t
	}
	t := c.llctx.StructCreateNamed(name)
	c.structs[name] = t
	return t
}

// StructSetBody fills in the body of a struct previously created opaque via
// StructNamed. Pass B calls it once per resource, after all resource names
// in the compilation unit set are known; the type registry calls it when it
// first creates a Vector<T> struct.
func (c *Context) StructSetBody(t Type, fields []Type) {
	t.StructSetBody(fields, false)
}
