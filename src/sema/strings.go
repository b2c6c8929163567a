package sema

import (
	"resoc/src/irfacade"
	"resoc/src/symtab"
	"resoc/src/types"
)

// EnsureStringType returns a thunk yielding the String type: Vector<u8>
// registered under a second name (spec §4.7, "String is Vector<u8> with a
// dedicated name"), built lazily the first time it's called so its position
// in registration order doesn't matter to callers that only need it once
// to_string/print are being wired up.
func EnsureStringType(reg *types.Registry, ctx *irfacade.Context, mod *irfacade.Module, ensureVector func(elem *types.Type) *types.Type) func() *types.Type {
	var cached *types.Type
	return func() *types.Type {
		if cached != nil {
			return cached
		}
		u8 := reg.Int("u8")
		vec := ensureVector(u8)
		cached = reg.Alias("String", types.ClassResource, vec)
		return cached
	}
}

// RegisterBuiltins wires every built-in name spec §4.7 promises into reg/sym:
// Vector<T> (lazily, per element type, via the returned func), String,
// primitive to_string, and the global print/println functions. Called once
// per compilation, before Pass A sees any user source (spec §4.4).
func RegisterBuiltins(reg *types.Registry, ctx *irfacade.Context, mod *irfacade.Module, sym *symtab.Table) (ensureVector func(elem *types.Type) *types.Type) {
	ensureVector = EnsureVectorType(reg, ctx, mod)
	stringType := EnsureStringType(reg, ctx, mod, ensureVector)

	RegisterPrimitiveToString(reg, ctx, mod, stringType)

	print, println := RegisterPrintFunctions(ctx, mod, reg, stringType)
	sym.DefineFunction(print)
	sym.DefineFunction(println)

	return ensureVector
}
