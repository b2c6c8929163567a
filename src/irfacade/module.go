package irfacade

import (
	"sync"

	"tinygo.org/x/go-llvm"
)

// Module wraps an LLVM module together with the bookkeeping the facade
// needs: a deduplicating global-string cache (spec §4.1, "Constants") and a
// function lookup that avoids repeated declarations.
type Module struct {
	ctx   *Context
	llmod llvm.Module

	mu      sync.Mutex
	strings map[string]Value
}

// Dispose releases the underlying LLVM module.
func (m *Module) Dispose() {
	m.llmod.Dispose()
}

// FunctionType builds a function type against this module's context,
// saving callers that only hold a *Module a trip through Context.
func (m *Module) FunctionType(ret Type, params []Type, variadic bool) Type {
	return m.ctx.Function(ret, params, variadic)
}

// Context returns the Context this Module is bound to.
func (m *Module) Context() *Context {
	return m.ctx
}

// AddFunction declares a function named name with type ft in the module.
func (m *Module) AddFunction(name string, ft Type) Value {
	return llvm.AddFunction(m.llmod, name, ft)
}

// AddGlobal declares a global variable named name with type t.
func (m *Module) AddGlobal(t Type, name string) Value {
	return llvm.AddGlobal(m.llmod, t, name)
}

// GetFunction returns the named function and true, or a zero Value and
// false if no such function is declared.
func (m *Module) GetFunction(name string) (Value, bool) {
	v := m.llmod.NamedFunction(name)
	if v.IsNil() {
		return Value{}, false
	}
	return v, true
}

// HasFunction reports whether a function named name is declared.
func (m *Module) HasFunction(name string) bool {
	_, ok := m.GetFunction(name)
	return ok
}

// GetGlobal returns the named global and true, or false if absent.
func (m *Module) GetGlobal(name string) (Value, bool) {
	v := m.llmod.NamedGlobal(name)
	if v.IsNil() {
		return Value{}, false
	}
	return v, true
}

// Dump writes the module's textual IR to stderr, used only under
// Options.Verbose.
func (m *Module) Dump() {
	m.llmod.Dump()
}

// String returns the module's textual LLVM IR.
func (m *Module) String() string {
	return m.llmod.String()
}

// SetDataLayout sets the module's data layout string.
func (m *Module) SetDataLayout(dl string) {
	m.llmod.SetDataLayout(dl)
}

// SetTarget sets the module's target triple.
func (m *Module) SetTarget(triple string) {
	m.llmod.SetTarget(triple)
}

// Verify checks the module for structural validity (spec §4.8 step 6). A
// non-nil error is fatal: the driver must not proceed to optimization or
// emission.
func (m *Module) Verify() error {
	if err := llvm.VerifyModule(m.llmod, llvm.ReturnStatusAction); err != nil {
		return wrap("Verify", err)
	}
	return nil
}
