// Package symtab implements the Symbol Table described by spec §4.3: a
// stack of lexical scopes holding variable, function, resource, type,
// field and method symbols, plus a separate access-context stack tracking
// cross-file visibility.
//
// It generalizes the teacher's util.Stack (a linked-list stack of
// interface{} payloads used ad hoc throughout the old backend) into a
// purpose-built scope stack holding typed symbol maps instead of raw
// interface{} values pushed by whatever pass happened to need a stack.
package symtab

import (
	"fmt"

	"resoc/src/irfacade"
	"resoc/src/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind distinguishes the symbol namespaces a Scope can hold. Spec §3 keys
// scope lookups by (name, symbol-kind) so a variable and a type can share a
// name without colliding.
type Kind int

const (
	KindVariable Kind = iota
	KindFunction
	KindResource
	KindType
	KindField
	KindMethod
)

// Variable is the Variable Symbol of spec §3: readable iff Initialized.
type Variable struct {
	Name        string
	Type        *types.Type
	Storage     irfacade.Value
	Const       bool
	Initialized bool
}

// key identifies a symbol within a scope's map.
type key struct {
	name string
	kind Kind
}

// Scope is one lexical level: a parent pointer (nil at the global root) and
// a map from (name, kind) to symbol.
type Scope struct {
	parent *Scope
	vars   map[key]*Variable
	funcs  map[string]*types.Function
	res    map[string]*types.Resource
	typ    map[string]*types.Type
}

func newScope(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		vars:   make(map[key]*Variable),
		funcs:  make(map[string]*types.Function),
		res:    make(map[string]*types.Resource),
		typ:    make(map[string]*types.Type),
	}
}

// accessContext is one level of the access-context stack (spec §3).
type accessContext struct {
	fileprivate bool
	fileID      string
	parent      *accessContext
}

// Table is the full symbol table: the scope stack, the function-return-type
// stack (so nested blocks inside a function body can still answer "what
// must I return"), and the access-context stack.
type Table struct {
	top        *Scope
	returnTop  *returnFrame
	accessTop  *accessContext
}

type returnFrame struct {
	ret    *types.Type
	parent *returnFrame
}

// ---------------------
// ----- functions -----
// ---------------------

// New returns a Table with only the global scope present.
func New() *Table {
	return &Table{top: newScope(nil)}
}

// EnterScope pushes a new lexical scope as a child of the current one.
func (t *Table) EnterScope() {
	t.top = newScope(t.top)
}

// ExitScope pops the current scope. Fails at the global root, mirroring the
// teacher's IllegalStateException-style internal-invariant failures (spec
// §4.3): this can only happen from a compiler bug, never user input, so it
// panics rather than returning a diagnosable error.
func (t *Table) ExitScope() {
	if t.top.parent == nil {
		panic("symtab: ExitScope called at global root")
	}
	t.top = t.top.parent
}

// EnterFunctionScope pushes both a new lexical scope and a new return-type
// frame recording ret, the declared return type of the function being
// entered.
func (t *Table) EnterFunctionScope(ret *types.Type) {
	t.EnterScope()
	t.returnTop = &returnFrame{ret: ret, parent: t.returnTop}
}

// ExitFunctionScope pops both the lexical scope and the return-type frame
// pushed by the matching EnterFunctionScope. allPathsReturn records whether
// the code generator determined every control path of the function body
// returns (spec §4.6); callers that don't track this yet may pass true and
// rely on the code generator's own enforcement of the function-body-
// completion rule instead.
func (t *Table) ExitFunctionScope(allPathsReturn bool) bool {
	t.ExitScope()
	if t.returnTop == nil {
		panic("symtab: ExitFunctionScope with no matching EnterFunctionScope")
	}
	t.returnTop = t.returnTop.parent
	return allPathsReturn
}

// CurrentReturnType returns the return type of the innermost function scope,
// or nil outside any function.
func (t *Table) CurrentReturnType() *types.Type {
	if t.returnTop == nil {
		return nil
	}
	return t.returnTop.ret
}

// AtGlobalScope reports whether no function/block scope has been entered.
func (t *Table) AtGlobalScope() bool {
	return t.top.parent == nil
}

// DefineVariable defines a new variable in the current scope. Variable
// definition at global scope is forbidden by spec §4.3 (globals in this
// language are functions, resources and types, never loose variables).
func (t *Table) DefineVariable(name string, storage irfacade.Value, typ *types.Type, isConst, isInitialized bool) error {
	if t.AtGlobalScope() {
		return fmt.Errorf("cannot define variable %q at global scope", name)
	}
	k := key{name, KindVariable}
	if _, exists := t.top.vars[k]; exists {
		return fmt.Errorf("variable %q is already defined in this scope", name)
	}
	t.top.vars[k] = &Variable{Name: name, Type: typ, Storage: storage, Const: isConst, Initialized: isInitialized}
	return nil
}

// InitializeVariable marks name initialized in the nearest enclosing scope
// that declares it. Fails if the variable is const and already initialized,
// or if no such variable is visible.
func (t *Table) InitializeVariable(name string) error {
	for s := t.top; s != nil; s = s.parent {
		if v, ok := s.vars[key{name, KindVariable}]; ok {
			if v.Const && v.Initialized {
				return fmt.Errorf("cannot assign to const variable %q after initialization", name)
			}
			v.Initialized = true
			return nil
		}
	}
	return fmt.Errorf("undefined variable %q", name)
}

// FindSymbol walks the scope stack from the innermost scope outward looking
// for a variable symbol named name. It returns nil if none is visible.
func (t *Table) FindSymbol(name string) *Variable {
	for s := t.top; s != nil; s = s.parent {
		if v, ok := s.vars[key{name, KindVariable}]; ok {
			return v
		}
	}
	return nil
}

// FindReadableVariable is FindSymbol additionally requiring Initialized.
func (t *Table) FindReadableVariable(name string) *Variable {
	v := t.FindSymbol(name)
	if v == nil || !v.Initialized {
		return nil
	}
	return v
}

// globalScope walks to the root scope, where functions, resources and types
// live regardless of how deep the current scope is nested.
func (t *Table) globalScope() *Scope {
	s := t.top
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// DefineFunction registers fn at global scope. Returns false if a function
// of that name is already defined (caller reports the diagnostic; spec
// leaves the exact wording to the registration pass that calls this).
func (t *Table) DefineFunction(fn *types.Function) bool {
	g := t.globalScope()
	if _, exists := g.funcs[fn.Name]; exists {
		return false
	}
	g.funcs[fn.Name] = fn
	return true
}

// FindFunction looks up a global-scope function by name.
func (t *Table) FindFunction(name string) *types.Function {
	return t.globalScope().funcs[name]
}

// DefineResource registers res at global scope, returning false if the name
// is already taken by a resource.
func (t *Table) DefineResource(res *types.Resource) bool {
	g := t.globalScope()
	if _, exists := g.res[res.Name]; exists {
		return false
	}
	g.res[res.Name] = res
	return true
}

// FindResource looks up a global-scope resource by name.
func (t *Table) FindResource(name string) *types.Resource {
	return t.globalScope().res[name]
}

// DefineType registers a named type alias at global scope (used for
// resource type handles so ResolveType's identifier lookup can find them
// via the symbol table as well as the type registry).
func (t *Table) DefineType(name string, typ *types.Type) bool {
	g := t.globalScope()
	if _, exists := g.typ[name]; exists {
		return false
	}
	g.typ[name] = typ
	return true
}

// FindType looks up a global-scope type by name.
func (t *Table) FindType(name string) *types.Type {
	return t.globalScope().typ[name]
}

// ----------------------------------
// ----- Access-context stack -------
// ----------------------------------

// EnterFileContext pushes a FILEPRIVATE access context scoped to fileID.
// The driver calls this when it begins generating code for a compilation
// unit (spec §4.3) and pops it with ExitFileContext when done.
func (t *Table) EnterFileContext(fileID string) {
	t.accessTop = &accessContext{fileprivate: true, fileID: fileID, parent: t.accessTop}
}

// ExitFileContext pops the access context pushed by EnterFileContext.
func (t *Table) ExitFileContext() {
	if t.accessTop == nil {
		panic("symtab: ExitFileContext with no matching EnterFileContext")
	}
	t.accessTop = t.accessTop.parent
}

// CanAccess reports whether a symbol with the given visibility and
// declaring file is reachable from the current access context (spec §4.3):
// true for GLOBAL, or for FILEPRIVATE when the current context is
// file-scoped and its file-id matches targetFileID.
func (t *Table) CanAccess(targetVisibility types.Visibility, targetFileID string) bool {
	if targetVisibility == types.Global {
		return true
	}
	if t.accessTop == nil {
		return false
	}
	return t.accessTop.fileprivate && t.accessTop.fileID == targetFileID
}
