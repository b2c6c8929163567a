package symtab

import (
	"testing"

	"resoc/src/irfacade"
	"resoc/src/types"
)

func TestDefineVariableForbiddenAtGlobalScope(t *testing.T) {
	tab := New()
	if err := tab.DefineVariable("x", irfacade.Value{}, nil, false, false); err == nil {
		t.Fatalf("expected an error defining a variable at global scope")
	}
}

func TestVariableLifecycle(t *testing.T) {
	tab := New()
	tab.EnterScope()
	defer tab.ExitScope()

	i32 := &types.Type{Handle: types.Handle{Name: "i32", Class: types.ClassInt}}
	if err := tab.DefineVariable("x", irfacade.Value{}, i32, false, false); err != nil {
		t.Fatalf("DefineVariable: %v", err)
	}

	if tab.FindReadableVariable("x") != nil {
		t.Fatalf("an uninitialized variable must not be readable")
	}
	if tab.FindSymbol("x") == nil {
		t.Fatalf("FindSymbol must still find an uninitialized variable")
	}

	if err := tab.InitializeVariable("x"); err != nil {
		t.Fatalf("InitializeVariable: %v", err)
	}
	v := tab.FindReadableVariable("x")
	if v == nil {
		t.Fatalf("variable must be readable after initialization")
	}
	if v.Type != i32 {
		t.Fatalf("FindReadableVariable returned the wrong type")
	}
}

func TestDefineVariableDuplicateInSameScope(t *testing.T) {
	tab := New()
	tab.EnterScope()
	defer tab.ExitScope()

	_ = tab.DefineVariable("x", irfacade.Value{}, nil, false, false)
	if err := tab.DefineVariable("x", irfacade.Value{}, nil, false, false); err == nil {
		t.Fatalf("expected an error redefining %q in the same scope", "x")
	}
}

func TestConstReinitializationFails(t *testing.T) {
	tab := New()
	tab.EnterScope()
	defer tab.ExitScope()

	_ = tab.DefineVariable("c", irfacade.Value{}, nil, true, true)
	if err := tab.InitializeVariable("c"); err == nil {
		t.Fatalf("expected an error re-initializing an already-initialized const")
	}
}

func TestScopeLookupWalksToParent(t *testing.T) {
	tab := New()
	tab.EnterScope()
	_ = tab.DefineVariable("outer", irfacade.Value{}, nil, false, true)

	tab.EnterScope()
	if tab.FindReadableVariable("outer") == nil {
		t.Fatalf("a nested scope must see variables defined in its parent")
	}
	tab.ExitScope()
	tab.ExitScope()
}

func TestInnerScopeShadowsOuter(t *testing.T) {
	tab := New()
	outer := &types.Type{Handle: types.Handle{Name: "i32", Class: types.ClassInt}}
	inner := &types.Type{Handle: types.Handle{Name: "i64", Class: types.ClassInt}}

	tab.EnterScope()
	_ = tab.DefineVariable("x", irfacade.Value{}, outer, false, true)

	tab.EnterScope()
	_ = tab.DefineVariable("x", irfacade.Value{}, inner, false, true)
	if got := tab.FindReadableVariable("x").Type; got != inner {
		t.Fatalf("inner scope's x should shadow the outer one")
	}
	tab.ExitScope()

	if got := tab.FindReadableVariable("x").Type; got != outer {
		t.Fatalf("after exiting the inner scope, x should resolve to the outer one")
	}
	tab.ExitScope()
}

func TestExitScopeAtGlobalRootPanics(t *testing.T) {
	tab := New()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected ExitScope at global root to panic")
		}
	}()
	tab.ExitScope()
}

func TestFunctionResourceTypeAreGlobalEvenFromNestedScope(t *testing.T) {
	tab := New()
	fn := &types.Function{Name: "helper"}
	if !tab.DefineFunction(fn) {
		t.Fatalf("DefineFunction should succeed the first time")
	}
	if tab.DefineFunction(&types.Function{Name: "helper"}) {
		t.Fatalf("DefineFunction should fail on a duplicate name")
	}

	tab.EnterScope()
	tab.EnterScope()
	if tab.FindFunction("helper") != fn {
		t.Fatalf("FindFunction must resolve through nested scopes to the global table")
	}
	tab.ExitScope()
	tab.ExitScope()
}

func TestAccessContextVisibility(t *testing.T) {
	tab := New()
	if !tab.CanAccess(types.Global, "") {
		t.Fatalf("GLOBAL must always be accessible")
	}
	if tab.CanAccess(types.Fileprivate, "a.reso") {
		t.Fatalf("FILEPRIVATE must not be accessible with no file context entered")
	}

	tab.EnterFileContext("a.reso")
	if !tab.CanAccess(types.Fileprivate, "a.reso") {
		t.Fatalf("FILEPRIVATE symbol from the current file must be accessible")
	}
	if tab.CanAccess(types.Fileprivate, "b.reso") {
		t.Fatalf("FILEPRIVATE symbol from a different file must not be accessible")
	}
	tab.ExitFileContext()

	if tab.CanAccess(types.Fileprivate, "a.reso") {
		t.Fatalf("FILEPRIVATE must not be accessible once the file context is popped")
	}
}

func TestResourceAndTypeRegistration(t *testing.T) {
	tab := New()
	res := &types.Resource{Name: "Account"}
	if !tab.DefineResource(res) {
		t.Fatalf("DefineResource should succeed the first time")
	}
	if tab.DefineResource(&types.Resource{Name: "Account"}) {
		t.Fatalf("DefineResource should fail on a duplicate name")
	}
	if tab.FindResource("Account") != res {
		t.Fatalf("FindResource did not return the registered resource")
	}
	if tab.FindResource("Missing") != nil {
		t.Fatalf("FindResource should return nil for an unregistered name")
	}

	typ := &types.Type{Handle: types.Handle{Name: "Account", Class: types.ClassResource}}
	if !tab.DefineType("Account", typ) {
		t.Fatalf("DefineType should succeed the first time")
	}
	if tab.FindType("Account") != typ {
		t.Fatalf("FindType did not return the registered type")
	}
}
