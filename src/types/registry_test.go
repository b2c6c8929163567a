package types

import (
	"testing"

	"resoc/src/irfacade"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	ctx := irfacade.NewContext(64)
	t.Cleanup(ctx.Dispose)
	return NewRegistry(ctx)
}

func TestStandardHandlesArePreregistered(t *testing.T) {
	r := newTestRegistry(t)
	for _, name := range []string{"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64"} {
		if _, ok := r.Lookup(name, ClassInt); !ok {
			t.Fatalf("expected %s to be preregistered", name)
		}
	}
	if r.Int("isize") == nil || !r.Int("isize").Signed {
		t.Fatalf("isize must be preregistered and signed")
	}
	if r.Int("usize") == nil || r.Int("usize").Signed {
		t.Fatalf("usize must be preregistered and unsigned")
	}
	if r.Bool() == nil || r.Char() == nil || r.Unit() == nil || r.Null() == nil {
		t.Fatalf("bool/char/unit/null must all be preregistered")
	}
	if r.UntypedInt() == nil || r.UntypedFloat() == nil {
		t.Fatalf("the two untyped literal types must be preregistered")
	}
}

func TestGetTypePanicsOnUnknownHandle(t *testing.T) {
	r := newTestRegistry(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("GetType on an unregistered handle should panic")
		}
	}()
	r.GetType(Handle{Name: "Bogus", Class: ClassResource})
}

func TestAliasIsIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	u8 := r.Int("u8")
	first := r.Alias("String", ClassResource, u8)
	second := r.Alias("String", ClassResource, u8)
	if first != second {
		t.Fatalf("Alias must return the same instance on repeated calls for the same name")
	}
	if first.Handle.Name != "String" {
		t.Fatalf("aliased type must carry the alias's own handle name")
	}
}

func TestGetOrCreateVectorTypeMemoizes(t *testing.T) {
	r := newTestRegistry(t)
	u8 := r.Int("u8")
	v1 := r.GetOrCreateVectorType(u8)
	v2 := r.GetOrCreateVectorType(u8)
	if v1 != v2 {
		t.Fatalf("GetOrCreateVectorType must memoize by element type name")
	}
	if v1.Handle.Name != "Vector<u8>" {
		t.Fatalf("vector type name = %q, want Vector<u8>", v1.Handle.Name)
	}
	if v1.Resource == nil || len(v1.Resource.Generics) != 1 || v1.Resource.Generics[0] != "T" {
		t.Fatalf("vector resource must record a single generic parameter T")
	}

	i32 := r.Int("i32")
	v3 := r.GetOrCreateVectorType(i32)
	if v3 == v1 {
		t.Fatalf("Vector<i32> must not be memoized as the same type as Vector<u8>")
	}
}

func TestCreateResourceTypeIsIdempotentByName(t *testing.T) {
	r := newTestRegistry(t)
	st := r.ctx.StructNamed("Account_struct")
	pt := r.ctx.Pointer(st)

	a := r.CreateResourceType("Account", pt, st, nil)
	b := r.CreateResourceType("Account", pt, st, nil)
	if a != b {
		t.Fatalf("CreateResourceType must be idempotent on name")
	}
}

func TestCreateConversionSameTypeIsNoop(t *testing.T) {
	r := newTestRegistry(t)
	i32 := r.Int("i32")
	b := r.ctx.NewBuilder()
	defer b.Dispose()

	v := irfacade.Value{}
	out, err := r.CreateConversion(b, v, i32, i32)
	if err != nil {
		t.Fatalf("CreateConversion(i32, i32): %v", err)
	}
	if out != v {
		t.Fatalf("converting a type to itself must return the input unchanged")
	}
}

func TestCreateConversionRejectsIncompatibleClasses(t *testing.T) {
	r := newTestRegistry(t)
	b := r.ctx.NewBuilder()
	defer b.Dispose()

	_, err := r.CreateConversion(b, irfacade.Value{}, r.Bool(), r.Int("i32"))
	if err == nil {
		t.Fatalf("expected an error converting bool to i32")
	}
}
