package types

import (
	"fmt"
	"sync"

	"resoc/src/diag"
	"resoc/src/irfacade"
	"resoc/src/parsetree"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Registry owns every Type reachable during a compilation, keyed by Handle.
// Spec §5 calls for a lock-protected concurrent map "for future-proofing"
// even though only the single driver thread ever touches it during a run.
type Registry struct {
	ctx *irfacade.Context

	mu      sync.Mutex
	types   map[Handle]*Type
	vectors map[string]*Type // Vector<T> memoization, keyed by element type name.
}

// ---------------------
// ----- functions -----
// ---------------------

// NewRegistry creates a Registry with every standard handle registered:
// every primitive width, the two untyped literal types, unit and null.
func NewRegistry(ctx *irfacade.Context) *Registry {
	r := &Registry{
		ctx:     ctx,
		types:   make(map[Handle]*Type),
		vectors: make(map[string]*Type),
	}
	r.registerStandardHandles()
	return r
}

func (r *Registry) register(t *Type) *Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Handle] = t
	return t
}

func (r *Registry) registerStandardHandles() {
	ints := []struct {
		name   string
		bits   int
		signed bool
	}{
		{"i8", 8, true}, {"i16", 16, true}, {"i32", 32, true}, {"i64", 64, true},
		{"u8", 8, false}, {"u16", 16, false}, {"u32", 32, false}, {"u64", 64, false},
	}
	for _, spec := range ints {
		r.register(&Type{
			Handle: Handle{Name: spec.name, Class: ClassInt},
			Bits:   spec.bits,
			Signed: spec.signed,
			IR:     r.ctx.Int(spec.bits),
		})
	}
	r.register(&Type{Handle: Handle{Name: "isize", Class: ClassInt}, Bits: r.ctx.PointerBits, Signed: true, IR: r.ctx.Isize()})
	r.register(&Type{Handle: Handle{Name: "usize", Class: ClassInt}, Bits: r.ctx.PointerBits, Signed: false, IR: r.ctx.Usize()})

	r.register(&Type{Handle: Handle{Name: "f32", Class: ClassFloat}, Bits: 32, Signed: true, IR: r.ctx.Float32()})
	r.register(&Type{Handle: Handle{Name: "f64", Class: ClassFloat}, Bits: 64, Signed: true, IR: r.ctx.Float64()})

	r.register(&Type{Handle: Handle{Name: "bool", Class: ClassBool}, Bits: 1, IR: r.ctx.Bool()})
	r.register(&Type{Handle: Handle{Name: "char", Class: ClassChar}, Bits: 32, Signed: false, IR: r.ctx.Char()})
	r.register(&Type{Handle: Handle{Name: "()", Class: ClassUnit}, IR: r.ctx.Unit()})
	r.register(&Type{Handle: Handle{Name: "null", Class: ClassNull}})

	// Untyped literal types carry no IR type (spec §3 invariant); their
	// default concrete type is i32 / f64 respectively (spec §4.2).
	r.register(&Type{Handle: Handle{Name: "integer-literal", Class: ClassUntypedInt}})
	r.register(&Type{Handle: Handle{Name: "float-literal", Class: ClassUntypedFloat}})
}

// GetType looks up a previously registered handle. A missing handle is a
// programming-error bug, not a user-facing diagnostic (spec §4.2).
func (r *Registry) GetType(h Handle) *Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[h]
	if !ok {
		panic(fmt.Sprintf("types: unregistered handle %v", h))
	}
	return t
}

// Lookup is the non-panicking counterpart of GetType, used where a missing
// type is expected and reported as a diagnostic rather than a bug.
func (r *Registry) Lookup(name string, class Class) (*Type, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[Handle{Name: name, Class: class}]
	return t, ok
}

// Int, Bool, Char, Unit, Null and UntypedInt/UntypedFloat are convenience
// accessors for types every component needs by name.
func (r *Registry) Int(name string) *Type { t, _ := r.Lookup(name, ClassInt); return t }
func (r *Registry) Bool() *Type           { t, _ := r.Lookup("bool", ClassBool); return t }
func (r *Registry) Char() *Type           { t, _ := r.Lookup("char", ClassChar); return t }
func (r *Registry) Unit() *Type           { t, _ := r.Lookup("()", ClassUnit); return t }
func (r *Registry) Null() *Type           { t, _ := r.Lookup("null", ClassNull); return t }
func (r *Registry) UntypedInt() *Type {
	t, _ := r.Lookup("integer-literal", ClassUntypedInt)
	return t
}
func (r *Registry) UntypedFloat() *Type {
	t, _ := r.Lookup("float-literal", ClassUntypedFloat)
	return t
}

// Alias registers name/class as another handle resolving to a new Type that
// shares t's IR type and resource, without touching t itself. Used to give Vector<u8> a
// second name, "String" (spec §4.7), so ordinary name resolution finds it
// under either identifier.
func (r *Registry) Alias(name string, class Class, t *Type) *Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := Handle{Name: name, Class: class}
	if existing, ok := r.types[h]; ok {
		return existing
	}
	alias := &Type{Handle: h, Bits: t.Bits, Signed: t.Signed, IR: t.IR, Resource: t.Resource}
	r.types[h] = alias
	return alias
}

// CreateResourceType registers (or returns, if already present) the named
// resource type, backed by ptrType/structType. Idempotent on name (spec
// §4.2).
func (r *Registry) CreateResourceType(name string, ptrType, structType irfacade.Type, generics []string) *Type {
	r.mu.Lock()
	if existing, ok := r.types[Handle{Name: name, Class: ClassResource}]; ok {
		r.mu.Unlock()
		return existing
	}
	r.mu.Unlock()
	res := &Resource{Name: name, Generics: generics, PtrType: ptrType, StrType: structType}
	t := &Type{Handle: Handle{Name: name, Class: ClassResource}, IR: ptrType, Resource: res}
	return r.register(t)
}

// GetOrCreateVectorType lazily builds the resource Vector<T> for the given
// element type, keyed by element type name so repeated requests for the
// same T return the same instance (spec §4.2, round-trip property in §8).
func (r *Registry) GetOrCreateVectorType(elem *Type) *Type {
	name := "Vector<" + elem.Name() + ">"

	r.mu.Lock()
	if existing, ok := r.vectors[elem.Name()]; ok {
		r.mu.Unlock()
		return existing
	}
	r.mu.Unlock()

	structType := r.ctx.StructNamed(name + "_struct")
	r.ctx.StructSetBody(structType, []irfacade.Type{
		r.ctx.Pointer(elem.IR),
		r.ctx.Usize(),
		r.ctx.Usize(),
	})
	ptrType := r.ctx.Pointer(structType)

	res := &Resource{Name: name, Generics: []string{"T"}, PtrType: ptrType, StrType: structType, Elem: elem}
	t := &Type{Handle: Handle{Name: name, Class: ClassResource}, IR: ptrType, Resource: res}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.vectors[elem.Name()]; ok {
		return existing
	}
	r.vectors[elem.Name()] = t
	r.types[t.Handle] = t
	return t
}

// ResolveType maps a TYPE_NAME / GENERIC_TYPE / UNIT_TYPE parser node to a
// Type (spec §4.2). Unknown primitive or resource names and non-Vector
// generics are reported on bag and nil is returned.
func (r *Registry) ResolveType(n *parsetree.Node, source string, bag *diag.Bag) *Type {
	switch n.Typ {
	case parsetree.UNIT_TYPE:
		return r.Unit()
	case parsetree.TYPE_NAME:
		name, _ := n.Data.(string)
		if t := r.resolveNamed(name); t != nil {
			return t
		}
		bag.Errorf(source, n.Line, n.Pos, "Unknown type: %s", name)
		return nil
	case parsetree.GENERIC_TYPE:
		name, _ := n.Data.(string)
		if name != "Vector" {
			bag.Errorf(source, n.Line, n.Pos, "Unknown generic type")
			return nil
		}
		if len(n.Children) != 1 {
			bag.Errorf(source, n.Line, n.Pos, "Unknown generic type")
			return nil
		}
		elem := r.ResolveType(n.Children[0], source, bag)
		if elem == nil {
			return nil
		}
		return r.GetOrCreateVectorType(elem)
	default:
		bag.Errorf(source, n.Line, n.Pos, "Unknown type: %s", n.Type())
		return nil
	}
}

// resolveNamed finds a primitive or already-registered resource type by bare
// name, trying every class a bare identifier could plausibly name.
func (r *Registry) resolveNamed(name string) *Type {
	for _, class := range []Class{ClassInt, ClassFloat, ClassBool, ClassChar, ClassResource} {
		if t, ok := r.Lookup(name, class); ok {
			return t
		}
	}
	return nil
}

// CreateConversion lowers a concrete value of type src to dst, emitting the
// cast instruction the table in spec §4.2 calls for. It never concretizes
// untyped values; callers run concretization first (see codegen's Value sum
// type) and only call this once both sides carry concrete IR.
func (r *Registry) CreateConversion(b *irfacade.Builder, v irfacade.Value, src, dst *Type) (irfacade.Value, error) {
	if src.Equal(dst) {
		return v, nil
	}

	switch {
	case src.IsInteger() && dst.IsInteger():
		if src.Bits == dst.Bits {
			return v, nil // Equal width: no-op reinterpretation.
		}
		if src.Bits < dst.Bits {
			if src.Signed {
				return b.SExt(v, dst.IR), nil
			}
			return b.ZExt(v, dst.IR), nil
		}
		return b.Trunc(v, dst.IR), nil

	case src.IsFloat() && dst.IsFloat():
		if src.Bits < dst.Bits {
			return b.FPExt(v, dst.IR), nil
		}
		if src.Bits > dst.Bits {
			return b.FPTrunc(v, dst.IR), nil
		}
		return v, nil

	case src.IsInteger() && dst.IsFloat():
		if src.Signed {
			return b.SIToFP(v, dst.IR), nil
		}
		return b.UIToFP(v, dst.IR), nil

	case src.IsFloat() && dst.IsInteger():
		if dst.Signed {
			return b.FPToSI(v, dst.IR), nil
		}
		return b.FPToUI(v, dst.IR), nil

	default:
		return irfacade.Value{}, fmt.Errorf("Cannot convert from %s to %s", src.Name(), dst.Name())
	}
}
