package types

import (
	"strings"

	"resoc/src/irfacade"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Field is a resource field: its declared type, whether it is write-once
// (const) and its cross-file visibility. Field index equals insertion
// order, which is also the struct GEP index and the struct body order.
type Field struct {
	Name       string
	Type       *Type
	Const      bool
	Visibility Visibility
}

// SegmentKind distinguishes a plain named path segment from an indexer.
type SegmentKind int

const (
	SegmentNamed SegmentKind = iota
	SegmentIndexer
)

// PathSegment is one element of a method path (spec §3, "Path Segment").
// A named segment carries Name; an indexer additionally carries the
// parameter type consumed at the call site.
type PathSegment struct {
	Kind      SegmentKind
	Name      string // Segment name (SegmentNamed) or indexer parameter name (SegmentIndexer).
	ParamType *Type  // Indexer parameter type (SegmentIndexer only).
}

// String renders the segment the way method name mangling does:
// plain names verbatim, indexers as "{Type}".
func (s PathSegment) String() string {
	if s.Kind == SegmentIndexer {
		return "{" + s.ParamType.Name() + "}"
	}
	return s.Name
}

// PathString joins segments into the key used for method-name uniqueness
// within a path (spec §3, "Path Segment").
func PathString(segs []PathSegment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// CallBuilder synthesizes IR for a method or function whose behavior has no
// standalone IR function symbol (e.g. Vector.get): it is invoked inline at
// every call site with the already-concretized, already-lowered argument
// values (the receiver, when present, is args[0]). fn is the function
// currently being generated, which a multi-block builder (bounds checks,
// growth) needs in order to append its own basic blocks.
type CallBuilder func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error)

// Method is a resource method (spec §3, "Method"). Exactly one of IRFunc or
// Builder is set: native methods have a concrete IR function, synthesized
// methods (Vector's accessors) are expanded inline by Builder.
type Method struct {
	Name       string
	File       string // Declaring compilation unit; empty for synthesized built-ins (always GLOBAL).
	ReturnType *Type
	Params     []Param
	Path       []PathSegment
	Visibility Visibility
	IRFunc     irfacade.Value
	Builder    CallBuilder
}

// MangledName returns the LLVM symbol name "<Resource>_<path>_<method>" per
// spec §6, with indexer segments contributing "{Type}".
func (m *Method) MangledName(resourceName string) string {
	sb := strings.Builder{}
	sb.WriteString(resourceName)
	for _, s := range m.Path {
		sb.WriteRune('_')
		if s.Kind == SegmentIndexer {
			sb.WriteString("{" + s.ParamType.Name() + "}")
		} else {
			sb.WriteString(s.Name)
		}
	}
	sb.WriteRune('_')
	sb.WriteString(m.Name)
	return sb.String()
}

// Param is a single named, typed parameter of a function or method.
type Param struct {
	Name string
	Type *Type
}

// Function is a top-level function (spec §3, "Function").
type Function struct {
	Name       string
	ReturnType *Type
	Params     []Param
	Visibility Visibility
	File       string
	IRFunc     irfacade.Value
	Builder    CallBuilder
}

// Resource is a user-defined reference type (spec §3, "Resource"):
// heap-allocated, accessed only through a pointer to its backing struct.
type Resource struct {
	Name     string
	File     string // Declaring compilation unit, for FILEPRIVATE field/init checks. Empty for built-ins (Vector<T>), which are always GLOBAL.
	Generics []string // Generic parameter names, e.g. ["T"] for Vector<T>.
	PtrType  irfacade.Type
	StrType  irfacade.Type // Opaque until Pass B sets its body.
	Fields   []Field
	Methods  []*Method

	// Elem is the bound element type for a Vector<T> instantiation, nil for
	// an ordinary user-declared resource. Lets codegen recover T from a
	// resolved Vector<T> type when lowering Vector() (spec §4.7).
	Elem *Type

	// InitVisibility is GLOBAL unless any field is Fileprivate (spec §4.4.4).
	InitVisibility Visibility

	// BuiltinReady marks a built-in resource (currently only Vector<T>
	// instantiations) whose method table has already been populated, so
	// repeated GetOrCreateVectorType requests for the same element type
	// don't redeclare its methods.
	BuiltinReady bool
}

// FieldIndex returns the insertion-order index of the named field, or -1.
func (r *Resource) FieldIndex(name string) int {
	for i, f := range r.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// FindMethod returns the method matching (path, name), or nil.
func (r *Resource) FindMethod(path []PathSegment, name string) *Method {
	want := PathString(path)
	for _, m := range r.Methods {
		if m.Name == name && PathString(m.Path) == want {
			return m
		}
	}
	return nil
}

// FindMethodByShape resolves a call-site path whose indexer segments carry
// no declared type (the source only has an expression, e.g. "v/{i}") by
// matching named segments on name and indexer segments on position alone,
// then reading the indexer's declared type back off the matched method's
// Path (spec §4.5 "Method call": "indexer segments contribute argument
// values concretized to the indexer parameter type").
func (r *Resource) FindMethodByShape(name string, isIndexer []bool, names []string) *Method {
	for _, m := range r.Methods {
		if m.Name != name || len(m.Path) != len(isIndexer) {
			continue
		}
		match := true
		for i, seg := range m.Path {
			if isIndexer[i] {
				if seg.Kind != SegmentIndexer {
					match = false
					break
				}
				continue
			}
			if seg.Kind != SegmentNamed || seg.Name != names[i] {
				match = false
				break
			}
		}
		if match {
			return m
		}
	}
	return nil
}

// ComputeInitVisibility sets InitVisibility per spec §4.4.4: FILEPRIVATE iff
// any field is FILEPRIVATE, else GLOBAL.
func (r *Resource) ComputeInitVisibility() {
	r.InitVisibility = Global
	for _, f := range r.Fields {
		if f.Visibility == Fileprivate {
			r.InitVisibility = Fileprivate
			return
		}
	}
}
