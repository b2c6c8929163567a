package types

import "testing"

func TestPathStringMixesNamedAndIndexerSegments(t *testing.T) {
	i32 := &Type{Handle: Handle{Name: "i32", Class: ClassInt}}
	segs := []PathSegment{
		{Kind: SegmentNamed, Name: "items"},
		{Kind: SegmentIndexer, ParamType: i32},
	}
	if got := PathString(segs); got != "items/{i32}" {
		t.Fatalf("PathString = %q, want items/{i32}", got)
	}
}

func TestMangledNameFormatsIndexersWithBraces(t *testing.T) {
	i32 := &Type{Handle: Handle{Name: "i32", Class: ClassInt}}
	m := &Method{
		Name: "get",
		Path: []PathSegment{
			{Kind: SegmentNamed, Name: "items"},
			{Kind: SegmentIndexer, ParamType: i32},
		},
	}
	want := "Vector_items_{i32}_get"
	if got := m.MangledName("Vector"); got != want {
		t.Fatalf("MangledName = %q, want %q", got, want)
	}
}

func TestMangledNameWithNoPath(t *testing.T) {
	m := &Method{Name: "size"}
	if got := m.MangledName("Vector"); got != "Vector_size" {
		t.Fatalf("MangledName = %q, want Vector_size", got)
	}
}

func TestResourceFieldIndex(t *testing.T) {
	r := &Resource{Fields: []Field{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	if r.FieldIndex("b") != 1 {
		t.Fatalf("FieldIndex(b) = %d, want 1", r.FieldIndex("b"))
	}
	if r.FieldIndex("missing") != -1 {
		t.Fatalf("FieldIndex(missing) = %d, want -1", r.FieldIndex("missing"))
	}
}

func TestResourceFindMethodMatchesOnPathAndName(t *testing.T) {
	r := &Resource{Methods: []*Method{
		{Name: "get", Path: []PathSegment{{Kind: SegmentNamed, Name: "items"}}},
		{Name: "get", Path: nil},
	}}
	if got := r.FindMethod([]PathSegment{{Kind: SegmentNamed, Name: "items"}}, "get"); got == nil || got != r.Methods[0] {
		t.Fatalf("FindMethod did not return the path-qualified method")
	}
	if got := r.FindMethod(nil, "get"); got == nil || got != r.Methods[1] {
		t.Fatalf("FindMethod did not return the zero-path method")
	}
	if r.FindMethod(nil, "missing") != nil {
		t.Fatalf("FindMethod should return nil for an unknown method name")
	}
}

func TestResourceFindMethodByShape(t *testing.T) {
	i32 := &Type{Handle: Handle{Name: "i32", Class: ClassInt}}
	m := &Method{
		Name: "get",
		Path: []PathSegment{
			{Kind: SegmentNamed, Name: "items"},
			{Kind: SegmentIndexer, ParamType: i32},
		},
	}
	r := &Resource{Methods: []*Method{m}}

	got := r.FindMethodByShape("get", []bool{false, true}, []string{"items", ""})
	if got != m {
		t.Fatalf("FindMethodByShape did not match the indexer-shaped method")
	}

	if r.FindMethodByShape("get", []bool{false, false}, []string{"items", "x"}) != nil {
		t.Fatalf("FindMethodByShape must not match a differently-shaped path")
	}
}

func TestComputeInitVisibility(t *testing.T) {
	allGlobal := &Resource{Fields: []Field{{Visibility: Global}, {Visibility: Global}}}
	allGlobal.ComputeInitVisibility()
	if allGlobal.InitVisibility != Global {
		t.Fatalf("a resource with only GLOBAL fields must have GLOBAL init visibility")
	}

	oneFileprivate := &Resource{Fields: []Field{{Visibility: Global}, {Visibility: Fileprivate}}}
	oneFileprivate.ComputeInitVisibility()
	if oneFileprivate.InitVisibility != Fileprivate {
		t.Fatalf("a resource with any FILEPRIVATE field must have FILEPRIVATE init visibility")
	}
}
