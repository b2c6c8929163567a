package irfacade

// Alloca allocates stack storage for a value of type t.
func (b *Builder) Alloca(t Type, name string) Value {
	return b.llb.CreateAlloca(t, name)
}

// Load reads the value stored at ptr.
func (b *Builder) Load(ptr Value) Value {
	return b.llb.CreateLoad(ptr, "")
}

// Store writes src to the memory pointed to by dst.
func (b *Builder) Store(src, dst Value) {
	b.llb.CreateStore(src, dst)
}

// StructGEP computes a pointer to field index of the struct pointed to by
// ptr (spec §4.1 "struct-GEP(field-index)").
func (b *Builder) StructGEP(ptr Value, index int) Value {
	return b.llb.CreateStructGEP(ptr, index, "")
}

// InBoundsGEP computes a pointer offset from ptr by the given multi-index
// path, asserting the result stays within the bounds of the allocation
// (spec §4.1 "in-bounds GEP (multi-index)").
func (b *Builder) InBoundsGEP(ptr Value, indices []Value) Value {
	return b.llb.CreateInBoundsGEP(ptr, indices, "")
}
