package irfacade

// runtime.go declares the external C runtime functions generated code
// links against (spec §6 "Generated calling conventions"): the Boehm-style
// GC entry points and the handful of libc functions the core emits calls
// to. Each declare-if-missing helper mirrors the teacher's lazy
// genPrintf/genAtoi/genAtof pattern in ir/llvm/transform.go, generalized
// into one table-driven declaration path instead of one function per
// extern.

// declareExtern returns the named external function, declaring it in m on
// first use.
func (m *Module) declareExtern(name string, ft Type) Value {
	if v, ok := m.GetFunction(name); ok {
		return v
	}
	return m.AddFunction(name, ft)
}

// GCInit returns the GC_init() function, declaring it if necessary. The
// code generator emits a call to it at the top of main before any other
// code (spec §5).
func (m *Module) GCInit() Value {
	return m.declareExtern("GC_init", m.ctx.Function(m.ctx.Void(), nil, false))
}

// GCMalloc returns the GC_malloc(size_t) -> i8* function used to allocate
// references that may themselves contain pointers.
func (m *Module) GCMalloc() Value {
	sizeT := m.ctx.Usize()
	i8ptr := m.ctx.Pointer(m.ctx.Int(8))
	return m.declareExtern("GC_malloc", m.ctx.Function(i8ptr, []Type{sizeT}, false))
}

// GCMallocAtomic returns the GC_malloc_atomic(size_t) -> i8* function used
// to allocate pointer-free buffers (byte arrays, string storage).
func (m *Module) GCMallocAtomic() Value {
	sizeT := m.ctx.Usize()
	i8ptr := m.ctx.Pointer(m.ctx.Int(8))
	return m.declareExtern("GC_malloc_atomic", m.ctx.Function(i8ptr, []Type{sizeT}, false))
}

// Memcpy, Memmove and Memset return the corresponding libc functions with
// the standard (dst, src, n) / (dst, val, n) signature over i8*.
func (m *Module) Memcpy() Value {
	i8ptr := m.ctx.Pointer(m.ctx.Int(8))
	sizeT := m.ctx.Usize()
	return m.declareExtern("memcpy", m.ctx.Function(i8ptr, []Type{i8ptr, i8ptr, sizeT}, false))
}

func (m *Module) Memmove() Value {
	i8ptr := m.ctx.Pointer(m.ctx.Int(8))
	sizeT := m.ctx.Usize()
	return m.declareExtern("memmove", m.ctx.Function(i8ptr, []Type{i8ptr, i8ptr, sizeT}, false))
}

func (m *Module) Memset() Value {
	i8ptr := m.ctx.Pointer(m.ctx.Int(8))
	sizeT := m.ctx.Usize()
	return m.declareExtern("memset", m.ctx.Function(i8ptr, []Type{i8ptr, m.ctx.Int(32), sizeT}, false))
}

// Printf returns the variadic printf(i8*, ...) -> i32 function.
func (m *Module) Printf() Value {
	i8ptr := m.ctx.Pointer(m.ctx.Int(8))
	return m.declareExtern("printf", m.ctx.Function(m.ctx.Int(32), []Type{i8ptr}, true))
}

// Snprintf returns the variadic snprintf(i8*, size_t, i8*, ...) -> i32
// function used by primitive to_string bodies.
func (m *Module) Snprintf() Value {
	i8ptr := m.ctx.Pointer(m.ctx.Int(8))
	sizeT := m.ctx.Usize()
	return m.declareExtern("snprintf", m.ctx.Function(m.ctx.Int(32), []Type{i8ptr, sizeT, i8ptr}, true))
}

// Call emits a call to fn with the given arguments.
func (b *Builder) Call(fn Value, args []Value) Value {
	return b.llb.CreateCall(fn, args, "")
}

// Abort returns the libc abort() function used by Vector's bounds checks
// (spec §4.7: "else abort").
func (m *Module) Abort() Value {
	return m.declareExtern("abort", m.ctx.Function(m.ctx.Void(), nil, false))
}

// Strlen returns the libc strlen(i8*) -> usize function, used to measure a
// compile-time string literal whose length was not already known (e.g.
// bool's "true"/"false" after the branch joins).
func (m *Module) Strlen() Value {
	i8ptr := m.ctx.Pointer(m.ctx.Int(8))
	return m.declareExtern("strlen", m.ctx.Function(m.ctx.Usize(), []Type{i8ptr}, false))
}
