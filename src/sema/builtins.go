// builtins.go registers the built-in resources and functions spec §4.7
// names: Vector<T>'s seven methods and constructor, primitive to_string,
// and global print/println. Every built-in method is "synthesized": it has
// no standalone IR function, only a CallBuilder closure emitting its body
// inline at each call site (spec §9, "Method dispatch"). Grounded on the
// teacher's genPrint/genStore inline-emission style in
// ir/llvm/transform.go, generalized from one hardcoded PRINT statement to a
// table of reusable closures.
package sema

import (
	"fmt"

	"resoc/src/irfacade"
	"resoc/src/types"
)

// ---------------------------------
// ----- Vector<T> registration -----
// ---------------------------------

// vectorInitialCapacity is the capacity Vector() allocates on construction
// when a non-zero initial capacity is chosen (spec §9 leaves this
// unspecified: "0 or any small constant"). 4 avoids a reallocation on the
// first four adds, the common case of short-lived local vectors.
const vectorInitialCapacity = 4

// EnsureVectorType returns the registered Vector<T> type for elem, building
// its struct (via the type registry) and populating its method table (here)
// the first time elem is requested. Repeated requests for the same elem are
// idempotent and return the same *types.Type (spec §8, "get_or_create_
// vector_type returns the same type instance for equal T").
func EnsureVectorType(reg *types.Registry, ctx *irfacade.Context, mod *irfacade.Module) func(elem *types.Type) *types.Type {
	return func(elem *types.Type) *types.Type {
		vt := reg.GetOrCreateVectorType(elem)
		if !vt.Resource.BuiltinReady {
			registerVectorMethods(vt.Resource, elem, reg, ctx, mod)
			vt.Resource.BuiltinReady = true
		}
		return vt
	}
}

func registerVectorMethods(res *types.Resource, elem *types.Type, reg *types.Registry, ctx *irfacade.Context, mod *irfacade.Module) {
	usize := reg.Int("usize")
	unit := reg.Unit()
	indexSeg := types.PathSegment{Kind: types.SegmentIndexer, Name: "index", ParamType: usize}
	sizeSeg := types.PathSegment{Kind: types.SegmentNamed, Name: "size"}
	capacitySeg := types.PathSegment{Kind: types.SegmentNamed, Name: "capacity"}

	res.Methods = append(res.Methods,
		&types.Method{Name: "get", ReturnType: elem, Path: []types.PathSegment{indexSeg}, Visibility: types.Global,
			Builder: vectorGet(ctx, mod, elem)},
		&types.Method{Name: "set", ReturnType: unit, Params: []types.Param{{Name: "value", Type: elem}}, Path: []types.PathSegment{indexSeg}, Visibility: types.Global,
			Builder: vectorSet(ctx, mod, elem)},
		&types.Method{Name: "add", ReturnType: unit, Params: []types.Param{{Name: "element", Type: elem}}, Visibility: types.Global,
			Builder: vectorAdd(ctx, mod, elem)},
		&types.Method{Name: "insert", ReturnType: unit, Params: []types.Param{{Name: "index", Type: usize}, {Name: "element", Type: elem}}, Visibility: types.Global,
			Builder: vectorInsert(ctx, mod, elem)},
		&types.Method{Name: "remove", ReturnType: elem, Params: []types.Param{{Name: "index", Type: usize}}, Visibility: types.Global,
			Builder: vectorRemove(ctx, mod, elem)},
		&types.Method{Name: "get", ReturnType: usize, Path: []types.PathSegment{sizeSeg}, Visibility: types.Global,
			Builder: vectorFieldGetter(1)},
		&types.Method{Name: "get", ReturnType: usize, Path: []types.PathSegment{capacitySeg}, Visibility: types.Global,
			Builder: vectorFieldGetter(2)},
	)
}

// VectorConstructor returns the call-builder for the niladic Vector()
// function: a GC_malloc'd struct with size 0, capacity
// vectorInitialCapacity, and an elements buffer sized for that capacity (or
// a null elements pointer if the chosen initial capacity is 0).
func VectorConstructor(ctx *irfacade.Context, mod *irfacade.Module, vecType, elem *types.Type) types.CallBuilder {
	return func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error) {
		structType := vecType.Resource.StrType
		raw := b.Call(mod.GCMalloc(), []irfacade.Value{b.SizeOf(structType)})
		this := b.BitCast(raw, vecType.IR)

		elemsField := b.StructGEP(this, 0)
		sizeField := b.StructGEP(this, 1)
		capField := b.StructGEP(this, 2)

		usize := ctx.Usize()
		capVal := ctx.ConstInt(usize, vectorInitialCapacity, false)
		b.Store(capVal, capField)
		b.Store(ctx.ConstInt(usize, 0, false), sizeField)

		if vectorInitialCapacity == 0 {
			b.Store(ctx.ConstNullPointer(ctx.Pointer(elem.IR)), elemsField)
		} else {
			n := ctx.ConstInt(usize, vectorInitialCapacity, false)
			bufRaw := b.Call(mod.GCMalloc(), []irfacade.Value{b.Mul(n, b.SizeOf(elem.IR))})
			buf := b.BitCast(bufRaw, ctx.Pointer(elem.IR))
			b.Store(buf, elemsField)
		}
		return this, nil
	}
}

// vectorFieldGetter returns a CallBuilder for a bare struct-field read
// (Vector/size.get, Vector/capacity.get): load field index and return it.
func vectorFieldGetter(index int) types.CallBuilder {
	return func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error) {
		this := args[0]
		return b.Load(b.StructGEP(this, index)), nil
	}
}

// boundsCheck emits "if index >= size: abort()" inline, leaving the builder
// positioned at the continuation block reached only when the index is in
// range. fn is the enclosing function the new blocks are appended to.
func boundsCheck(ctx *irfacade.Context, mod *irfacade.Module, b *irfacade.Builder, fn, this, index irfacade.Value) {
	size := b.Load(b.StructGEP(this, 1))
	oob := b.ICmp(irfacade.IntUGE, index, size)

	abortBB := ctx.AddBasicBlock(fn, "vector_bounds_fail")
	okBB := ctx.AddBasicBlock(fn, "vector_bounds_ok")
	b.CondBr(oob, abortBB, okBB)

	b.PositionAtEnd(abortBB)
	b.Call(mod.Abort(), nil)
	b.Unreachable()

	b.PositionAtEnd(okBB)
}

func vectorGet(ctx *irfacade.Context, mod *irfacade.Module, elem *types.Type) types.CallBuilder {
	return func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error) {
		this, index := args[0], args[1]
		boundsCheck(ctx, mod, b, fn, this, index)
		elements := b.Load(b.StructGEP(this, 0))
		slot := b.InBoundsGEP(elements, []irfacade.Value{index})
		return b.Load(slot), nil
	}
}

func vectorSet(ctx *irfacade.Context, mod *irfacade.Module, elem *types.Type) types.CallBuilder {
	return func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error) {
		this, index, value := args[0], args[1], args[2]
		boundsCheck(ctx, mod, b, fn, this, index)
		elements := b.Load(b.StructGEP(this, 0))
		slot := b.InBoundsGEP(elements, []irfacade.Value{index})
		b.Store(value, slot)
		return ctx.ConstZero(ctx.Unit()), nil
	}
}

// growIfFull doubles capacity when size == capacity (spec §4.7: "initial
// growth 1 or 4"), branching around the reallocation entirely when there is
// still slack so the common case costs one load and one compare, not a
// GC_malloc and memmove on every add. Returns the elements pointer and the
// loaded size, both valid at the builder's position when growIfFull
// returns (the join block).
func growIfFull(ctx *irfacade.Context, mod *irfacade.Module, b *irfacade.Builder, fn, this irfacade.Value, elem *types.Type) (elements, size irfacade.Value) {
	usize := ctx.Usize()
	sizeField := b.StructGEP(this, 1)
	capField := b.StructGEP(this, 2)
	elemsField := b.StructGEP(this, 0)

	size = b.Load(sizeField)
	capVal := b.Load(capField)
	oldElements := b.Load(elemsField)
	full := b.ICmp(irfacade.IntUGE, size, capVal)
	entryBlockEnd := b.CurrentBlock()

	growBB := ctx.AddBasicBlock(fn, "vector_grow")
	joinBB := ctx.AddBasicBlock(fn, "vector_grow_join")
	b.CondBr(full, growBB, joinBB)

	b.PositionAtEnd(growBB)
	four := ctx.ConstInt(usize, 4, false)
	two := ctx.ConstInt(usize, 2, false)
	newCap := b.Select(b.ICmp(irfacade.IntEQ, capVal, ctx.ConstInt(usize, 0, false)), four, b.Mul(capVal, two))
	elemSize := b.SizeOf(elem.IR)
	newRaw := b.Call(mod.GCMalloc(), []irfacade.Value{b.Mul(newCap, elemSize)})
	newElements := b.BitCast(newRaw, ctx.Pointer(elem.IR))
	b.Call(mod.Memmove(), []irfacade.Value{
		b.BitCast(newElements, ctx.Pointer(ctx.Int(8))),
		b.BitCast(oldElements, ctx.Pointer(ctx.Int(8))),
		b.Mul(size, elemSize),
	})
	b.Store(newElements, elemsField)
	b.Store(newCap, capField)
	b.Br(joinBB)
	growBlockEnd := b.CurrentBlock()

	b.PositionAtEnd(joinBB)
	elements = b.Phi(ctx.Pointer(elem.IR))
	irfacade.AddIncoming(elements, []irfacade.Value{newElements, oldElements}, []irfacade.BasicBlock{growBlockEnd, entryBlockEnd})
	return elements, size
}

func vectorAdd(ctx *irfacade.Context, mod *irfacade.Module, elem *types.Type) types.CallBuilder {
	return func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error) {
		this, value := args[0], args[1]
		elements, size := growIfFull(ctx, mod, b, fn, this, elem)

		slot := b.InBoundsGEP(elements, []irfacade.Value{size})
		b.Store(value, slot)

		newSize := b.Add(size, ctx.ConstInt(ctx.Usize(), 1, false))
		b.Store(newSize, b.StructGEP(this, 1))
		return ctx.ConstZero(ctx.Unit()), nil
	}
}

func vectorInsert(ctx *irfacade.Context, mod *irfacade.Module, elem *types.Type) types.CallBuilder {
	return func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error) {
		this, index, value := args[0], args[1], args[2]
		elements, size := growIfFull(ctx, mod, b, fn, this, elem)

		elemSize := b.SizeOf(elem.IR)
		tailCount := b.Sub(size, index)
		tailBytes := b.Mul(tailCount, elemSize)

		src := b.InBoundsGEP(elements, []irfacade.Value{index})
		dstIdx := b.Add(index, ctx.ConstInt(ctx.Usize(), 1, false))
		dst := b.InBoundsGEP(elements, []irfacade.Value{dstIdx})
		b.Call(mod.Memmove(), []irfacade.Value{
			b.BitCast(dst, ctx.Pointer(ctx.Int(8))),
			b.BitCast(src, ctx.Pointer(ctx.Int(8))),
			tailBytes,
		})

		slot := b.InBoundsGEP(elements, []irfacade.Value{index})
		b.Store(value, slot)

		newSize := b.Add(size, ctx.ConstInt(ctx.Usize(), 1, false))
		b.Store(newSize, b.StructGEP(this, 1))
		return ctx.ConstZero(ctx.Unit()), nil
	}
}

func vectorRemove(ctx *irfacade.Context, mod *irfacade.Module, elem *types.Type) types.CallBuilder {
	return func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error) {
		this, index := args[0], args[1]
		boundsCheck(ctx, mod, b, fn, this, index)

		elements := b.Load(b.StructGEP(this, 0))
		sizeField := b.StructGEP(this, 1)
		size := b.Load(sizeField)

		removedSlot := b.InBoundsGEP(elements, []irfacade.Value{index})
		removed := b.Load(removedSlot)

		elemSize := b.SizeOf(elem.IR)
		nextIdx := b.Add(index, ctx.ConstInt(ctx.Usize(), 1, false))
		tailCount := b.Sub(size, nextIdx)
		tailBytes := b.Mul(tailCount, elemSize)

		src := b.InBoundsGEP(elements, []irfacade.Value{nextIdx})
		b.Call(mod.Memmove(), []irfacade.Value{
			b.BitCast(removedSlot, ctx.Pointer(ctx.Int(8))),
			b.BitCast(src, ctx.Pointer(ctx.Int(8))),
			tailBytes,
		})

		newSize := b.Sub(size, ctx.ConstInt(ctx.Usize(), 1, false))
		b.Store(newSize, sizeField)
		return removed, nil
	}
}

// -------------------------------------
// ----- Primitive to_string / I/O -----
// -------------------------------------

// toStringSpec is one row of the formatting table in spec §4.7.
type toStringSpec struct {
	format string
	buffer int
	// promote names the wider type small types are promoted to before
	// formatting ("" if the type needs no promotion).
	promote string
}

var toStringTable = map[string]toStringSpec{
	"i8": {"%d", 5, "i32"}, "i16": {"%d", 7, "i32"}, "i32": {"%d", 12, ""},
	"i64": {"%lld", 21, ""}, "isize": {"%lld", 21, ""},
	"u8": {"%u", 4, "u32"}, "u16": {"%u", 6, "u32"}, "u32": {"%u", 11, ""},
	"u64": {"%llu", 21, ""}, "usize": {"%llu", 21, ""},
	"f32": {"%.6f", 48, "f64"}, "f64": {"%.15f", 64, ""},
	"char": {"%c", 2, ""},
	"bool": {"%s", 6, ""},
}

// RegisterPrimitiveToString attaches a to_string() -> String method to
// every primitive type in reg that spec §4.7's table names.
func RegisterPrimitiveToString(reg *types.Registry, ctx *irfacade.Context, mod *irfacade.Module, stringType func() *types.Type) {
	for name, spec := range toStringTable {
		t, ok := reg.Lookup(name, classForPrimitiveName(name))
		if !ok {
			continue
		}
		t.Methods = append(t.Methods, &types.Method{
			Name:       "to_string",
			ReturnType: stringType(),
			Builder:    toStringBuilder(reg, ctx, mod, t, spec, stringType),
		})
	}
	if unit, ok := reg.Lookup("()", types.ClassUnit); ok {
		unit.Methods = append(unit.Methods, &types.Method{
			Name:       "to_string",
			ReturnType: stringType(),
			Builder:    unitToStringBuilder(ctx, mod, stringType),
		})
	}
}

func classForPrimitiveName(name string) types.Class {
	switch name {
	case "f32", "f64":
		return types.ClassFloat
	case "bool":
		return types.ClassBool
	case "char":
		return types.ClassChar
	default:
		return types.ClassInt
	}
}

// toStringBuilder returns the call-builder for a numeric or char or bool
// to_string(): promote if required, snprintf into a fresh buffer, wrap the
// buffer in a String (spec §4.7).
func toStringBuilder(reg *types.Registry, ctx *irfacade.Context, mod *irfacade.Module, t *types.Type, spec toStringSpec, stringType func() *types.Type) types.CallBuilder {
	return func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error) {
		this := args[0]

		v := this
		if spec.promote != "" {
			promoted, ok := reg.Lookup(spec.promote, classForPrimitiveName(spec.promote))
			if !ok {
				return irfacade.Value{}, fmt.Errorf("internal: unknown promotion target %s", spec.promote)
			}
			var err error
			v, err = reg.CreateConversion(b, this, t, promoted)
			if err != nil {
				return irfacade.Value{}, err
			}
		}
		if t.Handle.Class == types.ClassBool {
			// bool prints "true"/"false" via a two-block branch and phi
			// (spec §4.7), not snprintf's %s (there is no C string yet to
			// pass it).
			return boolToString(ctx, mod, b, fn, this, stringType)
		}

		bufLen := spec.buffer
		buf := b.Call(mod.GCMallocAtomic(), []irfacade.Value{ctx.ConstInt(ctx.Usize(), uint64(bufLen), false)})
		buf = b.BitCast(buf, ctx.Pointer(ctx.Int(8)))
		fmtStr := mod.GlobalStringPtr(b, spec.format, "fmt")
		n := b.Call(mod.Snprintf(), []irfacade.Value{buf, ctx.ConstInt(ctx.Usize(), uint64(bufLen), false), fmtStr, v})

		return wrapBuffer(ctx, mod, b, buf, n, bufLen, stringType), nil
	}
}

func unitToStringBuilder(ctx *irfacade.Context, mod *irfacade.Module, stringType func() *types.Type) types.CallBuilder {
	return func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error) {
		lit := "()"
		ptr := mod.GlobalStringPtr(b, lit, "unit_str")
		return wrapLiteral(ctx, mod, b, ptr, len(lit), stringType), nil
	}
}

func boolToString(ctx *irfacade.Context, mod *irfacade.Module, b *irfacade.Builder, fn, cond irfacade.Value, stringType func() *types.Type) (irfacade.Value, error) {
	trueBB := ctx.AddBasicBlock(fn, "bool_true")
	falseBB := ctx.AddBasicBlock(fn, "bool_false")
	joinBB := ctx.AddBasicBlock(fn, "bool_join")
	b.CondBr(cond, trueBB, falseBB)

	b.PositionAtEnd(trueBB)
	trueStr := mod.GlobalStringPtr(b, "true", "bool_true_str")
	b.Br(joinBB)
	trueBlockEnd := b.CurrentBlock()

	b.PositionAtEnd(falseBB)
	falseStr := mod.GlobalStringPtr(b, "false", "bool_false_str")
	b.Br(joinBB)
	falseBlockEnd := b.CurrentBlock()

	b.PositionAtEnd(joinBB)
	phi := b.Phi(ctx.Pointer(ctx.Int(8)))
	irfacade.AddIncoming(phi, []irfacade.Value{trueStr, falseStr}, []irfacade.BasicBlock{trueBlockEnd, falseBlockEnd})

	return wrapLiteralValue(ctx, mod, b, phi, stringType), nil
}

// wrapBuffer constructs a String resource (a Vector<u8> pointing at buf)
// whose size is the snprintf-reported length plus one for the NUL
// terminator (spec §9: the deliberately preserved off-by-one) and whose
// capacity is the allocated buffer size.
func wrapBuffer(ctx *irfacade.Context, mod *irfacade.Module, b *irfacade.Builder, buf, length irfacade.Value, bufLen int, stringType func() *types.Type) irfacade.Value {
	one := ctx.ConstInt(ctx.Usize(), 1, false)
	size := b.Add(b.SExtOrSelf(length, ctx.Usize()), one)
	cap := ctx.ConstInt(ctx.Usize(), uint64(bufLen), false)
	return buildString(ctx, mod, b, buf, size, cap, stringType)
}

// wrapLiteral constructs a String around a global string constant whose
// length is known at compile time (used for unit's literal "()").
func wrapLiteral(ctx *irfacade.Context, mod *irfacade.Module, b *irfacade.Builder, ptr irfacade.Value, length int, stringType func() *types.Type) irfacade.Value {
	size := ctx.ConstInt(ctx.Usize(), uint64(length+1), false)
	cap := size
	return buildString(ctx, mod, b, ptr, size, cap, stringType)
}

// wrapLiteralValue is wrapLiteral's counterpart when the length is only
// known at runtime (a phi over two literals of different length, as in
// bool's "true"/"false").
func wrapLiteralValue(ctx *irfacade.Context, mod *irfacade.Module, b *irfacade.Builder, ptr irfacade.Value, stringType func() *types.Type) irfacade.Value {
	n := b.Call(mod.Strlen(), []irfacade.Value{ptr})
	size := b.Add(n, ctx.ConstInt(ctx.Usize(), 1, false))
	return buildString(ctx, mod, b, ptr, size, size, stringType)
}

// buildString allocates a String struct (itself a Vector<u8> by another
// name) and stores elements/size/capacity, matching the layout
// get_or_create_vector_type builds for Vector<u8>.
func buildString(ctx *irfacade.Context, mod *irfacade.Module, b *irfacade.Builder, elements, size, capacity irfacade.Value, stringType func() *types.Type) irfacade.Value {
	st := stringType()
	raw := b.Call(mod.GCMalloc(), []irfacade.Value{b.SizeOf(st.Resource.StrType)})
	this := b.BitCast(raw, st.IR)
	b.Store(b.BitCast(elements, ctx.Pointer(ctx.Int(8))), b.StructGEP(this, 0))
	b.Store(size, b.StructGEP(this, 1))
	b.Store(capacity, b.StructGEP(this, 2))
	return this
}

// RegisterPrintFunctions registers global print(text: String) -> () and
// println(text: String) -> () (spec §4.7), both call-builders over printf.
func RegisterPrintFunctions(ctx *irfacade.Context, mod *irfacade.Module, reg *types.Registry, stringType func() *types.Type) (print, println *types.Function) {
	unit := reg.Unit()
	str := stringType()
	print = &types.Function{
		Name: "print", ReturnType: unit, Params: []types.Param{{Name: "text", Type: str}}, Visibility: types.Global,
		Builder: printBuilder(ctx, mod, "%s"),
	}
	println = &types.Function{
		Name: "println", ReturnType: unit, Params: []types.Param{{Name: "text", Type: str}}, Visibility: types.Global,
		Builder: printBuilder(ctx, mod, "%s\n"),
	}
	return
}

func printBuilder(ctx *irfacade.Context, mod *irfacade.Module, format string) types.CallBuilder {
	return func(b *irfacade.Builder, fn irfacade.Value, args []irfacade.Value) (irfacade.Value, error) {
		text := args[0]
		bytes := b.Load(b.StructGEP(text, 0))
		fmtStr := mod.GlobalStringPtr(b, format, "print_fmt")
		b.Call(mod.Printf(), []irfacade.Value{fmtStr, bytes})
		return ctx.ConstZero(ctx.Unit()), nil
	}
}
