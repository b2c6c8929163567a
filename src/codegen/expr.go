package codegen

import (
	"fmt"
	"math/big"

	"resoc/src/irfacade"
	"resoc/src/parsetree"
	"resoc/src/sema"
	"resoc/src/types"
)

// signedPred, unsignedPred and floatPred map each comparison operator to
// its signed-integer, unsigned-integer and float predicate (spec §4.5
// "Comparisons").
var signedPred = map[string]irfacade.IntPredicate{
	"<": irfacade.IntSLT, ">": irfacade.IntSGT, "<=": irfacade.IntSLE, ">=": irfacade.IntSGE,
	"==": irfacade.IntEQ, "!=": irfacade.IntNE,
}
var unsignedPred = map[string]irfacade.IntPredicate{
	"<": irfacade.IntULT, ">": irfacade.IntUGT, "<=": irfacade.IntULE, ">=": irfacade.IntUGE,
	"==": irfacade.IntEQ, "!=": irfacade.IntNE,
}
var floatPred = map[string]irfacade.FloatPredicate{
	"<": irfacade.FloatOLT, ">": irfacade.FloatOGT, "<=": irfacade.FloatOLE, ">=": irfacade.FloatOGE,
	"==": irfacade.FloatOEQ, "!=": irfacade.FloatONE,
}

func isComparison(op string) bool {
	switch op {
	case "<", ">", "<=", ">=", "==", "!=":
		return true
	default:
		return false
	}
}

// genExpr lowers one expression node to a Value (spec §4.5). Every case
// either returns a concrete Value immediately or, for the two polymorphic
// literal forms and the ternary, a deferred untyped Value.
func (g *Generator) genExpr(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	switch n.Typ {
	case parsetree.INTEGER_LITERAL:
		return IntLiteral(n.Data.(*big.Int), g.reg.Int("i32")), nil

	case parsetree.FLOAT_LITERAL:
		f, _ := g.reg.Lookup("f64", types.ClassFloat)
		return FloatLiteral(n.Data.(float64), f), nil

	case parsetree.BOOL_LITERAL:
		return Concrete(g.ctx.ConstBool(n.Data.(bool)), g.reg.Bool()), nil

	case parsetree.CHAR_LITERAL:
		return Concrete(g.ctx.ConstInt(g.reg.Char().IR, uint64(n.Data.(rune)), false), g.reg.Char()), nil

	case parsetree.STRING_LITERAL:
		return g.genStringLiteral(n.Data.(string), b)

	case parsetree.IDENTIFIER:
		return g.genIdentifier(n, b)

	case parsetree.THIS_EXPR:
		if g.thisVal.IsNil() {
			return Value{}, fmt.Errorf("'this' used outside a method body")
		}
		return Concrete(g.thisVal, g.thisType), nil

	case parsetree.UNARY_EXPR:
		return g.genUnary(n, b, fn)

	case parsetree.BINARY_EXPR:
		return g.genBinary(n, b, fn)

	case parsetree.LOGICAL_EXPR:
		return g.genLogical(n, b, fn)

	case parsetree.TERNARY_EXPR:
		return g.genTernary(n, b, fn)

	case parsetree.CAST_EXPR:
		return g.genCast(n, b, fn)

	case parsetree.CALL_EXPR:
		return g.genCall(n, b, fn)

	case parsetree.METHOD_CALL_EXPR:
		return g.genMethodCall(n, b, fn)

	case parsetree.FIELD_ACCESS_EXPR:
		return g.genFieldAccess(n, b, fn)

	case parsetree.RESOURCE_INIT_EXPR:
		return g.genResourceInit(n, b, fn)

	default:
		return Value{}, fmt.Errorf("internal: unhandled expression node %s", n.Type())
	}
}

// genExprExpecting lowers n with expect recorded as the target type already
// known for it from its surrounding context (a var/const's declared type, a
// return statement's function return type, a resource field's declared
// type, an assigned variable's type). Vector()'s niladic constructor (spec
// §4.7) carries no type argument of its own; genCall reads expectType to
// bind its generic T.
func (g *Generator) genExprExpecting(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value, expect *types.Type) (Value, error) {
	prev := g.expectType
	g.expectType = expect
	defer func() { g.expectType = prev }()
	return g.genExpr(n, b, fn)
}

func (g *Generator) genIdentifier(n *parsetree.Node, b *irfacade.Builder) (Value, error) {
	name := n.Data.(string)
	v := g.sym.FindReadableVariable(name)
	if v == nil {
		if g.sym.FindSymbol(name) != nil {
			return Value{}, fmt.Errorf("variable %q used before initialization", name)
		}
		return Value{}, fmt.Errorf("undefined identifier: %s", name)
	}
	return Concrete(b.Load(v.Storage), v.Type), nil
}

// genStringLiteral builds a String around a deduplicated global constant
// holding s's UTF-8 bytes plus a NUL terminator (spec §4.5).
func (g *Generator) genStringLiteral(s string, b *irfacade.Builder) (Value, error) {
	ptr := g.mod.GlobalStringPtr(b, s, "str")
	usize := g.ctx.Usize()
	size := g.ctx.ConstInt(usize, uint64(len(s)+1), false)
	st := g.stringType()
	raw := b.Call(g.mod.GCMalloc(), []irfacade.Value{b.SizeOf(st.Resource.StrType)})
	this := b.BitCast(raw, st.IR)
	b.Store(ptr, b.StructGEP(this, 0))
	b.Store(size, b.StructGEP(this, 1))
	b.Store(size, b.StructGEP(this, 2))
	return Concrete(this, st), nil
}

// genUnary lowers +x/-x/~x/not x (spec §4.5 "Unary").
func (g *Generator) genUnary(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	data := n.Data.(parsetree.UnaryData)
	operand, err := g.genExpr(n.Children[0], b, fn)
	if err != nil {
		return Value{}, err
	}

	switch data.Op {
	case "+":
		return operand, nil
	case "-":
		return g.genNegate(operand, b, fn)
	case "~":
		ir, typ, err := operand.ConcretizeDefault(g, b, fn)
		if err != nil {
			return Value{}, err
		}
		if !typ.IsInteger() {
			return Value{}, fmt.Errorf("operator ~ not defined for %s", typ.Name())
		}
		return Concrete(b.Not(ir), typ), nil
	case "not":
		ir, err := operand.Concretize(g, b, fn, g.reg.Bool())
		if err != nil {
			return Value{}, err
		}
		return Concrete(b.Not(ir), g.reg.Bool()), nil
	default:
		return Value{}, fmt.Errorf("internal: unknown unary operator %q", data.Op)
	}
}

func (g *Generator) genNegate(operand Value, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	switch operand.Kind {
	case KindIntLiteral:
		return IntLiteral(new(big.Int).Neg(operand.IntLit), operand.Type), nil
	case KindFloatLiteral:
		return FloatLiteral(-operand.FloatLit, operand.Type), nil
	default:
		ir, typ, err := operand.ConcretizeDefault(g, b, fn)
		if err != nil {
			return Value{}, err
		}
		if typ.IsFloat() {
			return Concrete(b.FNeg(ir), typ), nil
		}
		if !typ.IsInteger() {
			return Value{}, fmt.Errorf("unary - not defined for %s", typ.Name())
		}
		return Concrete(b.Neg(ir), typ), nil
	}
}

// operandType resolves the shared concrete type two binary operands must
// share before an arithmetic/bitwise/shift/comparison op is emitted (spec
// §4.5: "the untyped side... is concretized to the concrete side's type").
func operandType(g *Generator, lhs, rhs Value) (*types.Type, error) {
	if !lhs.IsUntyped() && !rhs.IsUntyped() {
		if !lhs.Type.Equal(rhs.Type) {
			return nil, fmt.Errorf("operator not defined for (%s, %s)", lhs.Type.Name(), rhs.Type.Name())
		}
		return lhs.Type, nil
	}
	if !lhs.IsUntyped() {
		return lhs.Type, nil
	}
	if !rhs.IsUntyped() {
		return rhs.Type, nil
	}
	return commonDefault(g.reg, lhs.DefaultType(g.reg), rhs.DefaultType(g.reg)), nil
}

// genBinary lowers the numeric binary operators (spec §4.5 "Binary numeric
// ops"): arithmetic, bitwise, and shifts. Comparisons are handled
// separately since their result is always bool, independent of any
// imposed target type.
func (g *Generator) genBinary(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	data := n.Data.(parsetree.BinaryData)
	lhs, err := g.genExpr(n.Children[0], b, fn)
	if err != nil {
		return Value{}, err
	}
	rhs, err := g.genExpr(n.Children[1], b, fn)
	if err != nil {
		return Value{}, err
	}
	return g.lowerBinary(b, fn, data.Op, lhs, rhs)
}

func (g *Generator) lowerBinary(b *irfacade.Builder, fn irfacade.Value, op string, lhs, rhs Value) (Value, error) {
	if isDivLike(op) && rhs.Kind == KindIntLiteral && rhs.IntLit.Sign() == 0 {
		return Value{}, fmt.Errorf("cannot %s by a compile-time-constant zero", opName(op))
	}

	if isComparison(op) {
		t, err := operandType(g, lhs, rhs)
		if err != nil {
			return Value{}, err
		}
		l, err := lhs.Concretize(g, b, fn, t)
		if err != nil {
			return Value{}, err
		}
		r, err := rhs.Concretize(g, b, fn, t)
		if err != nil {
			return Value{}, err
		}
		return Concrete(g.emitComparison(b, op, l, r, t), g.reg.Bool()), nil
	}

	if lhs.IsUntyped() && rhs.IsUntyped() {
		return Value{Kind: KindBinary, Op: op, Lhs: &lhs, Rhs: &rhs, Type: commonDefault(g.reg, lhs.DefaultType(g.reg), rhs.DefaultType(g.reg))}, nil
	}

	t, err := operandType(g, lhs, rhs)
	if err != nil {
		return Value{}, err
	}
	l, err := lhs.Concretize(g, b, fn, t)
	if err != nil {
		return Value{}, err
	}
	r, err := rhs.Concretize(g, b, fn, t)
	if err != nil {
		return Value{}, err
	}
	ir, err := g.emitBinaryOp(b, op, l, r, t)
	if err != nil {
		return Value{}, err
	}
	return Concrete(ir, t), nil
}

func isDivLike(op string) bool {
	return op == "div" || op == "rem" || op == "mod"
}

func opName(op string) string {
	if op == "div" {
		return "divide"
	}
	return "take the remainder"
}

// emitBinaryOp emits the instruction for an arithmetic/bitwise/shift op
// between two concrete values of operand type t (spec §4.5).
func (g *Generator) emitBinaryOp(b *irfacade.Builder, op string, l, r irfacade.Value, t *types.Type) (irfacade.Value, error) {
	if t.IsFloat() {
		switch op {
		case "+":
			return b.FAdd(l, r), nil
		case "-":
			return b.FSub(l, r), nil
		case "*":
			return b.FMul(l, r), nil
		case "div":
			return b.FDiv(l, r), nil
		case "rem":
			return b.FRem(l, r), nil
		default:
			return irfacade.Value{}, fmt.Errorf("operator %s not defined for %s", op, t.Name())
		}
	}
	if !t.IsInteger() {
		return irfacade.Value{}, fmt.Errorf("operator %s not defined for %s", op, t.Name())
	}
	signed := t.Signed
	switch op {
	case "+":
		return b.Add(l, r), nil
	case "-":
		return b.Sub(l, r), nil
	case "*":
		return b.Mul(l, r), nil
	case "div":
		if signed {
			return b.SDiv(l, r), nil
		}
		return b.UDiv(l, r), nil
	case "rem":
		if signed {
			return b.SRem(l, r), nil
		}
		return b.URem(l, r), nil
	case "mod":
		return g.emitMathMod(b, l, r, signed), nil
	case "&":
		return b.And(l, r), nil
	case "|":
		return b.Or(l, r), nil
	case "^":
		return b.Xor(l, r), nil
	case "<<":
		return b.Shl(l, r), nil
	case ">>":
		if signed {
			return b.AShr(l, r), nil
		}
		return b.LShr(l, r), nil
	default:
		return irfacade.Value{}, fmt.Errorf("operator %s not defined for %s", op, t.Name())
	}
}

// emitMathMod computes the mathematical modulo "(a rem b + b) rem b" (spec
// §4.5), which unlike a bare rem is always non-negative for a positive
// modulus.
func (g *Generator) emitMathMod(b *irfacade.Builder, l, r irfacade.Value, signed bool) irfacade.Value {
	var rem irfacade.Value
	if signed {
		rem = b.SRem(l, r)
	} else {
		rem = b.URem(l, r)
	}
	sum := b.Add(rem, r)
	if signed {
		return b.SRem(sum, r)
	}
	return b.URem(sum, r)
}

func (g *Generator) emitComparison(b *irfacade.Builder, op string, l, r irfacade.Value, t *types.Type) irfacade.Value {
	if t.IsFloat() {
		return b.FCmp(floatPred[op], l, r)
	}
	if t.Signed {
		return b.ICmp(signedPred[op], l, r)
	}
	return b.ICmp(unsignedPred[op], l, r)
}

// genLogical lowers short-circuit "and"/"or" via a then/else block and a
// phi (spec §4.5).
func (g *Generator) genLogical(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	data := n.Data.(parsetree.BinaryData)
	lhsV, err := g.genExpr(n.Children[0], b, fn)
	if err != nil {
		return Value{}, err
	}
	lhsIR, err := lhsV.Concretize(g, b, fn, g.reg.Bool())
	if err != nil {
		return Value{}, err
	}
	lhsBlockEnd := b.CurrentBlock()

	rhsBB := g.ctx.AddBasicBlock(fn, "logical_rhs")
	joinBB := g.ctx.AddBasicBlock(fn, "logical_join")

	if data.Op == "and" {
		b.CondBr(lhsIR, rhsBB, joinBB)
	} else {
		b.CondBr(lhsIR, joinBB, rhsBB)
	}

	b.PositionAtEnd(rhsBB)
	rhsV, err := g.genExpr(n.Children[1], b, fn)
	if err != nil {
		return Value{}, err
	}
	rhsIR, err := rhsV.Concretize(g, b, fn, g.reg.Bool())
	if err != nil {
		return Value{}, err
	}
	rhsBlockEnd := b.CurrentBlock()
	b.Br(joinBB)

	b.PositionAtEnd(joinBB)
	phi := b.Phi(g.reg.Bool().IR)
	irfacade.AddIncoming(phi, []irfacade.Value{lhsIR, rhsIR}, []irfacade.BasicBlock{lhsBlockEnd, rhsBlockEnd})
	return Concrete(phi, g.reg.Bool()), nil
}

// genTernary lowers "a if c else b" (spec §4.5): a deferred ternary Value
// when untyped, concretizing to a select once a target is known.
func (g *Generator) genTernary(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	condNode, thenNode, elseNode := n.Children[0], n.Children[1], n.Children[2]
	cond, err := g.genExpr(condNode, b, fn)
	if err != nil {
		return Value{}, err
	}
	thenV, err := g.genExpr(thenNode, b, fn)
	if err != nil {
		return Value{}, err
	}
	elseV, err := g.genExpr(elseNode, b, fn)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindTernary, Cond: &cond, Then: &thenV, Else: &elseV, Type: commonDefault(g.reg, thenV.DefaultType(g.reg), elseV.DefaultType(g.reg))}, nil
}

// genCast lowers "e as T" (spec §4.5): numeric-only, delegating to
// create_conversion.
func (g *Generator) genCast(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	operand, err := g.genExpr(n.Children[0], b, fn)
	if err != nil {
		return Value{}, err
	}
	target := g.reg.ResolveType(n.Children[1], g.unitID, g.bag)
	if target == nil {
		return Value{}, fmt.Errorf("cast to unknown type")
	}
	if !target.IsNumeric() {
		return Value{}, fmt.Errorf("cannot cast to non-numeric type %s", target.Name())
	}
	srcType := operand.DefaultType(g.reg)
	if !operand.IsUntyped() {
		srcType = operand.Type
	}
	if !srcType.IsNumeric() {
		return Value{}, fmt.Errorf("cannot cast non-numeric value of type %s", srcType.Name())
	}
	ir, err := operand.Concretize(g, b, fn, target)
	if err != nil {
		return Value{}, err
	}
	return Concrete(ir, target), nil
}

// genVectorConstructor lowers the niladic Vector() call (spec §4.7):
// its element type T has no call-site syntax, so it is read off expectType,
// the target type already resolved by the surrounding var decl, return,
// field init or assignment.
func (g *Generator) genVectorConstructor(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	argList := n.Children[0]
	if len(argList.Children) != 0 {
		return Value{}, fmt.Errorf("function Vector expects 0 argument(s), got %d", len(argList.Children))
	}
	target := g.expectType
	if target == nil || target.Handle.Class != types.ClassResource || target.Resource.Elem == nil {
		return Value{}, fmt.Errorf("cannot infer Vector's element type here; assign Vector() directly to a Vector<T>-typed target")
	}
	elem := target.Resource.Elem
	vt := g.ensureVector(elem)
	ir, err := sema.VectorConstructor(g.ctx, g.mod, vt, elem)(b, fn, nil)
	if err != nil {
		return Value{}, err
	}
	return Concrete(ir, vt), nil
}

// genCall lowers a bare function call f(args...) (spec §4.5).
func (g *Generator) genCall(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	data := n.Data.(parsetree.CallData)
	if data.Name == "Vector" {
		return g.genVectorConstructor(n, b, fn)
	}
	callee := g.sym.FindFunction(data.Name)
	if callee == nil {
		return Value{}, fmt.Errorf("undefined function: %s", data.Name)
	}
	if !g.sym.CanAccess(callee.Visibility, callee.File) {
		return Value{}, fmt.Errorf("function %s is not visible in this file", data.Name)
	}

	argList := n.Children[0]
	if len(argList.Children) != len(callee.Params) {
		return Value{}, fmt.Errorf("function %s expects %d argument(s), got %d", data.Name, len(callee.Params), len(argList.Children))
	}
	args := make([]irfacade.Value, 0, len(callee.Params)+1)
	for i, an := range argList.Children {
		av, err := g.genExpr(an, b, fn)
		if err != nil {
			return Value{}, err
		}
		ir, err := av.Concretize(g, b, fn, callee.Params[i].Type)
		if err != nil {
			return Value{}, err
		}
		args = append(args, ir)
	}

	if callee.Builder != nil {
		ir, err := callee.Builder(b, fn, args)
		if err != nil {
			return Value{}, err
		}
		return Concrete(ir, callee.ReturnType), nil
	}
	return Concrete(b.Call(callee.IRFunc, args), callee.ReturnType), nil
}

// genFieldAccess lowers e.f: a struct-GEP and load, writable only for
// non-const fields (spec §4.5).
func (g *Generator) genFieldAccess(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	data := n.Data.(parsetree.FieldAccessData)
	recv, err := g.genExpr(n.Children[0], b, fn)
	if err != nil {
		return Value{}, err
	}
	if recv.IsUntyped() || recv.Type.Handle.Class != types.ClassResource {
		return Value{}, fmt.Errorf("field access on non-resource value")
	}
	res := recv.Type.Resource
	idx := res.FieldIndex(data.Field)
	if idx < 0 {
		return Value{}, fmt.Errorf("unknown field %s on resource %s", data.Field, res.Name)
	}
	field := res.Fields[idx]
	if !g.sym.CanAccess(field.Visibility, res.File) {
		return Value{}, fmt.Errorf("field %s is not visible in this file", data.Field)
	}
	ptr := b.StructGEP(recv.IR, idx)
	return Concrete(b.Load(ptr), field.Type), nil
}

// fieldLValue resolves e.f to its storage pointer and declared field, for
// use on the left-hand side of an assignment.
func (g *Generator) fieldLValue(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (irfacade.Value, types.Field, error) {
	data := n.Data.(parsetree.FieldAccessData)
	recv, err := g.genExpr(n.Children[0], b, fn)
	if err != nil {
		return irfacade.Value{}, types.Field{}, err
	}
	if recv.IsUntyped() || recv.Type.Handle.Class != types.ClassResource {
		return irfacade.Value{}, types.Field{}, fmt.Errorf("field access on non-resource value")
	}
	res := recv.Type.Resource
	idx := res.FieldIndex(data.Field)
	if idx < 0 {
		return irfacade.Value{}, types.Field{}, fmt.Errorf("unknown field %s on resource %s", data.Field, res.Name)
	}
	field := res.Fields[idx]
	if !g.sym.CanAccess(field.Visibility, res.File) {
		return irfacade.Value{}, types.Field{}, fmt.Errorf("field %s is not visible in this file", data.Field)
	}
	return b.StructGEP(recv.IR, idx), field, nil
}

// genResourceInit lowers R { field = expr, ... } (spec §4.5): every
// non-defaulted field supplied exactly once, a GC_malloc for the struct,
// fields stored in declaration order.
func (g *Generator) genResourceInit(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	data := n.Data.(parsetree.ResourceInitData)
	res := g.sym.FindResource(data.Resource)
	if res == nil {
		return Value{}, fmt.Errorf("undefined resource: %s", data.Resource)
	}
	if !g.sym.CanAccess(res.InitVisibility, res.File) {
		return Value{}, fmt.Errorf("resource %s's initializer is not visible in this file", data.Resource)
	}

	values := make([]irfacade.Value, len(res.Fields))
	seen := make([]bool, len(res.Fields))
	for _, fin := range n.Children {
		fd := fin.Data.(parsetree.FieldInitData)
		idx := res.FieldIndex(fd.Name)
		if idx < 0 {
			return Value{}, fmt.Errorf("unknown field %s on resource %s", fd.Name, res.Name)
		}
		if seen[idx] {
			return Value{}, fmt.Errorf("field %s initialized more than once", fd.Name)
		}
		v, err := g.genExprExpecting(fin.Children[0], b, fn, res.Fields[idx].Type)
		if err != nil {
			return Value{}, err
		}
		ir, err := v.Concretize(g, b, fn, res.Fields[idx].Type)
		if err != nil {
			return Value{}, err
		}
		values[idx] = ir
		seen[idx] = true
	}
	for i, ok := range seen {
		if !ok {
			return Value{}, fmt.Errorf("missing field initializer: %s", res.Fields[i].Name)
		}
	}

	resType, _ := g.reg.Lookup(res.Name, types.ClassResource)
	raw := b.Call(g.mod.GCMalloc(), []irfacade.Value{b.SizeOf(res.StrType)})
	this := b.BitCast(raw, res.PtrType)
	for i, v := range values {
		b.Store(v, b.StructGEP(this, i))
	}
	return Concrete(this, resType), nil
}
