package codegen

import (
	"fmt"

	"resoc/src/irfacade"
	"resoc/src/parsetree"
	"resoc/src/symtab"
	"resoc/src/types"
	"resoc/src/util"
)

// genBlock lowers a BLOCK node's statements in order, tracking
// reachability (spec §4.6): once a statement terminates the current block,
// every subsequent statement in the block is unreachable and triggers a
// warning instead of being lowered.
func (g *Generator) genBlock(n *parsetree.Node, b *irfacade.Builder) (bool, error) {
	reachable := true
	for _, s := range n.Children {
		if !reachable {
			g.warnf(s, "Unreachable code")
			continue
		}
		var err error
		reachable, err = g.genStatement(s, b)
		if err != nil {
			return reachable, err
		}
	}
	return reachable, nil
}

// genStatement lowers one statement, returning whether control may fall
// through to the next statement (spec §4.6).
func (g *Generator) genStatement(n *parsetree.Node, b *irfacade.Builder) (bool, error) {
	fn := b.CurrentBlock().Parent()
	switch n.Typ {
	case parsetree.VAR_DECL, parsetree.CONST_DECL:
		return true, g.genVarDecl(n, b, fn)
	case parsetree.ASSIGN_STATEMENT:
		return true, g.genAssign(n, b, fn)
	case parsetree.EXPR_STATEMENT:
		_, err := g.genExpr(n.Children[0], b, fn)
		return true, err
	case parsetree.IF_STATEMENT:
		return g.genIf(n, b, fn)
	case parsetree.WHILE_STATEMENT:
		return g.genWhile(n, b, fn)
	case parsetree.BREAK_STATEMENT:
		return g.genBreak(n, b)
	case parsetree.CONTINUE_STATEMENT:
		return g.genContinue(n, b)
	case parsetree.RETURN_STATEMENT:
		return false, g.genReturn(n, b, fn)
	case parsetree.BLOCK:
		return g.genBlock(n, b)
	default:
		return true, fmt.Errorf("internal: unhandled statement node %s", n.Type())
	}
}

func isTypeNode(n *parsetree.Node) bool {
	switch n.Typ {
	case parsetree.TYPE_NAME, parsetree.GENERIC_TYPE, parsetree.UNIT_TYPE:
		return true
	default:
		return false
	}
}

// genVarDecl lowers "var x [: T] = e" / "const x [: T] = e" (spec §4.6).
func (g *Generator) genVarDecl(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) error {
	data := n.Data.(parsetree.VarDeclData)

	var typeNode, exprNode *parsetree.Node
	switch len(n.Children) {
	case 2:
		typeNode, exprNode = n.Children[0], n.Children[1]
	case 1:
		if isTypeNode(n.Children[0]) {
			typeNode = n.Children[0]
		} else {
			exprNode = n.Children[0]
		}
	}

	var declType *types.Type
	if typeNode != nil {
		declType = g.reg.ResolveType(typeNode, g.unitID, g.bag)
		if declType == nil {
			return fmt.Errorf("variable %s has unresolved type", data.Name)
		}
	}

	var initIR irfacade.Value
	hasInit := exprNode != nil
	if hasInit {
		var val Value
		var err error
		if declType != nil {
			val, err = g.genExprExpecting(exprNode, b, fn, declType)
		} else {
			val, err = g.genExpr(exprNode, b, fn)
		}
		if err != nil {
			return err
		}
		if declType != nil {
			initIR, err = val.Concretize(g, b, fn, declType)
		} else {
			initIR, declType, err = val.ConcretizeDefault(g, b, fn)
		}
		if err != nil {
			return err
		}
	}

	storage := b.Alloca(declType.IR, data.Name)
	if hasInit {
		b.Store(initIR, storage)
	}
	isConst := n.Typ == parsetree.CONST_DECL
	if err := g.sym.DefineVariable(data.Name, storage, declType, isConst, hasInit); err != nil {
		return err
	}
	return nil
}

// assignOpTable maps a compound assignment operator to the binary operator
// its desugaring applies (spec §4.6: "compound forms desugar to lhs = lhs
// op rhs").
var assignOpTable = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "div=": "div", "rem=": "rem", "mod=": "mod",
	"&=": "&", "|=": "|", "^=": "^", "<<=": "<<", ">>=": ">>",
}

// genAssign lowers "lhs op= rhs" (spec §4.6). The IDENTIFIER target case
// resolves the variable's declared type before lowering rhs, a no-side-
// effect symbol-table lookup, so Vector() on the right of "v = Vector()"
// can bind its element type the same way a var decl's does.
func (g *Generator) genAssign(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) error {
	data := n.Data.(parsetree.AssignData)
	lhsNode, rhsNode := n.Children[0], n.Children[1]

	if lhsNode.Typ == parsetree.IDENTIFIER {
		name := lhsNode.Data.(string)
		v := g.sym.FindSymbol(name)
		if v == nil {
			return fmt.Errorf("undefined variable %q", name)
		}
		rhsVal, err := g.genExprExpecting(rhsNode, b, fn, v.Type)
		if err != nil {
			return err
		}
		return g.assignVariable(name, v, data.Op, rhsVal, b, fn)
	}

	rhsVal, err := g.genExpr(rhsNode, b, fn)
	if err != nil {
		return err
	}

	if lhsNode.Typ == parsetree.PATH_INDEX_EXPR {
		if data.Op != "=" {
			return fmt.Errorf("compound assignment is not supported on a path index target")
		}
		return g.assignPathIndex(lhsNode, rhsVal, b, fn)
	}

	switch lhsNode.Typ {
	case parsetree.FIELD_ACCESS_EXPR:
		return g.assignField(lhsNode, data.Op, rhsVal, b, fn)
	default:
		return fmt.Errorf("invalid assignment target")
	}
}

func (g *Generator) assignVariable(name string, v *symtab.Variable, op string, rhsVal Value, b *irfacade.Builder, fn irfacade.Value) error {
	if v.Const && v.Initialized {
		return fmt.Errorf("cannot assign to const variable %q after initialization", name)
	}

	final, err := g.desugarAssignValue(op, Concrete(b.Load(v.Storage), v.Type), v.Type, rhsVal, b, fn)
	if err != nil {
		return err
	}
	b.Store(final, v.Storage)
	return g.sym.InitializeVariable(name)
}

func (g *Generator) assignField(lhsNode *parsetree.Node, op string, rhsVal Value, b *irfacade.Builder, fn irfacade.Value) error {
	ptr, field, err := g.fieldLValue(lhsNode, b, fn)
	if err != nil {
		return err
	}
	if field.Const {
		return fmt.Errorf("cannot assign to const field %q", field.Name)
	}
	current := Concrete(b.Load(ptr), field.Type)
	final, err := g.desugarAssignValue(op, current, field.Type, rhsVal, b, fn)
	if err != nil {
		return err
	}
	b.Store(final, ptr)
	return nil
}

// desugarAssignValue computes the concrete value to store for "lhs op=
// rhs": rhs concretized directly when op is "=", otherwise lhs op rhs
// lowered through the ordinary binary-op path and concretized back to
// target (spec §4.6).
func (g *Generator) desugarAssignValue(op string, current Value, target *types.Type, rhsVal Value, b *irfacade.Builder, fn irfacade.Value) (irfacade.Value, error) {
	if op == "=" {
		return rhsVal.Concretize(g, b, fn, target)
	}
	binOp, ok := assignOpTable[op]
	if !ok {
		return irfacade.Value{}, fmt.Errorf("internal: unknown assignment operator %q", op)
	}
	combined, err := g.lowerBinary(b, fn, binOp, current, rhsVal)
	if err != nil {
		return irfacade.Value{}, err
	}
	return combined.Concretize(g, b, fn, target)
}

// genIf lowers if/else (spec §4.6): a condition block, then/else blocks
// and a join block, skipped when both branches terminate.
func (g *Generator) genIf(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (bool, error) {
	condNode := n.Children[0]
	thenNode := n.Children[1]
	var elseNode *parsetree.Node
	if len(n.Children) > 2 {
		elseNode = n.Children[2]
	}

	condVal, err := g.genExpr(condNode, b, fn)
	if err != nil {
		return true, err
	}
	condIR, err := condVal.Concretize(g, b, fn, g.reg.Bool())
	if err != nil {
		return true, err
	}

	thenBB := g.ctx.AddBasicBlock(fn, g.labels.New(util.LabelIfThen))
	var elseBB irfacade.BasicBlock
	if elseNode != nil {
		elseBB = g.ctx.AddBasicBlock(fn, g.labels.New(util.LabelIfElse))
	}
	joinBB := g.ctx.AddBasicBlock(fn, g.labels.New(util.LabelIfEnd))

	if elseNode != nil {
		b.CondBr(condIR, thenBB, elseBB)
	} else {
		b.CondBr(condIR, thenBB, joinBB)
	}

	b.PositionAtEnd(thenBB)
	thenReach, err := g.genStatement(thenNode, b)
	if err != nil {
		return true, err
	}
	if thenReach {
		b.Br(joinBB)
	}

	elseReach := true
	if elseNode != nil {
		b.PositionAtEnd(elseBB)
		elseReach, err = g.genStatement(elseNode, b)
		if err != nil {
			return true, err
		}
		if elseReach {
			b.Br(joinBB)
		}
	}

	bothTerminate := !thenReach && elseReach == false && elseNode != nil
	if bothTerminate {
		// Neither branch falls through: the join block is never reached.
		// It stays in the function as an empty, unreferenced block; LLVM's
		// verifier requires every block to have a terminator, so give it
		// one even though nothing branches to it.
		b.PositionAtEnd(joinBB)
		b.Unreachable()
		return false, nil
	}

	b.PositionAtEnd(joinBB)
	return true, nil
}

// genWhile lowers while/continue/break (spec §4.6): condition, body and
// after blocks, with the body running under a pushed Loop Context.
// Conservatively always reaches, per spec §9: "while: always reaches
// (loop may iterate zero times)".
func (g *Generator) genWhile(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (bool, error) {
	condNode := n.Children[0]
	bodyNode := n.Children[1]

	condBB := g.ctx.AddBasicBlock(fn, g.labels.New(util.LabelWhileCond))
	bodyBB := g.ctx.AddBasicBlock(fn, g.labels.New(util.LabelWhileHead))
	afterBB := g.ctx.AddBasicBlock(fn, g.labels.New(util.LabelWhileEnd))

	b.Br(condBB)
	b.PositionAtEnd(condBB)
	condVal, err := g.genExpr(condNode, b, fn)
	if err != nil {
		return true, err
	}
	condIR, err := condVal.Concretize(g, b, fn, g.reg.Bool())
	if err != nil {
		return true, err
	}
	b.CondBr(condIR, bodyBB, afterBB)

	b.PositionAtEnd(bodyBB)
	g.pushLoop(condBB, afterBB)
	bodyReach, err := g.genStatement(bodyNode, b)
	g.popLoop()
	if err != nil {
		return true, err
	}
	if bodyReach {
		b.Br(condBB)
	}

	b.PositionAtEnd(afterBB)
	return true, nil
}

func (g *Generator) genBreak(n *parsetree.Node, b *irfacade.Builder) (bool, error) {
	loop, ok := g.currentLoop()
	if !ok {
		return false, fmt.Errorf("break outside a loop")
	}
	b.Br(loop.breakTarget)
	return false, nil
}

func (g *Generator) genContinue(n *parsetree.Node, b *irfacade.Builder) (bool, error) {
	loop, ok := g.currentLoop()
	if !ok {
		return false, fmt.Errorf("continue outside a loop")
	}
	b.Br(loop.continueTarget)
	return false, nil
}

// genReturn lowers "return" / "return e" (spec §4.6).
func (g *Generator) genReturn(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) error {
	ret := g.sym.CurrentReturnType()
	if len(n.Children) == 0 {
		if ret.Handle.Class != types.ClassUnit {
			return fmt.Errorf("must return a value of type %s", ret.Name())
		}
		b.Ret(g.ctx.ConstZero(ret.IR))
		return nil
	}
	if ret.Handle.Class == types.ClassUnit {
		return fmt.Errorf("Cannot convert integer literal to non-integer type %s", ret.Name())
	}
	val, err := g.genExprExpecting(n.Children[0], b, fn, ret)
	if err != nil {
		return err
	}
	ir, err := val.Concretize(g, b, fn, ret)
	if err != nil {
		return err
	}
	b.Ret(ir)
	return nil
}
