package codegen

import (
	"resoc/src/diag"
	"resoc/src/irfacade"
	"resoc/src/parsetree"
	"resoc/src/sema"
	"resoc/src/symtab"
	"resoc/src/types"
	"resoc/src/util"
)

// Generator holds everything code generation for one compilation needs
// across every unit: the IR facade handles, the type registry and symbol
// table built by earlier phases, the lazily-built Vector<T>/String
// accessors sema.RegisterBuiltins returned, and the label generator used
// to name basic blocks (spec §4.5, §4.6).
type Generator struct {
	ctx *irfacade.Context
	mod *irfacade.Module
	reg *types.Registry
	sym *symtab.Table

	ensureVector func(elem *types.Type) *types.Type
	stringType   func() *types.Type
	labels       *util.LabelGen

	// unitID/bag name the compilation unit currently being generated, for
	// diagnostics; loops is the Loop Context stack of spec §3 (continue-
	// target, break-target), built on the teacher's util.Stack the way
	// symtab's scope chain generalizes it for symbols; thisVal and
	// thisType are non-nil only while generating a resource method body.
	unitID   string
	bag      *diag.Bag
	loops    util.Stack
	thisVal  irfacade.Value
	thisType *types.Type

	// expectType is the target type already known for the expression about
	// to be lowered (a var/const's declared type, a return statement's
	// function return type, a resource field's declared type, an assigned
	// variable's type), non-nil only for the duration of that one genExpr
	// call. Vector()'s niladic constructor (spec §4.7) has no type argument
	// of its own, so genCall reads T off expectType to bind the generic.
	expectType *types.Type
}

// loopContext is spec §3's "(continue-target block, break-target block)
// stack used by continue and break".
type loopContext struct {
	continueTarget irfacade.BasicBlock
	breakTarget    irfacade.BasicBlock
}

// New returns a Generator ready to lower every unit after signature
// registration and built-in registration have run.
func New(ctx *irfacade.Context, mod *irfacade.Module, reg *types.Registry, sym *symtab.Table,
	ensureVector func(elem *types.Type) *types.Type, stringType func() *types.Type) *Generator {
	return &Generator{
		ctx: ctx, mod: mod, reg: reg, sym: sym,
		ensureVector: ensureVector, stringType: stringType,
		labels: util.NewLabelGen(),
	}
}

// GenerateUnit lowers every function and resource method body declared in
// unit u (spec §4.8 step 5: "enter its file context and generate code for
// all statements and definitions"). b is the single Builder shared across
// the whole compilation; it is repositioned freely by every function body.
func (g *Generator) GenerateUnit(u sema.Unit, b *irfacade.Builder) {
	g.unitID = u.ID
	g.bag = u.Bag
	g.sym.EnterFileContext(u.ID)
	defer g.sym.ExitFileContext()

	for _, n := range u.Root.Children {
		switch n.Typ {
		case parsetree.FUNCTION:
			g.genFunction(n, b)
		case parsetree.RESOURCE:
			g.genResourceMethods(n, b)
		}
	}
}

func (g *Generator) errorf(n *parsetree.Node, format string, args ...interface{}) {
	g.bag.Errorf(g.unitID, n.Line, n.Pos, format, args...)
}

func (g *Generator) warnf(n *parsetree.Node, format string, args ...interface{}) {
	g.bag.Warnf(g.unitID, n.Line, n.Pos, format, args...)
}

func (g *Generator) pushLoop(continueTarget, breakTarget irfacade.BasicBlock) {
	g.loops.Push(loopContext{continueTarget, breakTarget})
}

func (g *Generator) popLoop() {
	g.loops.Pop()
}

func (g *Generator) currentLoop() (loopContext, bool) {
	top := g.loops.Peek()
	if top == nil {
		return loopContext{}, false
	}
	return top.(loopContext), true
}
