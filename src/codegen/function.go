package codegen

import (
	"resoc/src/irfacade"
	"resoc/src/parsetree"
	"resoc/src/types"
)

// genFunction lowers one top-level FUNCTION node's body (spec §4.6
// "Function body completion"; spec §6 "Main contract").
func (g *Generator) genFunction(n *parsetree.Node, b *irfacade.Builder) {
	data := n.Data.(parsetree.FunctionData)
	fn := g.sym.FindFunction(data.Name)
	if fn == nil || fn.File != g.unitID {
		return // Declared by a different unit with the same name; Pass registration already reported the redefinition.
	}

	params := n.Children[0]
	body := n.Children[2]

	entry := g.ctx.AddBasicBlock(fn.IRFunc, "entry")
	b.PositionAtEnd(entry)

	if data.Name == "main" {
		b.Call(g.mod.GCInit(), nil)
	}

	g.sym.EnterFunctionScope(fn.ReturnType)
	for i, p := range fn.Params {
		storage := b.Alloca(p.Type.IR, p.Name)
		b.Store(irfacade.Param(fn.IRFunc, i), storage)
		g.sym.DefineVariable(p.Name, storage, p.Type, false, true)
	}
	_ = params

	reachable, err := g.genBlock(body, b)
	if err != nil {
		g.errorf(n, "%s", err.Error())
	}
	g.sym.ExitFunctionScope(!reachable)

	if reachable {
		g.completeFallthrough(n, fn.ReturnType, data.Name == "main", b)
	}
}

// completeFallthrough applies spec §4.6's function-body-completion rule to
// a block that falls off its end still reachable: unit functions get an
// implicit "ret zeroinitializer-of-unit", main silently gets "ret i32 0",
// and any other non-unit function is rejected.
func (g *Generator) completeFallthrough(n *parsetree.Node, ret *types.Type, isMain bool, b *irfacade.Builder) {
	switch {
	case isMain:
		b.Ret(g.ctx.ConstInt(ret.IR, 0, false))
	case ret.Handle.Class == types.ClassUnit:
		b.Ret(g.ctx.ConstZero(ret.IR))
	default:
		g.errorf(n, "function must return a value")
	}
}

// genResourceMethods lowers every method body declared on one RESOURCE
// node's paths (spec §4.5 "Method call", §4.6).
func (g *Generator) genResourceMethods(n *parsetree.Node, b *irfacade.Builder) {
	data := n.Data.(parsetree.ResourceData)
	res := g.sym.FindResource(data.Name)
	if res == nil {
		return
	}

	for _, pn := range n.Children[1:] {
		if pn.Typ != parsetree.PATH {
			continue
		}
		g.genPath(pn, res, b)
	}
}

func (g *Generator) genPath(pn *parsetree.Node, res *types.Resource, b *irfacade.Builder) {
	var segs []types.PathSegment
	for _, c := range pn.Children {
		switch c.Typ {
		case parsetree.PATH_SEGMENT:
			sd := c.Data.(parsetree.PathSegmentData)
			segs = append(segs, types.PathSegment{Kind: types.SegmentNamed, Name: sd.Name})
		case parsetree.INDEXER_SEGMENT:
			sd := c.Data.(parsetree.IndexerSegmentData)
			pt := g.reg.ResolveType(c.Children[0], g.unitID, g.bag)
			if pt == nil {
				return
			}
			segs = append(segs, types.PathSegment{Kind: types.SegmentIndexer, Name: sd.Name, ParamType: pt})
		case parsetree.METHOD:
			md := c.Data.(parsetree.MethodData)
			m := res.FindMethod(segs, md.Name)
			if m == nil || m.IRFunc.IsNil() {
				continue
			}
			g.genMethodBody(res, m, segs, c, b)
		}
	}
}

func (g *Generator) genMethodBody(res *types.Resource, m *types.Method, segs []types.PathSegment, mn *parsetree.Node, b *irfacade.Builder) {
	body := mn.Children[2]

	entry := g.ctx.AddBasicBlock(m.IRFunc, "entry")
	b.PositionAtEnd(entry)

	g.sym.EnterFunctionScope(m.ReturnType)

	savedThis, savedThisType := g.thisVal, g.thisType
	thisStorage := b.Alloca(res.PtrType, "this")
	b.Store(irfacade.Param(m.IRFunc, 0), thisStorage)
	g.thisVal = b.Load(thisStorage)
	thisType := &types.Type{Handle: types.Handle{Name: res.Name, Class: types.ClassResource}, IR: res.PtrType, Resource: res}
	g.thisType = thisType

	argIdx := 1
	for _, s := range segs {
		if s.Kind == types.SegmentIndexer {
			storage := b.Alloca(s.ParamType.IR, s.Name)
			b.Store(irfacade.Param(m.IRFunc, argIdx), storage)
			g.sym.DefineVariable(s.Name, storage, s.ParamType, false, true)
			argIdx++
		}
	}
	for _, p := range m.Params {
		storage := b.Alloca(p.Type.IR, p.Name)
		b.Store(irfacade.Param(m.IRFunc, argIdx), storage)
		g.sym.DefineVariable(p.Name, storage, p.Type, false, true)
		argIdx++
	}

	reachable, err := g.genBlock(body, b)
	if err != nil {
		g.errorf(mn, "%s", err.Error())
	}
	g.sym.ExitFunctionScope(!reachable)

	if reachable {
		g.completeFallthrough(mn, m.ReturnType, false, b)
	}

	g.thisVal, g.thisType = savedThis, savedThisType
}
