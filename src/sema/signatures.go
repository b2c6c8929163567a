// Package sema implements Signature Registration (spec §4.4) and the
// built-in register (spec §4.7): the two-pass resource/function
// declaration sweep across every compilation unit, plus Vector, String,
// primitive to_string, print and println.
//
// Grounded on the teacher's single large GenLLVM pass in
// ir/llvm/transform.go, split here into the two explicit passes spec §4.4
// names instead of one function header loop that both declares and defines
// in the same walk — a consequence of spec.md requiring resources to
// resolve across files, which the teacher's single-file-per-invocation
// design never had to handle.
package sema

import (
	"resoc/src/diag"
	"resoc/src/irfacade"
	"resoc/src/parsetree"
	"resoc/src/symtab"
	"resoc/src/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Unit is one compilation unit (source file) handed through registration
// and code generation: its file identifier (used for FILEPRIVATE checks),
// parse tree root, and its own diagnostic bag (spec §7: "collected per
// compilation unit plus a global bucket").
type Unit struct {
	ID   string
	Root *parsetree.Node
	Bag  *diag.Bag
}

// ---------------------
// ----- functions -----
// ---------------------

// PassA creates an opaque named struct and registers a pointer type for
// every resource declared across all units, so that cross-file and
// recursive references resolve before any field or method is processed
// (spec §4.4, "Pass A — type declarations").
func PassA(units []Unit, ctx *irfacade.Context, reg *types.Registry, sym *symtab.Table) {
	for _, u := range units {
		for _, n := range u.Root.Children {
			if n.Typ != parsetree.RESOURCE {
				continue
			}
			data := n.Data.(parsetree.ResourceData)
			structType := ctx.StructNamed(data.Name + "_struct")
			ptrType := ctx.Pointer(structType)
			t := reg.CreateResourceType(data.Name, ptrType, structType, nil)
			if t.Resource.File == "" {
				t.Resource.File = u.ID
			}
			sym.DefineResource(t.Resource) // Idempotent: a second RESOURCE node for the same name is a no-op here (spec §4.4).
			sym.DefineType(data.Name, t)
		}
	}
}

// PassB fills in the fields and method declarations of every resource
// across all units (spec §4.4, "Pass B — bodies and methods").
func PassB(units []Unit, ctx *irfacade.Context, mod *irfacade.Module, reg *types.Registry, sym *symtab.Table) {
	defined := make(map[string]bool)
	for _, u := range units {
		for _, n := range u.Root.Children {
			if n.Typ != parsetree.RESOURCE {
				continue
			}
			data := n.Data.(parsetree.ResourceData)
			if defined[data.Name] {
				u.Bag.Errorf(u.ID, n.Line, n.Pos, "Resource already defined")
				continue
			}
			defined[data.Name] = true
			passBResource(u, n, data, ctx, mod, reg, sym)
		}
	}
}

func passBResource(u Unit, n *parsetree.Node, data parsetree.ResourceData, ctx *irfacade.Context, mod *irfacade.Module, reg *types.Registry, sym *symtab.Table) {
	res := sym.FindResource(data.Name)
	if res == nil {
		u.Bag.Fatalf(u.ID, n.Line, n.Pos, "internal: resource %s missing after Pass A", data.Name)
		return
	}

	fieldList := n.Children[0]
	seen := make(map[string]bool)
	fieldIR := make([]irfacade.Type, 0, len(fieldList.Children))
	for _, fn := range fieldList.Children {
		fd := fn.Data.(parsetree.FieldData)
		if len(fn.Children) == 0 {
			u.Bag.Errorf(u.ID, fn.Line, fn.Pos, "Resource field must have explicit type: %s", fd.Name)
			continue
		}
		if seen[fd.Name] {
			u.Bag.Errorf(u.ID, fn.Line, fn.Pos, "Ambiguous field name in resource: %s", fd.Name)
			continue
		}
		seen[fd.Name] = true
		ft := reg.ResolveType(fn.Children[0], u.ID, u.Bag)
		if ft == nil {
			continue
		}
		vis := types.Global
		if fd.Visibility == parsetree.VisFileprivate {
			vis = types.Fileprivate
		}
		res.Fields = append(res.Fields, types.Field{Name: fd.Name, Type: ft, Const: fd.Const, Visibility: vis})
		fieldIR = append(fieldIR, ft.IR)
	}
	ctx.StructSetBody(res.StrType, fieldIR)

	for _, pn := range n.Children[1:] {
		if pn.Typ != parsetree.PATH {
			continue
		}
		passBPath(u, pn, res, reg, mod)
	}

	res.ComputeInitVisibility()
}

func passBPath(u Unit, pn *parsetree.Node, res *types.Resource, reg *types.Registry, mod *irfacade.Module) {
	var segs []types.PathSegment
	var methodNodes []*parsetree.Node
	for _, c := range pn.Children {
		switch c.Typ {
		case parsetree.PATH_SEGMENT:
			sd := c.Data.(parsetree.PathSegmentData)
			segs = append(segs, types.PathSegment{Kind: types.SegmentNamed, Name: sd.Name})
		case parsetree.INDEXER_SEGMENT:
			sd := c.Data.(parsetree.IndexerSegmentData)
			pt := reg.ResolveType(c.Children[0], u.ID, u.Bag)
			if pt == nil {
				continue
			}
			segs = append(segs, types.PathSegment{Kind: types.SegmentIndexer, Name: sd.Name, ParamType: pt})
		case parsetree.METHOD:
			methodNodes = append(methodNodes, c)
		}
	}

	if len(methodNodes) == 0 {
		u.Bag.Errorf(u.ID, pn.Line, pn.Pos, "Resource path must contain at least one method")
		return
	}

	for _, mn := range methodNodes {
		md := mn.Data.(parsetree.MethodData)
		if res.FindMethod(segs, md.Name) != nil {
			u.Bag.Errorf(u.ID, mn.Line, mn.Pos, "Method %s is already defined in path %s", md.Name, types.PathString(segs))
			continue
		}

		paramList := mn.Children[0]
		retNode := mn.Children[1]
		ret := reg.ResolveType(retNode, u.ID, u.Bag)
		if ret == nil {
			continue
		}
		params := resolveParams(u, paramList, reg)

		vis := types.Global
		if md.Visibility == parsetree.VisFileprivate {
			vis = types.Fileprivate
		}

		method := &types.Method{Name: md.Name, ReturnType: ret, Params: params, Path: segs, Visibility: vis, File: u.ID}

		irParams := make([]irfacade.Type, 0, 1+len(segs)+len(params))
		irParams = append(irParams, res.PtrType)
		for _, s := range segs {
			if s.Kind == types.SegmentIndexer {
				irParams = append(irParams, s.ParamType.IR)
			}
		}
		for _, p := range params {
			irParams = append(irParams, p.Type.IR)
		}
		ft := mod.AddFunction(method.MangledName(res.Name), functionType(mod, ret, irParams))
		method.IRFunc = ft

		res.Methods = append(res.Methods, method)
	}
}

func resolveParams(u Unit, paramList *parsetree.Node, reg *types.Registry) []types.Param {
	params := make([]types.Param, 0, len(paramList.Children))
	for _, pn := range paramList.Children {
		pd := pn.Data.(parsetree.ParamData)
		pt := reg.ResolveType(pn.Children[0], u.ID, u.Bag)
		if pt == nil {
			continue
		}
		params = append(params, types.Param{Name: pd.Name, Type: pt})
	}
	return params
}

// functionType is a small helper so signatures.go doesn't need to import
// irfacade's Context directly just to build a function type from a module's
// bound context.
func functionType(mod *irfacade.Module, ret *types.Type, params []irfacade.Type) irfacade.Type {
	return mod.FunctionType(ret.IR, params, false)
}

// DeclareFunctions turns every top-level FUNCTION node across all units
// into an LLVM function declaration (spec §4.4, "Function declarations
// pass"), enforcing the main contract (spec §6): exactly one main,
// returning i32, taking no parameters.
func DeclareFunctions(units []Unit, mod *irfacade.Module, reg *types.Registry, sym *symtab.Table) {
	mainSeen := false
	for _, u := range units {
		for _, n := range u.Root.Children {
			if n.Typ != parsetree.FUNCTION {
				continue
			}
			data := n.Data.(parsetree.FunctionData)
			ret := reg.ResolveType(n.Children[1], u.ID, u.Bag)
			if ret == nil {
				continue
			}
			params := resolveParams(u, n.Children[0], reg)

			if data.Name == "main" {
				if mainSeen {
					u.Bag.Errorf(u.ID, n.Line, n.Pos, "main function already defined")
					continue
				}
				mainSeen = true
				if ret.Name() != "i32" || len(params) != 0 {
					u.Bag.Errorf(u.ID, n.Line, n.Pos, "main must take no parameters and return i32")
					continue
				}
			}

			irParams := make([]irfacade.Type, len(params))
			for i, p := range params {
				irParams[i] = p.Type.IR
			}
			ft := mod.AddFunction(data.Name, functionType(mod, ret, irParams))

			vis := types.Global
			if data.Visibility == parsetree.VisFileprivate {
				vis = types.Fileprivate
			}
			fn := &types.Function{Name: data.Name, ReturnType: ret, Params: params, Visibility: vis, File: u.ID, IRFunc: ft}
			if !sym.DefineFunction(fn) {
				u.Bag.Errorf(u.ID, n.Line, n.Pos, "function %q is already defined", data.Name)
			}
		}
	}
	if !mainSeen {
		global := units[0].Bag
		global.Fatalf("compilation", 0, 0, "no main function declared")
	}
}
