package codegen

import (
	"fmt"

	"resoc/src/irfacade"
	"resoc/src/parsetree"
	"resoc/src/types"
)

// collectPathHops unwinds the PATH_INDEX_EXPR chain the parser builds for
// "e/seg/{i}" (spec §4.5 "Method call" / shapes.go PathIndexData) into the
// innermost base receiver expression and the ordered hops leading from it
// to the method call.
func collectPathHops(n *parsetree.Node) (*parsetree.Node, []*parsetree.Node) {
	if n.Typ != parsetree.PATH_INDEX_EXPR {
		return n, nil
	}
	base, hops := collectPathHops(n.Children[0])
	return base, append(hops, n)
}

// resolvedCall is the result of matching a call-site path against a
// resource's declared method table, or (res nil) a zero-path built-in
// method matched directly on a primitive/unit Type's own method table
// (spec §4.7's per-primitive to_string).
type resolvedCall struct {
	res         *types.Resource
	method      *types.Method
	thisIR      irfacade.Value
	indexerArgs []irfacade.Value
}

// resolvePath lowers recvNode's base receiver and matches methodName
// against it: against the receiver's resource method table when the
// receiver is a resource (following the path hops), or directly against
// the receiver's own Type.Methods table when it is a primitive or unit,
// since those built-ins (spec §4.7's to_string) are zero-path and carry no
// indexer hops of their own.
func (g *Generator) resolvePath(recvNode *parsetree.Node, methodName string, b *irfacade.Builder, fn irfacade.Value) (resolvedCall, error) {
	baseNode, hops := collectPathHops(recvNode)
	baseVal, err := g.genExpr(baseNode, b, fn)
	if err != nil {
		return resolvedCall{}, err
	}
	if baseVal.IsUntyped() {
		return resolvedCall{}, fmt.Errorf("method call on non-resource value")
	}
	if baseVal.Type.Handle.Class != types.ClassResource {
		if len(hops) != 0 {
			return resolvedCall{}, fmt.Errorf("method call on non-resource value")
		}
		m := baseVal.Type.FindMethod(methodName)
		if m == nil {
			return resolvedCall{}, fmt.Errorf("type %s has no method %s", baseVal.Type.Name(), methodName)
		}
		return resolvedCall{method: m, thisIR: baseVal.IR}, nil
	}
	res := baseVal.Type.Resource

	isIndexer := make([]bool, len(hops))
	names := make([]string, len(hops))
	for i, hop := range hops {
		hd := hop.Data.(parsetree.PathIndexData)
		isIndexer[i] = hd.IsIndexer
		names[i] = hd.Name
	}

	m := res.FindMethodByShape(methodName, isIndexer, names)
	if m == nil {
		return resolvedCall{}, fmt.Errorf("resource %s has no method %s on the given path", res.Name, methodName)
	}
	if !g.sym.CanAccess(m.Visibility, res.File) {
		return resolvedCall{}, fmt.Errorf("method %s is not visible in this file", methodName)
	}

	indexerArgs := make([]irfacade.Value, 0, len(hops))
	for i, seg := range m.Path {
		if seg.Kind != types.SegmentIndexer {
			continue
		}
		idxExprNode := hops[i].Children[1]
		idxVal, err := g.genExpr(idxExprNode, b, fn)
		if err != nil {
			return resolvedCall{}, err
		}
		ir, err := idxVal.Concretize(g, b, fn, seg.ParamType)
		if err != nil {
			return resolvedCall{}, err
		}
		indexerArgs = append(indexerArgs, ir)
	}

	return resolvedCall{res: res, method: m, thisIR: baseVal.IR, indexerArgs: indexerArgs}, nil
}

// invoke assembles (this, indexer args..., explicit args...) and emits
// either a direct call (native method) or the method's inline call-builder
// (synthesized method, e.g. Vector.get).
func (g *Generator) invoke(rc resolvedCall, explicitArgs []irfacade.Value, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	args := make([]irfacade.Value, 0, 1+len(rc.indexerArgs)+len(explicitArgs))
	args = append(args, rc.thisIR)
	args = append(args, rc.indexerArgs...)
	args = append(args, explicitArgs...)

	if rc.method.Builder != nil {
		ir, err := rc.method.Builder(b, fn, args)
		if err != nil {
			return Value{}, err
		}
		return Concrete(ir, rc.method.ReturnType), nil
	}
	return Concrete(b.Call(rc.method.IRFunc, args), rc.method.ReturnType), nil
}

// genMethodCall lowers e.m(args) / e/seg/{i}.m(args) (spec §4.5).
func (g *Generator) genMethodCall(n *parsetree.Node, b *irfacade.Builder, fn irfacade.Value) (Value, error) {
	data := n.Data.(parsetree.MethodCallData)
	recvNode := n.Children[0]
	argList := n.Children[1]

	rc, err := g.resolvePath(recvNode, data.Method, b, fn)
	if err != nil {
		return Value{}, err
	}
	if len(argList.Children) != len(rc.method.Params) {
		return Value{}, fmt.Errorf("method %s expects %d argument(s), got %d", data.Method, len(rc.method.Params), len(argList.Children))
	}
	explicit := make([]irfacade.Value, 0, len(rc.method.Params))
	for i, an := range argList.Children {
		av, err := g.genExpr(an, b, fn)
		if err != nil {
			return Value{}, err
		}
		ir, err := av.Concretize(g, b, fn, rc.method.Params[i].Type)
		if err != nil {
			return Value{}, err
		}
		explicit = append(explicit, ir)
	}
	return g.invoke(rc, explicit, b, fn)
}

// assignPathIndex lowers "v/{i} = x" to "v/{i}.set(x)" (spec §4.6
// "Assignment": "a Vector path setter... compiles to v/{i}.set(x)").
func (g *Generator) assignPathIndex(recvNode *parsetree.Node, rhs Value, b *irfacade.Builder, fn irfacade.Value) error {
	rc, err := g.resolvePath(recvNode, "set", b, fn)
	if err != nil {
		return err
	}
	if len(rc.method.Params) != 1 {
		return fmt.Errorf("internal: setter %s does not take exactly one value parameter", rc.method.Name)
	}
	ir, err := rhs.Concretize(g, b, fn, rc.method.Params[0].Type)
	if err != nil {
		return err
	}
	_, err = g.invoke(rc, []irfacade.Value{ir}, b, fn)
	return err
}
