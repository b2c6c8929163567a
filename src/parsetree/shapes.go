package parsetree

// shapes.go fixes the Data payload and Children order the front end (or a
// test standing in for it) must use for each NodeType that carries
// structured information beyond a bare literal. This is the concrete half
// of the "contract" the package comment promises: node shapes the semantic
// analysis and code generation passes are entitled to assume.

// ResourceData is the Data payload of a RESOURCE node.
// Children: [FIELD_LIST, PATH, PATH, ...] — the FIELD_LIST is always
// present (possibly with zero FIELD children), followed by zero or more
// PATH nodes.
type ResourceData struct {
	Name       string
	Visibility int // VisFileprivate or VisGlobal.
}

// FieldData is the Data payload of a FIELD node.
// Children: [typeNode] — exactly one of TYPE_NAME/GENERIC_TYPE/UNIT_TYPE.
type FieldData struct {
	Name       string
	Const      bool
	Visibility int
}

// PathSegmentData is the Data payload of a PATH_SEGMENT node (a plain named
// segment, no children).
type PathSegmentData struct {
	Name string
}

// IndexerSegmentData is the Data payload of an INDEXER_SEGMENT node.
// Children: [typeNode] — the indexer parameter's declared type.
type IndexerSegmentData struct {
	Name string
}

// PATH node Children: a run of zero or more PATH_SEGMENT/INDEXER_SEGMENT
// nodes (the path's segments, in order) followed by one or more METHOD
// nodes sharing that path. There is no explicit Data payload; the segment
// run and the method run are distinguished purely by NodeType while
// iterating Children.

// MethodData is the Data payload of a METHOD node.
// Children: [PARAM_LIST, typeNode, BLOCK] — typeNode is UNIT_TYPE when the
// method has no declared return type.
type MethodData struct {
	Name       string
	Visibility int
}

// FunctionData is the Data payload of a FUNCTION node.
// Children: [PARAM_LIST, typeNode, BLOCK].
type FunctionData struct {
	Name       string
	Visibility int
}

// ParamData is the Data payload of a PARAM node.
// Children: [typeNode].
type ParamData struct {
	Name string
}

// TYPE_NAME Data is a bare string: the primitive or resource identifier.
// GENERIC_TYPE Data is a bare string naming the generic ("Vector"); its
// single child is the element type node. UNIT_TYPE carries neither Data
// nor children.

// FieldInitData is the Data payload of a FIELD_INIT node (one
// "field = expr" entry inside a RESOURCE_INIT_EXPR).
// Children: [exprNode].
type FieldInitData struct {
	Name string
}

// VarDeclData is the Data payload of a VAR_DECL or CONST_DECL node.
// Children: [typeNode?, exprNode?] — typeNode is present iff the
// declaration carries an explicit ": T" annotation; exprNode is present iff
// there is an initializer. Both are optional but at least one of (typeNode,
// exprNode) must be present for a VAR_DECL to be well-formed (a bare
// "var x" with neither is rejected upstream of this core, by the grammar).
type VarDeclData struct {
	Name string
}

// AssignData is the Data payload of an ASSIGN_STATEMENT node.
// Children: [lhsNode, rhsNode]. Op is one of "=", "+=", "-=", "*=", "div=",
// "rem=", "mod=", "&=", "|=", "^=", "<<=", ">>=".
type AssignData struct {
	Op string
}

// BinaryData is the Data payload of a BINARY_EXPR or LOGICAL_EXPR node.
// Children: [lhsNode, rhsNode].
type BinaryData struct {
	Op string
}

// UnaryData is the Data payload of a UNARY_EXPR node. Children: [operand].
type UnaryData struct {
	Op string
}

// CastData is the Data payload of a CAST_EXPR node. Children: [exprNode,
// typeNode].
type CastData struct{}

// CallData is the Data payload of a CALL_EXPR node.
// Children: [ARG_LIST].
type CallData struct {
	Name string
}

// MethodCallData is the Data payload of a METHOD_CALL_EXPR node.
// Children: [receiverNode, ARG_LIST]. Path-index expressions are folded in
// via PATH_INDEX_EXPR before this node: the parser flattens `e/seg/{i}.m(args)` into a PATH_INDEX_EXPR chain rooted at
// receiverNode; MethodCallData only names the method, and path resolution
// walks PATH_INDEX_EXPR nodes under receiverNode.
type MethodCallData struct {
	Method string
}

// PathIndexData is the Data payload of a PATH_INDEX_EXPR node, one
// "/segment" or "/{expr}" hop on the way to a method call.
// Children for a named hop: [innerNode]. Children for an indexer hop:
// [innerNode, indexExprNode].
type PathIndexData struct {
	Name      string // Named-segment name; empty for an indexer hop.
	IsIndexer bool
}

// FieldAccessData is the Data payload of a FIELD_ACCESS_EXPR node.
// Children: [receiverNode].
type FieldAccessData struct {
	Field string
}

// ResourceInitData is the Data payload of a RESOURCE_INIT_EXPR node.
// Children: []*FIELD_INIT.
type ResourceInitData struct {
	Resource string
}

// IdentifierData/STRING_LITERAL etc. carry their value directly as Data:
// IDENTIFIER → string name; INTEGER_LITERAL → *big.Int; FLOAT_LITERAL →
// float64; BOOL_LITERAL → bool; CHAR_LITERAL → rune; STRING_LITERAL →
// string (already unescaped by the front end).
