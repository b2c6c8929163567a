// Package parsetree defines the abstract syntax shapes produced by the Reso
// front end (lexer and ANTLR-style grammar, both external collaborators of
// this core). It owns no parsing logic: it is the contract the semantic
// analysis and code generation passes consume.
package parsetree

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// NodeType differentiates the shapes of node in the parse tree.
type NodeType int

// Node represents a single node of the parse tree handed to the core by the
// front end. Data carries node-specific payload: operator symbols,
// identifier names, literal values. Children carries the sub-tree.
type Node struct {
	Typ      NodeType
	Line     int
	Pos      int
	Data     interface{}
	Children []*Node
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	PROGRAM NodeType = iota
	FUNCTION
	RESOURCE
	FIELD
	FIELD_LIST
	PATH
	PATH_SEGMENT
	INDEXER_SEGMENT
	METHOD
	PARAM_LIST
	PARAM
	TYPE_NAME
	GENERIC_TYPE
	UNIT_TYPE
	BLOCK
	VAR_DECL
	CONST_DECL
	ASSIGN_STATEMENT
	IF_STATEMENT
	WHILE_STATEMENT
	BREAK_STATEMENT
	CONTINUE_STATEMENT
	RETURN_STATEMENT
	EXPR_STATEMENT
	BINARY_EXPR
	UNARY_EXPR
	LOGICAL_EXPR
	TERNARY_EXPR
	CAST_EXPR
	CALL_EXPR
	METHOD_CALL_EXPR
	FIELD_ACCESS_EXPR
	PATH_INDEX_EXPR
	RESOURCE_INIT_EXPR
	FIELD_INIT
	THIS_EXPR
	ARG_LIST
	IDENTIFIER
	INTEGER_LITERAL
	FLOAT_LITERAL
	BOOL_LITERAL
	CHAR_LITERAL
	STRING_LITERAL
)

// Visibility modifiers attached to FUNCTION, RESOURCE, FIELD and METHOD
// nodes via Data for the un-annotated (implicit FILEPRIVATE) or "pub"
// (explicit GLOBAL) cases. The front end records this directly on the
// relevant declaration node rather than as a distinct node type.
const (
	VisFileprivate = 0
	VisGlobal      = 1
)

// nt holds print-friendly names for NodeType, indexed by NodeType.
var nt = [...]string{
	"PROGRAM", "FUNCTION", "RESOURCE", "FIELD", "FIELD_LIST", "PATH",
	"PATH_SEGMENT", "INDEXER_SEGMENT", "METHOD", "PARAM_LIST", "PARAM",
	"TYPE_NAME", "GENERIC_TYPE", "UNIT_TYPE", "BLOCK", "VAR_DECL",
	"CONST_DECL", "ASSIGN_STATEMENT", "IF_STATEMENT", "WHILE_STATEMENT",
	"BREAK_STATEMENT", "CONTINUE_STATEMENT", "RETURN_STATEMENT",
	"EXPR_STATEMENT", "BINARY_EXPR", "UNARY_EXPR", "LOGICAL_EXPR",
	"TERNARY_EXPR", "CAST_EXPR", "CALL_EXPR", "METHOD_CALL_EXPR",
	"FIELD_ACCESS_EXPR", "PATH_INDEX_EXPR", "RESOURCE_INIT_EXPR",
	"FIELD_INIT", "THIS_EXPR", "ARG_LIST", "IDENTIFIER", "INTEGER_LITERAL",
	"FLOAT_LITERAL", "BOOL_LITERAL", "CHAR_LITERAL", "STRING_LITERAL",
}

// ----------------------
// ----- functions ------
// ----------------------

// Type returns the print-friendly name of n's NodeType.
func (n *Node) Type() string {
	if int(n.Typ) < 0 || int(n.Typ) >= len(nt) {
		return fmt.Sprintf("UNKNOWN(%d)", n.Typ)
	}
	return nt[n.Typ]
}

// String returns a print-friendly representation of n, including its Data
// payload when present.
func (n *Node) String() string {
	if n == nil {
		return "---> [NIL NODE]"
	}
	if n.Data == nil {
		return n.Type()
	}
	return fmt.Sprintf("%s [%v]", n.Type(), n.Data)
}

// Print recursively prints n and its Children, indenting once per depth.
func (n *Node) Print(depth int) {
	if n == nil {
		fmt.Printf("%*c%s\n", depth<<1, ' ', "---> NIL")
		return
	}
	fmt.Printf("%*c%s\n", depth<<1, ' ', n.String())
	for _, c := range n.Children {
		c.Print(depth + 1)
	}
}

// New creates a Node of type typ at the given source position carrying data
// and children. It is the construction entry point used by the front end
// (and by tests standing in for it) to hand trees to the core.
func New(typ NodeType, line, pos int, data interface{}, children ...*Node) *Node {
	return &Node{Typ: typ, Line: line, Pos: pos, Data: data, Children: children}
}
