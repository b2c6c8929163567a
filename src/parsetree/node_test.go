package parsetree

import "testing"

func TestNodeType(t *testing.T) {
	n := New(RESOURCE, 3, 1, ResourceData{Name: "Account"})
	if got := n.Type(); got != "RESOURCE" {
		t.Fatalf("Type() = %q, want RESOURCE", got)
	}
}

func TestNodeTypeOutOfRange(t *testing.T) {
	n := &Node{Typ: NodeType(9999)}
	if got := n.Type(); got != "UNKNOWN(9999)" {
		t.Fatalf("Type() = %q, want UNKNOWN(9999)", got)
	}
}

func TestNodeString(t *testing.T) {
	n := New(IDENTIFIER, 1, 1, "x")
	if got := n.String(); got != "IDENTIFIER [x]" {
		t.Fatalf("String() = %q, want IDENTIFIER [x]", got)
	}

	bare := New(UNIT_TYPE, 1, 1, nil)
	if got := bare.String(); got != "UNIT_TYPE" {
		t.Fatalf("String() = %q, want UNIT_TYPE", got)
	}
}

func TestNodeStringNil(t *testing.T) {
	var n *Node
	if got := n.String(); got != "---> [NIL NODE]" {
		t.Fatalf("String() on nil node = %q", got)
	}
}

func TestNewAttachesChildren(t *testing.T) {
	lhs := New(IDENTIFIER, 1, 1, "a")
	rhs := New(INTEGER_LITERAL, 1, 5, nil)
	bin := New(BINARY_EXPR, 1, 3, BinaryData{Op: "+"}, lhs, rhs)
	if len(bin.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(bin.Children))
	}
	if bin.Children[0] != lhs || bin.Children[1] != rhs {
		t.Fatalf("children were not preserved in order")
	}
}
