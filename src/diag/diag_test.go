package diag

import "testing"

func TestBagSuccess(t *testing.T) {
	b := NewBag()
	if !b.Success() {
		t.Fatalf("empty bag should be successful")
	}
	b.Warnf("a.reso", 1, 1, "unused variable %s", "x")
	if !b.Success() {
		t.Fatalf("a bag holding only a warning should still be successful")
	}
	if b.HasFatal() {
		t.Fatalf("a warning is not fatal")
	}
	b.Errorf("a.reso", 2, 3, "unknown type: %s", "Foo")
	if b.Success() {
		t.Fatalf("a bag holding an ERROR must report failure")
	}
	if b.HasFatal() {
		t.Fatalf("an ERROR is not FATAL")
	}
	b.Fatalf("a.reso", 0, 0, "internal: resource %s missing", "R")
	if !b.HasFatal() {
		t.Fatalf("a bag holding a FATAL must report HasFatal")
	}
	if b.Len() != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", b.Len())
	}
}

func TestDiagnosticError(t *testing.T) {
	d := &Diagnostic{Source: "a.reso", Line: 4, Column: 7, Severity: Error, Message: "Unknown type: Bogus"}
	want := "a.reso:4:7: error: Unknown type: Bogus"
	if got := d.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestDiagnosticErrorNoLocation(t *testing.T) {
	d := &Diagnostic{Source: "compilation", Severity: Fatal, Message: "no main function declared"}
	want := "compilation: fatal: no main function declared"
	if got := d.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestItemsReturnsSnapshot(t *testing.T) {
	b := NewBag()
	b.Errorf("a.reso", 1, 1, "boom")
	items := b.Items()
	items[0] = nil
	if b.Items()[0] == nil {
		t.Fatalf("Items() must return a defensive copy, not the live backing slice")
	}
}

func TestAppendIgnoresNil(t *testing.T) {
	b := NewBag()
	b.Append(nil)
	if b.Len() != 0 {
		t.Fatalf("Append(nil) must be a no-op, got Len()=%d", b.Len())
	}
}
