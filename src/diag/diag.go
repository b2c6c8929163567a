// Package diag implements the error/diagnostic model of spec §7: a
// Diagnostic value carrying (source, line, column, severity, message, cause)
// and a Bag that collects them. It is factored out of src/driver so that
// every earlier stage (types, symtab, sema, codegen) can report through the
// same shape without driver becoming a dependency of the stages it
// orchestrates.
//
// This generalizes the teacher's util.perror mailbox: a dedicated collector
// type with Append/Len/Errors, but without the channel-and-goroutine
// plumbing perror uses to fan in errors from parallel worker threads. Spec
// §5 makes this compiler core single-threaded, so a mutex-guarded slice
// does the same job without the machinery that existed only to serve the
// teacher's parallel passes.
package diag

import (
	"fmt"
	"sync"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Severity classifies a Diagnostic (spec §7).
type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

// String satisfies fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported condition. It implements error so it can
// be returned, wrapped and compared like any other Go error.
type Diagnostic struct {
	Source   string // Compilation unit name, or "compilation" for I/O errors (spec §7).
	Line     int
	Column   int
	Severity Severity
	Message  string
	Cause    error
}

// Error satisfies the error interface.
func (d *Diagnostic) Error() string {
	loc := d.Source
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", d.Source, d.Line, d.Column)
	}
	if d.Cause != nil {
		return fmt.Sprintf("%s: %s: %s (%v)", loc, d.Severity, d.Message, d.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (d *Diagnostic) Unwrap() error {
	return d.Cause
}

// Bag collects diagnostics for a compilation unit (or the global bucket),
// safe for use by a single compilation thread revisiting it across phases.
type Bag struct {
	mu    sync.Mutex
	items []*Diagnostic
}

// NewBag returns an empty Bag.
func NewBag() *Bag {
	return &Bag{}
}

// Append records d. Nil diagnostics are ignored.
func (b *Bag) Append(d *Diagnostic) {
	if d == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, d)
}

// Warnf appends a WARNING-severity diagnostic.
func (b *Bag) Warnf(source string, line, col int, format string, args ...interface{}) {
	b.Append(&Diagnostic{Source: source, Line: line, Column: col, Severity: Warning, Message: fmt.Sprintf(format, args...)})
}

// Errorf appends an ERROR-severity diagnostic.
func (b *Bag) Errorf(source string, line, col int, format string, args ...interface{}) {
	b.Append(&Diagnostic{Source: source, Line: line, Column: col, Severity: Error, Message: fmt.Sprintf(format, args...)})
}

// Fatalf appends a FATAL-severity diagnostic.
func (b *Bag) Fatalf(source string, line, col int, format string, args ...interface{}) {
	b.Append(&Diagnostic{Source: source, Line: line, Column: col, Severity: Fatal, Message: fmt.Sprintf(format, args...)})
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a snapshot slice of the collected diagnostics in report
// order.
func (b *Bag) Items() []*Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Diagnostic, len(b.items))
	copy(out, b.items)
	return out
}

// Success reports whether no diagnostic at ERROR or FATAL severity has been
// collected (spec §7: "success flag is true iff no reporter saw ERROR or
// FATAL").
func (b *Bag) Success() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.items {
		if d.Severity == Error || d.Severity == Fatal {
			return false
		}
	}
	return true
}

// HasFatal reports whether a FATAL diagnostic was collected, which
// short-circuits further phases (spec §7).
func (b *Bag) HasFatal() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.items {
		if d.Severity == Fatal {
			return true
		}
	}
	return false
}
