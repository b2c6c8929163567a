// Package driver implements the Compilation Driver of spec §4.8: it owns
// the scoped lifetime of every heavy external resource (LLVM context,
// module, builder, target machine) and runs the fixed phase sequence --
// parse, register signatures, declare functions, generate code, verify,
// optimize, emit -- that turns a set of source files into LLVM textual IR.
//
// Grounded on the teacher's run() function in src/main.go, which threaded
// util.Options through a linear sequence of stage calls
// (frontend.Parse -> ir.Optimise -> ir.GenerateSymTab -> ir.ValidateTree ->
// backend.GenerateAssembler) and bailed on the first stage to report an
// error. This core's stages differ (two-pass signature registration
// instead of one symbol-table walk, since resources resolve across files),
// but the shape -- a handful of named stages run in order, each capable of
// stopping the pipeline -- carries over directly.
package driver

import (
	"resoc/src/codegen"
	"resoc/src/diag"
	"resoc/src/irfacade"
	"resoc/src/parsetree"
	"resoc/src/sema"
	"resoc/src/symtab"
	"resoc/src/types"
	"resoc/src/util"
)

// Frontend parses one compilation unit's source text into a parse tree,
// reporting syntax errors into bag (spec §4.8 step 1-2; spec §1 names the
// lexer/parser grammar an external collaborator of this core, so Compile
// takes the front end as a dependency rather than embedding one).
type Frontend func(unitID, source string, bag *diag.Bag) *parsetree.Node

// Source names one compilation unit handed to Compile: its identifier (the
// file name, used for diagnostics and FILEPRIVATE checks) and its raw text.
type Source struct {
	ID   string
	Text string
}

// Result is what Compile returns on every path, success or failure: the
// generated IR text (empty on every failure except a failed output write),
// whether the build succeeded, and every diagnostic collected across every
// unit plus the global bucket (spec §7: "collected per compilation unit
// plus a global bucket").
type Result struct {
	IR          string
	Success     bool
	Diagnostics []*diag.Diagnostic
}

// Compile runs spec §4.8's fixed phase sequence over sources, returning the
// generated LLVM IR text. opts controls optimization level and output
// behavior; fe supplies parsing. Compile never panics on user input: every
// user-facing failure is reported as a diagnostic on the returned Result.
func Compile(sources []Source, fe Frontend, opts util.Options) (*Result, error) {
	global := diag.NewBag()

	if len(sources) == 0 {
		global.Fatalf("compilation", 0, 0, "no source files given")
		return finish(nil, global, ""), nil
	}

	// Phase 1-2: parse every unit; a unit with parse errors stops the build
	// before any registration pass sees a malformed tree.
	units := make([]sema.Unit, 0, len(sources))
	for _, s := range sources {
		bag := diag.NewBag()
		root := fe(s.ID, s.Text, bag)
		if root == nil && bag.Success() {
			bag.Fatalf(s.ID, 0, 0, "parse error: no syntax tree produced")
		}
		units = append(units, sema.Unit{ID: s.ID, Root: root, Bag: bag})
	}
	if !unitsOK(units) {
		return finish(units, global, ""), nil
	}

	tm, err := irfacade.NewHostTargetMachine()
	if err != nil {
		global.Fatalf("compilation", 0, 0, "could not construct target machine: %s", err)
		return finish(units, global, ""), nil
	}
	defer tm.Dispose()

	ctx := irfacade.NewContext(tm.PointerBits())
	defer ctx.Dispose()
	mod := ctx.NewModule("resoc_module")
	defer mod.Dispose()
	b := ctx.NewBuilder()
	defer b.Dispose()

	reg := types.NewRegistry(ctx)
	sym := symtab.New()

	// Built-ins are synthesized directly as IR (sema.RegisterBuiltins),
	// not parsed from a hand-written Reso source corpus: spec §4.8 step 1's
	// "built-ins plus user units" is satisfied by running this before Pass
	// A/B ever sees a user unit, so Vector<T>, String, to_string, print and
	// println are already registered global symbols by the time user
	// resources and functions resolve their types.
	ensureVector := sema.RegisterBuiltins(reg, ctx, mod, sym)
	stringType := sema.EnsureStringType(reg, ctx, mod, ensureVector)

	// Phase 3: Pass A then Pass B, across all units.
	sema.PassA(units, ctx, reg, sym)
	sema.PassB(units, ctx, mod, reg, sym)
	if unitsFatal(units, global) {
		return finish(units, global, ""), nil
	}

	// Phase 4: function declarations, including the main contract.
	sema.DeclareFunctions(units, mod, reg, sym)
	if unitsFatal(units, global) {
		return finish(units, global, ""), nil
	}

	// Phase 5: generate code for every unit. Errors in one unit don't stop
	// the others from being attempted; the overall build still fails.
	gen := codegen.New(ctx, mod, reg, sym, ensureVector, stringType)
	for _, u := range units {
		gen.GenerateUnit(u, b)
	}
	if !unitsOK(units) {
		return finish(units, global, ""), nil
	}

	// Phase 6: verify. A failed module never reaches optimization or
	// emission (spec §4.8 step 6: "If verification fails, fatal").
	if err := mod.Verify(); err != nil {
		global.Fatalf("compilation", 0, 0, "module verification failed: %s", err)
		return finish(units, global, ""), nil
	}

	// Phase 7: optimize, if requested. Target triple/data layout are always
	// stamped, independent of whether optimization runs.
	tm.ApplyTo(mod)
	if opts.Optimize > 0 {
		level := irfacade.OptLevel(opts.Optimize)
		knobs := irfacade.DefaultKnobsForLevel(opts.Optimize)
		knobs.DebugLogging = opts.Verbose
		if err := tm.Optimize(mod, level, knobs); err != nil {
			global.Fatalf("compilation", 0, 0, "optimization failed: %s", err)
			return finish(units, global, ""), nil
		}
	}

	if opts.Verbose && !opts.NoPrintIR {
		mod.Dump()
	}

	// Phase 8: return the IR text, optionally writing it to the output path.
	ir := mod.String()
	if opts.Output != "" {
		if err := util.WriteOutput(opts.Output, ir); err != nil {
			global.Fatalf("compilation", 0, 0, "could not write output: %s", err)
			return finish(units, global, ir), nil
		}
	}

	return finish(units, global, ir), nil
}

// unitsOK reports whether every unit's bag saw no ERROR/FATAL diagnostic.
func unitsOK(units []sema.Unit) bool {
	for _, u := range units {
		if !u.Bag.Success() {
			return false
		}
	}
	return true
}

// unitsFatal reports whether global or any unit's bag saw a FATAL
// diagnostic, which short-circuits the remaining phases (spec §7).
func unitsFatal(units []sema.Unit, global *diag.Bag) bool {
	if global.HasFatal() {
		return true
	}
	for _, u := range units {
		if u.Bag.HasFatal() {
			return true
		}
	}
	return false
}

// finish folds every unit's diagnostics together with global's into one
// Result, success iff none of them saw ERROR/FATAL (spec §7: "the driver
// never throws for user errors; it returns a result whose success flag is
// true iff no reporter saw ERROR or FATAL").
func finish(units []sema.Unit, global *diag.Bag, ir string) *Result {
	success := global.Success()
	items := global.Items()
	for _, u := range units {
		items = append(items, u.Bag.Items()...)
		success = success && u.Bag.Success()
	}
	return &Result{IR: ir, Success: success, Diagnostics: items}
}
