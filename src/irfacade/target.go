package irfacade

import (
	"tinygo.org/x/go-llvm"
)

// TargetMachine wraps the host target machine construction spec §4.1 calls
// for ("create host target machine") and §4.8 step 7/8 (optimize, emit).
// Grounded on the teacher's genTargetTriple/tm.CreateTargetMachine sequence
// in ir/llvm/transform.go, trimmed to the host-only case: spec §6 fixes
// "Target triple and data layout are the host defaults unless overridden by
// the host target machine", so the teacher's cross-compilation target/
// vendor/OS/ABI flag matrix has no counterpart here.
type TargetMachine struct {
	tm llvm.TargetMachine
	td llvm.TargetData
}

var targetsInitialized = false

// initializeTargets runs the one-time LLVM target registration every
// target-machine operation needs. Idempotent; safe to call more than once.
func initializeTargets() {
	if targetsInitialized {
		return
	}
	llvm.InitializeNativeTarget()
	llvm.InitializeNativeAsmPrinter()
	llvm.InitializeAllTargetInfos()
	llvm.InitializeAllTargetMCs()
	llvm.InitializeAllAsmParsers()
	llvm.InitializeAllAsmPrinters()
	targetsInitialized = true
}

// NewHostTargetMachine constructs a target machine for the host's default
// triple at the generic CPU with no extra features (spec §4.1: "create
// host target machine"). Callers own the returned TargetMachine and must
// call Dispose.
func NewHostTargetMachine() (*TargetMachine, error) {
	initializeTargets()

	triple := llvm.DefaultTargetTriple()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return nil, wrap("NewHostTargetMachine", err)
	}

	tm := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelDefault, llvm.RelocDefault, llvm.CodeModelDefault)
	td := tm.CreateTargetData()
	return &TargetMachine{tm: tm, td: td}, nil
}

// Dispose releases the target data and then the target machine
// (spec §5: scoped acquisition with guaranteed release).
func (t *TargetMachine) Dispose() {
	t.td.Dispose()
	t.tm.Dispose()
}

// Triple returns the target triple string this machine was built for.
func (t *TargetMachine) Triple() string {
	return t.tm.Triple()
}

// DataLayout returns this machine's data layout string.
func (t *TargetMachine) DataLayout() string {
	return t.td.String()
}

// ApplyTo stamps m's target triple and data layout from this machine, the
// step the driver performs after module generation and verification and
// before optimization (spec §4.8).
func (t *TargetMachine) ApplyTo(m *Module) {
	m.SetTarget(t.Triple())
	m.SetDataLayout(t.DataLayout())
}

// PointerBits reports the pointer width (32 or 64) this machine's data
// layout implies; the driver passes it to NewContext to size isize/usize.
func (t *TargetMachine) PointerBits() int {
	return t.td.PointerSize() * 8
}

// OptLevel names the four optimization levels spec §4.8 step 7 allows.
type OptLevel int

const (
	OptNone OptLevel = iota
	OptLess
	OptDefault
	OptAggressive
)

// OptKnobs are the individual pass-pipeline toggles spec §4.8 names as
// "the valid knobs": loop-vectorize, SLP-vectorize, loop-unroll,
// loop-interleave, verify-each, debug-log.
type OptKnobs struct {
	LoopVectorize  bool
	SLPVectorize   bool
	LoopUnroll     bool
	LoopInterleave bool
	VerifyEach     bool
	DebugLogging   bool
}

// DefaultKnobsForLevel derives OptKnobs from an optimization level the way
// LLVM's own -O1/-O2/-O3 defaults do: vectorization and interleaving only
// turn on at -O2 and above, unrolling from -O1.
func DefaultKnobsForLevel(level int) OptKnobs {
	return OptKnobs{
		LoopUnroll:     level >= 1,
		LoopVectorize:  level >= 2,
		SLPVectorize:   level >= 2,
		LoopInterleave: level >= 2,
	}
}

// Optimize runs the module through LLVM's default new-pass-manager
// pipeline at the given level with the given knobs (spec §4.1 "run default
// optimization pipeline for a chosen level"; spec §4.8 step 7).
func (t *TargetMachine) Optimize(m *Module, level OptLevel, knobs OptKnobs) error {
	opts := llvm.NewPassBuilderOptions()
	defer opts.Dispose()

	opts.SetLoopVectorization(knobs.LoopVectorize)
	opts.SetSLPVectorization(knobs.SLPVectorize)
	opts.SetLoopUnrolling(knobs.LoopUnroll)
	opts.SetLoopInterleaving(knobs.LoopInterleave)
	opts.SetVerifyEach(knobs.VerifyEach)
	opts.SetDebugLogging(knobs.DebugLogging)

	passes := passPipelineName(level)
	if err := m.llmod.RunPasses(passes, t.tm, opts); err != nil {
		return wrap("Optimize", err)
	}
	return nil
}

func passPipelineName(level OptLevel) string {
	switch level {
	case OptLess:
		return "default<O1>"
	case OptDefault:
		return "default<O2>"
	case OptAggressive:
		return "default<O3>"
	default:
		return "default<O0>"
	}
}

// FileType distinguishes the two output shapes EmitToFile/EmitToMemory can
// produce.
type FileType int

const (
	AssemblyFile FileType = iota
	ObjectFile
)

func (t *TargetMachine) fileType(ft FileType) llvm.CodeGenFileType {
	if ft == ObjectFile {
		return llvm.ObjectFile
	}
	return llvm.AssemblyFile
}

// EmitToFile writes m, compiled to the given file type, to path.
func (t *TargetMachine) EmitToFile(m *Module, path string, ft FileType) error {
	if err := t.tm.EmitToFile(m.llmod, path, t.fileType(ft)); err != nil {
		return wrap("EmitToFile", err)
	}
	return nil
}

// EmitToMemory compiles m to the given file type and returns the raw bytes.
func (t *TargetMachine) EmitToMemory(m *Module, ft FileType) ([]byte, error) {
	buf, err := t.tm.EmitToMemoryBuffer(m.llmod, t.fileType(ft))
	if err != nil {
		return nil, wrap("EmitToMemory", err)
	}
	defer buf.Dispose()
	return buf.Bytes(), nil
}
