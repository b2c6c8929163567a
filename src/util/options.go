package util

// Options carries the driver-level configuration described by spec §6
// (CLI surface) and §4.8/§5 (optimization level, scoped resource model).
// This generalizes the teacher's util.Options, dropping the target-machine
// selection fields (this core always targets the host machine per §6,
// "Target triple and data layout are the host defaults") and the
// token-stream/LLVM-toggle fields that only made sense when the teacher
// could also emit assembly through its non-LLVM backend.
type Options struct {
	Output      string // -o/--output
	Optimize    int    // -O/--optimize [0..3]
	Debug       bool   // -g/--debug
	Verbose     bool   // -v/--verbose
	NoPrintIR   bool   // --no-print-ir
	Threads     int    // Retained for future parallel work; this core compiles sequentially regardless.
}
