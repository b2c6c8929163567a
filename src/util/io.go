// io.go provides source and output I/O for the driver. The teacher's io.go
// fanned writes from parallel backend workers through a buffered channel
// into one os.File/stdout writer; this core generates one LLVM module on a
// single thread, so there is nothing to fan in, only a file to read and a
// file to write.
package util

import (
	"os"
	"path/filepath"
)

// ReadSource reads the full contents of a single source file.
func ReadSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadSources reads every path in order, returning a parallel slice of
// contents. The first read error aborts and is returned as-is; the
// command-line entry point prints it to stderr and exits with status 1.
func ReadSources(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		s, err := ReadSource(p)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// WriteOutput writes contents to path, creating any missing parent
// directories first (spec §4.8 step 8: "optionally write to the output file
// path, creating parent directories").
func WriteOutput(path, contents string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}
