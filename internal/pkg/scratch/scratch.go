// Package scratch materializes request data into short-lived files for
// libraries that want a path instead of a reader.
package scratch

import (
	"fmt"
	"os"
)

// With writes data to a new temp file in dir (os.TempDir when empty), calls fn
// with its path and removes the file afterwards, even if fn panics.
func With(dir, pattern string, data []byte, fn func(path string) error) (err error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return fmt.Errorf("create temp file failed: %w", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = fmt.Errorf("remove temp file failed: %w", rmErr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file failed: %w", err)
	}
	return fn(path)
}
