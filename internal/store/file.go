package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile creates (or truncates) path and hands a buffered writer to write.
// The buffer is flushed and the file closed on every exit path; the first error wins.
// The write is not atomic: a crash midway leaves a truncated file.
func WriteFile(path string, write func(w *bufio.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush file: %w", err)
	}
	return nil
}
