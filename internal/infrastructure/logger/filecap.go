package logger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// RemoveIfLarger deletes path when it is larger than limit bytes. A missing
// file or a non-positive limit is not an error.
func RemoveIfLarger(path string, limit int64) error {
	if limit <= 0 {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() <= limit {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove oversized log file: %w", err)
	}
	return nil
}
