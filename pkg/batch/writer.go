package batch

import (
	"os"
	"path/filepath"
)

// WriteImage creates the parent directories of path if needed and replaces
// whatever file is there with data.
func WriteImage(data []byte, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
