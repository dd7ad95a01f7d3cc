package library

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// ScanDir walks dir and returns every file accepted by match, sorted by path.
func ScanDir(dir string, match func(path string) bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !match(p) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
