package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LoadDocuments reads every *.yaml/*.yml file under each of dirs (and their
// subdirectories) and returns their raw contents in a stable, sorted order
// so RuleVersion is deterministic across runs.
func LoadDocuments(dirs []string) ([][]byte, error) {
	var paths []string
	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			ext := filepath.Ext(path)
			if ext == ".yaml" || ext == ".yml" {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk rule directory %s: %w", dir, err)
		}
	}
	sort.Strings(paths)

	docs := make([][]byte, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rule file %s: %w", path, err)
		}
		docs = append(docs, data)
	}
	return docs, nil
}
