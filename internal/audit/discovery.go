package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	pythonFileSuffixConstant      = ".py"
	readDirectoryTemplateConstant = "unable to read target directory %s: %w"
)

// PythonFileDiscoverer lists Python files directly under a directory in
// lexicographic order. Subdirectories are not descended into.
type PythonFileDiscoverer struct{}

// NewPythonFileDiscoverer constructs a discoverer.
func NewPythonFileDiscoverer() *PythonFileDiscoverer {
	return &PythonFileDiscoverer{}
}

// Discover returns the paths of all *.py files in targetDirectory. An
// unreadable directory is the caller's only fatal condition.
func (discoverer *PythonFileDiscoverer) Discover(targetDirectory string) ([]string, error) {
	directoryEntries, readError := os.ReadDir(targetDirectory)
	if readError != nil {
		return nil, fmt.Errorf(readDirectoryTemplateConstant, targetDirectory, readError)
	}

	discoveredPaths := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			continue
		}
		if !strings.HasSuffix(directoryEntry.Name(), pythonFileSuffixConstant) {
			continue
		}
		discoveredPaths = append(discoveredPaths, filepath.Join(targetDirectory, directoryEntry.Name()))
	}

	sort.Strings(discoveredPaths)
	return discoveredPaths, nil
}
