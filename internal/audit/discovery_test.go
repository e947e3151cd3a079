package audit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/codeaudit/internal/audit"
)

func TestPythonFileDiscovererListsFilesLexicographically(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()
	for _, fileName := range []string{"zeta.py", "alpha.py", "midway.py"} {
		require.NoError(testInstance, os.WriteFile(filepath.Join(targetDirectory, fileName), []byte("pass\n"), 0o644))
	}

	discoveredPaths, discoveryError := audit.NewPythonFileDiscoverer().Discover(targetDirectory)

	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{
		filepath.Join(targetDirectory, "alpha.py"),
		filepath.Join(targetDirectory, "midway.py"),
		filepath.Join(targetDirectory, "zeta.py"),
	}, discoveredPaths)
}

func TestPythonFileDiscovererIgnoresOtherEntriesAndSubdirectories(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(targetDirectory, "keep.py"), []byte("pass\n"), 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(targetDirectory, "notes.txt"), []byte("notes"), 0o644))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(targetDirectory, "nested.py"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(targetDirectory, "nested.py", "inner.py"), []byte("pass\n"), 0o644))

	discoveredPaths, discoveryError := audit.NewPythonFileDiscoverer().Discover(targetDirectory)

	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{filepath.Join(targetDirectory, "keep.py")}, discoveredPaths)
}

func TestPythonFileDiscovererEmptyDirectoryYieldsNoFiles(testInstance *testing.T) {
	discoveredPaths, discoveryError := audit.NewPythonFileDiscoverer().Discover(testInstance.TempDir())

	require.NoError(testInstance, discoveryError)
	require.Empty(testInstance, discoveredPaths)
}

func TestPythonFileDiscovererReportsUnreadableDirectory(testInstance *testing.T) {
	missingDirectory := filepath.Join(testInstance.TempDir(), "missing")

	_, discoveryError := audit.NewPythonFileDiscoverer().Discover(missingDirectory)

	require.Error(testInstance, discoveryError)
}
