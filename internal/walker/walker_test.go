package walker_test

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repoctx/internal/ignore"
	"github.com/temirov/repoctx/internal/walker"
)

func writeFiles(testingHandle *testing.T, root string, files map[string]string) {
	testingHandle.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
		require.NoError(testingHandle, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(testingHandle, os.WriteFile(absolutePath, []byte(content), 0o644))
	}
}

func newWalker(patterns ...string) *walker.Walker {
	rules := ignore.NewSet(ignore.CompileLines(patterns, "test", nil))
	return walker.New(ignore.NewPolicy(rules, nil), nil)
}

func TestCollectReturnsSortedIncludedFiles(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFiles(testingHandle, root, map[string]string{
		"src/main.go": "package main\n",
		"README.md":   "# demo\n",
		"debug.log":   "noise\n",
		"docs/a.md":   "a\n",
		".git/HEAD":   "ref: refs/heads/main\n",
		".git/config": "[core]\n",
		"empty.txt":   "",
		"src/util.go": "package main\n",
	})

	paths := newWalker("*.log").Collect(root)

	assert.Equal(testingHandle, []string{"README.md", "docs/a.md", "empty.txt", "src/main.go", "src/util.go"}, paths)
}

func TestFilesExcludesBinaryContent(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFiles(testingHandle, root, map[string]string{
		"image.png": string([]byte{0x89, 'P', 'N', 'G', 0x00, 0x01}),
		"notes.txt": "text\n",
	})

	assert.Equal(testingHandle, []string{"notes.txt"}, newWalker().Collect(root))
}

func TestFilesPrunesIgnoredDirectories(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFiles(testingHandle, root, map[string]string{
		"build/keep.txt": "keep\n",
		"build/out.bin":  "out\n",
		"src/build.go":   "package src\n",
		"node_modules/x": "x\n",
	})

	paths := newWalker("build/", "!build/keep.txt", "node_modules").Collect(root)

	assert.Equal(testingHandle, []string{"src/build.go"}, paths)
}

func TestFilesSkipsUnreadableFiles(testingHandle *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		testingHandle.Skip("file permissions are not enforced for this user")
	}
	root := testingHandle.TempDir()
	files := map[string]string{}
	for fileIndex := 0; fileIndex < 10; fileIndex++ {
		files[fmt.Sprintf("file%02d.txt", fileIndex)] = "content\n"
	}
	writeFiles(testingHandle, root, files)
	lockedPath := filepath.Join(root, "file03.txt")
	require.NoError(testingHandle, os.Chmod(lockedPath, 0o000))
	testingHandle.Cleanup(func() { _ = os.Chmod(lockedPath, 0o644) })

	paths := newWalker().Collect(root)

	assert.Len(testingHandle, paths, 9)
	assert.NotContains(testingHandle, paths, "file03.txt")
}

func TestFilesSkipsSymbolicLinks(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFiles(testingHandle, root, map[string]string{"target.txt": "target\n", "dir/inner.txt": "inner\n"})
	if symlinkError := os.Symlink(filepath.Join(root, "target.txt"), filepath.Join(root, "link.txt")); symlinkError != nil {
		testingHandle.Skipf("symbolic links unavailable: %v", symlinkError)
	}
	require.NoError(testingHandle, os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "linkdir")))

	assert.Equal(testingHandle, []string{"dir/inner.txt", "target.txt"}, newWalker().Collect(root))
}

func TestFilesAppliesSizeLimit(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFiles(testingHandle, root, map[string]string{"small.txt": "12345", "large.txt": "1234567890"})
	sizeLimitedWalker := newWalker()
	sizeLimitedWalker.MaxFileSizeBytes = 5

	assert.Equal(testingHandle, []string{"small.txt"}, sizeLimitedWalker.Collect(root))
}

func TestFilesSkipsNamesWithNewlines(testingHandle *testing.T) {
	if runtime.GOOS == "windows" {
		testingHandle.Skip("newlines are not valid in Windows file names")
	}
	root := testingHandle.TempDir()
	writeFiles(testingHandle, root, map[string]string{"odd\nname.txt": "odd\n", "plain.txt": "plain\n"})

	assert.Equal(testingHandle, []string{"plain.txt"}, newWalker().Collect(root))
}

func TestFilesIsRestartableAndStopsEarly(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFiles(testingHandle, root, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})
	fileWalker := newWalker()

	var firstPass, secondPass []string
	for relativePath := range fileWalker.Files(root) {
		firstPass = append(firstPass, relativePath)
	}
	for relativePath := range fileWalker.Files(root) {
		secondPass = append(secondPass, relativePath)
	}
	assert.ElementsMatch(testingHandle, firstPass, secondPass)
	assert.Len(testingHandle, firstPass, 3)

	yielded := 0
	for range fileWalker.Files(root) {
		yielded++
		break
	}
	assert.Equal(testingHandle, 1, yielded)
}

func TestFilesWithNilPolicyStillExcludesGitMetadata(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFiles(testingHandle, root, map[string]string{".git/HEAD": "ref\n", "main.go": "package main\n"})

	assert.Equal(testingHandle, []string{"main.go"}, walker.New(nil, nil).Collect(root))
}

func TestFilesOnMissingRootYieldsNothing(testingHandle *testing.T) {
	assert.Empty(testingHandle, newWalker().Collect(filepath.Join(testingHandle.TempDir(), "absent")))
}

func TestFilesSkipsFileWhoseReadFails(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	files := map[string]string{}
	for fileIndex := 0; fileIndex < 10; fileIndex++ {
		files[fmt.Sprintf("file%02d.txt", fileIndex)] = "content\n"
	}
	writeFiles(testingHandle, root, files)
	failingPath := filepath.Join(root, "file05.txt")
	fileWalker := newWalker()
	fileWalker.ReadFile = func(name string) ([]byte, error) {
		if name == failingPath {
			return nil, fs.ErrPermission
		}
		return os.ReadFile(name)
	}

	paths := fileWalker.Collect(root)

	assert.Len(testingHandle, paths, 9)
	assert.NotContains(testingHandle, paths, "file05.txt")
}

func TestFilesKeepsBackslashInFileNames(testingHandle *testing.T) {
	if runtime.GOOS == "windows" {
		testingHandle.Skip("backslash is a path separator on Windows")
	}
	root := testingHandle.TempDir()
	writeFiles(testingHandle, root, map[string]string{`a\b.txt`: "flat\n", "a/b.txt": "nested\n"})

	assert.Equal(testingHandle, []string{"a/b.txt", `a\b.txt`}, newWalker().Collect(root))
	assert.Equal(testingHandle, []string{"a/b.txt"}, newWalker(`a\\b.txt`).Collect(root))
}

func TestFilesResolvesSymbolicLinkRoot(testingHandle *testing.T) {
	target := testingHandle.TempDir()
	writeFiles(testingHandle, target, map[string]string{"main.go": "package main\n"})
	linkedRoot := filepath.Join(testingHandle.TempDir(), "linked")
	if symlinkError := os.Symlink(target, linkedRoot); symlinkError != nil {
		testingHandle.Skipf("symbolic links unavailable: %v", symlinkError)
	}

	assert.Equal(testingHandle, []string{"main.go"}, newWalker().Collect(linkedRoot))
}

func TestFilesReincludesFileUnderTrailingDoubleStar(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFiles(testingHandle, root, map[string]string{"foo/keep.txt": "keep\n", "foo/drop.txt": "drop\n", "main.go": "package main\n"})

	assert.Equal(testingHandle, []string{"foo/keep.txt", "main.go"}, newWalker("foo/**", "!foo/keep.txt").Collect(root))
}
