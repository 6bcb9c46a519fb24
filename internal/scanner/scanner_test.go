package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScan_SkipsAlwaysIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "Main.java"), "class Main {}")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "module.exports = {}")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")

	s := New(0)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.Contains(t, result.Files[0], "Main.java")
}

func TestScan_HonorsGitignoreNegation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "gen/*\n!gen/keep.md\n")
	writeFile(t, filepath.Join(root, "gen", "generated.md"), "generated")
	writeFile(t, filepath.Join(root, "gen", "keep.md"), "keep me")

	s := New(0)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.Contains(t, result.Files[0], "keep.md")
}

func TestScan_SkipsDotfilesExceptGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n")
	writeFile(t, filepath.Join(root, ".env"), "SECRET=1")
	writeFile(t, filepath.Join(root, "README.md"), "# hi")

	s := New(0)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.Contains(t, result.Files[0], "README.md")
}

func TestScan_SkipsFilesOverSizeLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "big.go"), string(make([]byte, 2048)))

	s := New(1024)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Empty(t, result.Files)
	require.Equal(t, 1, result.SkippedFiles)
}

func TestScan_ExtensionlessAndUnknownExtensionFilesAreIndexable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Dockerfile"), "FROM scratch")
	writeFile(t, filepath.Join(root, "Makefile"), "build:\n\techo hi")
	writeFile(t, filepath.Join(root, "deploy.sh"), "#!/bin/sh\necho hi")

	s := New(0)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Files, 3)
}

func TestScan_SkipsAlwaysIgnoredNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "main.py"), "print('hi')")
	writeFile(t, filepath.Join(root, "__pycache__", "main.cpython-311.pyc"), "")
	writeFile(t, filepath.Join(root, "bin", "tool"), "")
	writeFile(t, filepath.Join(root, "Thumbs.db"), "")

	s := New(0)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.Contains(t, result.Files[0], "main.py")
}
