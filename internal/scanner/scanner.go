// Package scanner walks a workspace root and produces the candidate file
// list for an indexing refresh: hard-coded directory skips, dotfile skips
// (.gitignore is read for its patterns but not returned), and gitignore
// semantics for everything else.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// alwaysSkipNames are pruned unconditionally by basename, independent of
// any .gitignore content: directory names prune the whole subtree, file
// names are skipped individually.
var alwaysSkipNames = map[string]bool{
	".git":         true,
	".idea":        true,
	".vscode":      true,
	"node_modules": true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"bin":          true,
	"__pycache__":  true,
	".DS_Store":    true,
	"Thumbs.db":    true,
}

// Result is the outcome of one Scan call.
type Result struct {
	Files        []string
	TotalFiles   int
	SkippedFiles int
	Errors       []error
}

// Scanner walks a directory tree applying gitignore semantics plus a
// fixed set of always-skipped directories.
type Scanner struct {
	maxFileSizeBytes int64
}

// New creates a scanner with the given per-file size ceiling.
func New(maxFileSizeBytes int64) *Scanner {
	return &Scanner{maxFileSizeBytes: maxFileSizeBytes}
}

// Scan walks root and returns every file eligible for indexing.
func (s *Scanner) Scan(root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	ignorer, err := loadIgnoreFile(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load .gitignore: %w", err)
	}

	result := &Result{Files: make([]string, 0), Errors: make([]error, 0)}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, walkErr))
			return nil
		}
		if path == root {
			return nil
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			// The bare path is probed so a "dir/*" pattern does not prune dir
			// itself and a later "!dir/file" can still re-include a file; a
			// "dir/" pattern still excludes every file below dir one by one.
			if alwaysSkipNames[d.Name()] || isDotDir(d.Name()) || ignorer.MatchesPath(relPath) {
				return fs.SkipDir
			}
			return nil
		}

		if alwaysSkipNames[d.Name()] || isDotfile(d.Name()) || ignorer.MatchesPath(relPath) {
			result.SkippedFiles++
			return nil
		}

		result.TotalFiles++

		fileInfo, infoErr := d.Info()
		if infoErr != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to stat %s: %w", path, infoErr))
			result.SkippedFiles++
			return nil
		}
		if s.maxFileSizeBytes > 0 && fileInfo.Size() > s.maxFileSizeBytes {
			result.SkippedFiles++
			return nil
		}

		result.Files = append(result.Files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return result, nil
}

func isDotDir(name string) bool {
	return strings.HasPrefix(name, ".") && name != "."
}

func isDotfile(name string) bool {
	return strings.HasPrefix(name, ".")
}

// loadIgnoreFile compiles root/.gitignore, falling back to an ignorer with
// no patterns (matches nothing) when the file is absent.
func loadIgnoreFile(root string) (*gitignore.GitIgnore, error) {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return gitignore.CompileIgnoreLines(), nil
	}
	return gitignore.CompileIgnoreFile(path)
}
