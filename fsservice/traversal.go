package fsservice

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SearchOptions configures SearchFiles.
type SearchOptions struct {
	// Pattern matches against the file's base name, case-insensitively.
	// If it already contains a wildcard it's used as-is; otherwise it's
	// wrapped as "*<pattern>*" so a plain substring matches any file name
	// anywhere in the tree.
	Pattern string
	// ExcludePatterns are matched against the entry's path relative to
	// root, case-sensitively. Each is wrapped as "*<pattern>*" when it
	// has no wildcard of its own.
	ExcludePatterns []string
	// MinBytes and MaxBytes bound a regular file's size. The bound is
	// only applied when both are set.
	MinBytes *int64
	MaxBytes *int64
}

// FileEntry describes one match returned by SearchFiles.
type FileEntry struct {
	Path  string
	IsDir bool
	Size  int64
}

// SearchFiles walks root (which must already be within the sandbox)
// recursively, following symlinks, and returns every entry whose name
// matches Pattern and is not excluded. Root itself is never included.
// Each entry's path is revalidated against the sandbox lexically and
// silently skipped if it falls outside; symlinks are not resolved for
// that check, so a symlinked directory inside root whose target lies
// outside the allow-list is still descended into.
func (s *Service) SearchFiles(root string, opts SearchOptions) ([]FileEntry, error) {
	validatedRoot, err := s.validate(root)
	if err != nil {
		return nil, err
	}

	namePattern := normalizeNamePattern(opts.Pattern)
	excludes := make([]string, len(opts.ExcludePatterns))
	for i, p := range opts.ExcludePatterns {
		excludes[i] = normalizeExcludePattern(p)
	}

	var results []FileEntry
	visitedDirs := make(map[string]bool)
	if real, err := filepath.EvalSymlinks(validatedRoot); err == nil {
		visitedDirs[real] = true
	} else {
		visitedDirs[validatedRoot] = true
	}

	var walk func(dir string)
	walk = func(dir string) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return // skip unreadable directories instead of aborting the walk
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			if _, verr := s.validate(path); verr != nil {
				continue
			}

			rel, err := filepath.Rel(validatedRoot, path)
			if err != nil {
				continue
			}
			relSlash := filepath.ToSlash(rel)

			excluded := false
			for _, ex := range excludes {
				if ok, _ := doublestar.Match(ex, relSlash); ok {
					excluded = true
					break
				}
			}
			if excluded {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				continue // e.g. removed between readdir and stat
			}

			isDir := entry.IsDir()
			if info.Mode()&os.ModeSymlink != 0 {
				target, err := os.Stat(path) // follows the link
				if err != nil {
					continue // broken symlink
				}
				isDir = target.IsDir()
				info = target
			}

			nameMatches, _ := doublestar.Match(namePattern, strings.ToLower(entry.Name()))

			if isDir {
				real, err := filepath.EvalSymlinks(path)
				if err != nil {
					real = path
				}
				if visitedDirs[real] {
					continue // symlink cycle
				}
				visitedDirs[real] = true

				if nameMatches {
					results = append(results, FileEntry{Path: path, IsDir: true})
				}
				walk(path)
				continue
			}

			if !nameMatches {
				continue
			}

			if opts.MinBytes != nil && opts.MaxBytes != nil {
				size := info.Size()
				if size < *opts.MinBytes || size > *opts.MaxBytes {
					continue
				}
			}

			results = append(results, FileEntry{Path: path, IsDir: false, Size: info.Size()})
		}
	}

	walk(validatedRoot)

	return results, nil
}

// normalizeNamePattern lowercases pattern and, if it has no glob
// metacharacter, wraps it so a bare substring matches anywhere in the
// tree under any name.
func normalizeNamePattern(pattern string) string {
	pattern = strings.ToLower(pattern)
	if strings.ContainsAny(pattern, "*?[") {
		return pattern
	}
	return "*" + pattern + "*"
}

// normalizeExcludePattern wraps a plain substring as "*pattern*" so
// exclude filters behave the same way as the name pattern.
func normalizeExcludePattern(pattern string) string {
	pattern = strings.TrimPrefix(pattern, "/")
	if strings.ContainsAny(pattern, "*?[") {
		return pattern
	}
	return "*" + pattern + "*"
}
