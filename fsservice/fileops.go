package fsservice

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ReadTextFile reads path and returns its contents, optionally prefixed
// with 1-based line numbers.
func (s *Service) ReadTextFile(path string, withLineNumbers bool) (string, error) {
	validatedPath, err := s.validate(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(validatedPath)
	if err != nil {
		return "", newError(ErrNotFound, "%v", err)
	}
	if !withLineNumbers {
		return string(data), nil
	}

	lines := strings.Split(string(data), "\n")
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%d\t%s", i+1, line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// WriteFile writes content to path, creating it if necessary.
func (s *Service) WriteFile(path, content string) error {
	validatedPath, err := s.validateWrite(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(validatedPath, []byte(content), 0o644); err != nil {
		return newError(ErrIo, "%v", err)
	}
	return nil
}

// CreateDirectory creates path and any missing parents.
func (s *Service) CreateDirectory(path string) error {
	validatedPath, err := s.validateWrite(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(validatedPath, 0o755); err != nil {
		return newError(ErrIo, "%v", err)
	}
	return nil
}

// MoveFile renames source to destination, failing if destination
// already exists.
func (s *Service) MoveFile(source, destination string) error {
	validatedSource, err := s.validateWrite(source)
	if err != nil {
		return err
	}
	validatedDest, err := s.validateWrite(destination)
	if err != nil {
		return err
	}
	if _, err := os.Stat(validatedDest); err == nil {
		return newError(ErrAlreadyExists, "%s", validatedDest)
	}
	if err := os.Rename(validatedSource, validatedDest); err != nil {
		return newError(ErrIo, "%v", err)
	}
	return nil
}

// FileInfo mirrors the spec's FileInfo entity: optional timestamps and
// a file/directory classification.
type FileInfo struct {
	Size        int64
	Created     *time.Time
	Modified    *time.Time
	Accessed    *time.Time
	IsFile      bool
	IsDirectory bool
}

// GetFileInfo stats path and returns its metadata.
func (s *Service) GetFileInfo(path string) (*FileInfo, error) {
	validatedPath, err := s.validate(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(validatedPath)
	if err != nil {
		return nil, newError(ErrNotFound, "%v", err)
	}

	modified := info.ModTime()
	return &FileInfo{
		Size:        info.Size(),
		Modified:    &modified,
		IsFile:      !info.IsDir(),
		IsDirectory: info.IsDir(),
	}, nil
}

// DirEntryInfo describes one entry of a ListDirectory result.
type DirEntryInfo struct {
	Name  string
	IsDir bool
	Size  int64
}

// ListDirectory lists the immediate (non-recursive) contents of path.
func (s *Service) ListDirectory(path string) ([]DirEntryInfo, error) {
	validatedPath, err := s.validate(path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(validatedPath)
	if err != nil {
		return nil, newError(ErrIo, "%v", err)
	}

	out := make([]DirEntryInfo, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		size := int64(0)
		if err == nil {
			size = info.Size()
		}
		out = append(out, DirEntryInfo{Name: e.Name(), IsDir: e.IsDir(), Size: size})
	}
	return out, nil
}

// ListAllowedDirectories returns the current allow-list.
func (s *Service) ListAllowedDirectories() []string {
	return s.AllowedRoots()
}

// CalculateDirectorySize sums the size of every regular file under
// root.
func (s *Service) CalculateDirectorySize(root string) (int64, error) {
	entries, err := s.SearchFiles(root, SearchOptions{Pattern: "*"})
	if err != nil {
		return 0, err
	}

	var total int64
	for _, e := range entries {
		if !e.IsDir {
			total += e.Size
		}
	}
	return total, nil
}

// FindEmptyDirectories returns every directory under root (following
// the same exclude rules as SearchFiles) that contains no entries.
func (s *Service) FindEmptyDirectories(root string, excludePatterns []string) ([]string, error) {
	validatedRoot, err := s.validate(root)
	if err != nil {
		return nil, err
	}

	entries, err := s.SearchFiles(validatedRoot, SearchOptions{Pattern: "*", ExcludePatterns: excludePatterns})
	if err != nil {
		return nil, err
	}

	var empty []string
	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		children, err := os.ReadDir(e.Path)
		if err != nil {
			continue
		}
		if len(children) == 0 {
			empty = append(empty, e.Path)
		}
	}
	return empty, nil
}
