package fsservice

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const tailScanChunkSize = 8192

// ReadHeadLines reads and returns the first n newline-terminated lines
// of path, preserving original line endings, stopping early at EOF.
func (s *Service) ReadHeadLines(path string, n int) ([]string, error) {
	validatedPath, err := s.validate(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(validatedPath)
	if err != nil {
		return nil, newError(ErrIo, "%v", err)
	}

	return splitPreservingEndings(data, n), nil
}

// ReadTailLines scans backward from EOF in fixed-size chunks to locate
// the start of the last n lines, then reads forward, preserving line
// endings. A file with no trailing newline counts its final partial
// line as a line.
func (s *Service) ReadTailLines(path string, n int) ([]string, error) {
	validatedPath, err := s.validate(path)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	f, err := os.Open(validatedPath)
	if err != nil {
		return nil, newError(ErrIo, "%v", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, newError(ErrIo, "%v", err)
	}

	size := info.Size()
	if size == 0 {
		return nil, nil
	}

	// Scanning backward, every '\n' crossed marks the start of one more
	// line, except the very last byte of the file: if it is itself a
	// newline it only terminates the final line and isn't a separator
	// to cross. A file with no trailing newline has its final partial
	// line counted as a line automatically, since there's no such byte
	// to skip.
	newlinesNeeded := n
	pos := size
	buf := make([]byte, tailScanChunkSize)
	lineStart := int64(0)
	found := false

	for pos > 0 && !found {
		readSize := int64(len(buf))
		if pos < readSize {
			readSize = pos
		}
		pos -= readSize
		nread, err := f.ReadAt(buf[:readSize], pos)
		if err != nil && nread == 0 {
			return nil, newError(ErrIo, "%v", err)
		}
		chunk := buf[:nread]

		for i := nread - 1; i >= 0; i-- {
			if chunk[i] != '\n' {
				continue
			}
			if pos+int64(i) == size-1 {
				continue // terminator of the last line, not a separator
			}
			newlinesNeeded--
			if newlinesNeeded <= 0 {
				lineStart = pos + int64(i) + 1
				found = true
				break
			}
		}
	}
	if !found {
		lineStart = 0
	}

	if _, err := f.Seek(lineStart, 0); err != nil {
		return nil, newError(ErrIo, "%v", err)
	}
	remaining := size - lineStart
	data := make([]byte, remaining)
	if _, err := f.Read(data); err != nil {
		return nil, newError(ErrIo, "%v", err)
	}

	return splitPreservingEndings(data, n), nil
}

// ReadLines skips offset lines then emits up to limit lines (all
// remaining lines when limit is negative).
func (s *Service) ReadLines(path string, offset int, limit int) ([]string, error) {
	validatedPath, err := s.validate(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(validatedPath)
	if err != nil {
		return nil, newError(ErrIo, "%v", err)
	}

	all := splitPreservingEndings(data, -1)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// splitPreservingEndings splits data into lines that retain their
// trailing newline, stopping after max lines (max < 0 means no limit).
func splitPreservingEndings(data []byte, max int) []string {
	var lines []string
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			lines = append(lines, string(data[start:i+1]))
			start = i + 1
			if max >= 0 && len(lines) >= max {
				return lines
			}
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}

// ReadMediaFile validates path, enforces maxBytes when set, sniffs the
// MIME type (special-casing SVG by extension), and returns the MIME
// type alongside a base64-encoded copy of the file's bytes.
func (s *Service) ReadMediaFile(path string, maxBytes *int64) (mime string, encoded string, err error) {
	validatedPath, err := s.validate(path)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(validatedPath)
	if err != nil {
		return "", "", newError(ErrNotFound, "%v", err)
	}
	if maxBytes != nil && info.Size() > *maxBytes {
		return "", "", newError(ErrFileTooLarge, "%s is %d bytes, exceeds limit of %d", validatedPath, info.Size(), *maxBytes)
	}

	data, err := os.ReadFile(validatedPath)
	if err != nil {
		return "", "", newError(ErrIo, "%v", err)
	}

	if strings.EqualFold(filepath.Ext(validatedPath), ".svg") {
		mime = "image/svg+xml"
	} else {
		mime = http.DetectContentType(data)
		if idx := strings.IndexByte(mime, ';'); idx >= 0 {
			mime = mime[:idx]
		}
	}

	if !strings.HasPrefix(mime, "image/") && !strings.HasPrefix(mime, "audio/") {
		return "", "", newError(ErrInvalidMediaFile, "%s", mime)
	}

	return mime, base64.StdEncoding.EncodeToString(data), nil
}

// TreeEntry is one node of a directory_tree result.
type TreeEntry struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Children []TreeEntry `json:"children,omitempty"`
}

// DirectoryTreeResult wraps the tree JSON and whether any subtree was
// truncated by maxDepth.
type DirectoryTreeResult struct {
	Tree            []TreeEntry
	MaxDepthReached bool
}

// DirectoryTree builds a JSON-serializable tree of root's contents.
// maxDepth of 0 means "do not descend"; negative means unlimited.
// maxFiles caps the total number of entries emitted across the whole
// tree; entries beyond the cap are skipped individually.
func (s *Service) DirectoryTree(root string, maxDepth int, maxFiles int) (*DirectoryTreeResult, error) {
	validatedRoot, err := s.validate(root)
	if err != nil {
		return nil, err
	}

	budget := maxFiles
	unbounded := maxFiles < 0
	depthReached := false

	tree, err := buildTree(validatedRoot, maxDepth, unbounded, &budget, &depthReached)
	if err != nil {
		return nil, newError(ErrIo, "%v", err)
	}

	return &DirectoryTreeResult{Tree: tree, MaxDepthReached: depthReached}, nil
}

func buildTree(dir string, depthRemaining int, unbounded bool, budget *int, depthReached *bool) ([]TreeEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var result []TreeEntry
	for _, entry := range entries {
		if !unbounded && *budget <= 0 {
			break
		}

		if !unbounded {
			*budget--
		}

		node := TreeEntry{Name: entry.Name()}
		if entry.IsDir() {
			node.Type = "directory"
			if depthRemaining == 0 {
				*depthReached = true
			} else {
				children, err := buildTree(filepath.Join(dir, entry.Name()), depthRemaining-1, unbounded, budget, depthReached)
				if err != nil {
					continue
				}
				node.Children = children
			}
		} else {
			node.Type = "file"
		}

		result = append(result, node)
	}
	return result, nil
}

// MarshalTree renders a DirectoryTreeResult's tree as indented JSON.
func MarshalTree(result *DirectoryTreeResult) ([]byte, error) {
	return json.MarshalIndent(result.Tree, "", "  ")
}
