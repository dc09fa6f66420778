package fsservice

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	snippetBackwardChars = 30
	snippetMaxLength     = 200
)

var regexMetacharacters = regexp.MustCompile(`[.^$*+?()\[\]{}\\|/]`)

// ContentMatch is one matching line within a file.
type ContentMatch struct {
	LineNumber int
	StartByte  int
	Snippet    string
}

// FileSearchResult pairs a validated path with its non-empty matches.
type FileSearchResult struct {
	Path    string
	Matches []ContentMatch
}

// ContentSearch searches a single file's lines for query, returning nil
// (not an error) if the file is binary or has no matches.
func (s *Service) ContentSearch(path, query string, isRegex bool) (*FileSearchResult, error) {
	validatedPath, err := s.validate(path)
	if err != nil {
		return nil, err
	}

	pattern := query
	if !isRegex {
		pattern = regexMetacharacters.ReplaceAllStringFunc(query, func(m string) string {
			return "\\" + m
		})
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, newError(ErrIo, "invalid search pattern: %v", err)
	}

	f, err := os.Open(validatedPath)
	if err != nil {
		return nil, newError(ErrIo, "%v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var matches []ContentMatch
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Bytes()
		if bytes.IndexByte(line, 0) >= 0 {
			return nil, nil // binary file, no matches reported
		}

		loc := re.FindIndex(line)
		if loc == nil {
			continue
		}

		matches = append(matches, ContentMatch{
			LineNumber: lineNumber,
			StartByte:  loc[0],
			Snippet:    extractSnippet(string(line), loc[0]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(ErrIo, "%v", err)
	}

	if len(matches) == 0 {
		return nil, nil
	}
	return &FileSearchResult{Path: validatedPath, Matches: matches}, nil
}

// extractSnippet trims line, then returns a UTF-8-safe window of up to
// snippetMaxLength code points starting snippetBackwardChars bytes
// before matchStart, with ellipses marking truncation at either end.
func extractSnippet(line string, matchStart int) string {
	trimmed := strings.TrimSpace(line)
	trimPrefix := len(line) - len(strings.TrimLeft(line, " \t\r\n"))

	desiredStart := matchStart - trimPrefix - snippetBackwardChars
	if desiredStart < 0 {
		desiredStart = 0
	}
	start := forwardToBoundary(trimmed, desiredStart)

	end := start
	count := 0
	for end < len(trimmed) && count < snippetMaxLength {
		_, size := utf8.DecodeRuneInString(trimmed[end:])
		end += size
		count++
	}
	end = forwardToBoundary(trimmed, end)

	snippet := trimmed[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(trimmed) {
		snippet = snippet + "..."
	}
	return snippet
}

// forwardToBoundary advances pos to the next valid UTF-8 rune boundary
// in s, never exceeding len(s).
func forwardToBoundary(s string, pos int) int {
	if pos >= len(s) {
		return len(s)
	}
	if pos < 0 {
		return 0
	}
	for pos < len(s) && !utf8.RuneStart(s[pos]) {
		pos++
	}
	return pos
}

// SearchFilesContent composes SearchFiles with ContentSearch, skipping
// files that fail to open or are binary.
func (s *Service) SearchFilesContent(root, query string, isRegex bool, opts SearchOptions) ([]FileSearchResult, error) {
	entries, err := s.SearchFiles(root, opts)
	if err != nil {
		return nil, err
	}

	var results []FileSearchResult
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		result, err := s.ContentSearch(entry.Path, query, isRegex)
		if err != nil || result == nil {
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}
