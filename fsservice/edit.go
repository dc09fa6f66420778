package fsservice

import (
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// EditOperation is a single find/replace instruction applied in order
// against a file's working buffer.
type EditOperation struct {
	OldText string
	NewText string
}

// ApplyEdits applies edits in order against path's contents and returns
// a unified diff fenced in backticks. When dryRun is false the result
// is written to saveTo (or back to path if saveTo is empty); when true
// the file is never touched.
func (s *Service) ApplyEdits(path string, edits []EditOperation, dryRun bool, saveTo string) (string, error) {
	if !dryRun && s.readOnly {
		return "", &ServiceError{Kind: ErrWriteDenied, Detail: "server is running in read-only mode"}
	}
	validatedPath, err := s.validate(path)
	if err != nil {
		return "", err
	}

	raw, err := os.ReadFile(validatedPath)
	if err != nil {
		return "", newError(ErrIo, "%v", err)
	}

	lineEnding := detectLineEnding(string(raw))
	original := normalizeNewlines(string(raw))
	buffer := original

	for _, edit := range edits {
		oldText := normalizeNewlines(edit.OldText)
		newText := normalizeNewlines(edit.NewText)

		if strings.Contains(buffer, oldText) {
			buffer = strings.Replace(buffer, oldText, newText, 1)
			continue
		}

		buffer, err = applyFuzzyEdit(buffer, oldText, newText)
		if err != nil {
			return "", err
		}
	}

	diffText, err := unifiedDiff(original, buffer, validatedPath)
	if err != nil {
		return "", newError(ErrIo, "%v", err)
	}

	if !dryRun {
		target := validatedPath
		if saveTo != "" {
			target, err = s.validateWrite(saveTo)
			if err != nil {
				return "", err
			}
		} else if _, err := s.validateWrite(path); err != nil {
			return "", err
		}

		finalContent := strings.ReplaceAll(buffer, "\n", lineEnding)
		if err := os.WriteFile(target, []byte(finalContent), 0o644); err != nil {
			return "", newError(ErrIo, "%v", err)
		}
	}

	return fenceDiff(diffText), nil
}

// applyFuzzyEdit finds a window of lines in buffer whose trimmed
// content matches oldText's trimmed lines, preserving indentation from
// the matched window when splicing in newText.
func applyFuzzyEdit(buffer, oldText, newText string) (string, error) {
	oldLines := splitLines(strings.TrimSuffix(oldText, "\n"))
	bufferLines := splitLines(buffer)
	newLines := splitLines(newText)

	if len(oldLines) > len(bufferLines) {
		return "", newError(ErrEditNoMatch, "edit does not match any content in the file:\n%s", oldText)
	}

	for start := 0; start+len(oldLines) <= len(bufferLines); start++ {
		if !windowMatches(bufferLines[start:start+len(oldLines)], oldLines) {
			continue
		}

		baseIndent := leadingWhitespace(bufferLines[start])
		unit := " "
		if strings.Contains(baseIndent, "\t") {
			unit = "\t"
		}

		replacement := make([]string, len(newLines))
		for j, newLine := range newLines {
			if j == 0 {
				replacement[j] = baseIndent + strings.TrimLeft(newLine, " \t")
				continue
			}
			oldIndent := ""
			if j < len(oldLines) {
				oldIndent = leadingWhitespace(oldLines[j])
			}
			newIndent := leadingWhitespace(newLine)
			delta := len(newIndent) - len(oldIndent)
			if delta < 0 {
				delta = 0
			}
			replacement[j] = baseIndent + strings.Repeat(unit, delta) + strings.TrimLeft(newLine, " \t")
		}

		result := make([]string, 0, len(bufferLines)-len(oldLines)+len(replacement))
		result = append(result, bufferLines[:start]...)
		result = append(result, replacement...)
		result = append(result, bufferLines[start+len(oldLines):]...)
		return strings.Join(result, "\n"), nil
	}

	return "", newError(ErrEditNoMatch, "edit does not match any content in the file:\n%s", oldText)
}

func windowMatches(window, old []string) bool {
	for i := range window {
		if strings.TrimSpace(window[i]) != strings.TrimSpace(old[i]) {
			return false
		}
	}
	return true
}

func leadingWhitespace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// detectLineEnding inspects raw file content for its dominant line
// ending: CRLF if present anywhere, else lone CR, else LF.
func detectLineEnding(content string) string {
	if strings.Contains(content, "\r\n") {
		return "\r\n"
	}
	if strings.Contains(content, "\r") {
		return "\r"
	}
	return "\n"
}

// normalizeNewlines collapses any CRLF or lone CR into LF.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func unifiedDiff(original, updated, name string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(updated),
		FromFile: name,
		ToFile:   name,
		Context:  4,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// fenceDiff wraps diffText in a backtick fence sized so the fence
// itself can never be confused with backticks inside the diff body.
func fenceDiff(diffText string) string {
	n := 3
	for strings.Contains(diffText, strings.Repeat("`", n)) {
		n++
	}
	fence := strings.Repeat("`", n)
	if !strings.HasSuffix(diffText, "\n") {
		diffText += "\n"
	}
	return fmt.Sprintf("%sdiff\n%s%s", fence, diffText, fence)
}
