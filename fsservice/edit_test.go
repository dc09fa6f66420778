package fsservice

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEdits_ExactMatch(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	writeFile(t, path, "package main\n\nfunc old() {}\n")
	svc := New([]string{root})

	diff, err := svc.ApplyEdits(path, []EditOperation{{OldText: "func old() {}", NewText: "func new() {}"}}, false, "")
	require.NoError(t, err)
	assert.Contains(t, diff, "func new() {}")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc new() {}\n", string(content))
}

func TestApplyEdits_FuzzyIndentPreserved(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	writeFile(t, path, "func f() {\n\t\tif true {\n\t\t\treturn\n\t\t}\n}\n")
	svc := New([]string{root})

	_, err := svc.ApplyEdits(path, []EditOperation{{
		OldText: "if true {\nreturn\n}",
		NewText: "if true {\nreturn 1\n}",
	}}, false, "")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "func f() {\n\t\tif true {\n\t\treturn 1\n\t\t}\n}\n", string(content))
}

func TestApplyEdits_NoMatch(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	writeFile(t, path, "package main\n")
	svc := New([]string{root})

	_, err := svc.ApplyEdits(path, []EditOperation{{OldText: "nonexistent", NewText: "x"}}, false, "")
	require.Error(t, err)
	svcErr, ok := err.(*ServiceError)
	require.True(t, ok)
	assert.Equal(t, ErrEditNoMatch, svcErr.Kind)
}

func TestApplyEdits_DryRunDoesNotWrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	writeFile(t, path, "package main\n")
	svc := New([]string{root})

	_, err := svc.ApplyEdits(path, []EditOperation{{OldText: "package main", NewText: "package other"}}, true, "")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(content))
}

func TestApplyEdits_PreservesCRLF(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "line one\r\nline two\r\n")
	svc := New([]string{root})

	_, err := svc.ApplyEdits(path, []EditOperation{{OldText: "line one", NewText: "line ONE"}}, false, "")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "\r\n"))
	assert.Equal(t, "line ONE\r\nline two\r\n", string(content))
}

func TestFenceDiff_WidensOnBacktickCollision(t *testing.T) {
	diff := "```\nsome content\n```\n"
	fenced := fenceDiff(diff)
	assert.True(t, strings.HasPrefix(fenced, "````diff"))
}
