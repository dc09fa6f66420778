package fsservice

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ReadOnlyBlocksWrites(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello")
	svc := New([]string{root}, WithReadOnly(true))

	_, err := svc.ApplyEdits(filepath.Join(root, "a.txt"), []EditOperation{{OldText: "hello", NewText: "bye"}}, false, "")
	require.Error(t, err)
	svcErr, ok := err.(*ServiceError)
	require.True(t, ok)
	assert.Equal(t, ErrWriteDenied, svcErr.Kind)
}

func TestService_ReadOnlyAllowsReads(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello")
	svc := New([]string{root}, WithReadOnly(true))

	lines, err := svc.ReadHeadLines(filepath.Join(root, "a.txt"), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, lines)
}

func TestService_UpdateRootsReplacesAllowList(t *testing.T) {
	root1 := t.TempDir()
	root2 := t.TempDir()
	svc := New([]string{root1})

	applied, skipped := svc.UpdateRoots([]string{root2, "/definitely/not/a/dir"})
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []string{root2}, applied)
	assert.Equal(t, []string{root2}, svc.AllowedRoots())
}

func TestService_SkippedRootsWarning(t *testing.T) {
	root := t.TempDir()
	svc := New([]string{root, "/not/a/real/dir"})
	assert.NotEmpty(t, svc.SkippedRootsWarning())
}

func TestService_SetReadOnlyToggles(t *testing.T) {
	root := t.TempDir()
	svc := New([]string{root})
	assert.False(t, svc.ReadOnly())
	svc.SetReadOnly(true)
	assert.True(t, svc.ReadOnly())
}
