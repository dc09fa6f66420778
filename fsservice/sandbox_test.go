package fsservice

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedRoots_ValidateWithinRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644))

	roots, skipped := NewAllowedRoots([]string{root})
	assert.Equal(t, 0, skipped)

	validated, err := roots.Validate(filepath.Join(root, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "f.txt"), validated)
}

func TestAllowedRoots_RejectsOutsidePath(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	roots, _ := NewAllowedRoots([]string{root})

	denied := filepath.Join(outside, "f.txt")
	_, err := roots.Validate(denied)
	require.Error(t, err)
	svcErr, ok := err.(*ServiceError)
	require.True(t, ok)
	assert.Equal(t, ErrPathDenied, svcErr.Kind)
	assert.Contains(t, err.Error(), "Access denied")
	assert.Contains(t, err.Error(), denied)
}

func TestAllowedRoots_SegmentBoundaryNotSubstring(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "foo"), 0o755))
	roots, _ := NewAllowedRoots([]string{filepath.Join(root, "foo")})

	_, err := roots.Validate(filepath.Join(root, "foobar", "x.txt"))
	require.Error(t, err)
}

func TestAllowedRoots_NoRootsConfigured(t *testing.T) {
	roots, _ := NewAllowedRoots(nil)

	_, err := roots.Validate("/tmp/whatever")
	require.Error(t, err)
	svcErr, ok := err.(*ServiceError)
	require.True(t, ok)
	assert.Equal(t, ErrNoAllowedRoots, svcErr.Kind)
}

func TestAllowedRoots_SkipsNonDirectories(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	roots, skipped := NewAllowedRoots([]string{root, file, "/does/not/exist"})
	assert.Equal(t, 2, skipped)
	assert.Equal(t, []string{root}, roots.Snapshot())
}

func TestAllowedRoots_Replace(t *testing.T) {
	root1 := t.TempDir()
	root2 := t.TempDir()
	roots, _ := NewAllowedRoots([]string{root1})

	skipped := roots.Replace([]string{root2})
	assert.Equal(t, 0, skipped)
	assert.Equal(t, []string{root2}, roots.Snapshot())
}
