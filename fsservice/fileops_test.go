package fsservice

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTextFile_WithLineNumbers(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "one\ntwo\nthree")
	svc := New([]string{root})

	content, err := svc.ReadTextFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, "1\tone\n2\ttwo\n3\tthree", content)
}

func TestWriteFile_CreatesNewFile(t *testing.T) {
	root := t.TempDir()
	svc := New([]string{root})

	path := filepath.Join(root, "new.txt")
	require.NoError(t, svc.WriteFile(path, "hello"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestMoveFile_RejectsExistingDestination(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src.txt")
	dst := filepath.Join(root, "dst.txt")
	writeFile(t, src, "a")
	writeFile(t, dst, "b")
	svc := New([]string{root})

	err := svc.MoveFile(src, dst)
	require.Error(t, err)
	svcErr, ok := err.(*ServiceError)
	require.True(t, ok)
	assert.Equal(t, ErrAlreadyExists, svcErr.Kind)
}

func TestGetFileInfo(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "hello")
	svc := New([]string{root})

	info, err := svc.GetFileInfo(path)
	require.NoError(t, err)
	assert.True(t, info.IsFile)
	assert.Equal(t, int64(5), info.Size)
}

func TestListDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "x")
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	svc := New([]string{root})

	entries, err := svc.ListDirectory(root)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCalculateDirectorySize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "12345")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "1234567890")
	svc := New([]string{root})

	size, err := svc.CalculateDirectorySize(root)
	require.NoError(t, err)
	assert.Equal(t, int64(15), size)
}

func TestFindEmptyDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	writeFile(t, filepath.Join(root, "full", "a.txt"), "x")
	svc := New([]string{root})

	dirs, err := svc.FindEmptyDirectories(root, nil)
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	assert.Equal(t, filepath.Join(root, "empty"), dirs[0])
}
