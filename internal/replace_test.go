package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "foo bar\nno match\nfoofoo\n")

	changed, err := ReplaceFile(path, NewPlainPattern("foo", false), "baz")
	require.NoError(t, err)
	assert.True(t, changed)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "baz bar\nno match\nbazbaz\n", string(b))
	assert.NoFileExists(t, path+tmpSuffix)
}

func TestReplaceFile_NoMatchLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "nothing to see\n")
	before, err := os.Stat(path)
	require.NoError(t, err)

	changed, err := ReplaceFile(path, NewPlainPattern("foo", false), "baz")
	require.NoError(t, err)
	assert.False(t, changed)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, os.SameFile(before, after), "original must not be replaced")
	assert.NoFileExists(t, path+tmpSuffix)
}

func TestReplaceFile_KeepsLineEndings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "crlf.txt", "foo\r\nbar\r\nlast foo")

	_, err := ReplaceFile(path, NewPlainPattern("foo", false), "x")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\r\nbar\r\nlast x", string(b))
}

func TestReplaceFile_CaseSensitive(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "Foo FOO foo\n")

	_, err := ReplaceFile(path, NewPlainPattern("foo", false), "bar")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Foo FOO bar\n", string(b))
}

func TestReplaceFile_ExistingTempIsNotClobbered(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "foo\n")
	tmp := writeFile(t, dir, "a.txt"+tmpSuffix, "earlier content\n")

	_, err := ReplaceFile(path, NewPlainPattern("foo", false), "bar")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrExist)
	assert.ErrorContains(t, err, tmp+" already exists")

	b, err := os.ReadFile(tmp)
	require.NoError(t, err)
	assert.Equal(t, "earlier content\n", string(b))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo\n", string(b))
}

func TestReplaceFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	_, err := ReplaceFile(path, NewPlainPattern("foo", false), "bar")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NoFileExists(t, path+tmpSuffix)
}

func TestReplaceFile_KeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.sh", "echo foo\n")
	require.NoError(t, os.Chmod(path, 0750))

	_, err := ReplaceFile(path, NewPlainPattern("foo", false), "bar")
	require.NoError(t, err)

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0750), st.Mode().Perm())
}
