package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNested(t *testing.T) {
	tmp := t.TempDir()
	want := filepath.Join(tmp, "logs", "bot")

	got, err := EnsureDir(want)
	require.NoError(t, err)
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	_, err := EnsureDir(dir)
	require.NoError(t, err)
	_, err = EnsureDir(dir)
	require.NoError(t, err)
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "logs")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureDir(blocker)
	require.Error(t, err)
}

func TestTailLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n\nthree\nfour\n"), 0o600))

	got, err := TailLines(path, 2, 1024)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four"}, got)

	got, err = TailLines(path, 10, 1024)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three", "four"}, got)
}

func TestTailLines_DropsPartialFirstLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("aaaaaaaaaa\nbbb\nccc\n"), 0o600))

	got, err := TailLines(path, 10, 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"bbb", "ccc"}, got)
}

func TestTailLines_MissingFile(t *testing.T) {
	got, err := TailLines(filepath.Join(t.TempDir(), "nope.log"), 5, 100)
	require.NoError(t, err)
	assert.Empty(t, got)
}
