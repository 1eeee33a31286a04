package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectFiles_MatchesSupportedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "alpha")
	writeFixture(t, dir, "b.csv", "x,y,z")
	writeFixture(t, dir, filepath.Join("d", "c.md"), "gamma")

	files, err := collectFiles([]string{filepath.Join(dir, "**", "*")})
	require.NoError(t, err)

	require.Len(t, files, 2)
	require.Equal(t, "a.txt", files[0].Name)
	require.Equal(t, []byte("alpha"), files[0].Bytes)
	require.Equal(t, "c.md", files[1].Name)
	require.Equal(t, []byte("gamma"), files[1].Bytes)
}

func TestCollectFiles_OverlappingPatternsDeduplicated(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "alpha")

	files, err := collectFiles([]string{
		filepath.Join(dir, "**", "*.txt"),
		filepath.Join(dir, "a.*"),
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "a.txt", files[0].Name)
}

func TestCollectFiles_SortedStableOrder(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "z.txt", "last")
	writeFixture(t, dir, "a.txt", "first")
	writeFixture(t, dir, "m.md", "middle")

	files, err := collectFiles([]string{filepath.Join(dir, "*")})
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"a.txt", "m.md", "z.txt"}, names)
}

func TestCollectFiles_BadGlob(t *testing.T) {
	_, err := collectFiles([]string{"[unclosed"})
	require.Error(t, err)
}

func TestCollectFiles_NoMatches(t *testing.T) {
	files, err := collectFiles([]string{filepath.Join(t.TempDir(), "*.pdf")})
	require.NoError(t, err)
	require.Empty(t, files)
}
