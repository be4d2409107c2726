package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, body string, mod time.Time) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	require.NoError(t, os.Chtimes(p, mod, mod))
}

func TestListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	writeFile(t, dir, "reviews_1.csv", "a", base)
	writeFile(t, dir, "reviews_3.csv", "ccc", base.Add(2*time.Minute))
	writeFile(t, dir, "reviews_2.csv", "bb", base.Add(time.Minute))
	writeFile(t, dir, "error_page_source.html", "<html>", base.Add(time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	list, err := NewStore(dir).List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "reviews_3.csv", list[0].Name)
	require.Equal(t, int64(3), list[0].SizeBytes)
	require.Equal(t, "reviews_2.csv", list[1].Name)
	require.Equal(t, "reviews_1.csv", list[2].Name)
}

func TestListEmptyDir(t *testing.T) {
	list, err := NewStore(t.TempDir()).List()
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestListMissingDir(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing")).List()
	require.ErrorIs(t, err, ErrNoOutputDir)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	s := NewStore(dir)
	require.NoError(t, s.EnsureDir())
	_, err := s.List()
	require.NoError(t, err)
}
