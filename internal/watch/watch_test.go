package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/sqlkit/internal/testutil"
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew_NoPaths(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestNew_MissingPath(t *testing.T) {
	_, err := New(Config{Paths: []string{filepath.Join(t.TempDir(), "nope")}})
	require.Error(t, err)
}

func TestWatcher_CheckAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.sql"), "SELECT 1")
	writeFile(t, filepath.Join(dir, "sub", "b.sql"), "SELECT (1")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not sql")
	writeFile(t, filepath.Join(dir, ".sqlkit", "scratch.sql"), "SELECT (")
	writeFile(t, filepath.Join(dir, "sub", ".git", "x.sql"), "SELECT (")

	w, err := New(Config{Paths: []string{dir}, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	events, err := w.CheckAll()
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "a.sql", filepath.Base(events[0].Path))
	assert.True(t, events[0].Result.Valid)
	assert.Equal(t, "b.sql", filepath.Base(events[1].Path))
	assert.False(t, events[1].Result.Valid)
	assert.NotEmpty(t, events[1].Result.Error)
}

func TestWatcher_CheckUsesLintConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "drop.sql")
	writeFile(t, file, "DROP TABLE users")

	w, err := New(Config{Paths: []string{file}, Lint: lint.NewConfig().Disable("SQ04")})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ch := w.Notifier().Subscribe()
	defer w.Notifier().Unsubscribe(ch)

	ev, err := w.Check(file)
	require.NoError(t, err)
	assert.True(t, ev.Result.Valid)
	assert.Empty(t, ev.Result.Error)

	select {
	case got := <-ch:
		assert.Equal(t, file, got.Path)
	case <-time.After(time.Second):
		t.Fatal("no event broadcast")
	}
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "query.sql")
	writeFile(t, file, "SELECT 1")

	w, err := New(Config{
		Paths:    []string{dir},
		Logger:   testutil.NewTestLogger(t),
		Debounce: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ch := w.Notifier().Subscribe()
	defer w.Notifier().Unsubscribe(ch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, file, "SELECT * FROM users WHERE name = 'x")

	select {
	case ev := <-ch:
		assert.Equal(t, file, ev.Path)
		assert.False(t, ev.Result.Valid)
	case <-time.After(5 * time.Second):
		t.Fatal("no event after write")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_Covers(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Paths: []string{dir}})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)

	assert.True(t, w.covers(filepath.Join(abs, "x.sql")))
	assert.True(t, w.covers(filepath.Join(abs, "nested", "y.sql")))
	assert.False(t, w.covers(filepath.Join(abs, "x.txt")))
	assert.False(t, w.covers(filepath.Join(filepath.Dir(abs), "other.sql")))
	assert.False(t, w.covers(filepath.Join(abs, ".sqlkit", "z.sql")))
	assert.False(t, w.covers(filepath.Join(abs, "nested", ".git", "z.sql")))
	assert.True(t, w.covers(filepath.Join(abs, ".hidden.sql")))
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.sql")
	b := filepath.Join(dir, "sub", "b.sql")
	writeFile(t, a, "SELECT 1")
	writeFile(t, b, "SELECT 2")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not sql")
	writeFile(t, filepath.Join(dir, ".cache", "hidden.sql"), "SELECT 3")

	t.Run("directory", func(t *testing.T) {
		files, err := FindFiles([]string{dir})
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, files)
	})

	t.Run("files and duplicates", func(t *testing.T) {
		files, err := FindFiles([]string{b, dir, a})
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, files)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := FindFiles([]string{filepath.Join(dir, "nope")})
		require.Error(t, err)
	})
}
