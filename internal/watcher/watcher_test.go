package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	n   Notification
	err error
}

// nextAsync runs Next in the background so tests can bound the wait.
func nextAsync(w *Watcher) <-chan result {
	ch := make(chan result, 1)
	go func() {
		n, err := w.Next()
		ch <- result{n, err}
	}()
	return ch
}

func startWatcher(t *testing.T, path string, opts Options) *Watcher {
	t.Helper()
	w, err := New(path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	require.NoError(t, w.Start())
	return w
}

func TestWatcherWriteNotification(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "watched.txt")
	require.NoError(t, os.WriteFile(target, []byte("initial"), 0600))

	w := startWatcher(t, target, Options{})
	assert.Equal(t, target, w.Path())

	ch := nextAsync(w)
	require.NoError(t, os.WriteFile(target, []byte("changed"), 0600))

	select {
	case r := <-ch:
		require.NoError(t, r.err)
		assert.Equal(t, w.Target(), r.n.Path)
		assert.True(t, r.n.Op&(fsnotify.Write|fsnotify.Create) != 0)
		assert.False(t, r.n.Time.IsZero())
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for notification")
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "watched.txt")
	sibling := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(target, []byte("initial"), 0600))

	w := startWatcher(t, target, Options{})
	ch := nextAsync(w)

	require.NoError(t, os.WriteFile(sibling, []byte("noise"), 0600))

	select {
	case r := <-ch:
		t.Fatalf("unexpected notification: %v (err %v)", r.n, r.err)
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(target, []byte("signal"), 0600))

	select {
	case r := <-ch:
		require.NoError(t, r.err)
		assert.Equal(t, "watched.txt", filepath.Base(r.n.Path))
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for notification")
	}
}

func TestWatcherFollowsSymlink(t *testing.T) {
	realDir := t.TempDir()
	linkDir := t.TempDir()
	realFile := filepath.Join(realDir, "real.txt")
	link := filepath.Join(linkDir, "link.txt")
	require.NoError(t, os.WriteFile(realFile, []byte("initial"), 0600))
	if err := os.Symlink(realFile, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	w := startWatcher(t, link, Options{})
	resolved, err := filepath.EvalSymlinks(realFile)
	require.NoError(t, err)
	assert.Equal(t, resolved, w.Target())
	assert.Equal(t, link, w.Path())

	ch := nextAsync(w)
	require.NoError(t, os.WriteFile(link, []byte("through the link"), 0600))

	select {
	case r := <-ch:
		require.NoError(t, r.err)
		assert.Equal(t, resolved, r.n.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for notification through symlink")
	}
}

func TestWatcherStartDanglingSymlink(t *testing.T) {
	link := filepath.Join(t.TempDir(), "dangling.txt")
	if err := os.Symlink(filepath.Join(t.TempDir(), "gone.txt"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	w, err := New(link, Options{})
	require.NoError(t, err)
	defer w.Close()

	var setupErr *SetupError
	require.ErrorAs(t, w.Start(), &setupErr)
	assert.Equal(t, "register", setupErr.Stage)
	assert.ErrorIs(t, setupErr, os.ErrNotExist)
}

func TestWatcherStartMissingTarget(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing.txt"), Options{})
	require.NoError(t, err)
	defer w.Close()

	err = w.Start()
	var setupErr *SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, "register", setupErr.Stage)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWatcherStartDirectory(t *testing.T) {
	w, err := New(t.TempDir(), Options{})
	require.NoError(t, err)
	defer w.Close()

	var setupErr *SetupError
	require.ErrorAs(t, w.Start(), &setupErr)
	assert.Contains(t, setupErr.Error(), "is a directory")
}

func TestWatcherClosed(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "watched.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0600))

	w, err := New(target, Options{})
	require.NoError(t, err)
	require.NoError(t, w.Start())

	ch := nextAsync(w)
	require.NoError(t, w.Close())

	select {
	case r := <-ch:
		var srcErr *SourceError
		require.ErrorAs(t, r.err, &srcErr)
		assert.ErrorIs(t, r.err, ErrClosed)
	case <-time.After(3 * time.Second):
		t.Fatal("Next did not return after Close")
	}
}

func TestParseOps(t *testing.T) {
	tests := []struct {
		names    []string
		expected fsnotify.Op
		hasError bool
	}{
		{nil, DefaultOps, false},
		{[]string{"write"}, fsnotify.Write, false},
		{[]string{"WRITE", "remove"}, fsnotify.Write | fsnotify.Remove, false},
		{[]string{"create", "rename", "chmod"}, fsnotify.Create | fsnotify.Rename | fsnotify.Chmod, false},
		{[]string{"truncate"}, 0, true},
	}

	for _, tt := range tests {
		ops, err := ParseOps(tt.names)
		if tt.hasError {
			assert.Error(t, err, "names %v", tt.names)
			continue
		}
		require.NoError(t, err, "names %v", tt.names)
		assert.Equal(t, tt.expected, ops, "names %v", tt.names)
	}
}

func TestSetupErrorMessage(t *testing.T) {
	err := &SetupError{Stage: "create", Err: errors.New("too many open files")}
	assert.Equal(t, "create watcher: too many open files", err.Error())

	err = &SetupError{Stage: "register", Path: "a.txt", Err: errors.New("denied")}
	assert.Equal(t, "register watch on a.txt: denied", err.Error())
}
