package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	fw, err := NewFileWatcher(50 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()
	require.NoError(t, fw.Watch(path))

	// Sibling changes are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))

	select {
	case got := <-fw.Notify():
		assert.Equal(t, filepath.Clean(path), got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()
	require.NoError(t, fw.Watch(path))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case got := <-fw.Notify():
		t.Fatalf("unexpected notification for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileWatcher_WatchSamePathTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	fw, err := NewFileWatcher(0)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, fw.Watch(path))
	require.NoError(t, fw.Watch(path))
}

func TestFileWatcher_CloseEndsNotify(t *testing.T) {
	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	select {
	case _, ok := <-fw.Notify():
		assert.False(t, ok, "Notify must be closed after Close")
	case <-time.After(5 * time.Second):
		t.Fatal("Notify still open after Close")
	}
}

func TestWatchLoop_ExitsOnClose(t *testing.T) {
	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	o := newTestOrchestrator(nil)
	o.watcher = fw

	done := make(chan struct{})
	go func() {
		o.watchLoop()
		close(done)
	}()
	require.NoError(t, fw.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watchLoop kept running after Close")
	}
}
