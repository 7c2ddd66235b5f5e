package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/boardchat/internal/domain/ports"
)

const testSettle = 50 * time.Millisecond

func startWatcher(t *testing.T, exports ...string) (string, <-chan ports.FileEvent) {
	t.Helper()
	dir := t.TempDir()

	watcher, err := NewExportWatcher(testSettle, exports...)
	require.NoError(t, err)
	t.Cleanup(func() { watcher.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)

	events, err := watcher.Watch(ctx, dir)
	require.NoError(t, err)
	return dir, events
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestNewExportWatcher_Defaults(t *testing.T) {
	watcher, err := NewExportWatcher(0)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.Equal(t, DefaultExports, watcher.exports)
	assert.Equal(t, DefaultSettle, watcher.settle)
}

func TestNewExportWatcher_RejectsPaths(t *testing.T) {
	_, err := NewExportWatcher(testSettle, "export/posts.csv")
	assert.Error(t, err)
	_, err = NewExportWatcher(testSettle, "")
	assert.Error(t, err)
}

func TestExportWatcher_EmitsOnceWhenBothExportsSettle(t *testing.T) {
	dir, events := startWatcher(t)

	write(t, dir, "posts.csv", "id,name\n")
	write(t, dir, "posts.csv", "id,name\n1,한빛상사\n")
	write(t, dir, "comments.csv", "id,post_id\n")

	select {
	case ev := <-events:
		assert.Equal(t, ports.FileModified, ev.Operation)
		assert.Equal(t, dir, ev.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for settled exports")
	}

	select {
	case ev := <-events:
		t.Errorf("burst should produce one event, got extra %v", ev)
	case <-time.After(4 * testSettle):
	}
}

func TestExportWatcher_WaitsForAllExports(t *testing.T) {
	dir, events := startWatcher(t)

	write(t, dir, "posts.csv", "id,name\n")

	select {
	case ev := <-events:
		t.Errorf("comments export is missing, got %v", ev)
	case <-time.After(5 * testSettle):
	}

	write(t, dir, "comments.csv", "id,post_id\n")
	select {
	case ev := <-events:
		assert.Equal(t, ports.FileModified, ev.Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for settled exports")
	}
}

func TestExportWatcher_IgnoresOtherFiles(t *testing.T) {
	dir, events := startWatcher(t)

	write(t, dir, "notes.txt", "hi")
	write(t, dir, "other.csv", "id\n")

	select {
	case ev := <-events:
		t.Errorf("unexpected event %v", ev)
	case <-time.After(5 * testSettle):
	}
}

func TestExportWatcher_RemovalIsImmediate(t *testing.T) {
	dir, events := startWatcher(t, "posts.csv")

	write(t, dir, "posts.csv", "id\n")
	select {
	case ev := <-events:
		require.Equal(t, ports.FileModified, ev.Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for settled export")
	}

	require.NoError(t, os.Remove(filepath.Join(dir, "posts.csv")))
	select {
	case ev := <-events:
		assert.Equal(t, ports.FileDeleted, ev.Operation)
		assert.Equal(t, "posts.csv", filepath.Base(ev.Path))
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for removal")
	}
}

func TestExportWatcher_MissingDirectory(t *testing.T) {
	watcher, err := NewExportWatcher(testSettle)
	require.NoError(t, err)
	defer watcher.Stop()

	_, err = watcher.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestExportWatcher_StopClosesEvents(t *testing.T) {
	watcher, err := NewExportWatcher(testSettle)
	require.NoError(t, err)

	events, err := watcher.Watch(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.NoError(t, watcher.Stop())

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("events channel not closed after Stop")
	}
}

func TestFileOperation_String(t *testing.T) {
	assert.Equal(t, "created", ports.FileCreated.String())
	assert.Equal(t, "modified", ports.FileModified.String())
	assert.Equal(t, "deleted", ports.FileDeleted.String())
	assert.Equal(t, "unknown", ports.FileOperation(9).String())
}
