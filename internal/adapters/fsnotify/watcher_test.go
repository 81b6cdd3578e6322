package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/unitylens/internal/ports"
)

// waitForBatch waits up to timeout for the callback channel to receive a batch.
func waitForBatch(ch <-chan []ports.FileChange, timeout time.Duration) ([]ports.FileChange, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return nil, false
	}
}

func startWatcher(t *testing.T, dir string, opts ...Option) <-chan []ports.FileChange {
	t.Helper()
	w, err := NewWatcher(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	batches := make(chan []ports.FileChange, 16)
	require.NoError(t, w.Watch(dir, func(changes []ports.FileChange) {
		batches <- changes
	}))
	time.Sleep(50 * time.Millisecond)
	return batches
}

func paths(changes []ports.FileChange) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.Path
	}
	return out
}

func TestWatcher_DetectsNewFile(t *testing.T) {
	dir := t.TempDir()
	batches := startWatcher(t, dir)

	newFile := filepath.Join(dir, "Player.cs")
	require.NoError(t, os.WriteFile(newFile, []byte("class Player {}"), 0644))

	batch, ok := waitForBatch(batches, 2*time.Second)
	require.True(t, ok, "expected a batch for new file")
	require.NotEmpty(t, batch)
	assert.Equal(t, newFile, batch[0].Path)
	assert.Equal(t, ports.FileOpCreate, batch[0].Op)
}

func TestWatcher_RenameArrivesInOneBatch(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "Player.cs")
	require.NoError(t, os.WriteFile(oldPath, []byte("x"), 0644))
	batches := startWatcher(t, dir, WithDebounce(150*time.Millisecond))

	newPath := filepath.Join(dir, "Hero.cs")
	require.NoError(t, os.Rename(oldPath, newPath))

	batch, ok := waitForBatch(batches, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, ports.FileOpRename, opOf(batch, oldPath))
	assert.Equal(t, ports.FileOpCreate, opOf(batch, newPath))
}

func opOf(batch []ports.FileChange, path string) ports.FileOp {
	for _, c := range batch {
		if c.Path == path {
			return c.Op
		}
	}
	return -1
}

func TestWatcher_DetectsDeletedFile(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "Old.prefab")
	require.NoError(t, os.WriteFile(testFile, []byte("x"), 0644))
	batches := startWatcher(t, dir)

	require.NoError(t, os.Remove(testFile))

	batch, ok := waitForBatch(batches, 2*time.Second)
	require.True(t, ok, "expected a batch for deleted file")
	assert.Equal(t, ports.FileOpRemove, opOf(batch, testFile))
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	batches := startWatcher(t, dir)

	sub := filepath.Join(dir, "Scripts")
	require.NoError(t, os.Mkdir(sub, 0755))
	_, ok := waitForBatch(batches, 2*time.Second)
	require.True(t, ok)

	inner := filepath.Join(sub, "Enemy.cs")
	require.NoError(t, os.WriteFile(inner, []byte("x"), 0644))
	batch, ok := waitForBatch(batches, 2*time.Second)
	require.True(t, ok, "files in a new directory are reported")
	assert.Contains(t, paths(batch), inner)
}

// collectUntil gathers batches until one contains path or timeout passes.
func collectUntil(ch <-chan []ports.FileChange, path string, timeout time.Duration) []ports.FileChange {
	var all []ports.FileChange
	deadline := time.After(timeout)
	for {
		select {
		case b := <-ch:
			all = append(all, b...)
			for _, c := range b {
				if c.Path == path {
					return all
				}
			}
		case <-deadline:
			return all
		}
	}
}

func TestWatcher_ReportsContentsOfMovedInDirectory(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "Weapons")
	require.NoError(t, os.MkdirAll(filepath.Join(outside, "Guns"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "Sword.cs"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "Guns", "Rifle.cs"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(outside, ".cache"), 0755))
	batches := startWatcher(t, dir)

	moved := filepath.Join(dir, "Weapons")
	require.NoError(t, os.Rename(outside, moved))

	rifle := filepath.Join(moved, "Guns", "Rifle.cs")
	got := collectUntil(batches, rifle, 2*time.Second)
	assert.Equal(t, ports.FileOpCreate, opOf(got, moved))
	assert.Equal(t, ports.FileOpCreate, opOf(got, filepath.Join(moved, "Sword.cs")))
	assert.Equal(t, ports.FileOpCreate, opOf(got, filepath.Join(moved, "Guns")))
	assert.Equal(t, ports.FileOpCreate, opOf(got, rifle))
	assert.NotContains(t, paths(got), filepath.Join(moved, ".cache"))

	// The moved-in tree is watched as well.
	later := filepath.Join(moved, "Guns", "Pistol.cs")
	require.NoError(t, os.WriteFile(later, []byte("x"), 0644))
	got = collectUntil(batches, later, 2*time.Second)
	assert.Contains(t, paths(got), later)
}

func TestWatcher_IgnoresHiddenAndTilde(t *testing.T) {
	dir := t.TempDir()
	hidden := filepath.Join(dir, ".git")
	tilde := filepath.Join(dir, "Backup~")
	require.NoError(t, os.MkdirAll(hidden, 0755))
	require.NoError(t, os.MkdirAll(tilde, 0755))
	batches := startWatcher(t, dir)

	os.WriteFile(filepath.Join(hidden, "HEAD"), []byte("ref"), 0644)
	os.WriteFile(filepath.Join(tilde, "Old.cs"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "Player.cs.swp"), []byte("x"), 0644)

	_, ok := waitForBatch(batches, 500*time.Millisecond)
	assert.False(t, ok, "should not have received a batch for ignored files")

	real := filepath.Join(dir, "Player.cs")
	require.NoError(t, os.WriteFile(real, []byte("x"), 0644))
	batch, ok := waitForBatch(batches, 2*time.Second)
	require.True(t, ok)
	assert.Contains(t, paths(batch), real)
}

func TestWatcher_StopCleanup(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)

	callCount := 0
	var mu sync.Mutex
	require.NoError(t, w.Watch(dir, func([]ports.FileChange) {
		mu.Lock()
		callCount++
		mu.Unlock()
	}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, w.Stop())
	mu.Lock()
	countAfterStop := callCount
	mu.Unlock()

	os.WriteFile(filepath.Join(dir, "after_stop.cs"), []byte("x"), 0644)
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	countAfterWrite := callCount
	mu.Unlock()
	assert.Equal(t, countAfterStop, countAfterWrite, "callbacks fired after Stop()")

	assert.NoError(t, w.Stop(), "double stop is safe")
}

func TestWatcher_StopFlushesPending(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(WithDebounce(time.Hour))
	require.NoError(t, err)

	var got []ports.FileChange
	var mu sync.Mutex
	require.NoError(t, w.Watch(dir, func(c []ports.FileChange) {
		mu.Lock()
		got = append(got, c...)
		mu.Unlock()
	}))
	time.Sleep(50 * time.Millisecond)

	f := filepath.Join(dir, "Pending.cs")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, w.Stop())

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, paths(got), f)
}

func TestWatcher_MissingRoot(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "nope"), func([]ports.FileChange) {}))
}

func TestCompact(t *testing.T) {
	now := time.Now()
	in := []ports.FileChange{
		{Path: "a", Op: ports.FileOpWrite, Time: now},
		{Path: "a", Op: ports.FileOpWrite, Time: now},
		{Path: "b", Op: ports.FileOpCreate, Time: now},
		{Path: "a", Op: ports.FileOpWrite, Time: now},
	}
	assert.Equal(t, []string{"a", "b", "a"}, paths(compact(in)))
}

func TestShouldIgnorePath(t *testing.T) {
	root := filepath.FromSlash("/home/dev/.projects/Game/Assets")
	assert.False(t, shouldIgnorePath(root, filepath.Join(root, "Player.cs")), "hidden parents above root don't count")
	assert.True(t, shouldIgnorePath(root, filepath.Join(root, ".hidden", "x.cs")))
	assert.True(t, shouldIgnorePath(root, filepath.Join(root, "Old~", "x.cs")))
	assert.True(t, shouldIgnorePath(root, filepath.Join(root, "x.cs.swp")))
	assert.True(t, shouldIgnorePath(root, "/elsewhere/x.cs"))
}
