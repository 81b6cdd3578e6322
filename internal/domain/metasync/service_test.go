package metasync

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/unitylens/internal/ports"
)

type fakeWatcher struct {
	mu      sync.Mutex
	root    string
	onBatch func([]ports.FileChange)
	stopped bool
}

func (f *fakeWatcher) Watch(root string, onBatch func([]ports.FileChange)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.root, f.onBatch = root, onBatch
	return nil
}

func (f *fakeWatcher) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeWatcher) emit(changes ...ports.FileChange) {
	f.mu.Lock()
	cb := f.onBatch
	f.mu.Unlock()
	cb(changes)
}

type countingFactory struct {
	mu       sync.Mutex
	watchers []*fakeWatcher
}

func (c *countingFactory) New() (ports.Watcher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &fakeWatcher{}
	c.watchers = append(c.watchers, w)
	return w, nil
}

func (c *countingFactory) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.watchers)
}

func TestService_MissingLayoutInstallsNoWatcher(t *testing.T) {
	for _, missing := range []string{"Library", "Assets", "ProjectSettings"} {
		t.Run(missing, func(t *testing.T) {
			root, assets := newProject(t)
			require.NoError(t, os.RemoveAll(filepath.Join(root, missing)))

			f := &countingFactory{}
			svc := NewService(root, NewSyncer(assets), f.New, nil)
			err := svc.Activate(context.Background())
			assert.ErrorIs(t, err, ErrNotUnityProject)
			assert.Contains(t, err.Error(), missing)
			assert.Equal(t, 0, f.count())
			assert.False(t, svc.Active())
		})
	}
}

func TestService_ActivateWatchesAssetsOnce(t *testing.T) {
	root, assets := newProject(t)
	f := &countingFactory{}
	svc := NewService(root, NewSyncer(assets), f.New, nil)

	require.NoError(t, svc.Activate(context.Background()))
	require.NoError(t, svc.Activate(context.Background()), "second activate is a no-op")
	assert.Equal(t, 1, f.count())
	assert.True(t, svc.Active())
	assert.Equal(t, assets, f.watchers[0].root)

	// Events flow into the syncer.
	player := filepath.Join(assets, "Player.cs")
	hero := filepath.Join(assets, "Hero.cs")
	write(t, player+".meta", "guid: p")
	write(t, hero, "")
	f.watchers[0].emit(
		ports.FileChange{Path: player, Op: ports.FileOpRename},
		ports.FileChange{Path: hero, Op: ports.FileOpCreate},
	)
	assert.FileExists(t, hero+".meta")

	require.NoError(t, svc.Deactivate())
	require.NoError(t, svc.Deactivate(), "second deactivate is a no-op")
	assert.True(t, f.watchers[0].stopped)
	assert.False(t, svc.Active())
}

func TestService_DeactivateWithoutActivate(t *testing.T) {
	root, assets := newProject(t)
	svc := NewService(root, NewSyncer(assets), (&countingFactory{}).New, nil)
	assert.NoError(t, svc.Deactivate())
}

func TestService_ContextCancelDeactivates(t *testing.T) {
	root, assets := newProject(t)
	f := &countingFactory{}
	svc := NewService(root, NewSyncer(assets), f.New, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.Activate(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !svc.Active() }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		f.watchers[0].mu.Lock()
		defer f.watchers[0].mu.Unlock()
		return f.watchers[0].stopped
	}, time.Second, 10*time.Millisecond)
}

func TestService_ReactivateAfterDeactivate(t *testing.T) {
	root, assets := newProject(t)
	f := &countingFactory{}
	svc := NewService(root, NewSyncer(assets), f.New, nil)

	require.NoError(t, svc.Activate(context.Background()))
	require.NoError(t, svc.Deactivate())
	require.NoError(t, svc.Activate(context.Background()))
	assert.Equal(t, 2, f.count())
	require.NoError(t, svc.Deactivate())
}

func TestCheckLayout(t *testing.T) {
	root, _ := newProject(t)
	assert.NoError(t, CheckLayout(root))
	assert.ErrorIs(t, CheckLayout(t.TempDir()), ErrNotUnityProject)
}
