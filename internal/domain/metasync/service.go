package metasync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/corey/unitylens/internal/domain/unity"
	"github.com/corey/unitylens/internal/ports"
)

// ErrNotUnityProject is returned when the root lacks Library, Assets or
// ProjectSettings.
var ErrNotUnityProject = errors.New("metasync: not a Unity project")

// CheckLayout verifies that root has every Unity project directory.
func CheckLayout(root string) error {
	var missing []string
	for _, d := range unity.ProjectDirs {
		info, err := os.Stat(filepath.Join(root, d))
		if err != nil || !info.IsDir() {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s missing %s", ErrNotUnityProject, root, strings.Join(missing, ", "))
	}
	return nil
}

// WatcherFactory creates a fresh watcher for each activation.
type WatcherFactory func() (ports.Watcher, error)

// Service ties a Syncer to a watcher on the project's Assets directory.
type Service struct {
	root       string
	syncer     *Syncer
	newWatcher WatcherFactory
	logger     *zap.Logger

	mu      sync.Mutex
	watcher ports.Watcher
	stop    chan struct{}
}

// NewService creates an inactive service for the project at root.
func NewService(root string, syncer *Syncer, factory WatcherFactory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{root: root, syncer: syncer, newWatcher: factory, logger: logger}
}

// Syncer returns the underlying syncer for direct rename/delete requests.
func (s *Service) Syncer() *Syncer { return s.syncer }

// Activate checks the project layout and installs one watcher on Assets.
// It is a no-op when already active. The service deactivates itself when
// ctx is canceled.
func (s *Service) Activate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}
	if err := CheckLayout(s.root); err != nil {
		return err
	}

	w, err := s.newWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Watch(s.syncer.AssetsRoot(), func(batch []ports.FileChange) {
		s.syncer.Apply(batch)
	}); err != nil {
		_ = w.Stop()
		return fmt.Errorf("watch %s: %w", s.syncer.AssetsRoot(), err)
	}
	s.watcher = w
	s.stop = make(chan struct{})

	stop := s.stop
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Deactivate()
		case <-stop:
		}
	}()

	s.logger.Info("meta sync active", zap.String("assets", s.syncer.AssetsRoot()))
	return nil
}

// Deactivate stops the watcher. Safe to call repeatedly or before Activate.
func (s *Service) Deactivate() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	s.logger.Info("meta sync stopped")
	return w.Stop()
}

// Active reports whether a watcher is installed.
func (s *Service) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watcher != nil
}
