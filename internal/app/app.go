// Package app is the composition root: it builds the parser, catalog,
// asset index, scan store, metrics and syncer from a configuration, turns
// enabled features into a provider registry and serves it over the socket
// and HTTP adapters.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/corey/unitylens/catalog"
	"github.com/corey/unitylens/internal/adapters/ahocorasick"
	"github.com/corey/unitylens/internal/adapters/bbolt"
	fsw "github.com/corey/unitylens/internal/adapters/fsnotify"
	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/adapters/web"
	"github.com/corey/unitylens/internal/config"
	"github.com/corey/unitylens/internal/domain/assets"
	"github.com/corey/unitylens/internal/domain/csharp"
	"github.com/corey/unitylens/internal/domain/metasync"
	"github.com/corey/unitylens/internal/domain/unity"
	"github.com/corey/unitylens/internal/metrics"
	"github.com/corey/unitylens/internal/ports"
)

// ErrNotActive is returned by requests made before Activate or after
// Deactivate.
var ErrNotActive = errors.New("app: not active")

// App is the top-level container wiring all components together.
type App struct {
	ProjectRoot string
	ProjectID   string
	Paths       *Paths
	Settings    *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics

	Parser    ports.SourceParser
	Catalog   *unity.Catalog
	Store     *bbolt.Store // nil when the database could not be opened
	Assets    *assets.Index
	Syncer    *metasync.Syncer
	MetaSync  *metasync.Service
	notes     *Notifications
	Server    *socket.Server
	WebServer *web.Server

	watchAssets bool
	served      bool // Start brought the socket up; Stop cleans run files

	mu       sync.RWMutex
	registry *Registry // nil while inactive

	stopOnce sync.Once
}

// Config holds initialization parameters for the App.
type Config struct {
	ProjectRoot string
	ProjectID   string             // default: base name of the root
	Settings    *config.Config     // default: config.Default()
	Logger      *zap.Logger        // default: no-op
	Parser      ports.SourceParser // default: the line scanner
	DBPath      string             // default: .unitylens/unitylens.db; "-" disables the store
	// NoWatch skips the meta sync watcher on activation. One-shot CLI
	// commands set it; sidecar rename/delete requests still work.
	NoWatch bool
	// WatcherFactory overrides the fsnotify watcher (tests).
	WatcherFactory metasync.WatcherFactory
}

// New creates an App with all dependencies wired. Does not start services.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = filepath.Base(root)
	}
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Parser == nil {
		cfg.Parser = csharp.NewParser()
	}
	paths := NewPaths(root)
	if cfg.DBPath == "" {
		cfg.DBPath = paths.DB
	}

	cat, err := unity.LoadCatalog(catalog.FS, "v1")
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	cat.SetDocsBaseURL(cfg.Settings.DocsBaseURL)

	a := &App{
		ProjectRoot: root,
		ProjectID:   cfg.ProjectID,
		Paths:       paths,
		Settings:    cfg.Settings,
		Logger:      cfg.Logger,
		Metrics:     metrics.New(),
		Parser:      cfg.Parser,
		Catalog:     cat,
		notes:       NewNotifications(),
		watchAssets: !cfg.NoWatch,
	}

	// The scan cache is an optimization: without it every refresh rescans.
	indexOpts := []assets.Option{
		assets.WithLogger(a.Logger),
		assets.WithMetrics(a.Metrics),
		assets.WithWorkers(a.Settings.Assets.Workers),
		assets.WithRefreshInterval(a.Settings.Assets.RefreshInterval),
		assets.WithFilter(ahocorasick.NewMatcher(assets.Markers...)),
	}
	if cfg.DBPath != "-" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			a.Logger.Warn("scan cache disabled", zap.Error(err))
		} else if store, err := bbolt.NewStore(cfg.DBPath); err != nil {
			a.Logger.Warn("scan cache disabled", zap.String("path", cfg.DBPath), zap.Error(err))
		} else {
			a.Store = store
			indexOpts = append(indexOpts, assets.WithStore(store, a.ProjectID))
		}
	}
	a.Assets = assets.NewIndex(root, indexOpts...)

	a.Syncer = metasync.NewSyncer(filepath.Join(root, "Assets"),
		metasync.WithLogger(a.Logger),
		metasync.WithMetrics(a.Metrics),
		metasync.WithNotifier(a.notes),
	)
	factory := cfg.WatcherFactory
	if factory == nil {
		debounce := a.Settings.Sync.Debounce
		factory = func() (ports.Watcher, error) {
			return fsw.NewWatcher(fsw.WithDebounce(debounce), fsw.WithLogger(a.Logger))
		}
	}
	a.MetaSync = metasync.NewService(root, a.Syncer, factory, a.Logger)

	a.Server = socket.NewServer(a, socket.SocketPath(root), a.Logger)
	a.WebServer = web.NewServer(a, a.Metrics.Handler(), paths.PortFile, a.Logger)

	return a, nil
}

// Activate registers the enabled features. Idempotent. Features whose
// preconditions are missing stay inactive without failing activation.
func (a *App) Activate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.registry != nil {
		return nil
	}
	a.registry = a.buildRegistry(ctx)
	a.Logger.Info("activated",
		zap.String("project", a.ProjectRoot),
		zap.Strings("commands", a.registry.Commands()),
		zap.Bool("meta_sync", a.MetaSync.Active()))
	return nil
}

// Deactivate drops the registry and stops meta sync. Idempotent.
func (a *App) Deactivate() error {
	a.mu.Lock()
	a.registry = nil
	a.mu.Unlock()
	return a.MetaSync.Deactivate()
}

// Registry returns the active registry, or nil.
func (a *App) Registry() *Registry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registry
}

func (a *App) activeRegistry() (*Registry, error) {
	r := a.Registry()
	if r == nil {
		return nil, ErrNotActive
	}
	return r, nil
}

// Start activates and begins serving: the socket server always, the HTTP
// server when enabled (non-fatal if its port is taken).
func (a *App) Start(ctx context.Context) error {
	if err := a.Activate(ctx); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	if err := a.Paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", a.Paths.Root, err)
	}
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	a.served = true
	if err := os.WriteFile(a.Paths.PIDFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
		a.Logger.Warn("write pid file", zap.Error(err))
	}
	if a.Settings.HTTP.Enabled {
		port := a.Settings.HTTP.Port
		if port == 0 {
			port = web.DefaultPort(a.ProjectRoot)
		}
		if err := a.WebServer.Start(port); err != nil {
			a.Logger.Warn("http server unavailable", zap.Error(err))
		}
	}
	return nil
}

// Stop tears everything down and closes the store. Safe after a failed
// Start and idempotent.
func (a *App) Stop() error {
	var err error
	a.stopOnce.Do(func() {
		err = a.Deactivate()
		a.WebServer.Stop()
		a.Server.Stop()
		if a.Store != nil {
			if cerr := a.Store.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}
		if a.served {
			a.Paths.CleanEphemeral()
		}
	})
	return err
}

// ParserName names the active C# parser for status output.
func (a *App) ParserName() string {
	if _, ok := a.Parser.(*csharp.Parser); ok {
		return "scanner"
	}
	return "tree-sitter"
}
