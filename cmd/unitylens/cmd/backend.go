package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/app"
	"github.com/corey/unitylens/internal/config"
	"github.com/corey/unitylens/internal/logging"
	"github.com/corey/unitylens/internal/ports"
)

// backend answers lens requests. The running daemon serves them when it is
// up; otherwise an in-process App does, without a watcher.
type backend interface {
	CodeLens(p socket.DocumentParams) ([]ports.CodeLens, error)
	Hover(p socket.HoverParams) (*ports.Hover, error)
	Execute(p socket.ExecuteCommandParams) (json.RawMessage, error)
	RenameFiles(files ...socket.FileRename) (*socket.FileOpsResult, error)
	DeleteFiles(files ...string) (*socket.FileOpsResult, error)
	Close() error
}

// openBackend connects to the daemon for root, or builds a local App.
func openBackend(root string) (backend, error) {
	client := socket.NewClient(socket.SocketPath(root))
	if client.Ping() {
		return daemonBackend{client: client}, nil
	}
	a, err := newLocalApp(root, true)
	if err != nil {
		return nil, err
	}
	if err := a.Activate(context.Background()); err != nil {
		a.Stop()
		return nil, err
	}
	return &localBackend{app: a, ctx: context.Background()}, nil
}

// loadSettings reads the global and project configuration.
func loadSettings(root string) (*config.Config, error) {
	cfg, err := config.NewLoader().WithProjectRoot(root).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newCLILogger logs warnings to stderr, or everything with --verbose.
func newCLILogger() (*zap.Logger, error) {
	level := "warn"
	if verboseFlag {
		level = "debug"
	}
	return logging.New(config.LogConfig{Level: level})
}

// newLocalApp wires an App for a one-shot command. noWatch skips the
// meta sync watcher.
func newLocalApp(root string, noWatch bool) (*app.App, error) {
	cfg, err := loadSettings(root)
	if err != nil {
		return nil, err
	}
	logger, err := newCLILogger()
	if err != nil {
		return nil, err
	}
	a, err := app.New(app.Config{
		ProjectRoot: root,
		Settings:    cfg,
		Logger:      logger,
		Parser:      newParser(root),
		NoWatch:     noWatch,
	})
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return a, nil
}

// absPath resolves a command-line path against the working directory so
// the daemon and a local App see the same file.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

type daemonBackend struct {
	client *socket.Client
}

func (d daemonBackend) CodeLens(p socket.DocumentParams) ([]ports.CodeLens, error) {
	return d.client.CodeLens(p)
}

func (d daemonBackend) Hover(p socket.HoverParams) (*ports.Hover, error) {
	return d.client.Hover(p)
}

func (d daemonBackend) Execute(p socket.ExecuteCommandParams) (json.RawMessage, error) {
	return d.client.ExecuteCommand(p)
}

func (d daemonBackend) RenameFiles(files ...socket.FileRename) (*socket.FileOpsResult, error) {
	return d.client.DidRenameFiles(files...)
}

func (d daemonBackend) DeleteFiles(files ...string) (*socket.FileOpsResult, error) {
	return d.client.DidDeleteFiles(files...)
}

func (d daemonBackend) Close() error { return nil }

type localBackend struct {
	app *app.App
	ctx context.Context
}

func (l *localBackend) CodeLens(p socket.DocumentParams) ([]ports.CodeLens, error) {
	res, err := l.app.CodeLens(l.ctx, p)
	return res.Lenses, err
}

func (l *localBackend) Hover(p socket.HoverParams) (*ports.Hover, error) {
	res, err := l.app.Hover(l.ctx, p)
	return res.Hover, err
}

// Execute round-trips the result through JSON so callers decode daemon
// and local results the same way.
func (l *localBackend) Execute(p socket.ExecuteCommandParams) (json.RawMessage, error) {
	res, err := l.app.ExecuteCommand(l.ctx, p)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return data, nil
}

func (l *localBackend) RenameFiles(files ...socket.FileRename) (*socket.FileOpsResult, error) {
	res, err := l.app.DidRenameFiles(l.ctx, socket.RenameFilesParams{Files: files})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (l *localBackend) DeleteFiles(files ...string) (*socket.FileOpsResult, error) {
	res, err := l.app.DidDeleteFiles(l.ctx, socket.DeleteFilesParams{Files: files})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (l *localBackend) Close() error { return l.app.Stop() }
