// Package metasync keeps Unity .meta sidecars next to the assets they
// describe when assets are renamed, moved or deleted outside the Unity
// editor. A sidecar is never overwritten: when the destination already has
// one, the move is skipped and reported.
package metasync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/corey/unitylens/internal/domain/unity"
	"github.com/corey/unitylens/internal/metrics"
	"github.com/corey/unitylens/internal/ports"
)

// ErrSidecarCollision is returned when the destination of a sidecar move
// already has a sidecar. Neither sidecar is modified.
var ErrSidecarCollision = errors.New("metasync: destination sidecar already exists")

// Action is what happened to one sidecar.
type Action string

const (
	ActionRenamed   Action = "renamed"
	ActionDeleted   Action = "deleted"
	ActionSkipped   Action = "skipped"
	ActionCollision Action = "collision"
	ActionFailed    Action = "failed"
)

// Outcome describes one sidecar operation. From and To are sidecar paths.
type Outcome struct {
	Action Action `json:"action"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Err    error  `json:"-"`
}

// SidecarPath returns the .meta path for an asset or folder.
func SidecarPath(path string) string {
	return path + unity.ExtMeta
}

// IsSidecar reports whether path is itself a .meta file.
func IsSidecar(path string) bool {
	return strings.EqualFold(filepath.Ext(path), unity.ExtMeta)
}

// Syncer moves and removes sidecars under one Assets directory. Operations
// are serialized, so the watcher and host requests never interleave.
type Syncer struct {
	assetsRoot string
	logger     *zap.Logger
	metrics    *metrics.Metrics
	notifier   ports.Notifier
	link       func(oldname, newname string) error

	mu sync.Mutex
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics counts operations by kind and outcome.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Syncer) { s.metrics = m }
}

// WithNotifier forwards collisions and failures to the host.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Syncer) { s.notifier = n }
}

// NewSyncer creates a syncer for paths under assetsRoot.
func NewSyncer(assetsRoot string, opts ...Option) *Syncer {
	abs, err := filepath.Abs(assetsRoot)
	if err != nil {
		abs = filepath.Clean(assetsRoot)
	}
	s := &Syncer{
		assetsRoot: abs,
		logger:     zap.NewNop(),
		link:       os.Link,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AssetsRoot returns the absolute Assets directory.
func (s *Syncer) AssetsRoot() string { return s.assetsRoot }

// inAssets reports whether path lies strictly below the Assets directory.
func (s *Syncer) inAssets(path string) bool {
	rel, err := filepath.Rel(s.assetsRoot, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

func (s *Syncer) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Rename moves oldPath's sidecar to newPath's. A missing sidecar is
// skipped. When newPath is a directory, sidecars of its children that were
// left under oldPath are moved as well. The returned error joins every
// outcome error; errors.Is(err, ErrSidecarCollision) reports collisions.
func (s *Syncer) Rename(oldPath, newPath string) ([]Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rename(oldPath, newPath)
}

func (s *Syncer) rename(oldPath, newPath string) ([]Outcome, error) {
	oldPath, newPath = s.abs(oldPath), s.abs(newPath)
	if !s.inAssets(oldPath) || !s.inAssets(newPath) || IsSidecar(oldPath) || IsSidecar(newPath) {
		return []Outcome{{Action: ActionSkipped, From: SidecarPath(oldPath), To: SidecarPath(newPath)}}, nil
	}

	outcomes := []Outcome{s.moveSidecar(oldPath, newPath)}
	if info, err := os.Stat(newPath); err == nil && info.IsDir() {
		outcomes = append(outcomes, s.reconcileDir(oldPath, newPath)...)
	}

	var errs []error
	for _, o := range outcomes {
		s.record("rename", o)
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return outcomes, errors.Join(errs...)
}

// moveSidecar moves one sidecar without ever replacing an existing file.
func (s *Syncer) moveSidecar(oldPath, newPath string) Outcome {
	from, to := SidecarPath(oldPath), SidecarPath(newPath)
	o := Outcome{From: from, To: to}

	if !exists(from) {
		o.Action = ActionSkipped
		return o
	}
	if exists(to) {
		o.Action = ActionCollision
		o.Err = fmt.Errorf("move %s: %w", to, ErrSidecarCollision)
		return o
	}

	// A hard link fails if the destination appeared since the check above,
	// so it can't clobber a sidecar written concurrently.
	err := s.link(from, to)
	switch {
	case err == nil:
		if rmErr := os.Remove(from); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			o.Action = ActionFailed
			o.Err = fmt.Errorf("remove %s after link: %w", from, rmErr)
			return o
		}
	case errors.Is(err, fs.ErrExist):
		o.Action = ActionCollision
		o.Err = fmt.Errorf("move %s: %w", to, ErrSidecarCollision)
		return o
	default:
		// No hard links here (FAT, some network shares): re-check and rename.
		if exists(to) {
			o.Action = ActionCollision
			o.Err = fmt.Errorf("move %s: %w", to, ErrSidecarCollision)
			return o
		}
		if rnErr := os.Rename(from, to); rnErr != nil {
			o.Action = ActionFailed
			o.Err = fmt.Errorf("rename %s: %w", from, rnErr)
			return o
		}
	}
	o.Action = ActionRenamed
	return o
}

// reconcileDir walks newDir and moves any child sidecar still sitting at
// the matching location under oldDir.
func (s *Syncer) reconcileDir(oldDir, newDir string) []Outcome {
	var outcomes []Outcome
	_ = filepath.WalkDir(newDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == newDir {
			return nil
		}
		if IsSidecar(path) || unity.Hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if exists(SidecarPath(path)) {
			return nil
		}
		rel, err := filepath.Rel(newDir, path)
		if err != nil {
			return nil
		}
		old := filepath.Join(oldDir, rel)
		if exists(SidecarPath(old)) && leftBehind(old) {
			outcomes = append(outcomes, s.moveSidecar(old, path))
		}
		return nil
	})
	return outcomes
}

// Delete removes path's sidecar once path itself is gone. A missing
// sidecar, or a primary that still exists, is skipped without error.
func (s *Syncer) Delete(path string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(path)
}

func (s *Syncer) delete(path string) (Outcome, error) {
	path = s.abs(path)
	o := Outcome{Action: ActionSkipped, From: SidecarPath(path)}
	switch {
	case !s.inAssets(path), IsSidecar(path), exists(path):
	case !exists(o.From):
	default:
		if err := os.Remove(o.From); err != nil && !errors.Is(err, fs.ErrNotExist) {
			o.Action = ActionFailed
			o.Err = fmt.Errorf("remove %s: %w", o.From, err)
		} else if err == nil {
			o.Action = ActionDeleted
		}
	}
	s.record("delete", o)
	return o, o.Err
}

// Apply reconciles sidecars for a batch of watcher events. Paths that
// disappeared while keeping a sidecar are paired with paths of the same
// kind (file or folder) that appeared without one: same base name first (a
// move), then same directory (a rename), then arrival order for rename
// events. Unpaired gone paths are treated as deletes.
func (s *Syncer) Apply(changes []ports.FileChange) []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	type gonePath struct {
		path   string
		rename bool
		dir    bool
	}
	type arrivedPath struct {
		path string
		dir  bool
	}
	var (
		gone    []gonePath
		arrived []arrivedPath
		seen    = make(map[string]bool)
	)
	for _, c := range changes {
		p := s.abs(c.Path)
		if IsSidecar(p) || !s.inAssets(p) || seen[p] {
			continue
		}
		switch c.Op {
		case ports.FileOpRename, ports.FileOpRemove:
			if !exists(p) && exists(SidecarPath(p)) {
				seen[p] = true
				gone = append(gone, gonePath{
					path:   p,
					rename: c.Op == ports.FileOpRename,
					dir:    folderSidecar(SidecarPath(p)),
				})
			}
		case ports.FileOpCreate:
			info, err := os.Lstat(p)
			if err == nil && !exists(SidecarPath(p)) {
				seen[p] = true
				arrived = append(arrived, arrivedPath{path: p, dir: info.IsDir()})
			}
		}
	}
	if len(gone) == 0 {
		return nil
	}

	used := make([]bool, len(arrived))
	pair := make([]int, len(gone))
	for i := range pair {
		pair[i] = -1
	}
	match := func(accept func(g gonePath, a string) bool) {
		for gi, g := range gone {
			if pair[gi] >= 0 {
				continue
			}
			for ai, a := range arrived {
				if !used[ai] && g.dir == a.dir && accept(g, a.path) {
					used[ai] = true
					pair[gi] = ai
					break
				}
			}
		}
	}
	match(func(g gonePath, a string) bool { return filepath.Base(g.path) == filepath.Base(a) })
	match(func(g gonePath, a string) bool { return filepath.Dir(g.path) == filepath.Dir(a) })
	match(func(g gonePath, a string) bool { return g.rename })

	var outcomes []Outcome
	for gi, g := range gone {
		if pair[gi] >= 0 {
			out, _ := s.rename(g.path, arrived[pair[gi]].path)
			outcomes = append(outcomes, out...)
			continue
		}
		out, _ := s.delete(g.path)
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// record logs, counts and reports one outcome.
func (s *Syncer) record(op string, o Outcome) {
	s.metrics.SidecarOp(op, string(o.Action))
	fields := []zap.Field{zap.String("op", op), zap.String("from", o.From)}
	if o.To != "" {
		fields = append(fields, zap.String("to", o.To))
	}

	switch o.Action {
	case ActionCollision:
		s.logger.Warn("sidecar move skipped: destination exists", fields...)
		s.notify(ports.LevelWarning, fmt.Sprintf("Skipped moving %s: %s already exists.", s.rel(o.From), s.rel(o.To)))
	case ActionFailed:
		s.logger.Error("sidecar operation failed", append(fields, zap.Error(o.Err))...)
		s.notify(ports.LevelError, fmt.Sprintf("Could not update %s: %v", s.rel(o.From), o.Err))
	case ActionSkipped:
		s.logger.Debug("sidecar operation skipped", fields...)
	default:
		s.logger.Info("sidecar "+string(o.Action), fields...)
	}
}

func (s *Syncer) notify(level, msg string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ports.Notification{Level: level, Message: msg, Time: time.Now()})
}

// rel shortens a path for host messages.
func (s *Syncer) rel(path string) string {
	parent := filepath.Dir(s.assetsRoot)
	if r, err := filepath.Rel(parent, path); err == nil && !strings.HasPrefix(r, "..") {
		return filepath.ToSlash(r)
	}
	return path
}

// leftBehind reports whether old no longer holds an asset: it is gone, or
// it is a directory that only contains sidecars.
func leftBehind(old string) bool {
	info, err := os.Lstat(old)
	if err != nil {
		return true
	}
	if !info.IsDir() {
		return false
	}
	only := true
	_ = filepath.WalkDir(old, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			only = false
			return filepath.SkipAll
		}
		if !d.IsDir() && !IsSidecar(path) {
			only = false
			return filepath.SkipAll
		}
		return nil
	})
	return only
}

// folderSidecar reports whether meta describes a folder. Unity writes
// "folderAsset: yes" into folder sidecars only.
func folderSidecar(meta string) bool {
	data, err := os.ReadFile(meta)
	if err != nil {
		return false
	}
	return bytes.Contains(data, []byte("folderAsset: yes"))
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

type outcomeJSON struct {
	Action Action `json:"action"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MarshalJSON flattens Err to a string for the host.
func (o Outcome) MarshalJSON() ([]byte, error) {
	w := outcomeJSON{Action: o.Action, From: o.From, To: o.To}
	if o.Err != nil {
		w.Error = o.Err.Error()
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores Err as an opaque error; collisions map back to
// ErrSidecarCollision.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var w outcomeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = Outcome{Action: w.Action, From: w.From, To: w.To}
	switch {
	case w.Action == ActionCollision:
		o.Err = fmt.Errorf("%s: %w", w.To, ErrSidecarCollision)
	case w.Error != "":
		o.Err = errors.New(w.Error)
	}
	return nil
}
