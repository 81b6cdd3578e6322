// Package assets reads what Unity serializes about scripts: the GUID in a
// script's .meta sidecar, and the scenes, prefabs and assets that
// reference that GUID through m_Script or UnityEvent persistent calls.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/corey/unitylens/internal/domain/unity"
	"github.com/corey/unitylens/internal/metrics"
	"github.com/corey/unitylens/internal/ports"
)

// Usages lists the assets referencing one script, as slash-separated paths
// relative to the project root.
type Usages struct {
	Scenes  []string `json:"scenes"`
	Prefabs []string `json:"prefabs"`
	Others  []string `json:"others,omitempty"`
}

// Total counts scenes and prefabs.
func (u Usages) Total() int {
	return len(u.Scenes) + len(u.Prefabs)
}

// Reference is one UnityEvent call found in an asset.
type Reference struct {
	Asset string          `json:"asset"`
	Call  ports.EventCall `json:"call"`
}

// Index caches scan results for every serialized asset under Assets/.
type Index struct {
	root      string
	projectID string
	store     ports.ScanStore
	filter    ports.ContentFilter
	logger    *zap.Logger
	metrics   *metrics.Metrics
	workers   int
	interval  time.Duration
	now       func() time.Time

	refreshMu sync.Mutex // serializes Refresh

	mu          sync.RWMutex
	scans       map[string]*ports.AssetScan
	loaded      bool
	lastRefresh time.Time
}

// Option configures an Index.
type Option func(*Index)

// WithStore persists scans across daemon restarts.
func WithStore(store ports.ScanStore, projectID string) Option {
	return func(ix *Index) {
		ix.store = store
		ix.projectID = projectID
	}
}

// WithFilter skips the line parser for files the filter rejects. Build
// it from Markers.
func WithFilter(f ports.ContentFilter) Option {
	return func(ix *Index) { ix.filter = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithMetrics sets the collectors for scan counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(ix *Index) { ix.metrics = m }
}

// WithWorkers bounds concurrent file scans.
func WithWorkers(n int) Option {
	return func(ix *Index) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// WithRefreshInterval sets how stale the index may get before EnsureFresh
// rescans. Zero rescans on every call.
func WithRefreshInterval(d time.Duration) Option {
	return func(ix *Index) { ix.interval = d }
}

// NewIndex creates an empty index for the project at root.
func NewIndex(root string, opts ...Option) *Index {
	ix := &Index{
		root:    root,
		logger:  zap.NewNop(),
		workers: 8,
		now:     time.Now,
		scans:   make(map[string]*ports.AssetScan),
	}
	for _, o := range opts {
		o(ix)
	}
	return ix
}

// Root returns the project root.
func (ix *Index) Root() string { return ix.root }

// IsSerializedAsset reports whether path has a scanned extension.
func IsSerializedAsset(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case unity.ExtScene, unity.ExtPrefab, unity.ExtAsset:
		return true
	}
	return false
}

// EnsureFresh refreshes when the last refresh is older than the interval.
func (ix *Index) EnsureFresh(ctx context.Context) error {
	ix.mu.RLock()
	fresh := !ix.lastRefresh.IsZero() && ix.interval > 0 && ix.now().Sub(ix.lastRefresh) < ix.interval
	ix.mu.RUnlock()
	if fresh {
		return nil
	}
	return ix.Refresh(ctx)
}

// Invalidate forces the next EnsureFresh to rescan.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	ix.lastRefresh = time.Time{}
	ix.mu.Unlock()
}

type candidate struct {
	rel  string
	abs  string
	info fs.FileInfo
}

// Refresh walks Assets/, reuses cached scans whose size and mtime (or
// content hash) are unchanged, rescans the rest in parallel and drops
// entries for files that are gone.
func (ix *Index) Refresh(ctx context.Context) error {
	ix.refreshMu.Lock()
	defer ix.refreshMu.Unlock()
	started := ix.now()

	if err := ix.loadStored(); err != nil {
		ix.logger.Warn("scan cache unreadable, rescanning", zap.Error(err))
	}

	files, err := ix.collect(ctx)
	if err != nil {
		return err
	}

	ix.mu.RLock()
	prev := ix.scans
	ix.mu.RUnlock()

	results := make([]*ports.AssetScan, len(files))
	changed := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sc, dirty, err := ix.scanOne(f, prev[f.rel])
			if err != nil {
				// An unreadable file is skipped, not fatal to the refresh.
				ix.logger.Debug("asset skipped", zap.String("path", f.rel), zap.Error(err))
				return nil
			}
			results[i] = sc
			changed[i] = dirty
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh assets: %w", err)
	}

	next := make(map[string]*ports.AssetScan, len(results))
	var dirty []*ports.AssetScan
	for i, sc := range results {
		if sc == nil {
			continue
		}
		next[sc.Path] = sc
		if changed[i] {
			dirty = append(dirty, sc)
		}
	}
	var gone []string
	for p := range prev {
		if _, ok := next[p]; !ok {
			gone = append(gone, p)
		}
	}

	if ix.store != nil {
		if err := ix.store.SaveScans(ix.projectID, dirty); err != nil {
			ix.logger.Warn("save scan cache", zap.Error(err))
		}
		if err := ix.store.DeleteScans(ix.projectID, gone); err != nil {
			ix.logger.Warn("prune scan cache", zap.Error(err))
		}
	}

	ix.mu.Lock()
	ix.scans = next
	ix.lastRefresh = ix.now()
	ix.mu.Unlock()

	ix.metrics.AssetRefresh(ix.now().Sub(started), len(next))
	ix.logger.Debug("asset index refreshed",
		zap.Int("assets", len(next)),
		zap.Int("rescanned", len(dirty)),
		zap.Int("removed", len(gone)))
	return nil
}

func (ix *Index) loadStored() error {
	ix.mu.RLock()
	loaded := ix.loaded
	ix.mu.RUnlock()
	if loaded || ix.store == nil {
		return nil
	}
	stored, err := ix.store.LoadScans(ix.projectID)
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.loaded = true
	if err != nil {
		return err
	}
	for p, sc := range stored {
		if _, ok := ix.scans[p]; !ok {
			ix.scans[p] = sc
		}
	}
	return nil
}

func (ix *Index) collect(ctx context.Context) ([]candidate, error) {
	assetsDir := filepath.Join(ix.root, "Assets")
	var files []candidate
	err := filepath.WalkDir(assetsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == assetsDir {
				return err
			}
			return nil // skip inaccessible paths
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != assetsDir && unity.Hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsSerializedAsset(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(ix.root, path)
		if err != nil {
			return nil
		}
		files = append(files, candidate{rel: filepath.ToSlash(rel), abs: path, info: info})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", assetsDir, err)
	}
	return files, nil
}

// scanOne returns the scan for f and whether it differs from prev.
func (ix *Index) scanOne(f candidate, prev *ports.AssetScan) (*ports.AssetScan, bool, error) {
	mod := f.info.ModTime().UnixNano()
	size := f.info.Size()
	if prev != nil && prev.ModTime == mod && prev.Size == size {
		ix.metrics.AssetScan("hit")
		return prev, false, nil
	}

	content, err := os.ReadFile(f.abs)
	if err != nil {
		return nil, false, err
	}
	hash := xxhash.Sum64(content)
	if prev != nil && prev.Hash == hash {
		ix.metrics.AssetScan("rehash")
		cp := *prev
		cp.ModTime, cp.Size = mod, size
		return &cp, true, nil
	}

	scan := &ports.AssetScan{Path: f.rel, ModTime: mod, Size: size, Hash: hash}
	if ix.filter != nil && !ix.filter.Relevant(content) {
		ix.metrics.AssetScan("skip")
		return scan, true, nil
	}

	ix.metrics.AssetScan("miss")
	scan.ScriptGUIDs, scan.Calls = ScanAsset(content)
	return scan, true, nil
}

// UsagesOf lists scenes and prefabs whose components use the script guid.
func (ix *Index) UsagesOf(guid string) Usages {
	guid = strings.ToLower(guid)
	var u Usages
	ix.mu.RLock()
	for p, sc := range ix.scans {
		if !containsString(sc.ScriptGUIDs, guid) {
			continue
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case unity.ExtScene:
			u.Scenes = append(u.Scenes, p)
		case unity.ExtPrefab:
			u.Prefabs = append(u.Prefabs, p)
		default:
			u.Others = append(u.Others, p)
		}
	}
	ix.mu.RUnlock()
	sort.Strings(u.Scenes)
	sort.Strings(u.Prefabs)
	sort.Strings(u.Others)
	return u
}

// CallsTo returns UnityEvent calls whose target is a component with the
// script guid, or whose serialized target type names class. Results are
// ordered by asset path.
func (ix *Index) CallsTo(guid, class string) []Reference {
	guid = strings.ToLower(guid)
	var refs []Reference
	ix.mu.RLock()
	for p, sc := range ix.scans {
		for _, c := range sc.Calls {
			if (guid != "" && c.TargetGUID == guid) || MatchesType(c.TargetType, class) {
				refs = append(refs, Reference{Asset: p, Call: c})
			}
		}
	}
	ix.mu.RUnlock()
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.Asset != b.Asset {
			return a.Asset < b.Asset
		}
		if a.Call.GameObject != b.Call.GameObject {
			return a.Call.GameObject < b.Call.GameObject
		}
		return a.Call.Method < b.Call.Method
	})
	return refs
}

// Len returns the number of indexed assets.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.scans)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
