package metasync

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corey/unitylens/internal/domain/unity"
)

// Report lists sidecar inconsistencies under an Assets directory. Paths are
// slash-separated and relative to the project root.
type Report struct {
	Orphaned []string `json:"orphaned"` // .meta files whose asset is gone
	Missing  []string `json:"missing"`  // assets without a .meta file
}

// Clean reports whether nothing was found.
func (r Report) Clean() bool {
	return len(r.Orphaned) == 0 && len(r.Missing) == 0
}

// Audit walks the Assets tree and reports orphaned and missing sidecars.
// Missing sidecars are only reported: Unity assigns GUIDs on import.
func (s *Syncer) Audit() (Report, error) {
	var r Report
	projectRoot := filepath.Dir(s.assetsRoot)
	present := make(map[string]bool)
	var metas []string

	err := filepath.WalkDir(s.assetsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == s.assetsRoot {
			return nil
		}
		if unity.Hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSidecar(path) {
			metas = append(metas, path)
			return nil
		}
		present[path] = true
		return nil
	})
	if err != nil {
		return r, err
	}

	rel := func(p string) string {
		if out, err := filepath.Rel(projectRoot, p); err == nil {
			return filepath.ToSlash(out)
		}
		return p
	}
	hasMeta := make(map[string]bool, len(metas))
	for _, m := range metas {
		primary := strings.TrimSuffix(m, filepath.Ext(m))
		hasMeta[primary] = true
		if !present[primary] {
			r.Orphaned = append(r.Orphaned, rel(m))
		}
	}
	for p := range present {
		if !hasMeta[p] {
			r.Missing = append(r.Missing, rel(p))
		}
	}
	sort.Strings(r.Orphaned)
	sort.Strings(r.Missing)
	return r, nil
}

// Prune deletes the orphaned sidecars listed in r.
func (s *Syncer) Prune(r Report) []Outcome {
	projectRoot := filepath.Dir(s.assetsRoot)
	outcomes := make([]Outcome, 0, len(r.Orphaned))
	for _, m := range r.Orphaned {
		meta := filepath.Join(projectRoot, filepath.FromSlash(m))
		o, _ := s.Delete(strings.TrimSuffix(meta, filepath.Ext(meta)))
		outcomes = append(outcomes, o)
	}
	return outcomes
}
