// Package bbolt implements ports.ScanStore using bbolt (embedded B+ tree).
// Each project gets its own top-level bucket with a "scans" sub-bucket
// keyed by asset path. Writes are transactional: a crash mid-write cannot
// corrupt previously committed scans.
package bbolt

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/unitylens/internal/ports"
)

var bucketScans = []byte("scans")

// Store implements ports.ScanStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path. A second
// process holding the file lock makes this fail after one second instead
// of blocking.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveScans upserts scans for a project.
func (s *Store) SaveScans(projectID string, scans []*ports.AssetScan) error {
	if len(scans) == 0 {
		return nil
	}
	encoded := make([][]byte, len(scans))
	for i, sc := range scans {
		if sc == nil || sc.Path == "" {
			return fmt.Errorf("scan %d: missing path", i)
		}
		b, err := encodeScan(sc)
		if err != nil {
			return err
		}
		encoded[i] = b
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		proj, err := tx.CreateBucketIfNotExists([]byte(projectID))
		if err != nil {
			return err
		}
		sb, err := proj.CreateBucketIfNotExists(bucketScans)
		if err != nil {
			return err
		}
		for i, sc := range scans {
			if err := sb.Put([]byte(sc.Path), encoded[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadScans returns all stored scans for a project keyed by path.
func (s *Store) LoadScans(projectID string) (map[string]*ports.AssetScan, error) {
	out := make(map[string]*ports.AssetScan)
	err := s.db.View(func(tx *bolt.Tx) error {
		proj := tx.Bucket([]byte(projectID))
		if proj == nil {
			return nil
		}
		sb := proj.Bucket(bucketScans)
		if sb == nil {
			return nil
		}
		// bbolt slices are only valid inside the transaction; decodeScan
		// copies everything it keeps.
		return sb.ForEach(func(k, v []byte) error {
			sc, err := decodeScan(string(k), v)
			if err != nil {
				return err
			}
			out[sc.Path] = sc
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteScans removes scans for the given paths. Missing entries are ignored.
func (s *Store) DeleteScans(projectID string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		proj := tx.Bucket([]byte(projectID))
		if proj == nil {
			return nil
		}
		sb := proj.Bucket(bucketScans)
		if sb == nil {
			return nil
		}
		for _, p := range paths {
			if err := sb.Delete([]byte(p)); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteProject removes all data for a project.
// Idempotent: deleting a nonexistent project is not an error.
func (s *Store) DeleteProject(projectID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(projectID))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}
