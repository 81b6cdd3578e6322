// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// ScanStore persists asset scan results so scene and prefab files are only
// re-parsed when their content changes. The backing store (bbolt) is
// project-scoped: each projectID gets its own namespace.
type ScanStore interface {
	// SaveScans upserts scan results for a project in one transaction.
	SaveScans(projectID string, scans []*AssetScan) error

	// LoadScans returns every stored scan for a project keyed by relative
	// path. Returns an empty map (not an error) for a fresh project.
	LoadScans(projectID string) (map[string]*AssetScan, error)

	// DeleteScans removes the entries for the given relative paths.
	// Missing entries are not an error.
	DeleteScans(projectID string, paths []string) error

	// DeleteProject removes all data for a project. Idempotent.
	DeleteProject(projectID string) error
}

// AssetScan is what the asset parser found in one serialized Unity asset
// (.unity, .prefab, .asset).
type AssetScan struct {
	Path        string      `json:"path"` // relative to project root, slash separated
	ModTime     int64       `json:"mod_time"`
	Size        int64       `json:"size"`
	Hash        uint64      `json:"hash"`
	ScriptGUIDs []string    `json:"script_guids,omitempty"`
	Calls       []EventCall `json:"calls,omitempty"`
}

// EventCall is one UnityEvent persistent call serialized in an asset.
type EventCall struct {
	Method     string `json:"method"`
	TargetGUID string `json:"target_guid,omitempty"` // script GUID of the target component
	TargetType string `json:"target_type,omitempty"` // class name from m_TargetAssemblyTypeName
	GameObject string `json:"game_object,omitempty"` // name of the object owning the event
	Event      string `json:"event,omitempty"`       // serialized field holding the event, e.g. m_OnClick
}
