package ports

import "time"

// FileOp is the kind of file system change reported by a Watcher.
type FileOp int

const (
	FileOpCreate FileOp = iota
	FileOpWrite
	FileOpRemove
	FileOpRename
)

// String returns the lower-case name of the operation.
func (op FileOp) String() string {
	switch op {
	case FileOpCreate:
		return "create"
	case FileOpWrite:
		return "write"
	case FileOpRemove:
		return "remove"
	case FileOpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// FileChange is one file system event. For renames Path is the old name;
// the new name arrives as a separate create event.
type FileChange struct {
	Path string
	Op   FileOp
	Time time.Time
}

// Watcher monitors a directory tree and delivers debounced batches of
// changes. Only one Watch call should be active per Watcher.
type Watcher interface {
	// Watch starts monitoring root recursively. onBatch is called from a
	// single goroutine with changes in arrival order. Returns an error if
	// root doesn't exist or can't be watched.
	Watch(root string, onBatch func(changes []FileChange)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onBatch calls will fire. Safe to call multiple times.
	Stop() error
}
