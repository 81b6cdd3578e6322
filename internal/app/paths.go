package app

import (
	"os"
	"path/filepath"
)

// DirName is the per-project state directory.
const DirName = ".unitylens"

// Paths holds all resolved filesystem paths for the .unitylens/ project directory.
// All fields are pre-computed strings: zero-alloc access after construction.
type Paths struct {
	Root   string // .unitylens/
	DB     string // .unitylens/unitylens.db
	Config string // .unitylens/config.yaml

	LogDir    string // .unitylens/log/
	DaemonLog string // .unitylens/log/daemon.log

	RunDir   string // .unitylens/run/
	PIDFile  string // .unitylens/run/daemon.pid
	PortFile string // .unitylens/run/http.port

	GrammarsDir string // .unitylens/grammars/
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, DirName)
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "unitylens.db"),
		Config: filepath.Join(root, "config.yaml"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "daemon.pid"),
		PortFile: filepath.Join(root, "run", "http.port"),

		GrammarsDir: filepath.Join(root, "grammars"),
	}
}

// EnsureDirs creates all subdirectories under .unitylens/. Idempotent.
func (p *Paths) EnsureDirs() error {
	dirs := []string{
		p.Root,
		p.LogDir,
		p.RunDir,
		p.GrammarsDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes ephemeral runtime files (PID file and port file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}
