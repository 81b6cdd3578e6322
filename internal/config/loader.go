package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "UNITYLENS"

// FileName is the config file name inside a .unitylens directory.
const FileName = "config.yaml"

// Loader assembles a Config from defaults, YAML files and the environment.
//
//	cfg, err := config.NewLoader().
//	    WithProjectRoot(root).
//	    Load()
type Loader struct {
	globalPath  string
	projectRoot string
	lookupEnv   func(string) (string, bool)
}

// NewLoader returns a loader reading ~/.unitylens/config.yaml and the
// process environment.
func NewLoader() *Loader {
	return &Loader{
		globalPath: "~/.unitylens/" + FileName,
		lookupEnv:  os.LookupEnv,
	}
}

// WithGlobalPath overrides the global config path. "~" is expanded.
// An empty path disables the global file.
func (l *Loader) WithGlobalPath(path string) *Loader {
	l.globalPath = path
	return l
}

// WithProjectRoot enables <root>/.unitylens/config.yaml.
func (l *Loader) WithProjectRoot(root string) *Loader {
	l.projectRoot = root
	return l
}

// WithEnv replaces the environment lookup (tests).
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	l.lookupEnv = lookup
	return l
}

// Load builds the configuration. Missing files are skipped; malformed
// files and malformed environment values are errors.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if l.globalPath != "" {
		path, err := homedir.Expand(l.globalPath)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", l.globalPath, err)
		}
		if err := mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if l.projectRoot != "" {
		if err := mergeFile(cfg, filepath.Join(l.projectRoot, ".unitylens", FileName)); err != nil {
			return nil, err
		}
	}
	if l.lookupEnv != nil {
		if err := applyEnv(cfg, l.lookupEnv); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Locale) {
	case "", "en", "ko":
	default:
		return fmt.Errorf("locale %q: want en or ko", c.Locale)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level %q: want debug, info, warn or error", c.Log.Level)
	}
	if c.Sync.Debounce < 0 {
		return fmt.Errorf("sync debounce must not be negative")
	}
	if c.Assets.Workers < 0 {
		return fmt.Errorf("asset workers must not be negative")
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port %d out of range", c.HTTP.Port)
	}
	return nil
}

// Save writes cfg as YAML to path, creating the directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// envBinding ties one environment suffix to a config field setter.
type envBinding struct {
	key string
	set func(string) error
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	bindings := []envBinding{
		{"FEATURES_UNITYEVENTMESSAGE", boolSetter(&cfg.Features.UnityEventMessage)},
		{"FEATURES_USAGESCENEPREFAB", boolSetter(&cfg.Features.UsageScenePrefab)},
		{"FEATURES_UNITYMESSAGEHOVER", boolSetter(&cfg.Features.UnityMessageHover)},
		{"FEATURES_TYPETOGGLE", boolSetter(&cfg.Features.TypeToggle)},
		{"FEATURES_METAFILESYNC", boolSetter(&cfg.Features.MetaFileSync)},
		{"FEATURES_SEARCHINUNITYDOCS", boolSetter(&cfg.Features.SearchInUnityDocs)},
		{"FEATURES_UNITYEVENTLENS", boolSetter(&cfg.Features.UnityEventLens)},
		{"LOCALE", stringSetter(&cfg.Locale)},
		{"DOCS_BASE_URL", stringSetter(&cfg.DocsBaseURL)},
		{"SYNC_DEBOUNCE", durationSetter(&cfg.Sync.Debounce)},
		{"ASSETS_REFRESH_INTERVAL", durationSetter(&cfg.Assets.RefreshInterval)},
		{"ASSETS_WORKERS", intSetter(&cfg.Assets.Workers)},
		{"LOG_LEVEL", stringSetter(&cfg.Log.Level)},
		{"LOG_FILE", stringSetter(&cfg.Log.File)},
		{"HTTP_ENABLED", boolSetter(&cfg.HTTP.Enabled)},
		{"HTTP_PORT", intSetter(&cfg.HTTP.Port)},
	}
	for _, b := range bindings {
		name := EnvPrefix + "_" + b.key
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := b.set(strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func boolSetter(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func intSetter(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func durationSetter(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func stringSetter(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}
