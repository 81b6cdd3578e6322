// Package config holds the unitylens configuration: which features are
// enabled plus the knobs for sync, asset scanning, logging and HTTP.
//
// Precedence: defaults → ~/.unitylens/config.yaml → <project>/.unitylens/config.yaml
// → UNITYLENS_* environment variables.
package config

import (
	"os"
	"strings"
	"time"
)

// Features is the feature flag set. YAML keys match the option names the
// editor integration exposes.
type Features struct {
	UnityEventMessage bool `yaml:"unityEventMessage"`
	UsageScenePrefab  bool `yaml:"usageScenePrefab"`
	UnityMessageHover bool `yaml:"unityMessageHover"`
	TypeToggle        bool `yaml:"typeToggle"`
	MetaFileSync      bool `yaml:"metaFileSync"`
	SearchInUnityDocs bool `yaml:"searchInUnityDocs"`
	UnityEventLens    bool `yaml:"unityEventLens"`
}

// SyncConfig configures meta file synchronization.
type SyncConfig struct {
	// Debounce is how long the watcher waits for a quiet period before
	// handing a batch of changes to the syncer.
	Debounce time.Duration `yaml:"debounce"`
}

// AssetsConfig configures scene/prefab scanning.
type AssetsConfig struct {
	// RefreshInterval is the minimum time between two rescans triggered by
	// lens requests.
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	// Workers bounds parallel file scans.
	Workers int `yaml:"workers"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty = stderr
}

// HTTPConfig configures the metrics/status endpoint of the daemon.
type HTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"` // 0 = derived from project root
}

// Config is the complete configuration.
type Config struct {
	Features    Features     `yaml:"features"`
	Locale      string       `yaml:"locale"` // "en" or "ko"; empty = from LANG
	DocsBaseURL string       `yaml:"docsBaseURL"`
	Sync        SyncConfig   `yaml:"sync"`
	Assets      AssetsConfig `yaml:"assets"`
	Log         LogConfig    `yaml:"log"`
	HTTP        HTTPConfig   `yaml:"http"`
}

// DefaultDocsBaseURL is the Unity scripting reference root.
const DefaultDocsBaseURL = "https://docs.unity3d.com/ScriptReference/"

// Default returns the configuration with every feature enabled.
func Default() *Config {
	return &Config{
		Features: Features{
			UnityEventMessage: true,
			UsageScenePrefab:  true,
			UnityMessageHover: true,
			TypeToggle:        true,
			MetaFileSync:      true,
			SearchInUnityDocs: true,
			UnityEventLens:    true,
		},
		DocsBaseURL: DefaultDocsBaseURL,
		Sync: SyncConfig{
			Debounce: 100 * time.Millisecond,
		},
		Assets: AssetsConfig{
			RefreshInterval: 5 * time.Second,
			Workers:         8,
		},
		Log: LogConfig{
			Level: "info",
		},
		HTTP: HTTPConfig{
			Enabled: true,
		},
	}
}

// ResolvedLocale returns the configured locale, falling back to the LANG
// environment variable. Only "en" and "ko" are supported.
func (c *Config) ResolvedLocale() string {
	loc := strings.ToLower(c.Locale)
	if loc == "" {
		loc = strings.ToLower(os.Getenv("LANG"))
	}
	if strings.HasPrefix(loc, "ko") {
		return "ko"
	}
	return "en"
}

// FeatureNames returns the flag name → value view used by status output.
func (f Features) FeatureNames() map[string]bool {
	return map[string]bool{
		"unityEventMessage": f.UnityEventMessage,
		"usageScenePrefab":  f.UsageScenePrefab,
		"unityMessageHover": f.UnityMessageHover,
		"typeToggle":        f.TypeToggle,
		"metaFileSync":      f.MetaFileSync,
		"searchInUnityDocs": f.SearchInUnityDocs,
		"unityEventLens":    f.UnityEventLens,
	}
}
