package treesitter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// GrammarName is the grammar name used for shared library lookup. The
// library is expected at <dir>/c_sharp.so (or .dylib on macOS) and must
// export tree_sitter_c_sharp.
const GrammarName = "c_sharp"

// DynamicLoader loads tree-sitter grammars from shared libraries using
// purego. Loaded languages are cached by name.
type DynamicLoader struct {
	searchPaths []string
	mu          sync.Mutex
	loaded      map[string]*tree_sitter.Language
	handles     []uintptr
}

// NewDynamicLoader creates a loader that searches paths in order; first
// match wins.
func NewDynamicLoader(searchPaths []string) *DynamicLoader {
	return &DynamicLoader{
		searchPaths: searchPaths,
		loaded:      make(map[string]*tree_sitter.Language),
	}
}

// DefaultGrammarPaths returns <projectRoot>/.unitylens/grammars followed by
// ~/.unitylens/grammars.
func DefaultGrammarPaths(projectRoot string) []string {
	var paths []string
	if projectRoot != "" {
		paths = append(paths, filepath.Join(projectRoot, ".unitylens", "grammars"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".unitylens", "grammars"))
	}
	return paths
}

// LibExtension returns the shared library extension for the current platform.
func LibExtension() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// CSymbolName returns the exported constructor symbol for a grammar.
func CSymbolName(grammar string) string {
	return "tree_sitter_" + strings.ReplaceAll(grammar, "-", "_")
}

// LoadGrammar loads and caches the grammar named grammar.
func (dl *DynamicLoader) LoadGrammar(grammar string) (*tree_sitter.Language, error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if cached, ok := dl.loaded[grammar]; ok {
		return cached, nil
	}

	soPath := dl.GrammarPath(grammar)
	if soPath == "" {
		return nil, fmt.Errorf("grammar %q: shared library not found in search paths", grammar)
	}

	handle, err := purego.Dlopen(soPath, purego.RTLD_LAZY)
	if err != nil {
		return nil, fmt.Errorf("grammar %q: dlopen %s: %w", grammar, soPath, err)
	}
	dl.handles = append(dl.handles, handle)

	symName := CSymbolName(grammar)
	var langFunc func() uintptr
	purego.RegisterLibFunc(&langFunc, handle, symName)

	ptr := langFunc()
	if ptr == 0 {
		return nil, fmt.Errorf("grammar %q: %s() returned null", grammar, symName)
	}

	// ptr is a static TSLanguage* owned by the shared library.
	language := tree_sitter.NewLanguage(*(*unsafe.Pointer)(unsafe.Pointer(&ptr)))
	dl.loaded[grammar] = language
	return language, nil
}

// GrammarPath returns the first matching shared library for grammar, or "".
func (dl *DynamicLoader) GrammarPath(grammar string) string {
	ext := LibExtension()
	for _, dir := range dl.searchPaths {
		candidate := filepath.Join(dir, grammar+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// SearchPaths returns the configured search paths.
func (dl *DynamicLoader) SearchPaths() []string {
	return dl.searchPaths
}

// Close drops cached languages and dlopen handles.
func (dl *DynamicLoader) Close() {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.handles = nil
	dl.loaded = make(map[string]*tree_sitter.Language)
}
