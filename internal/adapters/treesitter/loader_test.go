//go:build cgo

package treesitter

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSymbolName(t *testing.T) {
	assert.Equal(t, "tree_sitter_c_sharp", CSymbolName(GrammarName))
	assert.Equal(t, "tree_sitter_c_sharp", CSymbolName("c-sharp"))
}

func TestLibExtension(t *testing.T) {
	if runtime.GOOS == "darwin" {
		assert.Equal(t, ".dylib", LibExtension())
	} else {
		assert.Equal(t, ".so", LibExtension())
	}
}

func TestDefaultGrammarPaths(t *testing.T) {
	paths := DefaultGrammarPaths("/project/root")
	require.GreaterOrEqual(t, len(paths), 1)
	assert.Equal(t, "/project/root/.unitylens/grammars", paths[0])

	if home, err := os.UserHomeDir(); err == nil {
		require.Len(t, paths, 2)
		assert.Equal(t, filepath.Join(home, ".unitylens", "grammars"), paths[1])
	}
}

func TestDynamicLoader_NotFound(t *testing.T) {
	dl := NewDynamicLoader([]string{"/nonexistent/path"})
	_, err := dl.LoadGrammar(GrammarName)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in search paths")
	assert.Equal(t, "", dl.GrammarPath(GrammarName))
}

func TestDynamicLoader_SearchPathPriority(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()
	path1 := filepath.Join(dir1, GrammarName+LibExtension())
	path2 := filepath.Join(dir2, GrammarName+LibExtension())
	for _, p := range []string{path1, path2} {
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	dl := NewDynamicLoader([]string{dir1, dir2})
	assert.Equal(t, path1, dl.GrammarPath(GrammarName))
	assert.Equal(t, []string{dir1, dir2}, dl.SearchPaths())
}

func TestDynamicLoader_Close(t *testing.T) {
	dl := NewDynamicLoader([]string{"/tmp"})
	dl.Close()
	assert.Empty(t, dl.loaded)
	assert.Nil(t, dl.handles)
}

func TestParser_NoGrammarWithoutLoader(t *testing.T) {
	p := &Parser{}
	assert.False(t, p.Available())
	_, err := p.Parse("A.cs", []byte("class A {}"))
	assert.ErrorIs(t, err, ErrNoGrammar)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, GrammarName+LibExtension()), nil, 0o644))
	p.SetGrammarPaths([]string{dir})
	assert.True(t, p.Available())
	assert.NotNil(t, p.Loader())
}
