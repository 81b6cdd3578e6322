//go:build cgo && !lean && !core

package treesitter

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDynamicLoader_EndToEnd compiles the C# grammar from the module cache
// into a shared library, loads it through purego and checks the outline
// matches the compiled-in grammar.
func TestDynamicLoader_EndToEnd(t *testing.T) {
	goPath := os.Getenv("GOPATH")
	if goPath == "" {
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		goPath = filepath.Join(home, "go")
	}
	src := filepath.Join(goPath, "pkg", "mod", "github.com", "tree-sitter",
		"tree-sitter-c-sharp@v0.23.1", "src")
	parserC := filepath.Join(src, "parser.c")
	scannerC := filepath.Join(src, "scanner.c")
	if _, err := os.Stat(parserC); err != nil {
		t.Skipf("C# grammar source not in module cache: %v", err)
	}
	if _, err := exec.LookPath("gcc"); err != nil {
		t.Skip("gcc not available")
	}

	dir := t.TempDir()
	soPath := filepath.Join(dir, GrammarName+LibExtension())
	out, err := exec.Command("gcc", "-shared", "-fPIC", "-O0", "-I"+src, "-o", soPath, parserC, scannerC).CombinedOutput()
	require.NoError(t, err, "gcc failed: %s", out)

	dynamic := &Parser{}
	dynamic.SetGrammarPaths([]string{dir})
	got, err := dynamic.Parse("Enemy.cs", []byte(enemySource))
	require.NoError(t, err)

	want, err := NewParser().Parse("Enemy.cs", []byte(enemySource))
	require.NoError(t, err)

	assert.Equal(t, want, got)
}
