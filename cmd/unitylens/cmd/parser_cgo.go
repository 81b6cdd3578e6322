//go:build cgo

package cmd

import (
	"github.com/corey/unitylens/internal/adapters/treesitter"
	"github.com/corey/unitylens/internal/ports"
)

// newParser returns the tree-sitter C# parser when a grammar is compiled
// in or found under the grammar paths of root. Nil selects the line
// scanner.
func newParser(root string) ports.SourceParser {
	p := treesitter.NewParser()
	if root != "" {
		p.SetGrammarPaths(treesitter.DefaultGrammarPaths(root))
	}
	if !p.Available() {
		return nil
	}
	return p
}
