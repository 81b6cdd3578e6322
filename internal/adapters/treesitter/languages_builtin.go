//go:build !lean && !core

package treesitter

// Default builds compile the C# grammar in. Build with -tags lean or
// -tags core to drop it and rely on the DynamicLoader instead.

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
)

func (p *Parser) registerBuiltinLanguages() {
	p.builtin = tree_sitter.NewLanguage(ts_csharp.Language())
}
