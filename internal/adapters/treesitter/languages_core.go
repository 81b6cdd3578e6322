//go:build core && !lean

package treesitter

// Core builds keep the tree-sitter runtime but import no grammar package.
// The C# grammar is loaded from .unitylens/grammars via the DynamicLoader.

func (p *Parser) registerBuiltinLanguages() {}
