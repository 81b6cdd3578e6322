//go:build lean

package treesitter

// registerBuiltinLanguages is a no-op in lean builds; the grammar comes
// from a shared library found by the DynamicLoader.
func (p *Parser) registerBuiltinLanguages() {}
