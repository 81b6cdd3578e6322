//go:build !cgo

package cmd

import "github.com/corey/unitylens/internal/ports"

// newParser returns nil when CGo is unavailable (pure Go build): the line
// scanner parses C# instead of tree-sitter.
func newParser(_ string) ports.SourceParser {
	return nil
}
