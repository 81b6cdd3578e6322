package lens

import (
	"bytes"
	"context"
	"strings"

	"github.com/corey/unitylens/internal/domain/unity"
	"github.com/corey/unitylens/internal/ports"
)

// DocsSearch opens the Unity scripting reference search for a query.
type DocsSearch struct {
	base
	catalog *unity.Catalog
}

// NewDocsSearch creates the command. The catalog supplies the docs root.
func NewDocsSearch(catalog *unity.Catalog, opts ...Option) *DocsSearch {
	return &DocsSearch{base: newBase(opts), catalog: catalog}
}

// Execute returns the search URL for the first argument or, without one,
// for the identifier under the cursor.
func (c *DocsSearch) Execute(_ context.Context, inv ports.CommandInvocation) (any, error) {
	c.metrics.ProviderRequest(FeatureDocsSearch)
	query, _ := argString(inv.Arguments, 0)
	query = strings.TrimSpace(query)
	if query == "" && inv.Doc != nil && inv.Pos != nil {
		query = IdentifierAt(inv.Doc.Text, *inv.Pos)
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}
	return Link{URL: c.catalog.SearchURL(query)}, nil
}

// IdentifierAt returns the C# identifier touching pos, or "". A cursor
// just past the last character still counts.
func IdentifierAt(text []byte, pos ports.Position) string {
	lines := bytes.Split(text, []byte("\n"))
	if pos.Line < 0 || pos.Line >= len(lines) {
		return ""
	}
	line := bytes.TrimRight(lines[pos.Line], "\r")
	col := pos.Character
	if col < 0 || col > len(line) {
		return ""
	}
	if col == len(line) || !isIdent(line[col]) {
		if col == 0 || !isIdent(line[col-1]) {
			return ""
		}
		col--
	}
	start, end := col, col+1
	for start > 0 && isIdent(line[start-1]) {
		start--
	}
	for end < len(line) && isIdent(line[end]) {
		end++
	}
	word := string(line[start:end])
	if word[0] >= '0' && word[0] <= '9' {
		return ""
	}
	return word
}

func isIdent(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
