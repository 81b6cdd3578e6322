package lens

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/corey/unitylens/internal/domain/unity"
	"github.com/corey/unitylens/internal/ports"
)

// TypeToggleLens offers switching coroutine-capable messages between void
// and IEnumerator.
type TypeToggleLens struct {
	base
	catalog *unity.Catalog
}

// NewTypeToggleLens creates the lens over catalog.
func NewTypeToggleLens(catalog *unity.Catalog, opts ...Option) *TypeToggleLens {
	return &TypeToggleLens{base: newBase(opts), catalog: catalog}
}

// ProvideCodeLenses emits one toggle per coroutine-capable message whose
// return type is void or IEnumerator.
func (l *TypeToggleLens) ProvideCodeLenses(_ context.Context, doc *ports.Document) ([]ports.CodeLens, error) {
	l.metrics.ProviderRequest(FeatureTypeToggle)
	if doc == nil || doc.Source == nil {
		return nil, nil
	}
	var lenses []ports.CodeLens
	for ci := range doc.Source.Classes {
		c := &doc.Source.Classes[ci]
		if !c.HasBase() {
			continue
		}
		for mi := range c.Methods {
			m := &c.Methods[mi]
			msg := l.catalog.Lookup(m.Name)
			if msg == nil || !msg.Coroutine {
				continue
			}
			target := unity.ToggledReturnType(m.ReturnType)
			if target == "" {
				continue
			}
			lenses = append(lenses, ports.CodeLens{
				Range: lensRange(m.Range),
				Command: ports.Command{
					Title:     l.title(target),
					Name:      CommandChangeReturnType,
					Arguments: []any{target, m.ReturnTypeRange.Start.Line},
				},
			})
		}
	}
	return lenses, nil
}

func (l *TypeToggleLens) title(target string) string {
	if l.ko() {
		return target + "로 변경"
	}
	return "Change to " + target
}

// ChangeReturnType rewrites the return type of the method declared on a
// line. Arguments: returnType ("void" or "IEnumerator"), line.
type ChangeReturnType struct {
	base
}

// NewChangeReturnType creates the command.
func NewChangeReturnType(opts ...Option) *ChangeReturnType {
	return &ChangeReturnType{base: newBase(opts)}
}

// Execute returns a ports.WorkspaceEdit. When no void/IEnumerator method is
// declared on the line, or it already has the requested type, the edit is
// empty.
func (c *ChangeReturnType) Execute(_ context.Context, inv ports.CommandInvocation) (any, error) {
	target, ok := argString(inv.Arguments, 0)
	if !ok || (target != unity.ReturnVoid && target != unity.ReturnIEnumerator) {
		return nil, fmt.Errorf("%s: return type: %w", CommandChangeReturnType, ErrBadArgument)
	}
	line, ok := argInt(inv.Arguments, 1)
	if !ok || line < 0 {
		return nil, fmt.Errorf("%s: line: %w", CommandChangeReturnType, ErrBadArgument)
	}
	if inv.Doc == nil {
		return nil, fmt.Errorf("%s: %w", CommandChangeReturnType, ErrNoDocument)
	}
	return ReturnTypeEdit(inv.Doc, target, line), nil
}

// ReturnTypeEdit builds the edit switching the method declared on line to
// target. Switching to IEnumerator also adds the System.Collections using
// when the file lacks it.
func ReturnTypeEdit(doc *ports.Document, target string, line int) ports.WorkspaceEdit {
	edit := ports.WorkspaceEdit{Path: doc.Path, Edits: []ports.TextEdit{}}
	if doc.Source == nil {
		return edit
	}
	_, m := doc.Source.MethodAtLine(line)
	if m == nil {
		return edit
	}
	current := unity.ToggledReturnType(m.ReturnType)
	if current == "" || (target == unity.ReturnVoid) == (strings.TrimSpace(m.ReturnType) == unity.ReturnVoid) {
		return edit
	}

	if target == unity.ReturnIEnumerator && !doc.Source.HasUsing(unity.CollectionsNamespace) {
		at := ports.Position{Line: usingInsertLine(doc.Text)}
		edit.Edits = append(edit.Edits, ports.TextEdit{
			Range:   ports.Range{Start: at, End: at},
			NewText: "using " + unity.CollectionsNamespace + ";\n",
		})
	}
	edit.Edits = append(edit.Edits, ports.TextEdit{Range: m.ReturnTypeRange, NewText: target})
	return edit
}

// usingInsertLine returns the line after the last using directive at the
// top of the file, or 0.
func usingInsertLine(text []byte) int {
	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	insert, n := 0, 0
	for sc.Scan() {
		t := strings.TrimSpace(sc.Text())
		t = strings.TrimPrefix(t, "global ")
		switch {
		case strings.HasPrefix(t, "using ") && strings.HasSuffix(t, ";") && !strings.HasPrefix(t, "using var "):
			insert = n + 1
		case strings.Contains(t, "{"):
			return insert
		}
		n++
	}
	return insert
}
