package lens

import (
	"context"
	"fmt"
	"strings"

	"github.com/corey/unitylens/internal/domain/unity"
	"github.com/corey/unitylens/internal/ports"
)

// EventMessageLens marks methods Unity calls by name.
type EventMessageLens struct {
	base
	catalog *unity.Catalog
}

// NewEventMessageLens creates the lens over catalog.
func NewEventMessageLens(catalog *unity.Catalog, opts ...Option) *EventMessageLens {
	return &EventMessageLens{base: newBase(opts), catalog: catalog}
}

// ProvideCodeLenses emits one lens per catalog message declared in a class
// with a base list.
func (l *EventMessageLens) ProvideCodeLenses(_ context.Context, doc *ports.Document) ([]ports.CodeLens, error) {
	l.metrics.ProviderRequest(FeatureEventMessage)
	if doc == nil || doc.Source == nil {
		return nil, nil
	}
	title := "Unity Message"
	if l.ko() {
		title = "유니티 메시지"
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
			if msg == nil {
				continue
			}
			lenses = append(lenses, ports.CodeLens{
				Range: lensRange(m.Range),
				Command: ports.Command{
					Title:     title,
					Name:      CommandOpenMessageDocs,
					Arguments: []any{l.catalog.DocsURL(msg)},
				},
			})
		}
	}
	return lenses, nil
}

// MessageHover shows the signature and description of a Unity message when
// the cursor is on its name.
type MessageHover struct {
	base
	catalog *unity.Catalog
}

// NewMessageHover creates the hover provider.
func NewMessageHover(catalog *unity.Catalog, opts ...Option) *MessageHover {
	return &MessageHover{base: newBase(opts), catalog: catalog}
}

// ProvideHover returns nil unless pos is on the name of a catalog message
// declared in a class with a base list.
func (h *MessageHover) ProvideHover(_ context.Context, doc *ports.Document, pos ports.Position) (*ports.Hover, error) {
	h.metrics.ProviderRequest(FeatureHover)
	if doc == nil || doc.Source == nil {
		return nil, nil
	}
	c, m := doc.Source.MethodNameAt(pos)
	if m == nil || !c.HasBase() {
		return nil, nil
	}
	msg := h.catalog.Lookup(m.Name)
	if msg == nil {
		return nil, nil
	}

	label := "Unity Scripting Reference"
	if h.ko() {
		label = "Unity 스크립팅 레퍼런스"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "```csharp\n%s\n```\n\n", msg.Signature())
	if d := msg.Describe(h.locale); d != "" {
		b.WriteString(d)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "[%s](%s)", label, h.catalog.DocsURL(msg))
	return &ports.Hover{Range: m.NameRange, Contents: b.String()}, nil
}

// OpenMessageDocs resolves the docs link carried by an event message lens.
type OpenMessageDocs struct {
	base
}

// NewOpenMessageDocs creates the command.
func NewOpenMessageDocs(opts ...Option) *OpenMessageDocs {
	return &OpenMessageDocs{base: newBase(opts)}
}

// Execute returns the URL passed as the first argument.
func (c *OpenMessageDocs) Execute(_ context.Context, inv ports.CommandInvocation) (any, error) {
	url, ok := argString(inv.Arguments, 0)
	if !ok || url == "" {
		return nil, fmt.Errorf("%s: url: %w", CommandOpenMessageDocs, ErrBadArgument)
	}
	return Link{URL: url}, nil
}
