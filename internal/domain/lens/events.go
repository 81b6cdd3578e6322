package lens

import (
	"context"
	"fmt"

	"github.com/corey/unitylens/internal/domain/assets"
	"github.com/corey/unitylens/internal/ports"
)

// EventLens shows how many UnityEvent persistent calls in scenes and
// prefabs invoke each method.
type EventLens struct {
	base
	index AssetIndex
}

// NewEventLens creates the lens over index.
func NewEventLens(index AssetIndex, opts ...Option) *EventLens {
	return &EventLens{base: newBase(opts), index: index}
}

// ProvideCodeLenses emits a lens on every method that is the target of at
// least one persistent call. Calls match a class by its script GUID (only
// the primary class has one) or by the serialized target type name.
func (l *EventLens) ProvideCodeLenses(ctx context.Context, doc *ports.Document) ([]ports.CodeLens, error) {
	l.metrics.ProviderRequest(FeatureEventLens)
	if doc == nil || doc.Source == nil || len(doc.Source.Classes) == 0 {
		return nil, nil
	}
	if err := l.index.EnsureFresh(ctx); err != nil {
		return nil, fmt.Errorf("refresh asset index: %w", err)
	}

	primary := primaryClass(doc)
	guid := ""
	if primary != nil {
		guid, _ = scriptGUID(doc)
	}

	var lenses []ports.CodeLens
	for ci := range doc.Source.Classes {
		c := &doc.Source.Classes[ci]
		classGUID := ""
		if c == primary {
			classGUID = guid
		}
		byMethod := groupByMethod(l.index.CallsTo(classGUID, c.Name))
		if len(byMethod) == 0 {
			continue
		}
		for mi := range c.Methods {
			m := &c.Methods[mi]
			refs := byMethod[m.Name]
			if len(refs) == 0 {
				continue
			}
			args := make([]any, len(refs))
			for i, r := range refs {
				args[i] = referenceLabel(r)
			}
			lenses = append(lenses, ports.CodeLens{
				Range: lensRange(m.Range),
				Command: ports.Command{
					Title:     l.title(len(refs)),
					Name:      CommandShowEventReferences,
					Arguments: args,
				},
			})
		}
	}
	return lenses, nil
}

func (l *EventLens) title(n int) string {
	if l.ko() {
		return fmt.Sprintf("UnityEvent 참조 %d개", n)
	}
	return fmt.Sprintf("%d UnityEvent %s", n, plural(n, "reference", "references"))
}

func groupByMethod(refs []assets.Reference) map[string][]assets.Reference {
	out := make(map[string][]assets.Reference)
	for _, r := range refs {
		out[r.Call.Method] = append(out[r.Call.Method], r)
	}
	return out
}

// referenceLabel renders "asset: GameObject", or just the asset when the
// owning object has no name.
func referenceLabel(r assets.Reference) string {
	if r.Call.GameObject == "" {
		return r.Asset
	}
	return r.Asset + ": " + r.Call.GameObject
}

// ShowEventReferences turns event lens arguments into a selection list.
type ShowEventReferences struct {
	base
}

// NewShowEventReferences creates the command.
func NewShowEventReferences(opts ...Option) *ShowEventReferences {
	return &ShowEventReferences{base: newBase(opts)}
}

// Execute lists the references given as arguments.
func (c *ShowEventReferences) Execute(_ context.Context, inv ports.CommandInvocation) (any, error) {
	title := "UnityEvent references"
	if c.ko() {
		title = "UnityEvent 참조"
	}
	return Selection{Title: title, Items: stringArgs(inv.Arguments)}, nil
}
