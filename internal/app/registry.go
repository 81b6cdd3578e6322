package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/corey/unitylens/internal/ports"
)

// ErrUnknownCommand is returned for a command no enabled feature registered.
var ErrUnknownCommand = errors.New("unknown command")

// Registry holds the providers of the enabled features. It is built once
// per activation and never mutated afterwards, so lookups need no locking.
type Registry struct {
	lenses   []ports.CodeLensProvider
	hovers   []ports.HoverProvider
	commands map[string]ports.CommandHandler
	features map[string]bool // feature name → registered
	fileOps  bool            // didRenameFiles / didDeleteFiles served
}

func newRegistry() *Registry {
	return &Registry{
		commands: make(map[string]ports.CommandHandler),
		features: make(map[string]bool),
	}
}

func (r *Registry) addLens(p ports.CodeLensProvider) { r.lenses = append(r.lenses, p) }

func (r *Registry) addHover(p ports.HoverProvider) { r.hovers = append(r.hovers, p) }

func (r *Registry) addCommand(name string, h ports.CommandHandler) { r.commands[name] = h }

// CodeLenses collects the lenses of every provider, ordered by line. A
// failing provider is skipped; its error is returned alongside the lenses
// the others produced.
func (r *Registry) CodeLenses(ctx context.Context, doc *ports.Document) ([]ports.CodeLens, error) {
	lenses := []ports.CodeLens{}
	var errs []error
	for _, p := range r.lenses {
		got, err := p.ProvideCodeLenses(ctx, doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lenses = append(lenses, got...)
	}
	sort.SliceStable(lenses, func(i, j int) bool {
		return lenses[i].Range.Start.Line < lenses[j].Range.Start.Line
	})
	return lenses, errors.Join(errs...)
}

// Hover returns the first hover any provider produces, or nil.
func (r *Registry) Hover(ctx context.Context, doc *ports.Document, pos ports.Position) (*ports.Hover, error) {
	for _, p := range r.hovers {
		h, err := p.ProvideHover(ctx, doc, pos)
		if err != nil {
			return nil, err
		}
		if h != nil {
			return h, nil
		}
	}
	return nil, nil
}

// Execute runs the named command.
func (r *Registry) Execute(ctx context.Context, name string, inv ports.CommandInvocation) (any, error) {
	h, ok := r.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return h.Execute(ctx, inv)
}

// Commands returns the registered command names, sorted.
func (r *Registry) Commands() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registered reports whether feature contributed to the registry.
func (r *Registry) Registered(feature string) bool {
	return r.features[feature]
}

// FileOps reports whether sidecar rename/delete requests are served.
func (r *Registry) FileOps() bool { return r.fileOps }

// Empty reports whether nothing was registered.
func (r *Registry) Empty() bool {
	return len(r.lenses) == 0 && len(r.hovers) == 0 && len(r.commands) == 0 && !r.fileOps
}
