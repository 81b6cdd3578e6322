package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/adapters/web"
	"github.com/corey/unitylens/internal/domain/metasync"
	"github.com/corey/unitylens/internal/ports"
)

// The App serves both transports.
var (
	_ socket.Handler = (*App)(nil)
	_ web.Queries    = (*App)(nil)
	_ ports.Notifier = (*Notifications)(nil)
)

// Document loads and parses a C# document. text, when non-nil, replaces
// the file contents. Relative paths resolve against the project root.
// Files the parser does not handle get an empty outline.
func (a *App) Document(path string, text *string) (*ports.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("document path required")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.ProjectRoot, path)
	}
	var src []byte
	if text != nil {
		src = []byte(*text)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		src = data
	}

	doc := &ports.Document{Path: path, Text: src, Source: &ports.SourceFile{Path: path}}
	if !a.Parser.SupportsExtension(filepath.Ext(path)) {
		return doc, nil
	}
	f, err := a.Parser.Parse(path, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc.Source = f
	return doc, nil
}

// Health implements socket.Handler.
func (a *App) Health() socket.HealthResult {
	return socket.HealthResult{
		Status:        "ok",
		ProjectRoot:   a.ProjectRoot,
		MetaSync:      a.MetaSync.Active(),
		TrackedAssets: a.Assets.Len(),
		Parser:        a.ParserName(),
	}
}

// Features implements socket.Handler.
func (a *App) Features() socket.FeaturesResult {
	res := socket.FeaturesResult{
		Features: a.Settings.Features.FeatureNames(),
		Commands: []string{},
	}
	if r := a.Registry(); r != nil {
		res.Commands = r.Commands()
	}
	return res
}

// CodeLens implements socket.Handler.
func (a *App) CodeLens(ctx context.Context, p socket.DocumentParams) (socket.CodeLensResult, error) {
	r, err := a.activeRegistry()
	if err != nil {
		return socket.CodeLensResult{}, err
	}
	doc, err := a.Document(p.Path, p.Text)
	if err != nil {
		return socket.CodeLensResult{}, err
	}
	lenses, err := r.CodeLenses(ctx, doc)
	return socket.CodeLensResult{Lenses: lenses}, err
}

// Hover implements socket.Handler.
func (a *App) Hover(ctx context.Context, p socket.HoverParams) (socket.HoverResult, error) {
	r, err := a.activeRegistry()
	if err != nil {
		return socket.HoverResult{}, err
	}
	doc, err := a.Document(p.Path, p.Text)
	if err != nil {
		return socket.HoverResult{}, err
	}
	h, err := r.Hover(ctx, doc, ports.Position{Line: p.Line, Character: p.Character})
	return socket.HoverResult{Hover: h}, err
}

// ExecuteCommand implements socket.Handler.
func (a *App) ExecuteCommand(ctx context.Context, p socket.ExecuteCommandParams) (any, error) {
	r, err := a.activeRegistry()
	if err != nil {
		return nil, err
	}
	inv := ports.CommandInvocation{Arguments: p.Arguments}
	if p.Path != "" {
		doc, err := a.Document(p.Path, p.Text)
		if err != nil {
			return nil, err
		}
		inv.Doc = doc
	}
	if p.Line != nil {
		pos := ports.Position{Line: *p.Line}
		if p.Character != nil {
			pos.Character = *p.Character
		}
		inv.Pos = &pos
	}
	return r.Execute(ctx, p.Command, inv)
}

// DidRenameFiles implements socket.Handler.
func (a *App) DidRenameFiles(_ context.Context, p socket.RenameFilesParams) (socket.FileOpsResult, error) {
	r := a.Registry()
	if r == nil || !r.FileOps() {
		return socket.FileOpsResult{}, socket.ErrUnavailable
	}
	res := socket.FileOpsResult{Outcomes: []socket.SidecarOutcome{}}
	for _, f := range p.Files {
		outcomes, _ := a.Syncer.Rename(a.abs(f.OldPath), a.abs(f.NewPath))
		res.Outcomes = append(res.Outcomes, WireOutcomes(outcomes...)...)
	}
	a.Assets.Invalidate()
	return res, nil
}

// DidDeleteFiles implements socket.Handler.
func (a *App) DidDeleteFiles(_ context.Context, p socket.DeleteFilesParams) (socket.FileOpsResult, error) {
	r := a.Registry()
	if r == nil || !r.FileOps() {
		return socket.FileOpsResult{}, socket.ErrUnavailable
	}
	res := socket.FileOpsResult{Outcomes: []socket.SidecarOutcome{}}
	for _, path := range p.Files {
		o, _ := a.Syncer.Delete(a.abs(path))
		res.Outcomes = append(res.Outcomes, WireOutcomes(o)...)
	}
	a.Assets.Invalidate()
	return res, nil
}

// Notifications implements socket.Handler.
func (a *App) Notifications(since time.Time) []ports.Notification {
	return a.notes.Since(since)
}

func (a *App) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.ProjectRoot, path)
}

// WireOutcomes converts sidecar outcomes to their protocol form.
func WireOutcomes(outcomes ...metasync.Outcome) []socket.SidecarOutcome {
	out := make([]socket.SidecarOutcome, len(outcomes))
	for i, o := range outcomes {
		out[i] = socket.SidecarOutcome{Action: string(o.Action), From: o.From, To: o.To}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}
	return out
}
