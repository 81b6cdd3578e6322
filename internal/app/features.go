package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/corey/unitylens/internal/config"
	"github.com/corey/unitylens/internal/domain/lens"
	"github.com/corey/unitylens/internal/domain/metasync"
)

// FeatureMetaFileSync is the meta sync flag name.
const FeatureMetaFileSync = "metaFileSync"

// feature is one row of the activation table: a flag and what enabling it
// registers.
type feature struct {
	name     string
	enabled  func(config.Features) bool
	register func(ctx context.Context, a *App, r *Registry) error
}

var features = []feature{
	{
		name:    lens.FeatureEventMessage,
		enabled: func(f config.Features) bool { return f.UnityEventMessage },
		register: func(_ context.Context, a *App, r *Registry) error {
			r.addLens(lens.NewEventMessageLens(a.Catalog, a.lensOptions()...))
			r.addCommand(lens.CommandOpenMessageDocs, lens.NewOpenMessageDocs(a.lensOptions()...))
			return nil
		},
	},
	{
		name:    lens.FeatureUsage,
		enabled: func(f config.Features) bool { return f.UsageScenePrefab },
		register: func(_ context.Context, a *App, r *Registry) error {
			r.addLens(lens.NewUsageLens(a.Assets, a.lensOptions()...))
			r.addCommand(lens.CommandShowAssetUsages, lens.NewShowAssetUsages(a.lensOptions()...))
			return nil
		},
	},
	{
		name:    lens.FeatureHover,
		enabled: func(f config.Features) bool { return f.UnityMessageHover },
		register: func(_ context.Context, a *App, r *Registry) error {
			r.addHover(lens.NewMessageHover(a.Catalog, a.lensOptions()...))
			return nil
		},
	},
	{
		name:    lens.FeatureTypeToggle,
		enabled: func(f config.Features) bool { return f.TypeToggle },
		register: func(_ context.Context, a *App, r *Registry) error {
			r.addLens(lens.NewTypeToggleLens(a.Catalog, a.lensOptions()...))
			r.addCommand(lens.CommandChangeReturnType, lens.NewChangeReturnType(a.lensOptions()...))
			return nil
		},
	},
	{
		name:    FeatureMetaFileSync,
		enabled: func(f config.Features) bool { return f.MetaFileSync },
		register: func(ctx context.Context, a *App, r *Registry) error {
			if err := metasync.CheckLayout(a.ProjectRoot); err != nil {
				return err
			}
			r.fileOps = true
			if a.watchAssets {
				return a.MetaSync.Activate(ctx)
			}
			return nil
		},
	},
	{
		name:    lens.FeatureDocsSearch,
		enabled: func(f config.Features) bool { return f.SearchInUnityDocs },
		register: func(_ context.Context, a *App, r *Registry) error {
			r.addCommand(lens.CommandSearchDocs, lens.NewDocsSearch(a.Catalog, a.lensOptions()...))
			return nil
		},
	},
	{
		name:    lens.FeatureEventLens,
		enabled: func(f config.Features) bool { return f.UnityEventLens },
		register: func(_ context.Context, a *App, r *Registry) error {
			r.addLens(lens.NewEventLens(a.Assets, a.lensOptions()...))
			r.addCommand(lens.CommandShowEventReferences, lens.NewShowEventReferences(a.lensOptions()...))
			return nil
		},
	},
}

// buildRegistry walks the feature table. A feature whose precondition is
// missing stays inactive; the others still register.
func (a *App) buildRegistry(ctx context.Context) *Registry {
	r := newRegistry()
	for _, f := range features {
		if !f.enabled(a.Settings.Features) {
			a.Logger.Debug("feature disabled", zap.String("feature", f.name))
			continue
		}
		if err := f.register(ctx, a, r); err != nil {
			if errors.Is(err, metasync.ErrNotUnityProject) {
				a.Logger.Debug("feature inactive", zap.String("feature", f.name), zap.Error(err))
			} else {
				a.Logger.Warn("feature failed to activate", zap.String("feature", f.name), zap.Error(err))
			}
			continue
		}
		r.features[f.name] = true
	}
	return r
}

func (a *App) lensOptions() []lens.Option {
	return []lens.Option{
		lens.WithLocale(a.Settings.ResolvedLocale()),
		lens.WithLogger(a.Logger),
		lens.WithMetrics(a.Metrics),
	}
}
