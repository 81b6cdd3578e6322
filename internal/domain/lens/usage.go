package lens

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/corey/unitylens/internal/ports"
)

// UsageLens counts the scenes and prefabs that attach the file's script.
type UsageLens struct {
	base
	index AssetIndex
}

// NewUsageLens creates the lens over index.
func NewUsageLens(index AssetIndex, opts ...Option) *UsageLens {
	return &UsageLens{base: newBase(opts), index: index}
}

// ProvideCodeLenses emits one lens on the primary class. Files without a
// readable .meta sidecar get none.
func (l *UsageLens) ProvideCodeLenses(ctx context.Context, doc *ports.Document) ([]ports.CodeLens, error) {
	l.metrics.ProviderRequest(FeatureUsage)
	c := primaryClass(doc)
	if c == nil {
		return nil, nil
	}
	guid, err := scriptGUID(doc)
	if err != nil {
		l.logger.Debug("usage lens: no script guid", zap.String("path", doc.Path), zap.Error(err))
		return nil, nil
	}
	if err := l.index.EnsureFresh(ctx); err != nil {
		return nil, fmt.Errorf("refresh asset index: %w", err)
	}

	u := l.index.UsagesOf(guid)
	args := make([]any, 0, u.Total())
	for _, p := range u.Scenes {
		args = append(args, p)
	}
	for _, p := range u.Prefabs {
		args = append(args, p)
	}
	return []ports.CodeLens{{
		Range: lensRange(c.Range),
		Command: ports.Command{
			Title:     l.title(len(u.Scenes), len(u.Prefabs)),
			Name:      CommandShowAssetUsages,
			Arguments: args,
		},
	}}, nil
}

func (l *UsageLens) title(scenes, prefabs int) string {
	if l.ko() {
		if scenes+prefabs == 0 {
			return "씬/프리팹 사용 없음"
		}
		return fmt.Sprintf("씬 %d개 · 프리팹 %d개", scenes, prefabs)
	}
	if scenes+prefabs == 0 {
		return "No scene/prefab usages"
	}
	return fmt.Sprintf("%d %s · %d %s",
		scenes, plural(scenes, "scene", "scenes"),
		prefabs, plural(prefabs, "prefab", "prefabs"))
}

// ShowAssetUsages turns usage lens arguments into a selection list.
type ShowAssetUsages struct {
	base
}

// NewShowAssetUsages creates the command.
func NewShowAssetUsages(opts ...Option) *ShowAssetUsages {
	return &ShowAssetUsages{base: newBase(opts)}
}

// Execute lists the asset paths given as arguments.
func (c *ShowAssetUsages) Execute(_ context.Context, inv ports.CommandInvocation) (any, error) {
	title := "Scenes and prefabs using this script"
	if c.ko() {
		title = "이 스크립트를 사용하는 씬과 프리팹"
	}
	return Selection{Title: title, Items: stringArgs(inv.Arguments)}, nil
}
