// Package lens implements the editor-facing providers: code lenses, hovers
// and the commands those lenses invoke. Providers are stateless formatters
// over a parsed document; when nothing matches they return an empty result,
// never an error.
package lens

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/corey/unitylens/internal/domain/assets"
	"github.com/corey/unitylens/internal/metrics"
	"github.com/corey/unitylens/internal/ports"
)

// Feature names, matching the configuration flags.
const (
	FeatureEventMessage = "unityEventMessage"
	FeatureUsage        = "usageScenePrefab"
	FeatureHover        = "unityMessageHover"
	FeatureTypeToggle   = "typeToggle"
	FeatureDocsSearch   = "searchInUnityDocs"
	FeatureEventLens    = "unityEventLens"
)

// Command names the host invokes.
const (
	CommandOpenMessageDocs     = "unitylens.openMessageDocs"
	CommandShowAssetUsages     = "unitylens.showAssetUsages"
	CommandChangeReturnType    = "unitylens.changeReturnType"
	CommandSearchDocs          = "unitylens.searchInUnityDocumentation"
	CommandShowEventReferences = "unitylens.showEventReferences"
)

var (
	// ErrEmptyQuery is returned by the docs search when neither an argument
	// nor the identifier under the cursor gives a query.
	ErrEmptyQuery = errors.New("lens: empty search query")

	// ErrNoDocument is returned by commands that edit a document when the
	// invocation carries none.
	ErrNoDocument = errors.New("lens: command needs a document")

	// ErrBadArgument is returned when a command argument is missing or has
	// the wrong type.
	ErrBadArgument = errors.New("lens: bad command argument")
)

// AssetIndex answers which assets reference a script.
type AssetIndex interface {
	EnsureFresh(ctx context.Context) error
	UsagesOf(guid string) assets.Usages
	CallsTo(guid, class string) []assets.Reference
}

// Link is the result of commands that resolve to a URL.
type Link struct {
	URL string `json:"url"`
}

// Selection is a list the host shows to the user, e.g. in a quick pick.
type Selection struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// base carries what every provider shares.
type base struct {
	locale  string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a provider or command.
type Option func(*base)

// WithLocale selects "en" or "ko" strings.
func WithLocale(locale string) Option {
	return func(b *base) { b.locale = locale }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics counts requests per feature.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) { b.metrics = m }
}

func newBase(opts []Option) base {
	b := base{locale: "en", logger: zap.NewNop()}
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b *base) ko() bool { return b.locale == "ko" }

// primaryClass returns the class Unity binds to the file's script asset:
// the one named like the file, else the first class with a base list.
func primaryClass(doc *ports.Document) *ports.Class {
	if doc == nil || doc.Source == nil {
		return nil
	}
	stem := strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))
	for i := range doc.Source.Classes {
		if doc.Source.Classes[i].Name == stem {
			return &doc.Source.Classes[i]
		}
	}
	for i := range doc.Source.Classes {
		if doc.Source.Classes[i].HasBase() {
			return &doc.Source.Classes[i]
		}
	}
	return nil
}

// scriptGUID reads the GUID from the document's .meta sidecar.
func scriptGUID(doc *ports.Document) (string, error) {
	return assets.ReadGUID(doc.Path + ".meta")
}

// lensRange anchors a lens at the start of r.
func lensRange(r ports.Range) ports.Range {
	return ports.Range{Start: r.Start, End: r.Start}
}

func argString(args []any, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	switch v := args[i].(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

// argInt accepts the number shapes JSON decoding and direct callers produce.
func argInt(args []any, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func stringArgs(args []any) []string {
	out := make([]string, 0, len(args))
	for i := range args {
		if s, ok := argString(args, i); ok {
			out = append(out, s)
		}
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
