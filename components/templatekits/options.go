package templatekits

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-templatekit/pkg/builder"
	"github.com/goliatone/go-templatekit/pkg/classify"
	"github.com/goliatone/go-templatekit/pkg/kit"
	"github.com/goliatone/go-templatekit/pkg/media"
	"github.com/goliatone/go-templatekit/pkg/view"
)

const (
	DefaultRoutePath     = "/wp-json/template-kit-import/v2"
	DefaultImportTimeout = 5 * time.Minute
	DefaultMaxBodyBytes  = 1 << 20
)

// GuardFunc rejects a request by returning an error. Errors implementing
// HTTPError choose the response status; anything else is a 403.
type GuardFunc func(r *http.Request) error

// PermissionFunc reports whether the caller may use template kits.
type PermissionFunc func(r *http.Request) bool

// ImageImporter brings template images into the media library.
type ImageImporter interface {
	Import(ctx context.Context, req media.Request) (media.Result, error)
}

// BrowserRenderer renders the HTML kit browser.
type BrowserRenderer interface {
	RenderBrowser(w io.Writer, model view.BrowserKit) error
}

type Options struct {
	RoutePath string
	Guard     GuardFunc
	// Permission backs fetchPermissions. That endpoint is never guarded.
	Permission PermissionFunc

	Store    kit.Store
	Importer kit.Importer
	Images   ImageImporter
	Table    classify.Table
	View     BrowserRenderer
	APIDoc   http.Handler

	// NewID generates element ids for content inserted into a page.
	NewID builder.IDFunc
	// ImportTimeout bounds import endpoints and extends their write deadline.
	ImportTimeout time.Duration
	MaxBodyBytes  int64
	Logger        *slog.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:     DefaultRoutePath,
		Permission:    allowAll,
		Table:         classify.DefaultTable(),
		NewID:         builder.RandomID,
		ImportTimeout: DefaultImportTimeout,
		MaxBodyBytes:  DefaultMaxBodyBytes,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	defaults := DefaultOptions()
	if opts.RoutePath == "" {
		opts.RoutePath = defaults.RoutePath
	}
	if opts.Permission == nil {
		opts.Permission = defaults.Permission
	}
	if opts.Table.Len() == 0 {
		opts.Table = defaults.Table
	}
	if opts.NewID == nil {
		opts.NewID = defaults.NewID
	}
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = defaults.ImportTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}
	if opts.Importer == nil {
		if importer, ok := opts.Store.(kit.Importer); ok {
			opts.Importer = importer
		}
	}
	return opts
}

func allowAll(*http.Request) bool { return true }

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithPermission(fn PermissionFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Permission = fn
	}
}

// WithStore sets the kit store. A store that also implements kit.Importer is
// used for imports unless WithImporter overrides it.
func WithStore(store kit.Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = store
	}
}

func WithImporter(importer kit.Importer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Importer = importer
	}
}

func WithImages(images ImageImporter) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Images = images
	}
}

func WithTable(table classify.Table) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Table = table
	}
}

func WithView(renderer BrowserRenderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.View = renderer
	}
}

func WithAPIDoc(handler http.Handler) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.APIDoc = handler
	}
}

func WithIDFunc(fn builder.IDFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.NewID = fn
	}
}

func WithImportTimeout(timeout time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ImportTimeout = timeout
	}
}

func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = n
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
