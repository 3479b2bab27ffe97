package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrInvalidImage is returned when the image id or URL is unusable.
	ErrInvalidImage = errors.New("media: invalid image id or url")
	// ErrLibraryUnavailable is returned when no media library is configured.
	ErrLibraryUnavailable = errors.New("media: no media library configured")
)

const (
	DefaultPlaceholderURL = "https://assets.wp.envatoextensions.com/template-kits/placeholder/placeholder.png"
	DefaultErrorURL       = "https://assets.wp.envatoextensions.com/template-kits/placeholder/error.png"
)

// Image identifies an image referenced by a builder export.
type Image struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// Attachment is a media library entry created for an imported image.
type Attachment struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// Library stores images in the site's media library.
type Library interface {
	Import(ctx context.Context, img Image) (Attachment, error)
}

// Request is a single image import request.
type Request struct {
	ID      int
	URL     string
	KitName string
}

// Result is returned to the caller. Failed library imports still produce a
// Result carrying a message rather than an error, so the client keeps going
// through the remaining images of a template.
type Result struct {
	Attachment *Attachment
	Failure    *Failure
}

// Failure describes an image the library could not import.
type Failure struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// Payload returns the value to encode in the response body.
func (r Result) Payload() any {
	if r.Attachment != nil {
		return r.Attachment
	}
	return r.Failure
}

// Importer validates image URLs, swaps missing images for a placeholder and
// hands the rest to a Library.
type Importer struct {
	opts Options
}

// NewImporter builds an importer with default options plus any overrides.
func NewImporter(fns ...OptionFn) *Importer {
	return &Importer{opts: NewOptions(fns...)}
}

// Import brings one image into the media library.
func (i *Importer) Import(ctx context.Context, req Request) (Result, error) {
	imageURL := EncodePath(req.URL)
	if i.opts.Library == nil {
		return Result{}, ErrLibraryUnavailable
	}
	if req.ID == 0 || !ValidURL(imageURL) {
		return Result{}, ErrInvalidImage
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	logger := i.opts.Logger.With("image_id", req.ID, "kit", req.KitName)

	// Beacons report the encoded URL that was probed.
	if !i.exists(ctx, imageURL) {
		logger.Warn("image missing, importing placeholder", "url", imageURL)
		i.beacon(ctx, beaconURL(i.opts.PlaceholderURL, req.KitName, imageURL))
		imageURL = i.opts.PlaceholderURL
	}

	attachment, err := i.opts.Library.Import(ctx, Image{ID: req.ID, URL: imageURL})
	if err != nil {
		logger.Warn("image import failed", "url", imageURL, "error", err)
		i.beacon(ctx, beaconURL(i.opts.ErrorURL, req.KitName, imageURL))
		return Result{Failure: &Failure{
			ID:      1,
			Message: "Failed to import the image: " + imageURL,
		}}, nil
	}
	return Result{Attachment: &attachment}, nil
}

func (i *Importer) exists(ctx context.Context, imageURL string) bool {
	resp, err := i.head(ctx, imageURL)
	if err != nil {
		return false
	}
	return resp == http.StatusOK
}

// beacon reports a broken image. The outcome is ignored.
func (i *Importer) beacon(ctx context.Context, target string) {
	if i.opts.DisableBeacons {
		return
	}
	_, _ = i.head(ctx, target)
}

func (i *Importer) head(ctx context.Context, target string) (int, error) {
	reqCtx := ctx
	var cancel context.CancelFunc
	if i.opts.ProbeTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, i.opts.ProbeTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", i.opts.UserAgent)

	resp, err := i.opts.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	return resp.StatusCode, nil
}

// Options configures an Importer.
type Options struct {
	Client         *http.Client
	Library        Library
	Logger         *slog.Logger
	PlaceholderURL string
	ErrorURL       string
	UserAgent      string
	ProbeTimeout   time.Duration
	DisableBeacons bool
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		Client:         http.DefaultClient,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		PlaceholderURL: DefaultPlaceholderURL,
		ErrorURL:       DefaultErrorURL,
		UserAgent:      "go-templatekit",
		ProbeTimeout:   10 * time.Second,
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
	if opts.Client == nil {
		opts.Client = defaults.Client
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}
	if opts.PlaceholderURL == "" {
		opts.PlaceholderURL = defaults.PlaceholderURL
	}
	if opts.ErrorURL == "" {
		opts.ErrorURL = defaults.ErrorURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	return opts
}

func WithClient(client *http.Client) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Client = client
	}
}

func WithLibrary(library Library) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Library = library
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

func WithPlaceholderURL(raw string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PlaceholderURL = raw
	}
}

func WithErrorURL(raw string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ErrorURL = raw
	}
}

func WithProbeTimeout(timeout time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ProbeTimeout = timeout
	}
}

func WithoutBeacons() OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DisableBeacons = true
	}
}
