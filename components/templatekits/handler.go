package templatekits

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"time"

	"github.com/goliatone/go-templatekit/pkg/apidoc"
	"github.com/goliatone/go-templatekit/pkg/media"
	"github.com/goliatone/go-templatekit/pkg/view"
)

// Endpoint names, as used in request paths and error envelopes.
const (
	EndpointFetchInstalledTemplateKits   = "fetchInstalledTemplateKits"
	EndpointFetchPermissions             = "fetchPermissions"
	EndpointFetchIndividualTemplates     = "fetchIndividualTemplates"
	EndpointImportSingleTemplate         = "importSingleTemplate"
	EndpointGetSingleTemplateImportData  = "getSingleTemplateImportData"
	EndpointImportElementorTemplateImage = "importElementorTemplateImage"
	EndpointBrowse                       = "browse"
	EndpointOpenAPI                      = "openapi.json"
)

// notFoundEndpoint is reported when a requested kit is missing. Existing
// clients match on this name.
const notFoundEndpoint = "fetchInstalledTemplateKit"

// Endpoints lists every endpoint the handler serves.
func Endpoints() []string {
	return []string{
		EndpointFetchInstalledTemplateKits,
		EndpointFetchPermissions,
		EndpointFetchIndividualTemplates,
		EndpointImportSingleTemplate,
		EndpointGetSingleTemplateImportData,
		EndpointImportElementorTemplateImage,
		EndpointBrowse,
		EndpointOpenAPI,
	}
}

type endpointFunc func(w http.ResponseWriter, r *http.Request, p params) error

type route struct {
	fn        endpointFunc
	unguarded bool
	// longRunning routes get ImportTimeout and an extended write deadline.
	longRunning bool
}

type handler struct {
	opts   Options
	routes map[string]route
	apiDoc http.Handler
}

// Handler builds a net/http handler with default options plus any overrides.
// It is an alias of NewHandler to match the recommended component API surface.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds a net/http handler from a pre-constructed Options value.
// The endpoint is taken from the last segment of the request path, so the
// handler can be mounted under any prefix.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	h := &handler{opts: opts, apiDoc: opts.APIDoc}
	if h.opts.Images == nil {
		h.opts.Images = media.NewImporter(media.WithLogger(opts.Logger))
	}
	if h.opts.View == nil {
		engine, err := view.New()
		if err != nil {
			opts.Logger.Error("templatekits: kit browser unavailable", "error", err)
		} else {
			h.opts.View = engine
		}
	}
	if h.apiDoc == nil {
		doc, err := apidoc.Handler(opts.RoutePath, Endpoints()...)
		if err != nil {
			opts.Logger.Error("templatekits: api description unavailable", "error", err)
		} else {
			h.apiDoc = doc
		}
	}
	h.routes = map[string]route{
		EndpointFetchInstalledTemplateKits:   {fn: h.fetchInstalledTemplateKits},
		EndpointFetchPermissions:             {fn: h.fetchPermissions, unguarded: true},
		EndpointFetchIndividualTemplates:     {fn: h.fetchIndividualTemplates},
		EndpointImportSingleTemplate:         {fn: h.importSingleTemplate, longRunning: true},
		EndpointGetSingleTemplateImportData:  {fn: h.getSingleTemplateImportData},
		EndpointImportElementorTemplateImage: {fn: h.importElementorTemplateImage, longRunning: true},
		EndpointBrowse:                       {fn: h.browse},
		EndpointOpenAPI:                      {fn: h.openAPI, unguarded: true},
	}
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	endpoint := path.Base(r.URL.Path)
	rt, ok := h.routes[endpoint]
	if !ok {
		writeError(w, &APIError{
			Status:   http.StatusNotFound,
			Code:     "rest_no_route",
			Message:  "No route was found matching the URL and request method.",
			Endpoint: endpoint,
		})
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead+", "+http.MethodPost)
		writeError(w, &APIError{
			Status:   http.StatusMethodNotAllowed,
			Code:     CodeMethodNotAllowed,
			Message:  http.StatusText(http.StatusMethodNotAllowed),
			Endpoint: endpoint,
		})
		return
	}

	if !rt.unguarded && h.opts.Guard != nil {
		if err := h.opts.Guard(r); err != nil {
			h.opts.Logger.Warn("templatekits: request rejected", "endpoint", endpoint, "error", err)
			writeGuardError(w, endpoint, err)
			return
		}
	}

	p, err := readParams(w, r, h.opts.MaxBodyBytes)
	if err != nil {
		writeError(w, toAPIError(endpoint, err))
		return
	}

	if rt.longRunning {
		h.raiseLimits(w)
		ctx, cancel := context.WithTimeout(r.Context(), h.opts.ImportTimeout)
		defer cancel()
		r = r.WithContext(ctx)
	}

	if err := rt.fn(w, r, p); err != nil {
		apiErr := toAPIError(endpoint, err)
		h.opts.Logger.Warn("templatekits: request failed",
			"endpoint", endpoint,
			"status", apiErr.StatusCode(),
			"error", err,
		)
		writeError(w, apiErr)
	}
}

// raiseLimits extends the write deadline so slow imports are not cut off by
// the server's WriteTimeout.
func (h *handler) raiseLimits(w http.ResponseWriter) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Now().Add(h.opts.ImportTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.opts.Logger.Debug("templatekits: extend write deadline", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return nil
	}
	_, _ = w.Write(buf.Bytes())
	return nil
}
