package testsupport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Fixture kit ids. Both kits declare a template with id SharedTemplateID so
// tests can exercise the all-kits merge.
const (
	StarterKitID     = 11
	AgencyKitID      = 42
	SharedTemplateID = 5
)

const starterManifest = `{
  // Starter kit fixture.
  "id": 11,
  "title": "Starter <b>Kit</b>",
  "version": "1.0.0",
  "screenshot": "screenshot.png",
  "requirements": {
    "plugins": [{"name": "Elementor", "file": "elementor/elementor.php"}],
  },
  "templates": [
    {"id": 1, "name": "Home", "source": "templates/home.json", "metadata": {"template_type": "single-home"}},
    {"id": 2, "name": "Hero A", "source": "templates/hero-a.json", "metadata": {"template_type": "section-hero"}},
    {"id": 3, "name": "Header", "source": "templates/header.json", "metadata": {"template_type": "section-header"}},
    {"id": 4, "name": "Draft", "source": "templates/draft.json", "metadata": []},
    {"id": 5, "name": "Hero B", "source": "templates/hero-b.json", "metadata": {"template_type": "section-hero"}},
  ],
}`

const agencyManifest = `id: 42
title: Agency & Co
requirements:
  settings:
    - name: container_width
      value: 1140
templates:
  - id: 7
    name: Pricing
    source: templates/pricing.json
    metadata:
      template_type: section-pricing
  - id: 5
    name: Custom Block
    source: templates/custom.json
    metadata:
      template_type: custom-block
`

func export(title string, ids ...string) string {
	elements := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		elements = append(elements, map[string]any{
			"id":     id,
			"elType": "section",
			"elements": []map[string]any{
				{"id": id + "-col", "elType": "column", "elements": []any{}},
			},
		})
	}
	payload, _ := json.Marshal(map[string]any{
		"version": "0.4",
		"title":   title,
		"type":    "section",
		"content": elements,
	})
	return string(payload)
}

// KitFS returns an in-memory kits directory with two installed kits: a JSONC
// manifest (starter) and a YAML manifest (agency).
func KitFS() fstest.MapFS {
	return fstest.MapFS{
		"starter/manifest.jsonc":        {Data: []byte(starterManifest)},
		"starter/templates/home.json":   {Data: []byte(export("Home", "h1"))},
		"starter/templates/hero-a.json": {Data: []byte(export("Hero A", "ha1", "ha2"))},
		"starter/templates/header.json": {Data: []byte(export("Header", "hd1"))},
		"starter/templates/draft.json":  {Data: []byte(export("Draft", "d1"))},
		"starter/templates/hero-b.json": {Data: []byte(export("Hero B", "hb1"))},
		"agency/manifest.yaml":          {Data: []byte(agencyManifest)},
		"agency/templates/pricing.json": {Data: []byte(export("Pricing", "p1"))},
		"agency/templates/custom.json":  {Data: []byte(`["not", "an", "object"]`)},
		"README.txt":                    {Data: []byte("not a kit")},
		"empty/notes.txt":               {Data: []byte("directory without a manifest")},
	}
}

// HeadRecorder records the request URIs of HEAD requests.
type HeadRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (h *HeadRecorder) record(uri string) {
	h.mu.Lock()
	h.paths = append(h.paths, uri)
	h.mu.Unlock()
}

// Paths returns the recorded request URIs in arrival order.
func (h *HeadRecorder) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

// ImageServer serves PNG bytes for paths under /images/ and 404 elsewhere.
func ImageServer(t *testing.T) (*httptest.Server, *HeadRecorder) {
	t.Helper()

	heads := &HeadRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			heads.record(r.URL.RequestURI())
		}
		if !strings.HasPrefix(r.URL.Path, "/images/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(PNG())
		}
	}))
	t.Cleanup(srv.Close)
	return srv, heads
}

// PNG returns the bytes of a 1x1 transparent PNG.
func PNG() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
		0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
		0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
	}
}

// Diff compares values treating nil and empty collections as equal.
func Diff(want, got any, opts ...cmp.Option) string {
	opts = append([]cmp.Option{cmpopts.EquateEmpty()}, opts...)
	return cmp.Diff(want, got, opts...)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
