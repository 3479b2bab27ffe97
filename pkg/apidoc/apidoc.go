package apidoc

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawDocument []byte

// Operation is one documented endpoint.
type Operation struct {
	ID     string
	Method string
	Path   string
}

// Load parses and validates the embedded document. When serverURL is not
// empty it replaces the document's servers.
func Load(ctx context.Context, serverURL string) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(rawDocument)
	if err != nil {
		return nil, fmt.Errorf("apidoc: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("apidoc: validate document: %w", err)
	}
	if serverURL = strings.TrimSpace(serverURL); serverURL != "" {
		doc.Servers = openapi3.Servers{{URL: serverURL}}
	}
	return doc, nil
}

// Operations lists the documented operations sorted by path then method.
func Operations(doc *openapi3.T) []Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	var out []Operation
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			out = append(out, Operation{ID: op.OperationID, Method: method, Path: path})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Handler serves the document as JSON. serverURL overrides the documented
// server so clients resolve paths against the actual mount point. Every
// endpoint named must be documented; see Require.
func Handler(serverURL string, endpoints ...string) (http.Handler, error) {
	doc, err := Load(context.Background(), serverURL)
	if err != nil {
		return nil, err
	}
	if err := Require(doc, endpoints...); err != nil {
		return nil, err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("apidoc: encode document: %w", err)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	}), nil
}

// ErrUndocumented is returned by Require when an endpoint is missing.
var ErrUndocumented = errors.New("apidoc: endpoint not documented")

// Require checks that every endpoint, a path segment below the server URL
// such as "fetchPermissions", has a documented operation.
func Require(doc *openapi3.T, endpoints ...string) error {
	known := make(map[string]bool)
	for _, op := range Operations(doc) {
		known[op.Path] = true
	}
	var missing []string
	for _, endpoint := range endpoints {
		if !known["/"+strings.TrimLeft(endpoint, "/")] {
			missing = append(missing, endpoint)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUndocumented, strings.Join(missing, ", "))
	}
	return nil
}
