package templatekits

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-templatekit/pkg/apidoc"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the namespace path for the component under basePath.
// Endpoints live one segment below it.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// EndpointPath returns the full path of a single endpoint.
func EndpointPath(basePath, endpoint string, fns ...OptionFn) string {
	return strings.TrimRight(MountPath(basePath, fns...), "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// RegisterRoutes registers every endpoint under basePath on mux.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	opts := NewOptions(fns...)
	return RegisterRoutesWithOptions(mux, basePath, opts)
}

// RegisterRoutesWithOptions registers one handler per endpoint under basePath
// using a pre-built Options value and returns the namespace path.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("templatekits: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	namespace := mountPath(basePath, opts.RoutePath)
	if opts.APIDoc == nil {
		doc, err := apidoc.Handler(namespace, Endpoints()...)
		if err != nil {
			return "", fmt.Errorf("templatekits: api description: %w", err)
		}
		opts.APIDoc = doc
	}

	handler := HandlerWithOptions(opts)
	prefix := strings.TrimRight(namespace, "/")
	for _, endpoint := range Endpoints() {
		mux.Handle(prefix+"/"+endpoint, handler)
	}
	return namespace, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
