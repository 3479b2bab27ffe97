package templatekits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-templatekit/internal/kitstore"
	"github.com/goliatone/go-templatekit/pkg/apidoc"
	"github.com/goliatone/go-templatekit/pkg/testsupport"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath(""); got != "/wp-json/template-kit-import/v2" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("admin"); got != "/admin/wp-json/template-kit-import/v2" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("/admin/", WithRoutePath("api/kits")); got != "/admin/api/kits" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := EndpointPath("/admin", "/browse", WithRoutePath("api/kits/")); got != "/admin/api/kits/browse" {
		t.Fatalf("unexpected endpoint path: %q", got)
	}
}

func TestRegisterRoutes_RegistersEveryEndpoint(t *testing.T) {
	store, err := kitstore.New(testsupport.KitFS())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	mux := http.NewServeMux()
	namespace, err := RegisterRoutes(mux, "/site", WithStore(store), WithRoutePath("/api/kits"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if namespace != "/site/api/kits" {
		t.Fatalf("unexpected namespace: %q", namespace)
	}

	for _, endpoint := range Endpoints() {
		req := httptest.NewRequest(http.MethodGet, namespace+"/"+endpoint+"?id=11", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code == http.StatusNotFound && !strings.Contains(rec.Body.String(), `"code"`) {
			t.Fatalf("%s: route not registered", endpoint)
		}
	}

	req := httptest.NewRequest(http.MethodGet, namespace+"/openapi.json", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), `"url":"/site/api/kits"`) {
		t.Fatalf("expected document server to match namespace: %s", rec.Body.String())
	}
}

func TestRegisterRoutes_MissingMux(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/"); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}

func TestComponent_Handler(t *testing.T) {
	c := New(WithPermission(func(*http.Request) bool { return false }))
	if c.Options().RoutePath != DefaultRoutePath {
		t.Fatalf("unexpected route path %q", c.Options().RoutePath)
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fetchPermissions", nil))
	if got := strings.TrimSpace(rec.Body.String()); got != `{"can_use_template_kits":false}` {
		t.Fatalf("unexpected body: %s", got)
	}

	var nilComponent *Component
	if nilComponent.Options().RoutePath != DefaultRoutePath {
		t.Fatalf("expected defaults from nil component")
	}
}

func TestEndpoints_AreDocumented(t *testing.T) {
	doc, err := apidoc.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := apidoc.Require(doc, Endpoints()...); err != nil {
		t.Fatalf("expected every endpoint documented, got %v", err)
	}
}
