package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-templatekit/internal/config"
	"github.com/goliatone/go-templatekit/pkg/testsupport"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeKits(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, file := range testsupport.KitFS() {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.KitsDir = writeKits(t)
	cfg.Media.UploadsDir = t.TempDir()
	cfg.Media.UploadsURL = "/uploads"
	cfg.Auth.Token = "tok"
	return cfg
}

func TestBuildHandler_ServesEndpoints(t *testing.T) {
	cfg := testConfig(t)
	handler, namespace, err := buildHandler(cfg, discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if namespace != "/wp-json/template-kit-import/v2" {
		t.Fatalf("unexpected namespace %q", namespace)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, namespace+"/fetchInstalledTemplateKits", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, namespace+"/fetchIndividualTemplates?id=all", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"templatesGrouped"`) {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBuildHandler_BrowsePageUsesTemplatesDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Token = ""
	cfg.SiteName = "Studio"
	cfg.TemplatesDir = t.TempDir()
	page := "{{ site_name }} / {{ kit.title }}"
	if err := os.WriteFile(filepath.Join(cfg.TemplatesDir, "browser.tpl"), []byte(page), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	handler, namespace, err := buildHandler(cfg, discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, namespace+"/browse?id=all", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "Studio / All Installed Kits" {
		t.Fatalf("expected override page, got %q", got)
	}
}

func TestBuildHandler_MissingTemplatesDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.TemplatesDir = filepath.Join(t.TempDir(), "absent")
	if _, _, err := buildHandler(cfg, discardLogger()); err == nil {
		t.Fatalf("expected error for missing templates dir")
	}
}

func TestBuildHandler_ServesUploads(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.Media.UploadsDir, "1-hero.png"), testsupport.PNG(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	handler, _, err := buildHandler(cfg, discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/1-hero.png", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != len(testsupport.PNG()) {
		t.Fatalf("unexpected upload response %d (%d bytes)", rec.Code, rec.Body.Len())
	}
}

func TestBuildHandler_MissingKitsDir(t *testing.T) {
	cfg := config.Default()
	cfg.KitsDir = filepath.Join(t.TempDir(), "missing")
	if _, _, err := buildHandler(cfg, discardLogger()); err == nil {
		t.Fatalf("expected error for missing kits directory")
	}
}

func TestUploadsPrefix(t *testing.T) {
	cfg := config.Default()
	if _, ok := uploadsPrefix(cfg); ok {
		t.Fatalf("expected no prefix without uploads dir")
	}
	cfg.Media.UploadsDir = "/tmp/x"
	cfg.Media.UploadsURL = "https://cdn.test/uploads"
	if _, ok := uploadsPrefix(cfg); ok {
		t.Fatalf("expected no prefix for absolute URL")
	}
	cfg.Media.UploadsURL = "/media//uploads/"
	if got, ok := uploadsPrefix(cfg); !ok || got != "/media/uploads/" {
		t.Fatalf("unexpected prefix %q", got)
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.ShutdownTimeout = time.Second
	handler, namespace, err := buildHandler(cfg, discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg, discardLogger(), listener, handler, namespace)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + namespace + "/fetchPermissions")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not shut down")
	}
}
