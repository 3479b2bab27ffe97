package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templatekit.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := writeConfig(t, `
listen: 127.0.0.1:9000
kits_dir: /srv/kits
media:
  uploads_dir: /srv/uploads
  beacons: false
log:
  format: text
import_timeout: 90s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := Default()
	want.Listen = "127.0.0.1:9000"
	want.KitsDir = "/srv/kits"
	want.Media.UploadsDir = "/srv/uploads"
	want.Media.Beacons = false
	want.Log.Format = "text"
	want.ImportTimeout = 90 * time.Second
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "listen: :80\nkitz_dir: typo\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Listen != Default().Listen {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestParse_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "listen: :9000\nkits_dir: /from/file\n")
	cfg, fs, err := Parse("templatekit-server", []string{"--config", path, "--kits-dir", "/from/flag", "--log-level=debug"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Listen != ":9000" || cfg.KitsDir != "/from/flag" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if !fs.Changed("kits-dir") || fs.Changed("listen") {
		t.Fatalf("unexpected changed flags")
	}
}

func TestParse_ViewSettings(t *testing.T) {
	path := writeConfig(t, "site_name: Agency\ntemplates_dir: /srv/pages\n")
	cfg, _, err := Parse("x", []string{"-c", path, "--site-name", "Studio"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.SiteName != "Studio" || cfg.TemplatesDir != "/srv/pages" {
		t.Fatalf("unexpected view settings: %q %q", cfg.SiteName, cfg.TemplatesDir)
	}
	if Default().SiteName != "Template Kits" {
		t.Fatalf("expected default site name, got %q", Default().SiteName)
	}
}

func TestParse_ShortConfigFlag(t *testing.T) {
	path := writeConfig(t, "listen: :7000\n")
	cfg, _, err := Parse("x", []string{"-c", path})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Listen != ":7000" {
		t.Fatalf("unexpected listen %q", cfg.Listen)
	}
}

func TestParse_InvalidValues(t *testing.T) {
	cases := [][]string{
		{"--log-format", "xml"},
		{"--log-level", "loud"},
		{"--first-import-id", "0"},
		{"--kits-dir", ""},
		{"--import-timeout=-1s"},
		{"--no-such-flag"},
	}
	for _, args := range cases {
		if _, _, err := Parse("x", args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestLog_Logger(t *testing.T) {
	var buf bytes.Buffer
	Log{Format: "json", Level: "warn"}.Logger(&buf).Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}
	Log{Format: "text", Level: "info"}.Logger(&buf).Info("shown", "kit", 11)
	if !strings.Contains(buf.String(), "msg=shown") || !strings.Contains(buf.String(), "kit=11") {
		t.Fatalf("unexpected text output: %s", buf.String())
	}
}
