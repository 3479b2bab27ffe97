// Package config loads the template kit server configuration from a YAML
// file with command line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-templatekit/pkg/media"
)

// Config is the server configuration.
type Config struct {
	Listen    string `yaml:"listen"`
	BasePath  string `yaml:"base_path"`
	RoutePath string `yaml:"route_path"`

	KitsDir        string `yaml:"kits_dir"`
	CategoriesFile string `yaml:"categories_file"`
	FirstImportID  int    `yaml:"first_import_id"`

	// TemplatesDir holds page templates that replace the bundled ones.
	TemplatesDir string `yaml:"templates_dir"`
	SiteName     string `yaml:"site_name"`

	Media Media `yaml:"media"`
	Auth  Auth  `yaml:"auth"`
	Log   Log   `yaml:"log"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ImportTimeout   time.Duration `yaml:"import_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Media configures image imports. An empty UploadsDir disables them.
type Media struct {
	UploadsDir     string        `yaml:"uploads_dir"`
	UploadsURL     string        `yaml:"uploads_url"`
	PlaceholderURL string        `yaml:"placeholder_url"`
	ErrorURL       string        `yaml:"error_url"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"`
	Beacons        bool          `yaml:"beacons"`
}

// Auth controls access. With an empty Token every request is allowed.
type Auth struct {
	Token              string `yaml:"token"`
	CanUseTemplateKits bool   `yaml:"can_use_template_kits"`
}

// Log selects the log handler.
type Log struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Listen:        ":8080",
		KitsDir:       "template-kits",
		FirstImportID: 1000,
		SiteName:      "Template Kits",
		Media: Media{
			UploadsURL:     "/uploads",
			PlaceholderURL: media.DefaultPlaceholderURL,
			ErrorURL:       media.DefaultErrorURL,
			ProbeTimeout:   10 * time.Second,
			Beacons:        true,
		},
		Auth: Auth{CanUseTemplateKits: true},
		Log:  Log{Format: "json", Level: "info"},

		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ImportTimeout:   5 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := decode(bytes.NewReader(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Parse loads the file named by --config and applies the remaining flags on
// top of it. Flags always win over the file.
func Parse(name string, args []string) (Config, *pflag.FlagSet, error) {
	pre := pflag.NewFlagSet(name, pflag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.Usage = func() {}
	pre.SetOutput(io.Discard)
	configPath := pre.StringP("config", "c", "", "")
	if err := pre.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return Config{}, nil, err
	}

	cfg, err := Load(*configPath)
	if err != nil {
		return Config{}, nil, err
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", *configPath, "path to a YAML config file")
	BindFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, fs, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fs, err
	}
	return cfg, fs, nil
}

// BindFlags registers a flag for every setting, defaulting to cfg's values.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "address to listen on")
	fs.StringVar(&cfg.BasePath, "base-path", cfg.BasePath, "path prefix for every route")
	fs.StringVar(&cfg.RoutePath, "route-path", cfg.RoutePath, "REST namespace below the base path")
	fs.StringVar(&cfg.KitsDir, "kits-dir", cfg.KitsDir, "directory holding installed template kits")
	fs.StringVar(&cfg.CategoriesFile, "categories", cfg.CategoriesFile, "YAML or JSON file extending the category table")
	fs.IntVar(&cfg.FirstImportID, "first-import-id", cfg.FirstImportID, "id given to the first imported template")
	fs.StringVar(&cfg.TemplatesDir, "templates-dir", cfg.TemplatesDir, "directory of page templates overriding the bundled ones")
	fs.StringVar(&cfg.SiteName, "site-name", cfg.SiteName, "site name shown on the kit browser")

	fs.StringVar(&cfg.Media.UploadsDir, "uploads-dir", cfg.Media.UploadsDir, "directory imported images are written to (empty disables image imports)")
	fs.StringVar(&cfg.Media.UploadsURL, "uploads-url", cfg.Media.UploadsURL, "public URL the uploads directory is served from")
	fs.StringVar(&cfg.Media.PlaceholderURL, "placeholder-url", cfg.Media.PlaceholderURL, "image imported when the original is missing")
	fs.StringVar(&cfg.Media.ErrorURL, "error-url", cfg.Media.ErrorURL, "URL notified when an image import fails")
	fs.DurationVar(&cfg.Media.ProbeTimeout, "probe-timeout", cfg.Media.ProbeTimeout, "timeout for image HEAD probes")
	fs.BoolVar(&cfg.Media.Beacons, "beacons", cfg.Media.Beacons, "report missing and failed images")

	fs.StringVar(&cfg.Auth.Token, "token", cfg.Auth.Token, "bearer token required by guarded endpoints")
	fs.BoolVar(&cfg.Auth.CanUseTemplateKits, "can-use-template-kits", cfg.Auth.CanUseTemplateKits, "value reported by fetchPermissions for authorised callers")

	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format: json or text")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn or error")

	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "HTTP read timeout")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "HTTP write timeout")
	fs.DurationVar(&cfg.ImportTimeout, "import-timeout", cfg.ImportTimeout, "time allowed for import endpoints")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "time allowed for graceful shutdown")
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return errors.New("config: listen address is required")
	}
	if strings.TrimSpace(c.KitsDir) == "" {
		return errors.New("config: kits_dir is required")
	}
	if c.FirstImportID <= 0 {
		return fmt.Errorf("config: first_import_id must be positive, got %d", c.FirstImportID)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	for name, d := range map[string]time.Duration{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"import_timeout":   c.ImportTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("config: %s must not be negative", name)
		}
	}
	return nil
}

func (l Log) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

// Logger builds a structured logger writing to w.
func (l Log) Logger(w io.Writer) *slog.Logger {
	level, err := l.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
