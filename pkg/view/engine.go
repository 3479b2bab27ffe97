package view

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

const templateExt = ".tpl"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	overrideDir string
	globals     map[string]any
}

// WithBaseDir loads templates from a directory on disk. A file there
// replaces the bundled template of the same name; anything missing falls
// back to the bundled set.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.overrideDir = strings.TrimSpace(dir)
	}
}

// WithGlobalData seeds values every template sees, such as site_name.
// Empty keys are ignored.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		for key, value := range data {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if cfg.globals == nil {
				cfg.globals = make(map[string]any, len(data))
			}
			cfg.globals[key] = value
		}
	}
}

// Engine renders pongo2 templates, caching parsed files.
type Engine struct {
	set *pongo2.TemplateSet

	mu     sync.Mutex
	parsed map[string]*pongo2.Template
}

// New constructs an Engine over the bundled templates.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.overrideDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.overrideDir)
		if err != nil {
			return nil, fmt.Errorf("view: template dir %s: %w", cfg.overrideDir, err)
		}
		loaders = append(loaders, loader)
	}
	loaders = append(loaders, pongo2.NewFSLoader(TemplatesFS()))

	set := pongo2.NewSet("templatekit", loaders...)
	globals, err := toContext(cfg.globals)
	if err != nil {
		return nil, fmt.Errorf("view: global data: %w", err)
	}
	set.Globals.Update(globals)
	registerFilters()

	return &Engine{set: set, parsed: make(map[string]*pongo2.Template)}, nil
}

// RenderTemplate renders the template file name, appending ".tpl" when the
// name has no extension, and writes the result to every out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("view: engine is nil")
	}
	if !strings.HasSuffix(name, templateExt) {
		name += templateExt
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}

	viewContext, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("view: convert data for %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(viewContext, &buf); err != nil {
		return "", fmt.Errorf("view: execute template %q: %w", name, err)
	}
	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.parsed[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("view: load template %q: %w", name, err)
	}
	e.parsed[name] = tmpl
	return tmpl, nil
}

// toContext passes data through JSON so templates see the same field names
// API clients do. Numbers stay json.Number so ids print without a decimal
// part.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	out := pongo2.Context{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

var registerOnce sync.Once

func registerFilters() {
	registerOnce.Do(func() {
		if !pongo2.FilterExists("trim") {
			_ = pongo2.RegisterFilter("trim", filterTrim)
		}
		if !pongo2.FilterExists("pluralize_templates") {
			_ = pongo2.RegisterFilter("pluralize_templates", filterPluralizeTemplates)
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterPluralizeTemplates(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if n := in.Integer(); n != 1 {
		return pongo2.AsValue(fmt.Sprintf("%d templates", n)), nil
	}
	return pongo2.AsValue("1 template"), nil
}
