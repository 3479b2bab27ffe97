package view

import (
	"io"

	"github.com/goliatone/go-templatekit/pkg/classify"
	"github.com/goliatone/go-templatekit/pkg/kit"
)

// BrowserTemplate is the name of the bundled kit browser page.
const BrowserTemplate = "browser"

// BrowserKit is the view model for the kit browser.
type BrowserKit struct {
	ID               any              `json:"id"`
	Title            string           `json:"title"`
	Version          string           `json:"version,omitempty"`
	Templates        []kit.Template   `json:"templates"`
	TemplatesGrouped []classify.Group `json:"templatesGrouped"`
}

// NewBrowserKit builds the view model for a classified kit.
func NewBrowserKit(id any, title, version string, result classify.Result) BrowserKit {
	return BrowserKit{
		ID:               id,
		Title:            title,
		Version:          version,
		Templates:        result.Templates,
		TemplatesGrouped: result.Grouped,
	}
}

// RenderBrowser writes the kit browser page to w.
func (e *Engine) RenderBrowser(w io.Writer, model BrowserKit) error {
	_, err := e.RenderTemplate(BrowserTemplate, map[string]any{"kit": model}, w)
	return err
}
