package templatekits

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/goliatone/go-templatekit/pkg/builder"
	"github.com/goliatone/go-templatekit/pkg/classify"
	"github.com/goliatone/go-templatekit/pkg/kit"
	"github.com/goliatone/go-templatekit/pkg/media"
	"github.com/goliatone/go-templatekit/pkg/view"
)

// AllKitsID selects every installed kit in fetchIndividualTemplates.
const AllKitsID = "all"

const allKitsTitle = "All Installed Kits"

var errStoreMissing = errors.New("templatekits: no template kit store configured")

// KitResponse is a kit with its templates classified.
type KitResponse struct {
	ID               any              `json:"id"`
	Title            string           `json:"title"`
	Version          string           `json:"version,omitempty"`
	Screenshot       string           `json:"screenshot,omitempty"`
	Requirements     kit.Requirements `json:"requirements"`
	Templates        []kit.Template   `json:"templates"`
	TemplatesGrouped []classify.Group `json:"templatesGrouped"`
}

// ImportResponse is returned by importSingleTemplate. Content is only set
// when the caller asked to insert the template into a page.
type ImportResponse struct {
	kit.ImportResult
	Content any `json:"content,omitempty"`
}

type permissionsResponse struct {
	CanUseTemplateKits bool `json:"can_use_template_kits"`
}

type templateDataResponse struct {
	TemplateData any `json:"template_data"`
}

func (h *handler) fetchInstalledTemplateKits(w http.ResponseWriter, r *http.Request, _ params) error {
	if h.opts.Store == nil {
		return errStoreMissing
	}
	kits, err := h.opts.Store.InstalledKits(r.Context())
	if err != nil {
		return err
	}
	if kits == nil {
		kits = []kit.Summary{}
	}
	return writeJSON(w, r, kits)
}

func (h *handler) fetchPermissions(w http.ResponseWriter, r *http.Request, _ params) error {
	return writeJSON(w, r, permissionsResponse{CanUseTemplateKits: h.opts.Permission(r)})
}

func (h *handler) fetchIndividualTemplates(w http.ResponseWriter, r *http.Request, p params) error {
	resp, err := h.classifiedKit(r.Context(), p.get("id"))
	if err != nil {
		return err
	}
	return writeJSON(w, r, resp)
}

// classifiedKit loads one kit, or every kit for AllKitsID, and classifies its
// templates.
func (h *handler) classifiedKit(ctx context.Context, rawID string) (KitResponse, error) {
	if h.opts.Store == nil {
		return KitResponse{}, errStoreMissing
	}

	var resp KitResponse
	var templates kit.TemplateSet
	if rawID == AllKitsID {
		kits, err := h.allKits(ctx)
		if err != nil {
			return KitResponse{}, err
		}
		resp = KitResponse{
			ID:           AllKitsID,
			Title:        allKitsTitle,
			Requirements: kit.Requirements{}.Normalized(),
		}
		templates = classify.MergeKits(kits...)
	} else {
		installed, err := h.opts.Store.InstalledKit(ctx, castInt(rawID))
		if errors.Is(err, kit.ErrKitNotFound) {
			return KitResponse{}, &APIError{
				Status:   http.StatusNotFound,
				Code:     CodeNotFound,
				Message:  msgKitNotFound,
				Endpoint: notFoundEndpoint,
				Err:      err,
			}
		}
		if err != nil {
			return KitResponse{}, err
		}
		resp = KitResponse{
			ID:           installed.ID,
			Title:        installed.Title,
			Version:      installed.Version,
			Screenshot:   installed.Screenshot,
			Requirements: installed.Requirements.Normalized(),
		}
		templates = installed.Templates
	}

	result := classify.Classify(templates, h.opts.Table)
	resp.Templates = result.Templates
	resp.TemplatesGrouped = result.Grouped
	return resp, nil
}

// allKits loads every installed kit in list order. Kits that fail to load
// are skipped.
func (h *handler) allKits(ctx context.Context) ([]kit.Kit, error) {
	summaries, err := h.opts.Store.InstalledKits(ctx)
	if err != nil {
		return nil, err
	}
	kits := make([]kit.Kit, 0, len(summaries))
	for _, summary := range summaries {
		installed, err := h.opts.Store.InstalledKit(ctx, summary.ID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			h.opts.Logger.Warn("templatekits: skipping kit", "kit_id", summary.ID, "error", err)
			continue
		}
		kits = append(kits, installed)
	}
	return kits, nil
}

func (h *handler) importSingleTemplate(w http.ResponseWriter, r *http.Request, p params) error {
	if h.opts.Importer == nil {
		return errors.New("templatekits: no template importer configured")
	}
	ctx := r.Context()
	kitID := p.integer("templateKitId")
	templateID := p.integer("templateId")

	result, err := h.opts.Importer.ImportTemplate(ctx, kitID, templateID, p.flag("importAgain"))
	if err != nil {
		return err
	}
	h.opts.Logger.Info("templatekits: template imported",
		"kit_id", kitID,
		"template_id", templateID,
		"imported_template_id", result.ImportedTemplateID,
		"title", result.Title,
		"reused", result.Reused,
	)

	resp := ImportResponse{ImportResult: result}
	if p.flag("insertToPage") {
		content, err := h.opts.Importer.BuilderContent(ctx, result.ImportedTemplateID)
		if err != nil {
			return err
		}
		if len(content) == 0 {
			resp.Content = []builder.Element{}
		} else {
			resp.Content = builder.Reassign(content, h.opts.NewID)
		}
		h.opts.Logger.Debug("templatekits: content attached",
			"imported_template_id", result.ImportedTemplateID,
			"elements", builder.Count(content),
		)
	}
	return writeJSON(w, r, resp)
}

func (h *handler) getSingleTemplateImportData(w http.ResponseWriter, r *http.Request, p params) error {
	if h.opts.Store == nil {
		return errStoreMissing
	}
	ctx := r.Context()
	kitID := p.integer("templateKitId")
	templateID := p.integer("templateId")

	var kitTitle string
	if installed, err := h.opts.Store.InstalledKit(ctx, kitID); err == nil {
		kitTitle = installed.Title
	}

	data, err := h.opts.Store.TemplateData(ctx, kitID, templateID)
	if err != nil {
		return err
	}

	payload := data.TemplateJSON
	if obj, ok := payload.(map[string]any); ok && kitTitle != "" {
		withName := make(map[string]any, len(obj)+1)
		for key, value := range obj {
			withName[key] = value
		}
		withName["template_kit_name"] = kitTitle
		payload = withName
	}
	return writeJSON(w, r, templateDataResponse{TemplateData: payload})
}

func (h *handler) importElementorTemplateImage(w http.ResponseWriter, r *http.Request, p params) error {
	result, err := h.opts.Images.Import(r.Context(), media.Request{
		ID:      p.integer("id"),
		URL:     p.get("url"),
		KitName: p.get("templateKitName"),
	})
	if err != nil {
		return err
	}
	return writeJSON(w, r, result.Payload())
}

func (h *handler) browse(w http.ResponseWriter, r *http.Request, p params) error {
	if h.opts.View == nil {
		return errors.New("templatekits: kit browser unavailable")
	}
	resp, err := h.classifiedKit(r.Context(), p.get("id"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	model := view.NewBrowserKit(resp.ID, resp.Title, resp.Version, classify.Result{
		Templates: resp.Templates,
		Grouped:   resp.TemplatesGrouped,
	})
	if err := h.opts.View.RenderBrowser(&buf, model); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return nil
	}
	_, _ = w.Write(buf.Bytes())
	return nil
}

func (h *handler) openAPI(w http.ResponseWriter, r *http.Request, _ params) error {
	if h.apiDoc == nil {
		return errors.New("templatekits: api description unavailable")
	}
	if r.Method == http.MethodPost {
		r = r.Clone(r.Context())
		r.Method = http.MethodGet
	}
	h.apiDoc.ServeHTTP(w, r)
	return nil
}
