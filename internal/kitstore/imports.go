package kitstore

import (
	"context"
	"fmt"

	"github.com/goliatone/go-templatekit/pkg/builder"
	"github.com/goliatone/go-templatekit/pkg/kit"
)

// ImportTemplate copies a kit template into the in-memory template library.
// A template imported earlier is returned as is unless importAgain is set.
func (s *Store) ImportTemplate(ctx context.Context, kitID, templateID int, importAgain bool) (kit.ImportResult, error) {
	if err := ctx.Err(); err != nil {
		return kit.ImportResult{}, err
	}

	key := importKey{kitID: kitID, templateID: templateID}

	s.mu.RLock()
	installed, tpl, err := s.lookup(kitID, templateID)
	previous, reused := s.previousImport(key, importAgain)
	s.mu.RUnlock()
	if err != nil {
		return kit.ImportResult{}, err
	}
	if reused {
		return previous, nil
	}

	export, err := s.readExport(installed.dir, tpl)
	if err != nil {
		return kit.ImportResult{}, err
	}
	obj, ok := export.(map[string]any)
	if !ok {
		return kit.ImportResult{}, fmt.Errorf("kitstore: template %d export is not an object", templateID)
	}

	title := tpl.Name
	if exportTitle, ok := obj["title"].(string); ok && title == "" {
		title = s.opts.Sanitize(exportTitle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have imported the template while the export was read.
	if previous, reused := s.previousImport(key, importAgain); reused {
		return previous, nil
	}

	id := s.nextID
	s.nextID++
	s.library[id] = importedTemplate{
		id:         id,
		kitID:      kitID,
		templateID: templateID,
		title:      title,
		content:    builder.FromAny(obj["content"]),
	}
	s.imports[key] = id
	return kit.ImportResult{ImportedTemplateID: id, Title: title}, nil
}

// previousImport returns the earlier import of key unless importAgain is
// set. Callers hold s.mu.
func (s *Store) previousImport(key importKey, importAgain bool) (kit.ImportResult, bool) {
	if importAgain {
		return kit.ImportResult{}, false
	}
	id, ok := s.imports[key]
	if !ok {
		return kit.ImportResult{}, false
	}
	return kit.ImportResult{ImportedTemplateID: id, Title: s.library[id].title, Reused: true}, true
}

// BuilderContent returns a copy of an imported template's content tree.
func (s *Store) BuilderContent(ctx context.Context, importedID int) ([]builder.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.library[importedID]
	if !ok {
		return nil, fmt.Errorf("kitstore: imported template %d: %w", importedID, kit.ErrImportNotFound)
	}
	return builder.Iterate(entry.content, nil), nil
}
