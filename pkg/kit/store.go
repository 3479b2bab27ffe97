package kit

import (
	"context"
	"errors"

	"github.com/goliatone/go-templatekit/pkg/builder"
)

var (
	// ErrKitNotFound is returned when no installed kit matches the id.
	ErrKitNotFound = errors.New("kit: template kit not found")
	// ErrTemplateNotFound is returned when a kit has no template with the id
	// or the template export cannot be located.
	ErrTemplateNotFound = errors.New("kit: template not found")
	// ErrImportNotFound is returned when an imported template id is unknown.
	ErrImportNotFound = errors.New("kit: imported template not found")
)

// Store exposes installed template kits.
type Store interface {
	InstalledKits(ctx context.Context) ([]Summary, error)
	InstalledKit(ctx context.Context, id int) (Kit, error)
	TemplateData(ctx context.Context, kitID, templateID int) (TemplateData, error)
}

// Importer copies kit templates into the site's template library.
type Importer interface {
	ImportTemplate(ctx context.Context, kitID, templateID int, importAgain bool) (ImportResult, error)
	BuilderContent(ctx context.Context, importedID int) ([]builder.Element, error)
}
