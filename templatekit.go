package templatekit

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/goliatone/go-templatekit/components/templatekits"
	"github.com/goliatone/go-templatekit/internal/kitstore"
	"github.com/goliatone/go-templatekit/pkg/classify"
	"github.com/goliatone/go-templatekit/pkg/kit"
)

// Kit aliases kit.Kit for callers that only import the root package.
type Kit = kit.Kit

// Template aliases kit.Template.
type Template = kit.Template

// Table aliases classify.Table.
type Table = classify.Table

// Result aliases classify.Result.
type Result = classify.Result

// KitStore lists installed kits and imports their templates.
type KitStore interface {
	kit.Store
	kit.Importer
}

// OpenKits loads every kit directory found at the root of files. Imported
// template ids start at firstImportID; zero keeps the default.
func OpenKits(files fs.FS, firstImportID int) (KitStore, error) {
	var fns []kitstore.OptionFn
	if firstImportID > 0 {
		fns = append(fns, kitstore.WithFirstImportID(firstImportID))
	}
	return kitstore.New(files, fns...)
}

// OpenKitsDir is OpenKits over a directory on disk.
func OpenKitsDir(dir string, firstImportID int) (KitStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("templatekit: kits directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templatekit: kits directory %s is not a directory", dir)
	}
	return OpenKits(os.DirFS(dir), firstImportID)
}

// Classify groups templates by category using table.
func Classify(templates kit.TemplateSet, table Table) Result {
	return classify.Classify(templates, table)
}

// LoadCategories returns the default category table extended by the YAML or
// JSON file at path. An empty path returns the defaults.
func LoadCategories(path string) (Table, error) {
	table := classify.DefaultTable()
	if strings.TrimSpace(path) == "" {
		return table, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("templatekit: categories: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	extra, err := classify.LoadTable(f)
	if err != nil {
		return Table{}, fmt.Errorf("templatekit: categories %s: %w", path, err)
	}
	return table.Merge(extra), nil
}

var errBadToken = errors.New("invalid or missing bearer token")

// TokenGuard rejects requests without "Authorization: Bearer <token>". An
// empty token disables the guard.
func TokenGuard(token string) templatekits.GuardFunc {
	if token == "" {
		return nil
	}
	return func(r *http.Request) error {
		if !validToken(r, token) {
			return templatekits.StatusError{Code: http.StatusUnauthorized, Err: errBadToken}
		}
		return nil
	}
}

// TokenPermission reports canUse for callers holding token. With an empty
// token every caller gets canUse.
func TokenPermission(token string, canUse bool) templatekits.PermissionFunc {
	return func(r *http.Request) bool {
		if token != "" && !validToken(r, token) {
			return false
		}
		return canUse
	}
}

func validToken(r *http.Request, token string) bool {
	header := r.Header.Get("Authorization")
	presented, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(presented)), []byte(token)) == 1
}
