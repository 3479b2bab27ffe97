package view

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

// TemplatesFS returns the bundled templates rooted at the templates directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return templatesFS
	}
	return sub
}
