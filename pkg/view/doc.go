// Package view renders HTML pages for template kits using pongo2 templates.
// The bundled browser template lists a kit's templates by category.
package view
