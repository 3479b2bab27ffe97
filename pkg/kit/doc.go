// Package kit defines the template kit domain: installed kits, the templates
// they bundle, and the store and importer contracts the HTTP adapter talks to.
//
// Templates inside a kit are held in a TemplateSet, an insertion-ordered map
// keyed by template id. Order matters: grouping and listing follow the order
// the kit author declared.
package kit
