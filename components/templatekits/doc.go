// Package templatekits exposes installed template kits over a small
// net/http REST surface compatible with the template kit import admin UI.
//
// Endpoints live under a namespace (default /wp-json/template-kit-import/v2)
// and accept GET and POST. Parameters are read from the JSON or form body
// first, then from the query string. Failures are reported with the
// envelope {"code","message","data":{"status","endpoint"}}.
//
// fetchIndividualTemplates accepts the id "all" to merge the templates of
// every installed kit before classifying them; when two kits share a template
// id the later kit wins.
package templatekits
