// Package templatekit browses, classifies and imports template kits: bundles
// of pre-built page and section designs for a page builder.
//
// Installed kits are read from a directory where each kit has a manifest
// (manifest.json, manifest.jsonc, manifest.yaml or manifest.yml) and one
// builder export per template. Templates are grouped by the template_type in
// their metadata; templates without one are left out of listings.
//
// The REST surface lives in components/templatekits and the binaries in cmd.
package templatekit
