// Package kitstore implements kit.Store and kit.Importer over a file system
// of installed kits. Each kit lives in its own directory with a manifest
// (manifest.json, manifest.jsonc, manifest.yaml or manifest.yml) listing the
// templates and the builder export file each one is read from.
package kitstore
