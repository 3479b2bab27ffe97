// Package media imports images referenced by kit templates into a media
// library.
//
// Author supplied image URLs are frequently stale. Before importing, the
// Importer probes each URL with a HEAD request and substitutes a placeholder
// image when the original is gone, so the library never stores an HTML error
// page as an image. Substitutions and failed imports are reported with a HEAD
// beacon to the placeholder host.
package media
