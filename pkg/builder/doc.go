// Package builder manipulates page-builder content trees: the nested element
// JSON that kit template exports carry under "content". Elements are kept as
// generic JSON objects so unknown widget settings survive a round trip.
package builder
