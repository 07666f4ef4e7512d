// Package connectors provides access to letter sources. The filesystem
// connector reads a local directory of shareholder letters; each file's
// name yields the year label used in citations.
package connectors
