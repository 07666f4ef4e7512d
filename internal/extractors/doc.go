// Package extractors provides implementations of the Extractor interface
// for the document formats shareholder letters ship in. Each extractor
// knows how to pull plain text out of a specific MIME type.
//
// Extractors are registered with the Registry at startup; the registry
// picks the highest-priority extractor for a file's MIME type.
package extractors
