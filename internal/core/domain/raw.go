package domain

// RawFile represents opaque bytes read from the letters directory.
// It is the source's output before extraction.
type RawFile struct {
	// SourceID identifies the file (its base name, e.g. "1994.pdf").
	SourceID string

	// URI is the absolute path on disk.
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Year is the letter year derived from the filename, empty if unknown.
	Year string

	// Content is the raw bytes.
	Content []byte
}
