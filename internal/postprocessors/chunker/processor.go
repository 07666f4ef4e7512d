// Package chunker provides a boundary-aware overlapping text chunking
// processor.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/moatlabs/omaha/internal/core/domain"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping bytes.
const DefaultChunkOverlap = 200

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
//
// Splitting is hierarchical: each cut prefers the last paragraph
// boundary inside the window, then the last sentence boundary, then a
// raw byte position (backed off to a rune boundary). Every chunk after
// the first starts `overlap` bytes before the previous chunk's end, so
// concatenating the chunks with the overlap prefix trimmed reconstructs
// the source text exactly.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
// Overlap must be strictly smaller than the chunk size; violating that
// is a configuration bug and fails with domain.ErrChunking.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrChunking, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from
// document content. Content no longer than the chunk size yields
// exactly one chunk covering all of it.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	spans := p.split(doc.Content)

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, s := range spans {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    doc.Content[s.start:s.end],
			Index:      i,
			Metadata:   make(map[string]any),
		})
	}

	return chunks, nil
}

type span struct {
	start, end int
}

// split computes the chunk spans over content. Each span is at most
// chunkSize bytes; every span after the first begins overlap bytes
// before the previous span's end.
func (p *Processor) split(content string) []span {
	length := len(content)
	if length <= p.chunkSize {
		return []span{{0, length}}
	}

	var spans []span
	start := 0
	prevEnd := 0

	for {
		limit := start + p.chunkSize
		if limit >= length {
			spans = append(spans, span{start, length})
			return spans
		}

		end := cutPoint(content, prevEnd+1, limit)
		if end >= length {
			spans = append(spans, span{start, length})
			return spans
		}
		spans = append(spans, span{start, end})
		prevEnd = end

		start = end - p.overlap
		if start < 0 {
			start = 0
		}
		for start > 0 && !utf8.RuneStart(content[start]) {
			start--
		}
	}
}

// cutPoint picks the best position to end a chunk within (from, limit].
// It prefers the last paragraph break, then the last sentence break,
// and falls back to the limit itself backed off to a rune boundary.
// The returned position is always > from, so splitting makes progress.
func cutPoint(content string, from, limit int) int {
	// A tight overlap combined with the rune back-off on the chunk start
	// can push limit at or below from. Step forward one rune instead of
	// slicing an inverted window.
	if limit <= from {
		end := from + 1
		for end < len(content) && !utf8.RuneStart(content[end]) {
			end++
		}
		return end
	}

	window := content[from:limit]

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return from + i + 2
	}

	best := -1
	for _, sep := range []string{". ", ".\n", "? ", "?\n", "! ", "!\n", "\n"} {
		if i := strings.LastIndex(window, sep); i >= 0 {
			if end := i + len(sep); end > best {
				best = end
			}
		}
	}
	if best > 0 {
		return from + best
	}

	// Raw byte window; don't sever a multi-byte rune.
	end := limit
	for end > from+1 && !utf8.RuneStart(content[end]) {
		end--
	}
	return end
}
