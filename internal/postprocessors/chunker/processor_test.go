package chunker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/moatlabs/omaha/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p, err := New(WithChunkSize(500))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("overlap equals chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(100))
		if err == nil {
			t.Fatal("expected error when overlap equals chunk size")
		}
		if !errors.Is(err, domain.ErrChunking) {
			t.Errorf("expected ErrChunking, got: %v", err)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(150))
		if !errors.Is(err, domain.ErrChunking) {
			t.Errorf("expected ErrChunking, got: %v", err)
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p, err := New(WithChunkSize(0), WithOverlap(-1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p, _ := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcess_EmptyContent(t *testing.T) {
	p, _ := New()

	chunks, err := p.Process(context.Background(), &domain.Document{ID: "doc"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("expected no chunks for empty content, got %d", len(chunks))
	}
}

func TestProcess_ContentFitsOneChunk(t *testing.T) {
	p, _ := New(WithChunkSize(100), WithOverlap(20))

	doc := &domain.Document{ID: "doc", Content: "Short letter text."}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != doc.Content {
		t.Errorf("expected chunk to cover all content, got %q", chunks[0].Content)
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
	if chunks[0].DocumentID != "doc" {
		t.Errorf("expected document id 'doc', got %q", chunks[0].DocumentID)
	}
}

func TestProcess_ExactlyChunkSize(t *testing.T) {
	p, _ := New(WithChunkSize(50), WithOverlap(10))

	doc := &domain.Document{ID: "doc", Content: strings.Repeat("a", 50)}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk for content of exactly chunk size, got %d", len(chunks))
	}
}

func TestProcess_ChunkSizeBound(t *testing.T) {
	p, _ := New(WithChunkSize(80), WithOverlap(16))

	doc := &domain.Document{
		ID: "doc",
		Content: "Our gain in net worth during 1994 was $1.45 billion. " +
			"Over the last 30 years our per-share book value has grown " +
			"from $19 to $10,083, or at a rate of 23% compounded annually. " +
			"Charlie Munger and I make few predictions.",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if len(c.Content) > 80 {
			t.Errorf("chunk %d exceeds size bound: %d bytes", i, len(c.Content))
		}
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
	}
}

func TestProcess_Reconstruction(t *testing.T) {
	const size = 100
	const overlap = 20

	p, _ := New(WithChunkSize(size), WithOverlap(overlap))

	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString("To the shareholders of Berkshire Hathaway. ")
		b.WriteString("Our float grew again this year, as it has every year.\n\n")
	}
	content := b.String()

	doc := &domain.Document{ID: "doc", Content: content}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk after the first repeats the tail of its predecessor.
	// Trimming the overlap prefix and concatenating must reconstruct
	// the source text exactly.
	var r strings.Builder
	r.WriteString(chunks[0].Content)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		cur := chunks[i].Content

		trim := overlap
		if trim > len(prev) {
			trim = len(prev)
		}
		if !strings.HasSuffix(prev, cur[:trim]) {
			t.Fatalf("chunk %d does not overlap its predecessor", i)
		}
		r.WriteString(cur[trim:])
	}

	if r.String() != content {
		t.Error("trimmed concatenation does not reconstruct the source text")
	}
}

func TestProcess_PrefersParagraphBoundaries(t *testing.T) {
	p, _ := New(WithChunkSize(60), WithOverlap(10))

	doc := &domain.Document{
		ID:      "doc",
		Content: "First paragraph about insurance float.\n\nSecond paragraph about See's Candies and its pricing power over decades.",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	if !strings.HasSuffix(chunks[0].Content, "\n\n") {
		t.Errorf("expected first chunk to end at paragraph break, got %q", chunks[0].Content)
	}
}

func TestProcess_TightOverlapMultiByteContent(t *testing.T) {
	// An overlap one below the chunk size is a valid configuration.
	// Combined with the rune back-off on chunk starts it used to invert
	// the cut window and panic on multi-byte text.
	p, err := New(WithChunkSize(10), WithOverlap(9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := &domain.Document{ID: "doc", Content: strings.Repeat("日本語", 10)}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	for i, c := range chunks {
		if c.Content == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if !utf8.ValidString(c.Content) {
			t.Errorf("chunk %d severs a rune: %q", i, c.Content)
		}
	}

	last := chunks[len(chunks)-1].Content
	if !strings.HasSuffix(doc.Content, last) {
		t.Error("last chunk must end at the end of the content")
	}
}

func TestProcess_MultiByteContent(t *testing.T) {
	p, _ := New(WithChunkSize(10), WithOverlap(2))

	// No sentence or paragraph boundaries: forces raw windows over
	// multi-byte runes.
	doc := &domain.Document{ID: "doc", Content: strings.Repeat("日本語", 10)}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, c := range chunks {
		if !utf8.ValidString(c.Content) {
			t.Errorf("chunk %d severs a rune: %q", i, c.Content)
		}
	}
}
