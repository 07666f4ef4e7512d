package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
)

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}

func TestSupportedMIMETypes(t *testing.T) {
	e := New()
	assert.Contains(t, e.SupportedMIMETypes(), "text/plain")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestExtract(t *testing.T) {
	e := New()

	raw := &domain.RawFile{
		SourceID: "1977.txt",
		URI:      "/letters/1977.txt",
		MIMEType: "text/plain",
		Year:     "1977",
		Content:  []byte("To the Stockholders of Berkshire Hathaway Inc.\n\nOperating earnings in 1977..."),
	}

	result, err := e.Extract(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "1977.txt", doc.SourceID)
	assert.Equal(t, "1977", doc.Year)
	assert.Equal(t, "1977", doc.Title)
	assert.Contains(t, doc.Content, "Operating earnings in 1977")
	assert.Equal(t, "text/plain", doc.Metadata["mime_type"])
}

func TestExtract_NilFile(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_Empty(t *testing.T) {
	raw := &domain.RawFile{
		SourceID: "empty.txt",
		URI:      "/letters/empty.txt",
		MIMEType: "text/plain",
		Content:  []byte("   \n\t "),
	}

	_, err := New().Extract(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
