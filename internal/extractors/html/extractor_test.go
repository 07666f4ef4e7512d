package html

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
	assert.Contains(t, e.SupportedMIMETypes(), "text/html")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestExtract(t *testing.T) {
	e := New()

	raw := &domain.RawFile{
		SourceID: "1996.html",
		URI:      "/letters/1996.html",
		MIMEType: "text/html",
		Year:     "1996",
		Content: []byte(`<html>
<head><title>Chairman's Letter - 1996</title><style>body{font:serif}</style></head>
<body>
<p>To the Shareholders of Berkshire Hathaway Inc.:</p>
<p>Our gain in net worth during 1996 was $6.2 billion.</p>
<script>trackPageView();</script>
</body>
</html>`),
	}

	result, err := e.Extract(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Chairman's Letter - 1996", doc.Title)
	assert.Equal(t, "1996", doc.Year)
	assert.Contains(t, doc.Content, "net worth during 1996")
	assert.NotContains(t, doc.Content, "<p>")
	assert.NotContains(t, doc.Content, "trackPageView")
	assert.NotContains(t, doc.Content, "font:serif")
	assert.Equal(t, "html", doc.Metadata["format"])
}

func TestExtract_ParagraphBreaksPreserved(t *testing.T) {
	raw := &domain.RawFile{
		SourceID: "x.html",
		URI:      "/x.html",
		MIMEType: "text/html",
		Content:  []byte("<p>First paragraph.</p><p>Second paragraph.</p>"),
	}

	result, err := New().Extract(context.Background(), raw)
	require.NoError(t, err)
	assert.Contains(t, result.Document.Content, "First paragraph.\n\nSecond paragraph.")
}

func TestExtract_EntitiesDecoded(t *testing.T) {
	raw := &domain.RawFile{
		SourceID: "x.html",
		URI:      "/x.html",
		MIMEType: "text/html",
		Content:  []byte("<p>See&#39;s Candies &amp; GEICO</p>"),
	}

	result, err := New().Extract(context.Background(), raw)
	require.NoError(t, err)
	assert.Contains(t, result.Document.Content, "See's Candies & GEICO")
}

func TestExtract_NoText(t *testing.T) {
	raw := &domain.RawFile{
		SourceID: "x.html",
		URI:      "/x.html",
		MIMEType: "text/html",
		Content:  []byte("<html><head><title>t</title></head><body></body></html>"),
	}

	_, err := New().Extract(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_NilFile(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
