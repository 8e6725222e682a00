package pdf_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := pdf.NewRenderer()

	out, err := r.Render(models.SanitizedFields{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Message:  "Hello, I would like a quote.",
		Company:  "Acme",
		Interest: "Consulting",
	}, 1748500000123)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "output should be a PDF document")
	assert.Greater(t, len(out), 500)

	// The submission id lives in the (uncompressed) document metadata
	assert.Contains(t, string(out), "1748500000123")
}

func TestRenderer_Render_MinimalFields(t *testing.T) {
	r := pdf.NewRenderer()

	out, err := r.Render(models.SanitizedFields{
		Name:    "Al",
		Email:   "a@b.com",
		Message: "1234567890",
	}, 42)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderer_Render_LongMessage(t *testing.T) {
	r := pdf.NewRenderer()

	out, err := r.Render(models.SanitizedFields{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Message: strings.Repeat("A fairly long sentence that needs wrapping. ", 40),
	}, 7)

	require.NoError(t, err)
	assert.Greater(t, len(out), 500)
}
