package form_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/formgate/formgate-api/internal/form"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSanitizer_Clean(t *testing.T) {
	s := form.NewSanitizer(1000, true)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "trims whitespace",
			input:    "  hello world  ",
			expected: "hello world",
		},
		{
			name:     "strips angle brackets",
			input:    "<script>alert(1)</script>",
			expected: "scriptalert(1)/script",
		},
		{
			name:     "strips semicolons",
			input:    "DROP TABLE users;",
			expected: "DROP TABLE users",
		},
		{
			name:     "strips characters exposed by trimming",
			input:    "hello <",
			expected: "hello",
		},
		{
			name:     "plain text untouched",
			input:    "Jane Doe",
			expected: "Jane Doe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Clean(tt.input))
		})
	}
}

func TestSanitizer_Clean_KeepsSemicolonWhenConfigured(t *testing.T) {
	s := form.NewSanitizer(1000, false)

	assert.Equal(t, "a;b", s.Clean("a;b"))
	assert.Equal(t, "ab", s.Clean("a<b>"))
}

func TestSanitizer_Clean_Truncates(t *testing.T) {
	s := form.NewSanitizer(1000, true)

	long := strings.Repeat("x", 5000)
	out := s.Clean(long)
	assert.Equal(t, 1000, utf8.RuneCountInString(out))
}

func TestSanitizer_Clean_OutputInvariants(t *testing.T) {
	s := form.NewSanitizer(1000, true)

	inputs := []string{
		"",
		"   ",
		"normal text",
		"<<<>>>;;;",
		strings.Repeat("a<b>c; ", 500),
		"  <" + strings.Repeat("y", 2000) + ">  ",
		"multi\nline\ntext with <tags> and; semicolons",
	}

	for _, in := range inputs {
		out := s.Clean(in)

		assert.LessOrEqual(t, utf8.RuneCountInString(out), 1000)
		assert.NotContains(t, out, "<")
		assert.NotContains(t, out, ">")
		assert.NotContains(t, out, ";")

		// Idempotence
		assert.Equal(t, out, s.Clean(out))
	}
}

func TestSanitizer_CleanSubmission(t *testing.T) {
	s := form.NewSanitizer(1000, true)

	fields := s.CleanSubmission(&models.SubmissionInput{
		Name:    "  Jane <Doe>  ",
		Email:   "jane@example.com",
		Message: "Hello; there",
	})

	assert.Equal(t, "Jane Doe", fields.Name)
	assert.Equal(t, "jane@example.com", fields.Email)
	assert.Equal(t, "Hello there", fields.Message)
	assert.Equal(t, "", fields.Company)
	assert.Equal(t, "", fields.Interest)
}

func TestSanitizer_CleanSubmission_NilInput(t *testing.T) {
	s := form.NewSanitizer(1000, true)

	fields := s.CleanSubmission(nil)
	assert.Equal(t, models.SanitizedFields{}, fields)
}
