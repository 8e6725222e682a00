package form

import (
	"strings"

	"github.com/formgate/formgate-api/internal/models"
)

// Sanitizer normalizes free-text form fields before validation. It is a pure
// transformation: stripping the character denylist, trimming whitespace and
// capping length. It never rejects input.
type Sanitizer struct {
	maxFieldLength int
	denylist       string
}

// NewSanitizer creates a sanitizer. maxFieldLength caps every field (in runes);
// stripSemicolon adds ';' to the '<' and '>' denylist.
func NewSanitizer(maxFieldLength int, stripSemicolon bool) *Sanitizer {
	denylist := "<>"
	if stripSemicolon {
		denylist = "<>;"
	}
	return &Sanitizer{
		maxFieldLength: maxFieldLength,
		denylist:       denylist,
	}
}

// Clean sanitizes a single field. Idempotent: a second pass over its own
// output is a no-op, so whitespace exposed by stripping or truncation is
// trimmed before returning.
func (s *Sanitizer) Clean(raw string) string {
	out := strings.Map(func(r rune) rune {
		if strings.ContainsRune(s.denylist, r) {
			return -1
		}
		return r
	}, raw)

	out = strings.TrimSpace(out)

	if runes := []rune(out); len(runes) > s.maxFieldLength {
		out = strings.TrimSpace(string(runes[:s.maxFieldLength]))
	}

	return out
}

// CleanSubmission sanitizes every field of a raw submission. A nil input
// yields all-empty fields.
func (s *Sanitizer) CleanSubmission(in *models.SubmissionInput) models.SanitizedFields {
	if in == nil {
		return models.SanitizedFields{}
	}
	return models.SanitizedFields{
		Name:     s.Clean(in.Name),
		Email:    s.Clean(in.Email),
		Message:  s.Clean(in.Message),
		Company:  s.Clean(in.Company),
		Interest: s.Clean(in.Interest),
	}
}
