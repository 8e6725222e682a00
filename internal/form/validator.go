package form

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/formgate/formgate-api/internal/models"
)

// User-facing validation messages. The frontend renders these verbatim, so the
// wording is part of the contract.
const (
	MsgNameTooShort      = "Name must be at least 2 characters long"
	MsgNameTooLong       = "Name must be less than 100 characters"
	MsgEmailInvalid      = "Please enter a valid email address"
	MsgMessageTooShort   = "Message must be at least 10 characters long"
	MsgMessageTooLong    = "Message must be less than 2000 characters"
	MsgCompanyTooLong    = "Company name must be less than 100 characters"
	MsgProhibitedContent = "Message contains prohibited content"
)

const (
	nameMinLength    = 2
	nameMaxLength    = 100
	messageMinLength = 10
	messageMaxLength = 2000
	companyMaxLength = 100
)

// ASCII local part with common symbols, dot-separated alphanumeric-hyphen
// domain labels, mandatory TLD.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)+$`)

// spamKeywords is scanned against the lowercased message. The first match
// wins; further keywords are not reported.
var spamKeywords = []string{
	"viagra",
	"casino",
	"lottery",
	"winner",
	"congratulations",
	"click here",
	"free money",
}

// ValidationResult carries the outcome of validating one submission. Errors
// are ordered by rule evaluation: name, email, message, company, spam scan.
type ValidationResult struct {
	Errors []string
}

// Valid reports whether the submission passed every rule.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validator applies field-level rules to sanitized submission fields.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs all rules and collects every applicable error; no rule
// short-circuits the others.
func (v *Validator) Validate(f models.SanitizedFields) ValidationResult {
	var errs []string

	if utf8.RuneCountInString(strings.TrimSpace(f.Name)) < nameMinLength {
		errs = append(errs, MsgNameTooShort)
	}
	if utf8.RuneCountInString(f.Name) > nameMaxLength {
		errs = append(errs, MsgNameTooLong)
	}

	if !emailPattern.MatchString(f.Email) {
		errs = append(errs, MsgEmailInvalid)
	}

	if utf8.RuneCountInString(strings.TrimSpace(f.Message)) < messageMinLength {
		errs = append(errs, MsgMessageTooShort)
	}
	if utf8.RuneCountInString(f.Message) > messageMaxLength {
		errs = append(errs, MsgMessageTooLong)
	}

	if f.Company != "" && utf8.RuneCountInString(f.Company) > companyMaxLength {
		errs = append(errs, MsgCompanyTooLong)
	}

	lowered := strings.ToLower(f.Message)
	for _, keyword := range spamKeywords {
		if strings.Contains(lowered, keyword) {
			errs = append(errs, MsgProhibitedContent)
			break
		}
	}

	return ValidationResult{Errors: errs}
}
