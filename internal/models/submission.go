package models

// SubmissionInput is one raw, untrusted contact form submission. Every field
// may be missing, oversized, or contain unsafe characters.
type SubmissionInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Company  string `json:"company"`
	Interest string `json:"interest"`
}

// SanitizedFields holds the submission after trimming, character stripping and
// length capping. Still untrusted for semantic validity.
type SanitizedFields struct {
	Name     string
	Email    string
	Message  string
	Company  string
	Interest string
}

// SubmissionStatus is the terminal outcome of one submission. Every request
// yields exactly one of these.
type SubmissionStatus string

const (
	StatusSent             SubmissionStatus = "sent"
	StatusValidationFailed SubmissionStatus = "validation_failed"
	StatusRateLimited      SubmissionStatus = "rate_limited"
	StatusDeliveryFailed   SubmissionStatus = "delivery_failed"
)

// SubmissionResult is the uniform outcome returned for every submission.
type SubmissionResult struct {
	Status       SubmissionStatus
	SubmissionID int64
	// Errors holds field validation messages in rule-evaluation order
	Errors []string
	// Message is the user-facing text for rate-limit and delivery outcomes
	Message string
	// RetryAfterSeconds is set on rate-limited outcomes
	RetryAfterSeconds int
}

// SubmissionResponse is the JSON body returned by the contact endpoint.
type SubmissionResponse struct {
	Success      bool     `json:"success"`
	SubmissionID int64    `json:"submission_id,omitempty"`
	Error        string   `json:"error,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}
