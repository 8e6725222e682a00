package services

import (
	"context"

	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/ratelimit"
)

// DocumentRenderer turns a validated submission into an opaque document
// artifact. Implemented by internal/pdf.
type DocumentRenderer interface {
	Render(fields models.SanitizedFields, submissionID int64) ([]byte, error)
}

// MailSender delivers a submission with its rendered artifact attached.
// Implemented by internal/mailer.
type MailSender interface {
	Send(ctx context.Context, fields models.SanitizedFields, submissionID int64, attachment []byte) error
}

// AdmissionGate decides whether a client may submit right now.
// Implemented by internal/ratelimit.
type AdmissionGate interface {
	Admit(clientID string) ratelimit.Decision
}

// SubmissionServiceInterface is the boundary handlers depend on.
type SubmissionServiceInterface interface {
	Submit(ctx context.Context, raw *models.SubmissionInput, clientID string) *models.SubmissionResult
}
