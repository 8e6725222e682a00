package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/formgate/formgate-api/internal/form"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/pkg/logger"
	"github.com/formgate/formgate-api/pkg/metrics"
)

// SubmissionService runs one inbound submission through the gate, the
// sanitizer and the validator, then hands it to the renderer and the mailer.
// Every call returns exactly one terminal outcome; renderer and mailer errors
// never escape past this boundary.
type SubmissionService struct {
	gate            AdmissionGate
	sanitizer       *form.Sanitizer
	validator       *form.Validator
	renderer        DocumentRenderer
	mailer          MailSender
	deliveryTimeout time.Duration

	lastID atomic.Int64
}

func NewSubmissionService(
	gate AdmissionGate,
	sanitizer *form.Sanitizer,
	validator *form.Validator,
	renderer DocumentRenderer,
	mailer MailSender,
	deliveryTimeout time.Duration,
) *SubmissionService {
	return &SubmissionService{
		gate:            gate,
		sanitizer:       sanitizer,
		validator:       validator,
		renderer:        renderer,
		mailer:          mailer,
		deliveryTimeout: deliveryTimeout,
	}
}

// Submit processes one contact form submission from clientID.
func (s *SubmissionService) Submit(ctx context.Context, raw *models.SubmissionInput, clientID string) *models.SubmissionResult {
	decision := s.gate.Admit(clientID)
	if !decision.Allowed {
		metrics.FormSubmissions.WithLabelValues("rate_limited").Inc()
		metrics.RateLimitRejections.WithLabelValues("submission").Inc()
		logger.Warn("Submission rejected by rate limiter",
			zap.String("client_id", clientID),
			zap.Duration("retry_after", decision.RetryAfter),
		)
		return &models.SubmissionResult{
			Status:            models.StatusRateLimited,
			Message:           decision.Message,
			RetryAfterSeconds: int(decision.RetryAfter.Seconds()),
		}
	}

	fields := s.sanitizer.CleanSubmission(raw)

	if result := s.validator.Validate(fields); !result.Valid() {
		metrics.FormSubmissions.WithLabelValues("validation_failed").Inc()
		logger.Info("Submission failed validation",
			zap.String("client_id", clientID),
			zap.Strings("errors", result.Errors),
		)
		return &models.SubmissionResult{
			Status: models.StatusValidationFailed,
			Errors: result.Errors,
		}
	}

	submissionID := s.nextSubmissionID()

	// One budget for the whole render+send step. No retries and no rollback:
	// a rendered document may exist even when the send below fails.
	deliveryCtx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
	defer cancel()

	renderStart := time.Now()
	artifact, err := s.renderer.Render(fields, submissionID)
	if err != nil {
		metrics.RenderDuration.WithLabelValues("error").Observe(metrics.MeasureDuration(renderStart))
		metrics.FormSubmissions.WithLabelValues("delivery_failed").Inc()
		logger.Error("Failed to render submission document",
			zap.Int64("submission_id", submissionID),
			zap.Error(err),
		)
		return deliveryFailed(submissionID, err)
	}
	metrics.RenderDuration.WithLabelValues("success").Observe(metrics.MeasureDuration(renderStart))

	sendStart := time.Now()
	if err := s.mailer.Send(deliveryCtx, fields, submissionID, artifact); err != nil {
		metrics.MailSendDuration.WithLabelValues("error").Observe(metrics.MeasureDuration(sendStart))
		metrics.FormSubmissions.WithLabelValues("delivery_failed").Inc()
		logger.Error("Failed to deliver submission mail",
			zap.Int64("submission_id", submissionID),
			zap.Error(err),
		)
		return deliveryFailed(submissionID, err)
	}
	metrics.MailSendDuration.WithLabelValues("success").Observe(metrics.MeasureDuration(sendStart))

	metrics.FormSubmissions.WithLabelValues("sent").Inc()
	logger.Info("Submission delivered",
		zap.Int64("submission_id", submissionID),
		zap.String("client_id", clientID),
	)

	return &models.SubmissionResult{
		Status:       models.StatusSent,
		SubmissionID: submissionID,
	}
}

// nextSubmissionID returns a millisecond-clock based identifier that is
// strictly increasing within the process. Correlation only, not secrecy.
func (s *SubmissionService) nextSubmissionID() int64 {
	for {
		last := s.lastID.Load()
		id := time.Now().UnixMilli()
		if id <= last {
			id = last + 1
		}
		if s.lastID.CompareAndSwap(last, id) {
			return id
		}
	}
}

func deliveryFailed(submissionID int64, err error) *models.SubmissionResult {
	message := "Failed to deliver your message. Please try again later."
	if errors.Is(err, context.DeadlineExceeded) {
		message = "Delivery timed out. Please try again later."
	}
	return &models.SubmissionResult{
		Status:       models.StatusDeliveryFailed,
		SubmissionID: submissionID,
		Message:      message,
	}
}
