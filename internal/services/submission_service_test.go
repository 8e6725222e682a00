package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/formgate/formgate-api/internal/form"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/ratelimit"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/formgate/formgate-api/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Level: "error", Environment: "test"}); err != nil {
		panic(err)
	}
	m.Run()
}

func newService(gate services.AdmissionGate, renderer services.DocumentRenderer, mailer services.MailSender) *services.SubmissionService {
	return services.NewSubmissionService(
		gate,
		form.NewSanitizer(1000, true),
		form.NewValidator(),
		renderer,
		mailer,
		30*time.Second,
	)
}

func validInput() *models.SubmissionInput {
	return &models.SubmissionInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Message:  "Hello, I would like a quote.",
		Company:  "Acme",
		Interest: "Consulting",
	}
}

func TestSubmissionService_Submit_Sent(t *testing.T) {
	gate := new(MockAdmissionGate)
	renderer := new(MockDocumentRenderer)
	mailer := new(MockMailSender)
	service := newService(gate, renderer, mailer)

	gate.On("Admit", "203.0.113.7").Return(ratelimit.Decision{Allowed: true}).Once()

	expectedFields := models.SanitizedFields{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Message:  "Hello, I would like a quote.",
		Company:  "Acme",
		Interest: "Consulting",
	}

	var renderedID int64
	renderer.On("Render", expectedFields, mock.AnythingOfType("int64")).
		Run(func(args mock.Arguments) { renderedID = args.Get(1).(int64) }).
		Return([]byte("%PDF-fake"), nil).Once()

	mailer.On("Send", mock.Anything, expectedFields, mock.AnythingOfType("int64"), []byte("%PDF-fake")).
		Return(nil).Once()

	result := service.Submit(context.Background(), validInput(), "203.0.113.7")

	require.NotNil(t, result)
	assert.Equal(t, models.StatusSent, result.Status)
	assert.NotZero(t, result.SubmissionID)
	// The same identifier flows into the rendered artifact and the result
	assert.Equal(t, renderedID, result.SubmissionID)

	gate.AssertExpectations(t)
	renderer.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestSubmissionService_Submit_RateLimited(t *testing.T) {
	gate := new(MockAdmissionGate)
	renderer := new(MockDocumentRenderer)
	mailer := new(MockMailSender)
	service := newService(gate, renderer, mailer)

	gate.On("Admit", "203.0.113.7").Return(ratelimit.Decision{
		Allowed: false,
		Message: "Too many requests. Please try again in 15 minutes.",
	}).Once()

	result := service.Submit(context.Background(), validInput(), "203.0.113.7")

	require.NotNil(t, result)
	assert.Equal(t, models.StatusRateLimited, result.Status)
	assert.Contains(t, result.Message, "Too many requests")

	// Rejected submissions do no further work
	renderer.AssertNotCalled(t, "Render")
	mailer.AssertNotCalled(t, "Send")
}

func TestSubmissionService_Submit_ValidationFailed(t *testing.T) {
	gate := new(MockAdmissionGate)
	renderer := new(MockDocumentRenderer)
	mailer := new(MockMailSender)
	service := newService(gate, renderer, mailer)

	gate.On("Admit", mock.Anything).Return(ratelimit.Decision{Allowed: true}).Once()

	input := validInput()
	input.Name = "A"
	input.Email = "not-an-email"

	result := service.Submit(context.Background(), input, "203.0.113.7")

	require.NotNil(t, result)
	assert.Equal(t, models.StatusValidationFailed, result.Status)
	assert.Contains(t, result.Errors, form.MsgNameTooShort)
	assert.Contains(t, result.Errors, form.MsgEmailInvalid)

	renderer.AssertNotCalled(t, "Render")
	mailer.AssertNotCalled(t, "Send")
}

func TestSubmissionService_Submit_SanitizesBeforeValidation(t *testing.T) {
	gate := new(MockAdmissionGate)
	renderer := new(MockDocumentRenderer)
	mailer := new(MockMailSender)
	service := newService(gate, renderer, mailer)

	gate.On("Admit", mock.Anything).Return(ratelimit.Decision{Allowed: true}).Once()

	input := validInput()
	input.Name = "  <Jane Doe>  "

	expectedFields := models.SanitizedFields{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Message:  "Hello, I would like a quote.",
		Company:  "Acme",
		Interest: "Consulting",
	}
	renderer.On("Render", expectedFields, mock.AnythingOfType("int64")).Return([]byte("doc"), nil).Once()
	mailer.On("Send", mock.Anything, expectedFields, mock.AnythingOfType("int64"), []byte("doc")).Return(nil).Once()

	result := service.Submit(context.Background(), input, "203.0.113.7")
	assert.Equal(t, models.StatusSent, result.Status)

	renderer.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestSubmissionService_Submit_RenderError(t *testing.T) {
	gate := new(MockAdmissionGate)
	renderer := new(MockDocumentRenderer)
	mailer := new(MockMailSender)
	service := newService(gate, renderer, mailer)

	gate.On("Admit", mock.Anything).Return(ratelimit.Decision{Allowed: true}).Once()
	renderer.On("Render", mock.Anything, mock.AnythingOfType("int64")).
		Return(nil, errors.New("font missing")).Once()

	result := service.Submit(context.Background(), validInput(), "203.0.113.7")

	require.NotNil(t, result)
	assert.Equal(t, models.StatusDeliveryFailed, result.Status)
	assert.NotEmpty(t, result.Message)

	mailer.AssertNotCalled(t, "Send")
}

func TestSubmissionService_Submit_SendError(t *testing.T) {
	gate := new(MockAdmissionGate)
	renderer := new(MockDocumentRenderer)
	mailer := new(MockMailSender)
	service := newService(gate, renderer, mailer)

	gate.On("Admit", mock.Anything).Return(ratelimit.Decision{Allowed: true}).Once()
	renderer.On("Render", mock.Anything, mock.AnythingOfType("int64")).Return([]byte("doc"), nil).Once()
	mailer.On("Send", mock.Anything, mock.Anything, mock.AnythingOfType("int64"), []byte("doc")).
		Return(errors.New("smtp auth failed")).Once()

	result := service.Submit(context.Background(), validInput(), "203.0.113.7")

	require.NotNil(t, result)
	assert.Equal(t, models.StatusDeliveryFailed, result.Status)
	assert.NotContains(t, result.Message, "smtp auth failed")
}

func TestSubmissionService_Submit_SendTimeout(t *testing.T) {
	gate := new(MockAdmissionGate)
	renderer := new(MockDocumentRenderer)
	mailer := new(MockMailSender)
	service := newService(gate, renderer, mailer)

	gate.On("Admit", mock.Anything).Return(ratelimit.Decision{Allowed: true}).Once()
	renderer.On("Render", mock.Anything, mock.AnythingOfType("int64")).Return([]byte("doc"), nil).Once()
	mailer.On("Send", mock.Anything, mock.Anything, mock.AnythingOfType("int64"), []byte("doc")).
		Return(context.DeadlineExceeded).Once()

	result := service.Submit(context.Background(), validInput(), "203.0.113.7")

	assert.Equal(t, models.StatusDeliveryFailed, result.Status)
	assert.Contains(t, result.Message, "timed out")
}

func TestSubmissionService_Submit_EndToEnd(t *testing.T) {
	// Real sanitizer, validator, gate and store; only the collaborators are
	// stubbed to succeed.
	store := ratelimit.NewCacheStore()
	gate := ratelimit.NewLimiter(store, 3, 15*time.Minute)
	renderer := new(MockDocumentRenderer)
	mailer := new(MockMailSender)
	service := newService(gate, renderer, mailer)

	renderer.On("Render", mock.Anything, mock.AnythingOfType("int64")).Return([]byte("%PDF-fake"), nil).Once()
	mailer.On("Send", mock.Anything, mock.Anything, mock.AnythingOfType("int64"), []byte("%PDF-fake")).Return(nil).Once()

	result := service.Submit(context.Background(), validInput(), "198.51.100.20")

	require.NotNil(t, result)
	assert.Equal(t, models.StatusSent, result.Status)
	assert.NotZero(t, result.SubmissionID)
}

func TestSubmissionService_SubmissionIDsAreUnique(t *testing.T) {
	gate := new(MockAdmissionGate)
	renderer := new(MockDocumentRenderer)
	mailer := new(MockMailSender)
	service := newService(gate, renderer, mailer)

	gate.On("Admit", mock.Anything).Return(ratelimit.Decision{Allowed: true})
	renderer.On("Render", mock.Anything, mock.AnythingOfType("int64")).Return([]byte("doc"), nil)
	mailer.On("Send", mock.Anything, mock.Anything, mock.AnythingOfType("int64"), []byte("doc")).Return(nil)

	seen := make(map[int64]bool)
	for i := 0; i < 20; i++ {
		result := service.Submit(context.Background(), validInput(), "203.0.113.7")
		require.Equal(t, models.StatusSent, result.Status)
		assert.False(t, seen[result.SubmissionID], "submission id %d repeated", result.SubmissionID)
		seen[result.SubmissionID] = true
	}
}
