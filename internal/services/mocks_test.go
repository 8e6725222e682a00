package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/ratelimit"
)

// MockAdmissionGate is a mock implementation of AdmissionGate
type MockAdmissionGate struct {
	mock.Mock
}

func (m *MockAdmissionGate) Admit(clientID string) ratelimit.Decision {
	args := m.Called(clientID)
	return args.Get(0).(ratelimit.Decision)
}

// MockDocumentRenderer is a mock implementation of DocumentRenderer
type MockDocumentRenderer struct {
	mock.Mock
}

func (m *MockDocumentRenderer) Render(fields models.SanitizedFields, submissionID int64) ([]byte, error) {
	args := m.Called(fields, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockMailSender is a mock implementation of MailSender
type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) Send(ctx context.Context, fields models.SanitizedFields, submissionID int64, attachment []byte) error {
	args := m.Called(ctx, fields, submissionID, attachment)
	return args.Error(0)
}
