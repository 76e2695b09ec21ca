package notification

import (
	"context"
	"errors"
	"testing"

	"ngo_erp_backend/internal/email"
	"ngo_erp_backend/internal/events"
	"ngo_erp_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://app.example.com/" }

type testSender struct {
	sent []email.VerificationEmail
	err  error
}

func (s *testSender) SendVerificationEmail(_ context.Context, msg email.VerificationEmail) error {
	s.sent = append(s.sent, msg)
	return s.err
}

type testIssuer struct {
	token  string
	err    error
	userID uuid.UUID
}

func (i *testIssuer) IssueEmailVerification(_ context.Context, userID uuid.UUID) (string, error) {
	i.userID = userID
	return i.token, i.err
}

func tenantRegistered() events.TenantRegistered {
	return events.TenantRegistered{
		Meta:             events.NewMeta(),
		OrganizationID:   uuid.New(),
		OrganizationName: "Helping Hands",
		UserID:           uuid.New(),
		Email:            "admin@helpinghands.org",
		ContactName:      "Jane Doe",
		Modules:          []string{"users", "finance"},
	}
}

func TestTenantRegisteredSendsVerificationLink(t *testing.T) {
	sender := &testSender{}
	issuer := &testIssuer{token: "tok123"}
	m := New(sender, issuer, testNotificationConfig{}, logger.New("development"))

	event := tenantRegistered()
	require.NoError(t, m.Handle(context.Background(), event))

	assert.Equal(t, event.UserID, issuer.userID)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, email.VerificationEmail{
		To:               "admin@helpinghands.org",
		ContactName:      "Jane Doe",
		OrganizationName: "Helping Hands",
		VerifyURL:        "https://app.example.com/verify-email?token=tok123",
	}, sender.sent[0])
}

func TestTenantRegisteredStopsWhenTokenCannotBeIssued(t *testing.T) {
	sender := &testSender{}
	m := New(sender, &testIssuer{err: errors.New("db down")}, testNotificationConfig{}, logger.New("development"))

	err := m.Handle(context.Background(), tenantRegistered())

	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestTenantRegisteredReportsSendFailure(t *testing.T) {
	sender := &testSender{err: errors.New("smtp unavailable")}
	m := New(sender, &testIssuer{token: "t"}, testNotificationConfig{}, logger.New("development"))

	assert.ErrorContains(t, m.Handle(context.Background(), tenantRegistered()), "smtp unavailable")
}

func TestRegisterHandlersSubscribesThroughBus(t *testing.T) {
	sender := &testSender{}
	m := New(sender, &testIssuer{token: "t"}, testNotificationConfig{}, logger.New("development"))
	bus := events.NewInMemoryBus(logger.New("development"))
	m.RegisterHandlers(bus)

	require.NoError(t, bus.PublishSync(context.Background(), tenantRegistered()))
	require.NoError(t, bus.PublishSync(context.Background(), events.DocumentUploaded{
		Meta:           events.NewMeta(),
		DocumentID:     uuid.New(),
		OrganizationID: uuid.New(),
		FileName:       "report.pdf",
	}))

	assert.Len(t, sender.sent, 1)
}
