// Package notification reacts to domain events: it mails the verification
// link to newly registered organization admins and pushes document changes
// to connected members over Server-Sent Events.
package notification

import (
	"context"
	"fmt"
	"strings"

	"ngo_erp_backend/internal/email"
	"ngo_erp_backend/internal/events"
	apphttp "ngo_erp_backend/internal/http"
	"ngo_erp_backend/internal/notification/sse"
	"ngo_erp_backend/platform/config"
	"ngo_erp_backend/platform/logger"

	"github.com/google/uuid"
)

const verifyEmailPath = "/verify-email"

// VerificationIssuer creates a one-time email verification token for a user.
type VerificationIssuer interface {
	IssueEmailVerification(ctx context.Context, userID uuid.UUID) (string, error)
}

// Module handles notification-related event subscriptions.
type Module struct {
	sender email.Sender
	issuer VerificationIssuer
	cfg    config.NotificationConfig
	sse    *sse.Service
	log    *logger.Logger
}

// New creates a new notification module.
func New(sender email.Sender, issuer VerificationIssuer, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		sender: sender,
		issuer: issuer,
		cfg:    cfg,
		sse:    sse.New(log),
		log:    log,
	}
}

func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers the event stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/notifications/stream", m.sse.Handler())
}

// SSE exposes the stream service so that shutdown can disconnect clients.
func (m *Module) SSE() *sse.Service { return m.sse }

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.TenantRegistered{}.EventName(), m)
	bus.Subscribe(events.DocumentUploaded{}.EventName(), m)
	bus.Subscribe(events.DocumentDeleted{}.EventName(), m)
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.TenantRegistered:
		return m.handleTenantRegistered(ctx, e)
	case events.DocumentUploaded:
		m.handleDocumentUploaded(e)
	case events.DocumentDeleted:
		m.handleDocumentDeleted(e)
	default:
		m.log.Warn("unhandled notification event", "event", event.EventName())
	}
	return nil
}

func (m *Module) handleTenantRegistered(ctx context.Context, e events.TenantRegistered) error {
	rawToken, err := m.issuer.IssueEmailVerification(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}

	err = m.sender.SendVerificationEmail(ctx, email.VerificationEmail{
		To:               e.Email,
		ContactName:      e.ContactName,
		OrganizationName: e.OrganizationName,
		VerifyURL:        m.buildURL(verifyEmailPath, rawToken),
	})
	if err != nil {
		m.log.Error("failed to send verification email",
			"userId", e.UserID,
			"orgId", e.OrganizationID,
			"error", err,
		)
		return err
	}
	m.log.Info("verification email sent", "userId", e.UserID, "orgId", e.OrganizationID)
	return nil
}

func (m *Module) handleDocumentUploaded(e events.DocumentUploaded) {
	m.sse.PublishToOrganization(e.OrganizationID, sse.Event{
		Type:       sse.EventDocumentUploaded,
		DocumentID: e.DocumentID,
		Message:    e.FileName,
		Data: map[string]interface{}{
			"uploadedBy": e.UploadedBy,
			"sizeBytes":  e.SizeBytes,
		},
	})
}

func (m *Module) handleDocumentDeleted(e events.DocumentDeleted) {
	m.sse.PublishToOrganization(e.OrganizationID, sse.Event{
		Type:       sse.EventDocumentDeleted,
		DocumentID: e.DocumentID,
		Data:       map[string]interface{}{"deletedBy": e.DeletedBy},
	})
}

func (m *Module) buildURL(path string, tokenValue string) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	return base + path + "?token=" + tokenValue
}
