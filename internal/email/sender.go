package email

import (
	"context"

	"ngo_erp_backend/platform/config"
)

// Sender delivers transactional mail.
type Sender interface {
	SendVerificationEmail(ctx context.Context, msg VerificationEmail) error
}

// VerificationEmail is the content of the account verification mail sent to
// a freshly registered organization admin.
type VerificationEmail struct {
	To               string
	ContactName      string
	OrganizationName string
	VerifyURL        string
}

// NoopSender drops every message. It is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendVerificationEmail(context.Context, VerificationEmail) error {
	return nil
}

// NewSender returns an SMTP sender when mail is enabled and a NoopSender otherwise.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
