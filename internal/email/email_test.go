package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

type smtpSettings struct {
	host string
}

func (s smtpSettings) GetSMTPHost() string         { return s.host }
func (s smtpSettings) GetSMTPPort() int            { return 587 }
func (s smtpSettings) GetSMTPUsername() string     { return "" }
func (s smtpSettings) GetSMTPPassword() string     { return "" }
func (s smtpSettings) GetEmailFromName() string    { return "NGO ERP" }
func (s smtpSettings) GetEmailFromAddress() string { return "no-reply@example.org" }
func (s smtpSettings) IsEmailEnabled() bool        { return s.host != "" }

func TestNewSenderFallsBackToNoop(t *testing.T) {
	sender := NewSender(smtpSettings{})
	_, ok := sender.(NoopSender)
	assert.True(t, ok)
	assert.NoError(t, sender.SendVerificationEmail(context.Background(), VerificationEmail{To: "a@b.org"}))
}

func TestNewSenderUsesSMTPWhenConfigured(t *testing.T) {
	sender := NewSender(smtpSettings{host: "smtp.example.org"})
	_, ok := sender.(*SMTPSender)
	assert.True(t, ok)
}

func TestVerificationTemplateEscapesInput(t *testing.T) {
	html, err := renderEmailTemplate("verification.html", verificationEmailData{
		baseEmailData: baseEmailData{
			Title:    "Verify",
			Heading:  "Confirm",
			CTALabel: "Verify email address",
			CTAURL:   "https://app.example.org/verify-email?token=abc",
		},
		ContactName:      "<b>Jane</b>",
		OrganizationName: "Helping Hands",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Helping Hands has been registered.")
	assert.Contains(t, html, "https://app.example.org/verify-email?token=abc")
	assert.Contains(t, html, "&lt;b&gt;Jane&lt;/b&gt;")
	assert.NotContains(t, html, "<b>Jane</b>")
}

func TestBuildVerificationMessage(t *testing.T) {
	sender := NewSMTPSender("smtp.example.org", 587, "", "", "no-reply@example.org", "NGO ERP")

	msg, err := sender.buildVerification(VerificationEmail{
		To:               "admin@helpinghands.org",
		ContactName:      "Jane",
		OrganizationName: "Helping Hands",
		VerifyURL:        "https://app.example.org/verify-email?token=abc",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Verify your email address for Helping Hands"}, msg.GetGenHeader(gomail.HeaderSubject))
	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Contains(t, recipients[0], "admin@helpinghands.org")
}

func TestBuildVerificationRejectsBadRecipient(t *testing.T) {
	sender := NewSMTPSender("smtp.example.org", 587, "", "", "no-reply@example.org", "NGO ERP")

	_, err := sender.buildVerification(VerificationEmail{To: "not an address"})
	assert.Error(t, err)
}
