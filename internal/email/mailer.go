// Package email composes and delivers the outbound messages the identity
// flows need over SMTP.
package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/devhive/identity-server/internal/config"
	"github.com/devhive/identity-server/internal/model"
)

var _ model.Mailer = (*Mailer)(nil)

// Mailer sends identity emails through an SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer creates a Mailer from SMTP configuration.
func NewMailer(cfg config.SMTP) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendUseridReminder emails the login handle to its owner.
func (m *Mailer) SendUseridReminder(ctx context.Context, to string, userid string) error {
	body := fmt.Sprintf(`<p>Hi,</p>
<p>You asked us to remind you of the login id for this address.</p>
<p>Your login id is: <strong>%s</strong></p>
<p>If you did not request this reminder, you can safely ignore this email.</p>`, userid)

	return m.send(to, "Your login id", body)
}

// SendPasswordReset emails a single-use password reset link.
func (m *Mailer) SendPasswordReset(ctx context.Context, to string, resetURL string) error {
	body := fmt.Sprintf(`<p>Hi,</p>
<p>We received a request to reset the password for your account.</p>
<p>If you made this request, click the link below to choose a new password:</p>
<p><a href="%s">%s</a></p>
<p>The link expires in %s. If you did not request a reset, no action is needed.</p>`,
		resetURL, resetURL, model.VerificationTokenTTL)

	return m.send(to, "Password reset request", body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
