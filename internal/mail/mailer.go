// Package mail sends transactional email (verification messages).
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Mailer sends one HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	addr string // host:port
	auth smtp.Auth
	from string
}

// NewSMTPMailer configures a mailer for the given relay. username may be
// empty for unauthenticated relays.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// LogMailer logs instead of sending. Used in development when no SMTP relay
// is configured.
type LogMailer struct {
	Logger *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.Logger.Info("email suppressed (no SMTP configured)",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

// VerificationEmail renders the subject and body of the account verification
// message.
func VerificationEmail(fullName, verifyURL string) (subject, body string) {
	subject = "Verify your email"
	body = fmt.Sprintf(`<div style="font-family:sans-serif">
<h2>Welcome, %s!</h2>
<p>Please confirm your email address to finish setting up your account.</p>
<p><a href="%s">Verify my email</a></p>
<p>This link expires in 24 hours. If you didn't create an account, you can ignore this message.</p>
</div>`, fullName, verifyURL)
	return subject, body
}
