package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// SMTPMailer sends the transactional account emails over one configured SMTP
// client, constructed at process start and reused across requests.
type SMTPMailer struct {
	client   *mail.Client
	from     string
	fromName string
}

func New(host string, port int, username string, password string, from string, fromName string) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: from, fromName: fromName}, nil
}

func (m *SMTPMailer) SendVerification(ctx context.Context, email string, code string) error {
	body := strings.ReplaceAll(verificationEmailTemplate, "{verificationCode}", code)
	return m.send(ctx, email, "Verify your email", body)
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, email string, name string) error {
	body := strings.ReplaceAll(welcomeEmailTemplate, "{name}", name)
	return m.send(ctx, email, "Welcome", body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email string, resetURL string) error {
	body := strings.ReplaceAll(passwordResetRequestTemplate, "{resetURL}", resetURL)
	return m.send(ctx, email, "Reset your password", body)
}

func (m *SMTPMailer) SendPasswordResetSuccess(ctx context.Context, email string) error {
	return m.send(ctx, email, "Your password was changed", passwordResetSuccessTemplate)
}

func (m *SMTPMailer) send(ctx context.Context, to string, subject string, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}
	return nil
}
