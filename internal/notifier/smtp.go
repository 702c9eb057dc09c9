package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// SMTPSender delivers notifications through an authenticated SMTP account
// with mandatory STARTTLS, e.g. smtp.gmail.com:587.
type SMTPSender struct {
	client *mail.Client
	from   string
	to     string
}

func NewSMTPSender(host string, port int, username string, password string, to string) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("smtp credentials are required")
	}
	if strings.TrimSpace(to) == "" {
		to = username
	}

	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPSender{
		client: client,
		from:   username,
		to:     to,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, subject string, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(s.to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
