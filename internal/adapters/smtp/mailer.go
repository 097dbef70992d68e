// Package smtp delivers mailer.Message values through an SMTP relay.
package smtp

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/mailer"
)

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends plain-text mail with SMTP AUTH PLAIN over STARTTLS.
type Mailer struct {
	client sender
	from   string
}

type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewMailer(opts Options) (*Mailer, error) {
	client, err := mail.NewClient(opts.Host,
		mail.WithPort(opts.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(opts.Username),
		mail.WithPassword(opts.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return newMailer(client, opts.From), nil
}

func newMailer(client sender, from string) *Mailer {
	return &Mailer{client: client, from: from}
}

func (m *Mailer) Send(ctx context.Context, msg mailer.Message) error {
	out, err := m.build(msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *Mailer) build(msg mailer.Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", m.from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}
