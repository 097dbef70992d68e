package mailer

import "context"

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers mail through an external relay.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
