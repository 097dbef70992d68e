package mailer

import (
	"context"
	"log"
	"sync"

	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/mailer"
)

// Outbox is an in-memory mailer that records messages instead of sending them.
// It backs MAIL_BACKEND=log and tests.
type Outbox struct {
	mu   sync.Mutex
	sent []mailer.Message

	// Logger, when set, receives one line per message.
	Logger *log.Logger
	// Err, when set, is returned by every Send call and nothing is recorded.
	Err error
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Send(ctx context.Context, msg mailer.Message) error {
	_ = ctx
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.sent = append(o.sent, msg)
	if o.Logger != nil {
		o.Logger.Printf("mail to=%s subject=%q", msg.To, msg.Subject)
	}
	return nil
}

// Sent returns a copy of every delivered message, oldest first.
func (o *Outbox) Sent() []mailer.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mailer.Message(nil), o.sent...)
}
