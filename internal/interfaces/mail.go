package interfaces

import (
	"context"
	"time"
)

// Email represents a raw source document fetched from the mailbox
type Email struct {
	ID         string
	From       string
	Subject    string
	HTML       string
	ReceivedAt time.Time
}

// MailReader fetches raw source documents. Implementations: IMAP (production)
// and a fixture-directory mock (development/tests).
type MailReader interface {
	FetchUnread(ctx context.Context) ([]Email, error)
	MarkRead(ctx context.Context, id string) error
}
