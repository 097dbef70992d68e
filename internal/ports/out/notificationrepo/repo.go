package notificationrepo

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
)

// Notification is the persistence shape used by the notification repository.
type Notification struct {
	ID      domain.NotificationID
	Message string
	Type    string

	CreatedAt time.Time
}

// Repository provides access to persisted notifications.
//
// Result ordering expectations:
// - List returns notifications ordered by CreatedAt descending, then ID descending.
type Repository interface {
	Create(ctx context.Context, n Notification) error
	List(ctx context.Context) ([]Notification, error)

	// Delete removes the notification with the given ID. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id domain.NotificationID) error
}
