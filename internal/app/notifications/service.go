package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/notificationrepo"
)

type AddNotificationInput struct {
	Message string
	Type    string
}

type Service struct {
	notifications notificationrepo.Repository
	clock         clock.Clock

	newID func() domain.NotificationID
}

func NewService(repo notificationrepo.Repository, clk clock.Clock) *Service {
	return &Service{
		notifications: repo,
		clock:         clk,
		newID: func() domain.NotificationID {
			return domain.NotificationID(uuid.Must(uuid.NewV7()).String())
		},
	}
}

// SetNewNotificationIDForTest overrides ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewNotificationIDForTest(fn func() domain.NotificationID) {
	if fn != nil {
		s.newID = fn
	}
}

// AddNotification stores a notification stamped with the current time.
func (s *Service) AddNotification(ctx context.Context, in AddNotificationInput) (domain.Notification, error) {
	msg := strings.TrimSpace(in.Message)
	typ := strings.TrimSpace(in.Type)

	missing := map[string]any{}
	if msg == "" {
		missing["message"] = "required"
	}
	if typ == "" {
		missing["type"] = "required"
	}
	if len(missing) > 0 {
		return domain.Notification{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "missing required fields", Details: missing}
	}

	n := notificationrepo.Notification{
		ID:        s.newID(),
		Message:   msg,
		Type:      typ,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		if errors.Is(err, notificationrepo.ErrAlreadyExists) {
			return domain.Notification{}, &Error{Status: 409, Code: "NOTIFICATION_ID_CONFLICT", Message: "notification id conflict"}
		}
		return domain.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return toDomain(n), nil
}

// ListNotifications returns notifications newest first.
func (s *Service) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	ns, err := s.notifications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]domain.Notification, 0, len(ns))
	for _, n := range ns {
		out = append(out, toDomain(n))
	}
	return out, nil
}

func (s *Service) DeleteNotification(ctx context.Context, id domain.NotificationID) error {
	if err := s.notifications.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func toDomain(n notificationrepo.Notification) domain.Notification {
	return domain.Notification{
		ID:        n.ID,
		Message:   n.Message,
		Type:      n.Type,
		CreatedAt: n.CreatedAt,
	}
}
