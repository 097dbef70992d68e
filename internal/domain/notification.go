package domain

import "time"

type Notification struct {
	ID      NotificationID
	Message string
	Type    string

	CreatedAt time.Time
}
