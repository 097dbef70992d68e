package domain

// UserID is an internal identifier for a user record.
type UserID string

// TripID is an internal identifier for a trip record.
type TripID string

// NotificationID is an internal identifier for a notification record.
type NotificationID string
