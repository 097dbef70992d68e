package domain

import "time"

// User is the domain representation of a registered account.
// The password hash never leaves the auth service.
type User struct {
	ID        UserID
	FirstName string
	LastName  string
	Email     string

	CreatedAt time.Time
}
