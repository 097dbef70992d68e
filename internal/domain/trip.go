package domain

import "time"

type Trip struct {
	ID     TripID
	Name   string
	Date   time.Time // date-only semantics at the edges
	Budget float64

	CreatedAt time.Time
}
