package trips

import "time"

// AddTripInput holds the fields of a new trip. Nil pointers mean the field was omitted.
type AddTripInput struct {
	Name   string
	Date   *time.Time
	Budget *float64
}
