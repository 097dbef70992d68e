package clock

import "time"

// Clock supplies the current time for createdAt stamps and token expiry.
// Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}
