package clock

import (
	"testing"
	"time"
)

func TestSystemClock_NowIsUTCMillis(t *testing.T) {
	t.Parallel()

	got := NewSystemClock().Now()
	if got.Location() != time.UTC {
		t.Fatalf("location=%v, want UTC", got.Location())
	}
	if got.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("expected millisecond precision, got %v", got)
	}
}
