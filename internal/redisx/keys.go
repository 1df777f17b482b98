package redisx

import "time"

const (
	// Availability per date: avail:{date} -> {"p1": 60, ...}
	// The date part is "-" when no date is selected.
	KeyAvailability = "avail:%s"

	// Order record cache: order:{order_id} -> order JSON
	KeyOrder = "order:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLAvailability = 1 * time.Minute
	TTLOrderCache   = 24 * time.Hour
	TTLDedup        = 48 * time.Hour
)

// AvailabilityDateKey keeps the empty date addressable.
func AvailabilityDateKey(date string) string {
	if date == "" {
		return "-"
	}
	return date
}
