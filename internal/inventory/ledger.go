package inventory

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownItem = errors.New("unknown item")
	ErrInvalidQty  = errors.New("invalid qty")
)

// Ledger holds the catalog (fixed after construction) and the committed
// bookings. Availability for a date is always derived from those two, never
// cached, so every query sees the bookings committed so far.
//
// The ledger assumes a single writer; the RWMutex only keeps concurrent
// readers safe while that writer appends. Callers that need atomic
// check-then-commit across sessions must go through the reservation repo.
type Ledger struct {
	mu       sync.RWMutex
	items    []Item
	byID     map[string]Item
	bookings []Booking
}

func NewLedger(items []Item, bookings []Booking) *Ledger {
	l := &Ledger{
		items: append([]Item(nil), items...),
		byID:  make(map[string]Item, len(items)),
	}
	for _, it := range l.items {
		l.byID[it.ID] = it
	}
	l.bookings = append(l.bookings, bookings...)
	return l
}

// Items returns the catalog in load order.
func (l *Ledger) Items() []Item {
	return append([]Item(nil), l.items...)
}

func (l *Ledger) Item(id string) (Item, bool) {
	it, ok := l.byID[id]
	return it, ok
}

// Availability maps every catalog item to its remaining quantity on date:
// total stock minus same-date booked quantities, clamped at zero. An empty
// date means no restriction, so every item reports its full stock. Items
// absent from the catalog are absent from the result.
func (l *Ledger) Availability(date string) map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	avail := make(map[string]int, len(l.items))
	for _, it := range l.items {
		avail[it.ID] = it.TotalStock
	}
	if date == "" {
		return avail
	}
	for _, b := range l.bookings {
		if b.Date != date {
			continue
		}
		for _, ln := range b.Lines {
			if cur, ok := avail[ln.ItemID]; ok {
				cur -= ln.Qty
				if cur < 0 {
					cur = 0
				}
				avail[ln.ItemID] = cur
			}
		}
	}
	return avail
}

// Available is the single-item form of Availability. Unknown ids report
// zero, so a cart line for them can never be satisfied.
func (l *Ledger) Available(date, itemID string) int {
	return l.Availability(date)[itemID]
}

// CommitBooking appends b to the ledger. Lines must carry positive
// quantities and reference catalog items; availability is NOT re-checked
// here — the order builder validates against availability before calling,
// and the authoritative cross-session check lives server-side.
func (l *Ledger) CommitBooking(b Booking) error {
	for _, ln := range b.Lines {
		if ln.Qty <= 0 {
			return fmt.Errorf("%w: item %s qty %d", ErrInvalidQty, ln.ItemID, ln.Qty)
		}
		if _, ok := l.byID[ln.ItemID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownItem, ln.ItemID)
		}
	}
	cp := Booking{Date: b.Date, Lines: append([]BookingLine(nil), b.Lines...)}

	l.mu.Lock()
	l.bookings = append(l.bookings, cp)
	l.mu.Unlock()
	return nil
}

// Bookings returns a copy of the committed bookings, oldest first.
func (l *Ledger) Bookings() []Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Booking, 0, len(l.bookings))
	for _, b := range l.bookings {
		out = append(out, Booking{Date: b.Date, Lines: append([]BookingLine(nil), b.Lines...)})
	}
	return out
}
