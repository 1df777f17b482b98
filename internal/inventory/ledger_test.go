package inventory

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityNoDate(t *testing.T) {
	l := NewLedger(DefaultCatalog(), DefaultBookings())

	avail := l.Availability("")
	for _, it := range l.Items() {
		assert.Equal(t, it.TotalStock, avail[it.ID], "empty date must report full stock for %s", it.ID)
	}
}

func TestAvailabilitySubtractsSameDateBookings(t *testing.T) {
	l := NewLedger(DefaultCatalog(), DefaultBookings())

	avail := l.Availability("2025-12-05")
	assert.Equal(t, 60, avail["p1"]) // 100 - 40
	assert.Equal(t, 90, avail["p3"]) // 120 - 30
	assert.Equal(t, 80, avail["p2"]) // untouched on this date

	// other dates don't bleed in
	avail = l.Availability("2025-12-10")
	assert.Equal(t, 80, avail["p1"]) // 100 - 20
	assert.Equal(t, 120, avail["p3"])
}

func TestAvailabilityClampsAtZero(t *testing.T) {
	items := []Item{{ID: "p1", Name: "Plate", Unit: "unidad", TotalStock: 10, PriceCents: 100}}
	bookings := []Booking{
		{Date: "2025-12-05", Lines: []BookingLine{{ItemID: "p1", Qty: 8}}},
		{Date: "2025-12-05", Lines: []BookingLine{{ItemID: "p1", Qty: 8}}},
	}
	l := NewLedger(items, bookings)

	// oversubscribed history surfaces as zero, never negative
	assert.Equal(t, 0, l.Available("2025-12-05", "p1"))
}

func TestAvailabilityIgnoresUnknownBookedItems(t *testing.T) {
	items := []Item{{ID: "p1", TotalStock: 10}}
	bookings := []Booking{{Date: "2025-12-05", Lines: []BookingLine{{ItemID: "ghost", Qty: 5}}}}
	l := NewLedger(items, bookings)

	avail := l.Availability("2025-12-05")
	assert.Equal(t, 10, avail["p1"])
	_, ok := avail["ghost"]
	assert.False(t, ok, "unknown ids stay out of the availability map")
}

func TestAvailabilityIsSideEffectFree(t *testing.T) {
	l := NewLedger(DefaultCatalog(), DefaultBookings())

	first := l.Availability("2025-12-05")
	second := l.Availability("2025-12-05")
	assert.Equal(t, first, second)
	assert.Len(t, l.Bookings(), 2, "queries must not grow the ledger")
}

func TestCommitBookingValidation(t *testing.T) {
	l := NewLedger(DefaultCatalog(), nil)

	err := l.CommitBooking(Booking{Date: "2025-12-05", Lines: []BookingLine{{ItemID: "p1", Qty: 0}}})
	require.ErrorIs(t, err, ErrInvalidQty)

	err = l.CommitBooking(Booking{Date: "2025-12-05", Lines: []BookingLine{{ItemID: "nope", Qty: 1}}})
	require.ErrorIs(t, err, ErrUnknownItem)

	assert.Empty(t, l.Bookings(), "rejected bookings must not be appended")

	err = l.CommitBooking(Booking{Date: "2025-12-05", Lines: []BookingLine{{ItemID: "p1", Qty: 3}}})
	require.NoError(t, err)
	assert.Equal(t, 97, l.Available("2025-12-05", "p1"))
}

func TestLoadCatalogDefaults(t *testing.T) {
	items, err := LoadCatalog("")
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "p1", items[0].ID)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := t.TempDir() + "/catalog.json"
	body := `[{"id":"x1","name":"Copa","unit":"unidad","total_stock":12,"price_cents":500}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	items, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 12, items[0].TotalStock)

	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"sin id"}]`), 0o644))
	_, err = LoadCatalog(path)
	assert.Error(t, err)
}
