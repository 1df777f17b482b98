package inventory

type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	TotalStock int    `json:"total_stock"`
	PriceCents int    `json:"price_cents"`
}

type BookingLine struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

// Booking is a committed reservation of item quantities for one calendar
// date (YYYY-MM-DD). Bookings are append-only here; releasing one happens
// at the storage boundary, not in the ledger.
type Booking struct {
	Date  string        `json:"date"`
	Lines []BookingLine `json:"lines"`
}
