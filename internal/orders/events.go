package orders

import (
	"encoding/json"
	"time"

	"github.com/jyl-rentals/go-rental-orders/internal/inventory"
)

const (
	EventOrderPlaced      = "OrderPlaced"
	EventBookingConfirmed = "BookingConfirmed"
	EventBookingRejected  = "BookingRejected"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payloads per event ----

type OrderPlacedPayload struct {
	OrderID    string                  `json:"order_id"`
	Date       string                  `json:"date"`
	ClientName string                  `json:"client_name"`
	Lines      []inventory.BookingLine `json:"lines"`
	TotalCents int                     `json:"total_cents"`
}

type BookingConfirmedPayload struct {
	OrderID string                  `json:"order_id"`
	Date    string                  `json:"date"`
	Lines   []inventory.BookingLine `json:"lines"`
}

type BookingRejectedDetail struct {
	ItemID    string `json:"item_id"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

type BookingRejectedPayload struct {
	OrderID string                  `json:"order_id"`
	Date    string                  `json:"date"`
	Reason  string                  `json:"reason"` // e.g. OUT_OF_STOCK
	Details []BookingRejectedDetail `json:"details,omitempty"`
}
