package orders

import "time"

// CartLine is a pending quantity of one item in the current draft. Lines
// are unique per item id and keep their insertion order across merges.
type CartLine struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

type OrderLine struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Qty      int    `json:"qty"`
}

// Order is the write-once record produced by a successful submission.
type Order struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"`
	ClientName  string      `json:"client_name"`
	ClientPhone string      `json:"client_phone,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Lines       []OrderLine `json:"lines"`
	TotalCents  int         `json:"total_cents"`
	Status      Status      `json:"status,omitempty"`
	CreatedAt   time.Time   `json:"created_at,omitempty"`
}
