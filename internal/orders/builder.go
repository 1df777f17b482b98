package orders

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jyl-rentals/go-rental-orders/internal/inventory"
)

// Builder manages one draft order: the cart, the selected date and the
// client fields. Every cart mutation is gated through the ledger's current
// availability; PlaceOrder commits a booking and emits the final Order.
//
// A builder is not safe for concurrent use. The ledger behind it may be
// shared; the availability it reads is advisory for anything beyond this
// session (the authoritative check is the reservation repo).
type Builder struct {
	ledger *inventory.Ledger
	idFunc func() string

	date  string
	name  string
	phone string
	notes string
	cart  []CartLine
}

func NewBuilder(ledger *inventory.Ledger) *Builder {
	return &Builder{ledger: ledger, idFunc: NewOrderID}
}

// SetIDFunc swaps the order-id generator, mainly so tests get
// deterministic ids.
func (b *Builder) SetIDFunc(f func() string) {
	if f != nil {
		b.idFunc = f
	}
}

func (b *Builder) SetDate(date string) { b.date = date }
func (b *Builder) Date() string        { return b.date }

func (b *Builder) SetClient(name, phone, notes string) {
	b.name, b.phone, b.notes = name, phone, notes
}

// Cart returns the draft lines in insertion order.
func (b *Builder) Cart() []CartLine {
	return append([]CartLine(nil), b.cart...)
}

func (b *Builder) cartQty(itemID string) int {
	for _, ln := range b.cart {
		if ln.ItemID == itemID {
			return ln.Qty
		}
	}
	return 0
}

// AddToCart merges qty into the line for itemID, or appends a new line.
// Rejected without touching the cart when qty is not positive or when
// current+qty would exceed availability for the selected date (unknown
// items have zero availability).
func (b *Builder) AddToCart(itemID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	available := b.ledger.Available(b.date, itemID)
	current := b.cartQty(itemID)
	if current+qty > available {
		return fmt.Errorf("%w: item %s has %d available, cart holds %d, asked %d",
			ErrInsufficientStock, itemID, available, current, qty)
	}
	for i := range b.cart {
		if b.cart[i].ItemID == itemID {
			b.cart[i].Qty += qty
			return nil
		}
	}
	b.cart = append(b.cart, CartLine{ItemID: itemID, Qty: qty})
	return nil
}

// RemoveFromCart drops the line for itemID. Idempotent.
func (b *Builder) RemoveFromCart(itemID string) {
	for i := range b.cart {
		if b.cart[i].ItemID == itemID {
			b.cart = append(b.cart[:i], b.cart[i+1:]...)
			return
		}
	}
}

// UpdateCartQty replaces the line's qty. Zero or negative removes the
// line; a replacement above availability is rejected and the cart stays
// unchanged. A missing line is left alone.
func (b *Builder) UpdateCartQty(itemID string, qty int) error {
	if qty <= 0 {
		b.RemoveFromCart(itemID)
		return nil
	}
	available := b.ledger.Available(b.date, itemID)
	if qty > available {
		return fmt.Errorf("%w: item %s has %d available, asked %d",
			ErrInsufficientStock, itemID, available, qty)
	}
	for i := range b.cart {
		if b.cart[i].ItemID == itemID {
			b.cart[i].Qty = qty
			return nil
		}
	}
	return nil
}

// TotalCents is the informational cart total; items missing from the
// catalog contribute nothing.
func (b *Builder) TotalCents() int {
	total := 0
	for _, ln := range b.cart {
		if it, ok := b.ledger.Item(ln.ItemID); ok {
			total += it.PriceCents * ln.Qty
		}
	}
	return total
}

// PlaceOrder checks date, client name and cart (in that order, each its
// own rejection) before any mutation. On success it commits the booking to
// the ledger, builds the Order with resolved item names, then clears the
// cart and client fields. The selected date survives for the next draft.
func (b *Builder) PlaceOrder() (Order, error) {
	if b.date == "" {
		return Order{}, ErrMissingDate
	}
	if b.name == "" {
		return Order{}, ErrMissingName
	}
	if len(b.cart) == 0 {
		return Order{}, ErrEmptyCart
	}

	booking := inventory.Booking{Date: b.date, Lines: make([]inventory.BookingLine, 0, len(b.cart))}
	for _, ln := range b.cart {
		booking.Lines = append(booking.Lines, inventory.BookingLine{ItemID: ln.ItemID, Qty: ln.Qty})
	}
	if err := b.ledger.CommitBooking(booking); err != nil {
		return Order{}, err
	}

	order := Order{
		ID:          b.idFunc(),
		Date:        b.date,
		ClientName:  b.name,
		ClientPhone: b.phone,
		Notes:       b.notes,
		Lines:       make([]OrderLine, 0, len(b.cart)),
		TotalCents:  b.TotalCents(),
		Status:      StatusPlaced,
	}
	for _, ln := range b.cart {
		name := ln.ItemID
		if it, ok := b.ledger.Item(ln.ItemID); ok {
			name = it.Name
		}
		order.Lines = append(order.Lines, OrderLine{ItemID: ln.ItemID, ItemName: name, Qty: ln.Qty})
	}

	b.cart = nil
	b.name, b.phone, b.notes = "", "", ""
	return order, nil
}

// NewOrderID is the default id generator: ORD- plus seven uuid-derived
// characters, matching the id shape clients already know.
func NewOrderID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + raw[:7]
}
