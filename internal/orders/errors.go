package orders

import "errors"

var (
	// ErrInvalidQuantity: qty was zero or negative; the cart is untouched.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInsufficientStock: the requested qty exceeds availability for the
	// selected date; the cart is untouched.
	ErrInsufficientStock = errors.New("insufficient stock")

	// PlaceOrder precondition failures, checked in this order so callers can
	// show the first missing piece.
	ErrMissingDate = errors.New("missing date")
	ErrMissingName = errors.New("missing client name")
	ErrEmptyCart   = errors.New("empty cart")
)
