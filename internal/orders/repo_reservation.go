package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jyl-rentals/go-rental-orders/internal/inventory"
)

// ReservationRepo is the authoritative commit boundary. The ledger's
// in-process availability check is advisory; this repo re-validates inside
// a transaction with the item rows locked, so concurrent submissions from
// independent sessions cannot oversubscribe a date.
type ReservationRepo struct{ DB *pgxpool.Pool }

// AlreadyReserved reports whether every line of the order is RESERVED
// (idempotency short-circuit for replayed events).
func (r *ReservationRepo) AlreadyReserved(ctx context.Context, orderID string, lineCount int) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE order_id = $1 AND status = 'RESERVED'`, orderID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == lineCount, nil
}

// ReserveAll locks each item row, compares the requested qty against
// total_stock minus what is already reserved for the date, and records the
// reservation. Any shortfall rolls the whole transaction back and returns
// per-item details; stock for other dates is untouched because a rental
// only occupies its own date.
func (r *ReservationRepo) ReserveAll(ctx context.Context, orderID, date string, lines []inventory.BookingLine) (ok bool, details []BookingRejectedDetail, err error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, nil, err
	}
	defer tx.Rollback(ctx)

	var rejects []BookingRejectedDetail

	for _, ln := range lines {
		var totalStock int
		if err := tx.QueryRow(ctx, `SELECT total_stock FROM items WHERE id=$1 FOR UPDATE`, ln.ItemID).Scan(&totalStock); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				rejects = append(rejects, BookingRejectedDetail{ItemID: ln.ItemID, Required: ln.Qty, Available: 0})
				continue
			}
			return false, nil, err
		}

		var booked int
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(qty), 0) FROM reservations
			WHERE item_id = $1 AND booking_date = $2 AND status = 'RESERVED'`,
			ln.ItemID, date).Scan(&booked)
		if err != nil {
			return false, nil, err
		}

		available := totalStock - booked
		if available < 0 {
			available = 0
		}
		if ln.Qty > available {
			rejects = append(rejects, BookingRejectedDetail{ItemID: ln.ItemID, Required: ln.Qty, Available: available})
			continue
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO reservations(order_id, item_id, booking_date, qty, status)
			VALUES ($1, $2, $3, $4, 'RESERVED')
			ON CONFLICT (order_id, item_id) DO NOTHING
		`, orderID, ln.ItemID, date, ln.Qty); err != nil {
			return false, nil, err
		}
	}

	if len(rejects) > 0 {
		return false, rejects, nil // rollback via defer
	}
	if err := tx.Commit(ctx); err != nil {
		return false, nil, err
	}
	return true, nil, nil
}

// ReleaseOrder frees an order's reservations. Availability is computed
// from RESERVED rows, so flipping the status is the whole release.
func (r *ReservationRepo) ReleaseOrder(ctx context.Context, orderID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE reservations SET status='RELEASED'
		WHERE order_id=$1 AND status='RESERVED'`, orderID)
	return err
}

// LoadBookings reads the reserved state back as ledger bookings, grouped
// per order, oldest first. Used to seed the API's ledger at startup.
func (r *ReservationRepo) LoadBookings(ctx context.Context) ([]inventory.Booking, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT order_id, booking_date, item_id, qty
		FROM reservations
		WHERE status='RESERVED'
		ORDER BY booking_date, order_id, item_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []inventory.Booking
	lastOrder := ""
	for rows.Next() {
		var orderID, date, itemID string
		var qty int
		if err := rows.Scan(&orderID, &date, &itemID, &qty); err != nil {
			return nil, err
		}
		if orderID != lastOrder {
			out = append(out, inventory.Booking{Date: date})
			lastOrder = orderID
		}
		b := &out[len(out)-1]
		b.Lines = append(b.Lines, inventory.BookingLine{ItemID: itemID, Qty: qty})
	}
	return out, rows.Err()
}
