package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jyl-rentals/go-rental-orders/internal/inventory"
)

type Repo struct{ DB *pgxpool.Pool }

// SaveOrder persists the order header and its lines in one tx.
func (r *Repo) SaveOrder(ctx context.Context, o Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, booking_date, client_name, client_phone, notes, status, total_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, o.ID, o.Date, o.ClientName, o.ClientPhone, o.Notes, string(o.Status), o.TotalCents)
	if err != nil {
		return err
	}
	for _, ln := range o.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, item_id, item_name, qty)
			VALUES ($1, $2, $3, $4)`,
			o.ID, ln.ItemID, ln.ItemName, ln.Qty,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (Order, error) {
	var o Order
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, booking_date, client_name, client_phone, notes, status, total_cents, created_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.Date, &o.ClientName, &o.ClientPhone, &o.Notes, &status, &o.TotalCents, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)

	rows, err := r.DB.Query(ctx, `
		SELECT item_id, item_name, qty FROM order_lines WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var ln OrderLine
		if err := rows.Scan(&ln.ItemID, &ln.ItemName, &ln.Qty); err != nil {
			return Order{}, err
		}
		o.Lines = append(o.Lines, ln)
	}
	return o, rows.Err()
}

// UpdateStatus moves the order along placed -> confirmed|rejected. An
// illegal transition is an error so a replayed event can't flip a settled
// order.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) error {
	var cur string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&cur)
	if err != nil {
		return err
	}
	if Status(cur) == to {
		return nil // replay
	}
	if !CanTransition(Status(cur), to) {
		return fmt.Errorf("order %s: cannot move %s -> %s", orderID, cur, to)
	}
	_, err = r.DB.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, orderID, string(to))
	return err
}

// SyncCatalog upserts the in-memory catalog into the items table so the
// reserver checks against the same stock figures the API serves.
func (r *Repo) SyncCatalog(ctx context.Context, items []inventory.Item) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, it := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO items(id, name, unit, total_stock, price_cents)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET name=EXCLUDED.name, unit=EXCLUDED.unit,
			    total_stock=EXCLUDED.total_stock, price_cents=EXCLUDED.price_cents
		`, it.ID, it.Name, it.Unit, it.TotalStock, it.PriceCents)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
