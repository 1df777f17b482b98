package inventory

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadCatalog reads a JSON array of items from path. An empty path falls
// back to the built-in seed catalog, so the service runs without any file
// in place.
func LoadCatalog(path string) ([]Item, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("parse catalog: item without id")
		}
		if it.TotalStock < 0 || it.PriceCents < 0 {
			return nil, fmt.Errorf("parse catalog: item %s has negative stock or price", it.ID)
		}
	}
	return items, nil
}

// DefaultCatalog is the tableware seed set used when no catalog file is
// configured.
func DefaultCatalog() []Item {
	return []Item{
		{ID: "p1", Name: "Plato llano 27cm - Porcelana", Unit: "unidad", TotalStock: 100, PriceCents: 3000},
		{ID: "p2", Name: "Plato hondo 22cm - Porcelana", Unit: "unidad", TotalStock: 80, PriceCents: 2800},
		{ID: "p3", Name: "Copa vino 300ml - Cristal", Unit: "unidad", TotalStock: 120, PriceCents: 4000},
		{ID: "p4", Name: "Cuchillo mesa - Acero", Unit: "unidad", TotalStock: 150, PriceCents: 1500},
		{ID: "p5", Name: "Set 6 vasos - vidrio", Unit: "set (6)", TotalStock: 40, PriceCents: 12000},
	}
}

// DefaultBookings seeds a fresh ledger with a couple of reservations so the
// demo shows dates that are already partly booked.
func DefaultBookings() []Booking {
	return []Booking{
		{Date: "2025-12-05", Lines: []BookingLine{{ItemID: "p1", Qty: 40}, {ItemID: "p3", Qty: 30}}},
		{Date: "2025-12-10", Lines: []BookingLine{{ItemID: "p1", Qty: 20}, {ItemID: "p2", Qty: 10}}},
	}
}
