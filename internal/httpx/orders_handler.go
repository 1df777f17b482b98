package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/jyl-rentals/go-rental-orders/internal/inventory"
	kafkax "github.com/jyl-rentals/go-rental-orders/internal/kafka"
	"github.com/jyl-rentals/go-rental-orders/internal/orders"
	"github.com/jyl-rentals/go-rental-orders/internal/redisx"
)

// OrderStore persists placed orders. The Postgres repo satisfies it; tests
// drop in a map.
type OrderStore interface {
	SaveOrder(ctx context.Context, o orders.Order) error
	GetOrder(ctx context.Context, orderID string) (orders.Order, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Ledger   *inventory.Ledger
	Store    OrderStore
	Producer Publisher
	Redis    *redis.Client
	Service  string

	// serializes check-then-commit: the ledger assumes a single writer,
	// so two orders never interleave between validation and booking.
	mu sync.Mutex
}

type PlaceOrderReq struct {
	Date        string    `json:"date"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	Notes       string    `json:"notes"`
	Lines       []LineReq `json:"lines"`
}

type LineReq struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

type ItemResp struct {
	inventory.Item
	Available int `json:"available"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/items", h.listItems)
	r.Get("/availability", h.getAvailability)
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{id}", h.getOrder)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, orders.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, orders.ErrInvalidQuantity),
		errors.Is(err, orders.ErrMissingDate),
		errors.Is(err, orders.ErrMissingName),
		errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, inventory.ErrUnknownItem),
		errors.Is(err, inventory.ErrInvalidQty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.mu.Lock()
	b := orders.NewBuilder(h.Ledger)
	b.SetDate(req.Date)
	b.SetClient(req.ClientName, req.ClientPhone, req.Notes)
	for _, ln := range req.Lines {
		if err := b.AddToCart(ln.ItemID, ln.Qty); err != nil {
			h.mu.Unlock()
			writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
			return
		}
	}
	order, err := b.PlaceOrder()
	h.mu.Unlock()
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}

	if h.Store != nil {
		if err := h.Store.SaveOrder(ctx, order); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	if h.Redis != nil {
		orderKey := fmt.Sprintf(redisx.KeyOrder, order.ID)
		_ = h.Redis.Set(ctx, orderKey, kafkax.MustMarshal(order), redisx.TTLOrderCache).Err()
		availKey := fmt.Sprintf(redisx.KeyAvailability, redisx.AvailabilityDateKey(order.Date))
		_ = h.Redis.Del(ctx, availKey).Err()
	}

	if h.Producer != nil {
		lines := make([]inventory.BookingLine, 0, len(order.Lines))
		for _, ln := range order.Lines {
			lines = append(lines, inventory.BookingLine{ItemID: ln.ItemID, Qty: ln.Qty})
		}
		ev := orders.Envelope{
			EventID:       uuid.NewString(),
			EventType:     orders.EventOrderPlaced,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      h.Service,
			TraceID:       r.Header.Get("X-Request-Id"),
			CorrelationID: order.ID,
			Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
				OrderID:    order.ID,
				Date:       order.Date,
				ClientName: order.ClientName,
				Lines:      lines,
				TotalCents: order.TotalCents,
			}),
		}
		h.Producer.Publish(orders.PartitionKey(order.ID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) getAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyAvailability, redisx.AvailabilityDateKey(date))
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	avail := h.Ledger.Availability(date)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, kafkax.MustMarshal(avail), redisx.TTLAvailability).Err()
	}
	writeJSON(w, http.StatusOK, avail)
}

func (h *OrdersHandler) listItems(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	avail := h.Ledger.Availability(date)

	items := h.Ledger.Items()
	out := make([]ItemResp, 0, len(items))
	for _, it := range items {
		out = append(out, ItemResp{Item: it, Available: avail[it.ID]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrder, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	if h.Store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	order, err := h.Store.GetOrder(ctx, orderID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, kafkax.MustMarshal(order), redisx.TTLOrderCache).Err()
	}
	writeJSON(w, http.StatusOK, order)
}
