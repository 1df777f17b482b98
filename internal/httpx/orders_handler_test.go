package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyl-rentals/go-rental-orders/internal/inventory"
	"github.com/jyl-rentals/go-rental-orders/internal/orders"
)

type memStore struct {
	saved map[string]orders.Order
}

func (s *memStore) SaveOrder(ctx context.Context, o orders.Order) error {
	s.saved[o.ID] = o
	return nil
}

func (s *memStore) GetOrder(ctx context.Context, orderID string) (orders.Order, error) {
	o, ok := s.saved[orderID]
	if !ok {
		return orders.Order{}, errors.New("not found")
	}
	return o, nil
}

type memPublisher struct {
	messages [][]byte
}

func (p *memPublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.messages = append(p.messages, value)
}

func newTestServer(bookings []inventory.Booking) (*httptest.Server, *OrdersHandler, *memStore, *memPublisher) {
	ledger := inventory.NewLedger(inventory.DefaultCatalog(), bookings)
	store := &memStore{saved: map[string]orders.Order{}}
	pub := &memPublisher{}
	h := &OrdersHandler{Ledger: ledger, Store: store, Producer: pub, Service: "test-api"}
	router := NewRouter()
	h.Register(router)
	return httptest.NewServer(router), h, store, pub
}

func TestGetAvailability(t *testing.T) {
	srv, _, _, _ := newTestServer(inventory.DefaultBookings())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/availability?date=2025-12-05")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var avail map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&avail))
	assert.Equal(t, 60, avail["p1"])
	assert.Equal(t, 90, avail["p3"])

	resp, err = http.Get(srv.URL + "/availability")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&avail))
	assert.Equal(t, 100, avail["p1"], "no date means full stock")
}

func TestListItemsIncludesAvailability(t *testing.T) {
	srv, _, _, _ := newTestServer(inventory.DefaultBookings())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/items?date=2025-12-10")
	require.NoError(t, err)
	defer resp.Body.Close()

	var items []ItemResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 5)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, 80, items[0].Available) // 100 - 20 on 2025-12-10
}

func TestPlaceOrder(t *testing.T) {
	srv, h, store, pub := newTestServer(nil)
	defer srv.Close()

	body := `{
		"date": "2025-12-05",
		"client_name": "Lucia",
		"client_phone": "555-0101",
		"lines": [{"item_id": "p1", "qty": 40}, {"item_id": "p3", "qty": 30}]
	}`
	resp, err := http.Post(srv.URL+"/orders", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order orders.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	assert.Regexp(t, `^ORD-`, order.ID)
	assert.Equal(t, orders.StatusPlaced, order.Status)
	assert.Equal(t, 40*3000+30*4000, order.TotalCents)

	// booking committed, order stored, event published
	assert.Equal(t, 60, h.Ledger.Available("2025-12-05", "p1"))
	_, ok := store.saved[order.ID]
	assert.True(t, ok)
	require.Len(t, pub.messages, 1)
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(pub.messages[0], &env))
	assert.Equal(t, orders.EventOrderPlaced, env.EventType)
	assert.Equal(t, order.ID, env.CorrelationID)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	srv, h, store, _ := newTestServer(inventory.DefaultBookings())
	defer srv.Close()

	body := `{"date": "2025-12-05", "client_name": "Lucia", "lines": [{"item_id": "p1", "qty": 61}]}`
	resp, err := http.Post(srv.URL+"/orders", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Len(t, h.Ledger.Bookings(), 2, "no booking on rejection")
	assert.Empty(t, store.saved)
}

func TestPlaceOrderMissingFields(t *testing.T) {
	srv, _, _, _ := newTestServer(nil)
	defer srv.Close()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing date", `{"client_name": "Lucia", "lines": [{"item_id": "p1", "qty": 1}]}`, "missing date"},
		{"missing name", `{"date": "2025-12-05", "lines": [{"item_id": "p1", "qty": 1}]}`, "missing client name"},
		{"empty cart", `{"date": "2025-12-05", "client_name": "Lucia", "lines": []}`, "empty cart"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/orders", "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var e map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.Contains(t, e["error"], tc.want)
		})
	}
}

func TestGetOrder(t *testing.T) {
	srv, _, store, _ := newTestServer(nil)
	defer srv.Close()

	store.saved["ORD-ABC1234"] = orders.Order{ID: "ORD-ABC1234", Date: "2025-12-05", ClientName: "Lucia"}

	resp, err := http.Get(srv.URL + "/orders/ORD-ABC1234")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var o orders.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
	assert.Equal(t, "Lucia", o.ClientName)

	resp, err = http.Get(srv.URL + "/orders/ORD-NOPE")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
