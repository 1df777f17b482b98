package reserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	kafkax "github.com/jyl-rentals/go-rental-orders/internal/kafka"
	"github.com/jyl-rentals/go-rental-orders/internal/orders"
	"github.com/jyl-rentals/go-rental-orders/internal/redisx"
)

// Service is the authoritative side of order intake: it consumes
// OrderPlaced events and re-validates every booking inside Postgres with
// the item rows locked. The API's in-memory availability check is only a
// hint; what this service commits is what counts.
type Service struct {
	Repo           *orders.ReservationRepo
	Orders         *orders.Repo
	Redis          *redis.Client
	ProducerOK     *kafkax.Producer // publishes rental.booking.confirmed
	ProducerReject *kafkax.Producer // publishes rental.booking.rejected
	ServiceName    string
}

func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil // ignore
	}

	// dedup by event_id
	dkey := fmt.Sprintf(redisx.KeyDedup, "reserver", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	// replayed order that already went through
	if ok, _ := s.Repo.AlreadyReserved(ctx, p.OrderID, len(p.Lines)); ok {
		return s.publishConfirmed(ctx, p, env.TraceID)
	}

	ok, details, err := s.Repo.ReserveAll(ctx, p.OrderID, p.Date, p.Lines)
	if err != nil {
		return err
	}

	if ok {
		s.updateStatus(ctx, p.OrderID, orders.StatusConfirmed)
		s.invalidateAvailability(ctx, p.Date)
		return s.publishConfirmed(ctx, p, env.TraceID)
	}
	s.updateStatus(ctx, p.OrderID, orders.StatusRejected)
	return s.publishRejected(ctx, p, details, env.TraceID)
}

func (s *Service) updateStatus(ctx context.Context, orderID string, to orders.Status) {
	if s.Orders == nil {
		return
	}
	if err := s.Orders.UpdateStatus(ctx, orderID, to); err != nil {
		logrus.WithError(err).WithField("order_id", orderID).Warn("status update failed")
	}
}

func (s *Service) invalidateAvailability(ctx context.Context, date string) {
	key := fmt.Sprintf(redisx.KeyAvailability, redisx.AvailabilityDateKey(date))
	_ = s.Redis.Del(ctx, key).Err()
}

func (s *Service) publishConfirmed(ctx context.Context, p orders.OrderPlacedPayload, trace string) error {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventBookingConfirmed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: p.OrderID,
		Payload: kafkax.MustMarshal(orders.BookingConfirmedPayload{
			OrderID: p.OrderID, Date: p.Date, Lines: p.Lines,
		}),
	}
	s.ProducerOK.Publish(orders.PartitionKey(p.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventBookingConfirmed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}

func (s *Service) publishRejected(ctx context.Context, p orders.OrderPlacedPayload, details []orders.BookingRejectedDetail, trace string) error {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventBookingRejected,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: p.OrderID,
		Payload: kafkax.MustMarshal(orders.BookingRejectedPayload{
			OrderID: p.OrderID, Date: p.Date, Reason: "OUT_OF_STOCK", Details: details,
		}),
	}
	s.ProducerReject.Publish(orders.PartitionKey(p.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventBookingRejected)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}
