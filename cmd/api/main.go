package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jyl-rentals/go-rental-orders/internal/config"
	"github.com/jyl-rentals/go-rental-orders/internal/httpx"
	"github.com/jyl-rentals/go-rental-orders/internal/inventory"
	kafkax "github.com/jyl-rentals/go-rental-orders/internal/kafka"
	"github.com/jyl-rentals/go-rental-orders/internal/orders"
	"github.com/jyl-rentals/go-rental-orders/internal/postgres"
	"github.com/jyl-rentals/go-rental-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logrus.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	// Catalog + ledger seeded from the reserved state in Postgres
	items, err := inventory.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logrus.WithError(err).Fatal("load catalog")
	}
	repo := &orders.Repo{DB: db}
	if err := repo.SyncCatalog(ctx, items); err != nil {
		logrus.WithError(err).Fatal("sync catalog")
	}
	resRepo := &orders.ReservationRepo{DB: db}
	bookings, err := resRepo.LoadBookings(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("load bookings")
	}
	ledger := inventory.NewLedger(items, bookings)
	logrus.WithFields(logrus.Fields{"items": len(items), "bookings": len(bookings)}).Info("ledger ready")

	// Router & handler
	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Ledger:   ledger,
		Store:    repo,
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logrus.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
