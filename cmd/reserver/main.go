package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jyl-rentals/go-rental-orders/internal/config"
	kafkax "github.com/jyl-rentals/go-rental-orders/internal/kafka"
	"github.com/jyl-rentals/go-rental-orders/internal/orders"
	"github.com/jyl-rentals/go-rental-orders/internal/postgres"
	"github.com/jyl-rentals/go-rental-orders/internal/redisx"
	"github.com/jyl-rentals/go-rental-orders/internal/reserver"
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

	// Producers: confirmed & rejected go to separate topics
	pOK := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicBookingConfirmed, 1024)
	pOK.Start(ctx)
	pRJ := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicBookingRejected, 1024)
	pRJ.Start(ctx)

	svc := &reserver.Service{
		Repo:           &orders.ReservationRepo{DB: db},
		Orders:         &orders.Repo{DB: db},
		Redis:          rdb,
		ProducerOK:     pOK,
		ProducerReject: pRJ,
		ServiceName:    cfg.ServiceName + "-reserver",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ReserverGroup, orders.TopicOrderPlaced, cfg.ReserverWorkers)

	go func() {
		logrus.WithFields(logrus.Fields{
			"group":   cfg.ReserverGroup,
			"topic":   orders.TopicOrderPlaced,
			"workers": cfg.ReserverWorkers,
		}).Info("reserver consumer started")
		if err := cons.Start(ctx, svc.HandleOrderPlaced); err != nil {
			logrus.WithError(err).Error("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logrus.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	pOK.Close()
	pRJ.Close()
	pOK.WaitClosed()
	pRJ.WaitClosed()
}
