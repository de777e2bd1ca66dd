package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"servicehub/internal/notifications"
	"servicehub/pkg/config"
	"servicehub/pkg/kafka"
	kafka_config "servicehub/pkg/kafka/config"
	kafka_middleware "servicehub/pkg/kafka/middleware"
	"servicehub/pkg/metrics"
)

const ServiceName = "notifications"

func main() {
	cfg := config.Load(ServiceName)
	metrics.Register()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	notifier := notifications.NewNotifier(notifications.NewLogSink(cfg.Log), cfg.Log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.BookingEvents.Name,
		kafkaCfg.NotificationsGroupID,
		kafkaCfg.BookingEvents.DLQ,
		notifier.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Consuming booking events", "topic", kafkaCfg.BookingEvents.Name, "group_id", kafkaCfg.NotificationsGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifications service stopped")
}
