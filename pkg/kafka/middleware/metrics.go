package kafka_middleware

import (
	"context"
	"time"

	"servicehub/pkg/kafka"
	"servicehub/pkg/metrics"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

func outcome(err error) string {
	if err != nil {
		return outcomeError
	}
	return outcomeOK
}

func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		metrics.ObserveKafka("publish", msg.Topic, time.Since(start).Seconds())
		metrics.IncPublished(msg.Topic, outcome(err))
		return err
	}
}

func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		metrics.ObserveKafka("consume", msg.Topic, time.Since(start).Seconds())
		metrics.IncConsumed(msg.Topic, outcome(err))
		return err
	}
}
