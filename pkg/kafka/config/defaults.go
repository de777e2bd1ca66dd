package kafka_config

import "time"

const (
	DefaultKafkaBrokers     = "localhost:9092"
	DefaultEnableMiddleware = true

	DefaultBookingEventsTopic    = "servicehub.booking-events"
	DefaultBookingEventsDLQTopic = "servicehub.booking-events.dlq"
	DefaultNotificationsGroupID  = "servicehub-notifications"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = AcksAll
	DefaultProducerCompression  = "snappy"

	// A new notifications group starts from the oldest retained event.
	DefaultConsumerStartOffset       = OffsetOldest
	DefaultConsumerMaxBytes          = 1 << 20
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerMaxRetries        = 3
)

const (
	AcksAll    = -1
	AcksNone   = 0
	AcksLeader = 1

	OffsetNewest = int64(-1)
	OffsetOldest = int64(-2)
)
