package kafka_config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"servicehub/pkg/logger"
)

// TopicConfig pairs a topic with the dead-letter topic its failures go to.
type TopicConfig struct {
	Name string
	DLQ  string
}

type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	RequireAcks  int
	Compression  string
}

type ConsumerConfig struct {
	StartOffset       int64
	MaxBytes          int
	MaxWait           time.Duration
	CommitInterval    time.Duration
	HeartbeatInterval time.Duration
	SessionTimeout    time.Duration
	MaxRetries        int
}

type Config struct {
	Brokers          []string
	EnableMiddleware bool

	BookingEvents        TopicConfig
	NotificationsGroupID string

	Producer ProducerConfig
	Consumer ConsumerConfig
}

var compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}

// Load reads the Kafka block from the environment. Unparseable values are
// reported together with the validation errors.
func Load() (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Brokers:          splitBrokers(env.text(EnvKafkaBrokers, DefaultKafkaBrokers)),
		EnableMiddleware: env.flag(EnvKafkaEnableMiddleware, DefaultEnableMiddleware),

		BookingEvents: TopicConfig{
			Name: env.text(EnvBookingEventsTopic, DefaultBookingEventsTopic),
			DLQ:  env.text(EnvBookingEventsDLQTopic, DefaultBookingEventsDLQTopic),
		},
		NotificationsGroupID: env.text(EnvNotificationsGroupID, DefaultNotificationsGroupID),

		Producer: ProducerConfig{
			MaxAttempts:  env.number(EnvProducerMaxAttempts, DefaultProducerMaxAttempts),
			BatchTimeout: env.duration(EnvProducerBatchTimeout, DefaultProducerBatchTimeout),
			RequireAcks:  env.number(EnvProducerRequireAcks, DefaultProducerRequireAcks),
			Compression:  strings.ToLower(env.text(EnvProducerCompression, DefaultProducerCompression)),
		},
		Consumer: ConsumerConfig{
			StartOffset:       int64(env.number(EnvConsumerStartOffset, int(DefaultConsumerStartOffset))),
			MaxBytes:          env.number(EnvConsumerMaxBytes, DefaultConsumerMaxBytes),
			MaxWait:           env.duration(EnvConsumerMaxWait, DefaultConsumerMaxWait),
			CommitInterval:    env.duration(EnvConsumerCommitInterval, DefaultConsumerCommitInterval),
			HeartbeatInterval: env.duration(EnvConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval),
			SessionTimeout:    env.duration(EnvConsumerSessionTimeout, DefaultConsumerSessionTimeout),
			MaxRetries:        env.number(EnvConsumerMaxRetries, DefaultConsumerMaxRetries),
		},
	}

	errs := append(env.errs, cfg.problems()...)
	if len(errs) > 0 {
		return nil, joinProblems(errs)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if errs := cfg.problems(); len(errs) > 0 {
		return joinProblems(errs)
	}
	return nil
}

func (cfg *Config) problems() []string {
	var errs []string

	if len(cfg.Brokers) == 0 {
		errs = append(errs, "at least one Kafka broker is required")
	}

	if cfg.BookingEvents.Name == "" {
		errs = append(errs, "booking events topic cannot be empty")
	}
	if cfg.BookingEvents.DLQ != "" && cfg.BookingEvents.DLQ == cfg.BookingEvents.Name {
		errs = append(errs, fmt.Sprintf("booking events DLQ must differ from the topic, both are %q", cfg.BookingEvents.Name))
	}
	if cfg.NotificationsGroupID == "" {
		errs = append(errs, "notifications consumer group cannot be empty")
	}

	p := cfg.Producer
	if p.MaxAttempts <= 0 {
		errs = append(errs, fmt.Sprintf("producer max attempts must be positive, got: %d", p.MaxAttempts))
	}
	if p.BatchTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("producer batch timeout must be positive, got: %s", p.BatchTimeout))
	}
	if p.RequireAcks != AcksAll && p.RequireAcks != AcksNone && p.RequireAcks != AcksLeader {
		errs = append(errs, fmt.Sprintf("producer required acks must be -1, 0 or 1, got: %d", p.RequireAcks))
	}
	if !slices.Contains(compressions, p.Compression) {
		errs = append(errs, fmt.Sprintf("producer compression must be one of %v, got: %q", compressions, p.Compression))
	}

	c := cfg.Consumer
	if c.StartOffset != OffsetNewest && c.StartOffset != OffsetOldest {
		errs = append(errs, fmt.Sprintf("consumer start offset must be -1 (newest) or -2 (oldest), got: %d", c.StartOffset))
	}
	if c.MaxBytes <= 0 {
		errs = append(errs, fmt.Sprintf("consumer max bytes must be positive, got: %d", c.MaxBytes))
	}
	for name, d := range map[string]time.Duration{
		"max wait":           c.MaxWait,
		"commit interval":    c.CommitInterval,
		"heartbeat interval": c.HeartbeatInterval,
		"session timeout":    c.SessionTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Sprintf("consumer %s must be positive, got: %s", name, d))
		}
	}
	if c.HeartbeatInterval >= c.SessionTimeout {
		errs = append(errs, fmt.Sprintf("consumer heartbeat interval (%s) must be shorter than the session timeout (%s)", c.HeartbeatInterval, c.SessionTimeout))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Sprintf("consumer max retries cannot be negative, got: %d", c.MaxRetries))
	}

	slices.Sort(errs)
	return errs
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"booking_events_topic", cfg.BookingEvents.Name,
		"booking_events_dlq", cfg.BookingEvents.DLQ,
		"notifications_group_id", cfg.NotificationsGroupID,
		"producer_require_acks", cfg.Producer.RequireAcks,
		"producer_compression", cfg.Producer.Compression,
		"consumer_start_offset", cfg.Consumer.StartOffset,
		"consumer_max_retries", cfg.Consumer.MaxRetries,
		"enable_middleware", cfg.EnableMiddleware,
	)
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, broker := range strings.Split(raw, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func joinProblems(errs []string) error {
	msg := "Kafka configuration validation failed:\n"
	for i, err := range errs {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err)
	}
	return fmt.Errorf("%s", msg)
}

// envReader reads typed environment values and remembers every key whose
// value could not be parsed.
type envReader struct {
	errs []string
}

func (r *envReader) text(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func (r *envReader) number(key string, fallback int) int {
	value := r.text(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s must be an integer, got: %q", key, value))
		return fallback
	}
	return n
}

func (r *envReader) flag(key string, fallback bool) bool {
	value := r.text(key, "")
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s must be a boolean, got: %q", key, value))
		return fallback
	}
	return b
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	value := r.text(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s must be a duration such as 500ms, got: %q", key, value))
		return fallback
	}
	return d
}
