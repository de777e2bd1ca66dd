package main

import (
	"servicehub/internal/bookings/events"
	"servicehub/internal/bookings/handler"
	"servicehub/internal/bookings/repository"
	"servicehub/internal/bookings/service"
	"servicehub/internal/bookings/validator"
	listinghandler "servicehub/internal/listings/handler"
	listingrepository "servicehub/internal/listings/repository"
	listingservice "servicehub/internal/listings/service"
	listingvalidator "servicehub/internal/listings/validator"
	"servicehub/pkg/app"
	"servicehub/pkg/config"
	"servicehub/pkg/kafka"
	kafka_config "servicehub/pkg/kafka/config"
	kafka_middleware "servicehub/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting ServiceHub bookings service")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close booking event publisher", "error", err)
		}
	})
	serverApp.OnShutdown(cfg.GracefulShutdown)

	listingService := initListingService(cfg)
	bookingService := initBookingService(cfg, listingService, publisher)

	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		listinghandler.NewListingHandler(listingService, cfg.Log),
	)
	serverApp.Run()
}

func initListingService(cfg *config.Config) listingservice.ListingService {
	listingValidator := listingvalidator.NewListingValidator(cfg.Log)
	listingRepo := listingrepository.NewMongoListingRepository(cfg)
	return listingservice.NewListingService(listingRepo, listingValidator, cfg)
}

func initBookingService(cfg *config.Config, listings service.ListingLookup, publisher events.Publisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log, cfg.MaxBookingDurationHours)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		listings,
		publisher,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// initPublisher falls back to a no-op publisher when Kafka is disabled or
// misconfigured; booking events are best-effort.
func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Error("Invalid Kafka configuration, booking events disabled", "error", err)
		return events.NoopPublisher{}
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingEvents.Name, kafkaCfg.BookingEvents.DLQ, cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka producer, booking events disabled", "error", err)
		return events.NoopPublisher{}
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}

	cfg.Log.Info("Publishing booking events", "topic", kafkaCfg.BookingEvents.Name)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
