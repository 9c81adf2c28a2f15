package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	appoutbox "reservaja/internal/app/outbox"
	"reservaja/internal/domain/booking"
	"reservaja/internal/domain/catalog"
	"reservaja/internal/infra/availability"
	"reservaja/internal/infra/broker/kafka"
	"reservaja/internal/infra/config"
	mongodb "reservaja/internal/infra/db/mongo"
	ginserver "reservaja/internal/infra/http/gin"
	"reservaja/internal/infra/obs"
	"reservaja/internal/infra/outbox"
	"reservaja/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	bookings, mongoClient, err := buildBookingRepository(cfg)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	var ready func() error
	if mongoClient != nil {
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return mongoClient.Ping(pingCtx)
		}
	}

	products := memory.NewProductRepository()
	fixturesPath := os.Getenv("PRODUCT_FIXTURES")
	if fixturesPath != "" {
		if err := loadProductFixtures(ctx, products, fixturesPath); err != nil {
			logger.Warn("product fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	source := buildAvailabilitySource(cfg, logger)

	var publisher *kafka.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = kafka.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, logger)
		if err != nil {
			logger.Warn("kafka unavailable, events disabled", "error", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	var events ginserver.EventSink
	switch {
	case cfg.EventDelivery == "outbox" && mongoClient != nil:
		store := outbox.NewStore(mongoClient.DB)
		events = appoutbox.Sink{Store: store, Logger: logger}
		if publisher != nil {
			relay := &outbox.Relay{
				Store:    store,
				Producer: publisher,
				Logger:   logger,
				Interval: cfg.OutboxInterval,
			}
			go func() {
				if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("outbox relay stopped", "error", err)
				}
			}()
		}
	case publisher != nil:
		events = publisher
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, ginserver.Handlers{
		Booking: ginserver.BookingHandler{
			Bookings: bookings,
			Products: products,
			Source:   source,
			Events:   events,
		},
		Availability: ginserver.AvailabilityHandler{
			Source:   source,
			Products: products,
		},
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

func buildBookingRepository(cfg config.Config) (booking.Repository, *mongodb.Client, error) {
	if cfg.StorageMode == "mongo" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return mongodb.NewBookingRepository(client.DB), client, nil
	}
	return memory.NewBookingRepository(), nil, nil
}

func buildAvailabilitySource(cfg config.Config, logger *slog.Logger) availability.Source {
	var source availability.Source = &availability.HTTPSource{
		Client:  &http.Client{Timeout: cfg.AvailabilityTimeout},
		BaseURL: cfg.AvailabilityBaseURL,
		Logger:  logger,
	}
	if cfg.RedisAddr != "" {
		source = &availability.CachedSource{
			Inner: source,
			Redis: redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
			}),
			TTL:    cfg.AvailabilityCacheTTL,
			Logger: logger,
		}
	}
	return source
}

type productFixture struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Category           string   `json:"category"`
	Type               string   `json:"type"`
	Images             []string `json:"images"`
	HourlyPrice        float64  `json:"hourly_price"`
	DailyPrice         float64  `json:"daily_price"`
	DiscountPercentage float64  `json:"discount_percentage"`
	Street             string   `json:"street"`
	Number             string   `json:"number"`
	Neighborhood       string   `json:"neighborhood"`
	City               string   `json:"city"`
	State              string   `json:"state"`
	OwnerEmail         string   `json:"owner_email"`
	OwnerPhone         string   `json:"owner_phone"`
}

func loadProductFixtures(ctx context.Context, repo catalog.Repository, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fixtures []productFixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return err
	}
	for _, f := range fixtures {
		product := &catalog.Product{
			ID:                 catalog.ProductID(f.ID),
			Title:              f.Title,
			Category:           catalog.Category(f.Category),
			Type:               f.Type,
			Images:             f.Images,
			HourlyPrice:        f.HourlyPrice,
			DailyPrice:         f.DailyPrice,
			DiscountPercentage: f.DiscountPercentage,
			Address: catalog.Address{
				Street:       f.Street,
				Number:       f.Number,
				Neighborhood: f.Neighborhood,
				City:         f.City,
				State:        f.State,
			},
			Owner: catalog.Contact{Email: f.OwnerEmail, Phone: f.OwnerPhone},
		}
		if err := repo.Save(ctx, product); err != nil {
			return err
		}
	}
	return nil
}
