package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jp-osorio/citabook/libs/config"
	"github.com/jp-osorio/citabook/libs/db"
	"github.com/jp-osorio/citabook/libs/httpx"
	"github.com/jp-osorio/citabook/libs/kafkax"
	otelx "github.com/jp-osorio/citabook/libs/otel"
	"github.com/jp-osorio/citabook/libs/runtime"
	"github.com/jp-osorio/citabook/services/booking-service/internal/consumer"
	"github.com/jp-osorio/citabook/services/booking-service/internal/directory"
	"github.com/jp-osorio/citabook/services/booking-service/internal/handlers"
	"github.com/jp-osorio/citabook/services/booking-service/internal/inbox"
	"github.com/jp-osorio/citabook/services/booking-service/internal/outbox"
	"github.com/jp-osorio/citabook/services/booking-service/internal/schedule"
	"github.com/jp-osorio/citabook/services/booking-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func parseReminderOffsets(raw string, logger *slog.Logger) []time.Duration {
	var offsets []time.Duration
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mins, err := strconv.Atoi(part)
		if err != nil || mins <= 0 {
			logger.Warn("invalid reminder offset", "value", part)
			continue
		}
		offsets = append(offsets, time.Duration(mins)*time.Minute)
	}
	if len(offsets) == 0 {
		offsets = []time.Duration{24 * time.Hour}
	}
	return offsets
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	// All wall-clock availability config anchors to this one zone.
	tzName := config.String("BOOKING_TIMEZONE", "America/Bogota")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		logger.Error("invalid BOOKING_TIMEZONE", "tz", tzName, "err", err)
		panic(err)
	}
	schedCfg := schedule.Config{
		Location: loc,
		Conflict: schedule.ConflictPolicy{
			BlockCancelled: isTruthy(config.String("CONFLICT_BLOCK_CANCELLED", "false")),
		},
	}

	repo := storage.NewAppointmentRepository(pool)
	cache := storage.NewDirectoryCache(pool)
	outboxRepo := outbox.NewRepository(pool)
	offsets := parseReminderOffsets(config.String("REMINDER_OFFSETS_MINUTES", "1440,60"), logger)

	remote, err := directory.NewProvider(config.String("DIRECTORY_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("directory provider init failed; cache only", "err", err)
		remote = nil
	}
	dirSource := directory.NewSource(cache, remote)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	inboxRepo := inbox.NewRepository(pool)
	startConsumer := func(topic string, handler consumer.Handler) {
		if strings.TrimSpace(topic) == "" {
			return
		}
		eventConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "booking-service"),
			Topic:   topic,
		}, handler)
		go eventConsumer.Run(ctx)
	}
	startConsumer(config.String("KAFKA_TOPIC_SERVICE_UPSERTED", "directory.service.upserted.v1"),
		consumer.ServiceUpsertedHandler(cache))
	startConsumer(config.String("KAFKA_TOPIC_AVAILABILITY_UPSERTED", "directory.availability.upserted.v1"),
		consumer.AvailabilityUpsertedHandler(cache))

	bookingHandler := handlers.NewBookingHandler(repo, dirSource, outboxRepo, logger, schedCfg, offsets)

	// Public endpoints get rate limited; redis when configured so replicas
	// share one budget, in-memory otherwise.
	limitPerMinute := 120
	if v, err := strconv.Atoi(config.String("RATE_LIMIT_PER_MINUTE", "120")); err == nil && v > 0 {
		limitPerMinute = v
	}
	var rateLimitMW httpx.Middleware
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		redisDB := 0
		if v, err := strconv.Atoi(config.String("REDIS_DB", "0")); err == nil && v >= 0 {
			redisDB = v
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       redisDB,
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "booking-rl"))
		rateLimitMW = rl.Middleware(logger, isTruthy(config.String("RATE_LIMIT_FAIL_OPEN", "true")))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.Handle("/api/v1/public/slots", httpx.Chain(http.HandlerFunc(bookingHandler.Slots), rateLimitMW))
	mux.HandleFunc("/api/v1/appointments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if strings.TrimSpace(r.URL.Query().Get("id")) != "" {
				bookingHandler.Get(w, r)
				return
			}
			bookingHandler.List(w, r)
		case http.MethodPost:
			bookingHandler.Create(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/appointments/update", bookingHandler.Update)
	mux.HandleFunc("/api/v1/appointments/cancel", bookingHandler.Cancel)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
