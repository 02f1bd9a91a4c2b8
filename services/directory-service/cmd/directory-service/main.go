package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jp-osorio/citabook/libs/config"
	"github.com/jp-osorio/citabook/libs/db"
	"github.com/jp-osorio/citabook/libs/httpx"
	"github.com/jp-osorio/citabook/libs/kafkax"
	otelx "github.com/jp-osorio/citabook/libs/otel"
	"github.com/jp-osorio/citabook/libs/runtime"
	"github.com/jp-osorio/citabook/services/directory-service/internal/handlers"
	"github.com/jp-osorio/citabook/services/directory-service/internal/outbox"
	"github.com/jp-osorio/citabook/services/directory-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "directory-service")
	port, err := config.Port("PORT", "8082")
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

	kafkaBrokers := config.String("KAFKA_BROKERS", "localhost:9092")

	repo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	httpHandler := handlers.New(repo, outboxRepo, logger)

	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{Brokers: kafkaBrokers})
	go publisher.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)},
	)
	mux.HandleFunc("/api/v1/directory/companies", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			httpHandler.CreateCompany(w, r)
			return
		}
		if r.Method == http.MethodGet {
			httpHandler.GetCompany(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	mux.HandleFunc("/api/v1/directory/locations", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			httpHandler.CreateLocation(w, r)
			return
		}
		if r.Method == http.MethodGet {
			httpHandler.ListLocations(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	mux.HandleFunc("/api/v1/directory/services", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			httpHandler.CreateService(w, r)
			return
		}
		if r.Method == http.MethodGet {
			httpHandler.ListServices(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	mux.HandleFunc("/api/v1/directory/services/availability", httpHandler.SetServiceAvailability)
	mux.HandleFunc("/api/v1/directory/staff", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			httpHandler.CreateStaff(w, r)
			return
		}
		if r.Method == http.MethodGet {
			httpHandler.ListStaff(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	mux.HandleFunc("/api/v1/directory/staff/windows", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			httpHandler.UpsertWindow(w, r)
			return
		}
		if r.Method == http.MethodGet {
			httpHandler.ListWindows(w, r)
			return
		}
		if r.Method == http.MethodDelete {
			httpHandler.DeactivateWindow(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "directory")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	if err := startGrpcServer(ctx, logger, pool, repo); err != nil {
		logger.Error("grpc server failed to start", "err", err)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
