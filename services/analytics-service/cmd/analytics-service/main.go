package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jp-osorio/citabook/libs/config"
	"github.com/jp-osorio/citabook/libs/db"
	"github.com/jp-osorio/citabook/libs/httpx"
	"github.com/jp-osorio/citabook/libs/kafkax"
	otelx "github.com/jp-osorio/citabook/libs/otel"
	"github.com/jp-osorio/citabook/libs/runtime"
	"github.com/jp-osorio/citabook/services/analytics-service/internal/consumer"
	"github.com/jp-osorio/citabook/services/analytics-service/internal/inbox"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "analytics-service")
	port, err := config.Port("PORT", "8086")
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

	inboxRepo := inbox.NewRepository(pool)
	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "analytics-service")
	startConsumer := func(topic string, handler consumer.Handler) {
		c := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}, handler)
		go c.Run(ctx)
	}

	startConsumer("notification.sent.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			AppointmentID string `json:"appointment_id"`
			CompanyID     string `json:"company_id"`
			Channel       string `json:"channel"`
			SentAt        string `json:"sent_at"`
		}

		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.Channel == "" || payload.SentAt == "" {
			logger.Error("missing event fields")
			return nil
		}
		if _, err := time.Parse(time.RFC3339, payload.SentAt); err != nil {
			logger.Error("invalid sent_at", "err", err)
			return nil
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO notification_metrics (appointment_id, company_id, channel, sent_at, status)
			VALUES ($1, NULLIF($2, ''), $3, $4, 'sent')
		`, payload.AppointmentID, payload.CompanyID, payload.Channel, payload.SentAt)
		if err != nil {
			logger.Error("failed to write metrics", "err", err)
			return err
		}

		if err := bumpNotificationAggregate(ctx, pool, payload.CompanyID, payload.Channel, payload.SentAt, 1, 0); err != nil {
			logger.Error("failed to update daily notification metrics", "err", err)
			return err
		}

		logger.Info("notification metric recorded", "appointment_id", payload.AppointmentID, "channel", payload.Channel)
		return nil
	})

	startConsumer("notification.failed.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			AppointmentID string `json:"appointment_id"`
			CompanyID     string `json:"company_id"`
			Channel       string `json:"channel"`
			ErrorReason   string `json:"error_reason"`
			FailedAt      string `json:"failed_at"`
		}

		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid failed payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.ErrorReason == "" || payload.FailedAt == "" {
			logger.Error("missing failed fields")
			return nil
		}
		if _, err := time.Parse(time.RFC3339, payload.FailedAt); err != nil {
			logger.Error("invalid failed_at", "err", err)
			return nil
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO notification_metrics (appointment_id, company_id, channel, sent_at, status)
			VALUES ($1, NULLIF($2, ''), $3, $4, 'failed')
		`, payload.AppointmentID, payload.CompanyID, payload.Channel, payload.FailedAt)
		if err != nil {
			logger.Error("failed to write failed metrics", "err", err)
			return err
		}

		if err := bumpNotificationAggregate(ctx, pool, payload.CompanyID, payload.Channel, payload.FailedAt, 0, 1); err != nil {
			logger.Error("failed to update daily notification metrics", "err", err)
			return err
		}

		logger.Info("notification failure recorded", "appointment_id", payload.AppointmentID, "channel", payload.Channel)
		return nil
	})

	startConsumer("notification.reminder.dlq.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			AppointmentID string `json:"appointment_id"`
			CompanyID     string `json:"company_id"`
			CustomerID    string `json:"customer_id"`
			RemindAt      string `json:"remind_at"`
			ErrorReason   string `json:"error_reason"`
			FailedAt      string `json:"failed_at"`
		}

		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid dlq payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.RemindAt == "" || payload.ErrorReason == "" || payload.FailedAt == "" {
			logger.Error("missing dlq fields")
			return nil
		}
		remindAt, err := time.Parse(time.RFC3339, payload.RemindAt)
		if err != nil {
			logger.Error("invalid remind_at", "err", err)
			return nil
		}
		if _, err := time.Parse(time.RFC3339, payload.FailedAt); err != nil {
			logger.Error("invalid failed_at", "err", err)
			return nil
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO reminder_dlq_events (appointment_id, company_id, customer_id, remind_at, error_reason, failed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, payload.AppointmentID, payload.CompanyID, payload.CustomerID, remindAt, payload.ErrorReason, payload.FailedAt)
		if err != nil {
			logger.Error("failed to write dlq event", "err", err)
			return err
		}

		logger.Warn("reminder dlq recorded", "appointment_id", payload.AppointmentID)
		return nil
	})

	startConsumer("auth.audit.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			EventType string          `json:"event_type"`
			ActorID   string          `json:"actor_id"`
			Metadata  json.RawMessage `json:"metadata"`
			CreatedAt string          `json:"created_at"`
		}

		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid auth audit payload", "err", err)
			return nil
		}
		if payload.EventType == "" || payload.CreatedAt == "" {
			logger.Error("missing auth audit fields")
			return nil
		}
		if _, err := time.Parse(time.RFC3339, payload.CreatedAt); err != nil {
			logger.Error("invalid auth audit created_at", "err", err)
			return nil
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO security_audit_events (event_type, actor_id, metadata, created_at)
			VALUES ($1, NULLIF($2, ''), $3, $4)
		`, payload.EventType, payload.ActorID, payload.Metadata, payload.CreatedAt)
		if err != nil {
			logger.Error("failed to write security audit event", "err", err)
			return err
		}

		logger.Info("security audit recorded", "event_type", payload.EventType)
		return nil
	})

	handleBookingEvent := func(ctx context.Context, msg kafka.Message, kind string) error {
		var payload struct {
			AppointmentID string `json:"appointment_id"`
			CompanyID     string `json:"company_id"`
			StartTime     string `json:"start_time"`
		}

		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid booking payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.CompanyID == "" || payload.StartTime == "" {
			logger.Error("missing booking fields")
			return nil
		}
		startTime, err := time.Parse(time.RFC3339, payload.StartTime)
		if err != nil {
			logger.Error("invalid start_time", "err", err)
			return nil
		}

		meta := kafkax.ExtractEventMeta(msg)

		tx, err := pool.Begin(ctx)
		if err != nil {
			logger.Error("db begin failed", "err", err)
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		tag, err := tx.Exec(ctx, `
			INSERT INTO booking_events (event_id, event_type, company_id, appointment_id, occurred_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (event_id) DO NOTHING
		`, meta.EventID, meta.EventType, payload.CompanyID, payload.AppointmentID, startTime.UTC())
		if err != nil {
			logger.Error("failed to insert booking event", "err", err)
			return err
		}
		if tag.RowsAffected() == 0 {
			_ = tx.Commit(ctx)
			return nil
		}

		bookedInc := 0
		cancelledInc := 0
		confirmedInc := 0
		switch kind {
		case "booked":
			bookedInc = 1
		case "confirmed":
			confirmedInc = 1
		case "cancelled":
			cancelledInc = 1
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO daily_appointment_metrics (company_id, day, booked_count, confirmed_count, cancelled_count)
			VALUES ($1, $2::date, $3, $4, $5)
			ON CONFLICT (company_id, day)
			DO UPDATE SET booked_count = daily_appointment_metrics.booked_count + EXCLUDED.booked_count,
			              confirmed_count = daily_appointment_metrics.confirmed_count + EXCLUDED.confirmed_count,
			              cancelled_count = daily_appointment_metrics.cancelled_count + EXCLUDED.cancelled_count,
			              updated_at = now()
		`, payload.CompanyID, startTime.UTC(), bookedInc, confirmedInc, cancelledInc); err != nil {
			logger.Error("failed to update daily metrics", "err", err)
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			logger.Error("failed to commit booking metric", "err", err)
			return err
		}

		logger.Info("booking metric recorded", "appointment_id", payload.AppointmentID, "company_id", payload.CompanyID, "event_type", meta.EventType)
		return nil
	}

	startConsumer("booking.appointment.created.v1", func(ctx context.Context, msg kafka.Message) error {
		return handleBookingEvent(ctx, msg, "booked")
	})
	startConsumer("booking.appointment.confirmed.v1", func(ctx context.Context, msg kafka.Message) error {
		return handleBookingEvent(ctx, msg, "confirmed")
	})
	startConsumer("booking.appointment.cancelled.v1", func(ctx context.Context, msg kafka.Message) error {
		return handleBookingEvent(ctx, msg, "cancelled")
	})

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "analytics")
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

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func bumpNotificationAggregate(ctx context.Context, pool *db.Pool, companyID, channel, ts string, sentInc, failedInc int) error {
	if companyID == "" || channel == "" || ts == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO daily_notification_metrics (company_id, day, channel, sent_count, failed_count)
		VALUES ($1, $2::date, $3, $4, $5)
		ON CONFLICT (company_id, day, channel)
		DO UPDATE SET sent_count = daily_notification_metrics.sent_count + EXCLUDED.sent_count,
		              failed_count = daily_notification_metrics.failed_count + EXCLUDED.failed_count,
		              updated_at = now()
	`, companyID, t.UTC(), channel, sentInc, failedInc)
	return err
}
