package reminders

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jp-osorio/citabook/libs/db"
	otelx "github.com/jp-osorio/citabook/libs/otel"
	"github.com/jp-osorio/citabook/services/notification-service/internal/outbox"
)

// Deliverer sends one due reminder and reports the channel and recipient
// address used.
type Deliverer func(ctx context.Context, rem Reminder) (channel, recipient string, err error)

type Worker struct {
	pool      *db.Pool
	repo      *Repository
	outbox    *outbox.Repository
	deliver   Deliverer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	backoff   time.Duration
}

type WorkerConfig struct {
	Interval  time.Duration
	BatchSize int
	Backoff   time.Duration
}

func NewWorker(pool *db.Pool, repo *Repository, outboxRepo *outbox.Repository, deliver Deliverer, logger *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 1 * time.Minute
	}
	return &Worker{
		pool:      pool,
		repo:      repo,
		outbox:    outboxRepo,
		deliver:   deliver,
		logger:    logger,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		backoff:   cfg.Backoff,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				w.logger.Error("reminder batch failed", "err", err)
			}
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	due, err := w.repo.FetchDue(ctx, tx, w.batchSize)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return tx.Commit(ctx)
	}

	var processed []int64
	for _, rem := range due {
		remCtx := otelx.ContextWithTraceContext(ctx, rem.Traceparent, rem.Tracestate)
		channel, recipient, err := w.deliver(remCtx, rem)
		if err != nil {
			attempts := rem.Attempts + 1
			nextRunAt := time.Now().UTC().Add(w.backoff)
			if markErr := w.repo.MarkFailed(ctx, tx, rem.ID, attempts, rem.MaxAttempts, nextRunAt, err.Error()); markErr != nil {
				return markErr
			}
			if attempts >= rem.MaxAttempts {
				if dlqErr := w.enqueueDLQ(remCtx, tx, rem, err.Error()); dlqErr != nil {
					return dlqErr
				}
			}
			w.logger.Error("reminder delivery failed", "err", err, "appointment_id", rem.AppointmentID, "attempts", attempts)
			continue
		}

		if err := w.enqueueSent(remCtx, tx, rem, channel, recipient); err != nil {
			return err
		}
		processed = append(processed, rem.ID)
	}

	if err := w.repo.MarkProcessed(ctx, tx, processed); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (w *Worker) enqueueSent(ctx context.Context, tx pgx.Tx, rem Reminder, channel, recipient string) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": rem.AppointmentID,
		"company_id":     rem.CompanyID,
		"channel":        channel,
		"recipient":      recipient,
		"remind_at":      rem.RemindAt.UTC().Format(time.RFC3339),
		"sent_at":        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return w.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "reminder",
		AggregateID:   rem.AppointmentID,
		EventType:     "notification.sent.v1",
		Payload:       payload,
	})
}

func (w *Worker) enqueueDLQ(ctx context.Context, tx pgx.Tx, rem Reminder, reason string) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": rem.AppointmentID,
		"company_id":     rem.CompanyID,
		"customer_id":    rem.CustomerID,
		"remind_at":      rem.RemindAt.UTC().Format(time.RFC3339),
		"error_reason":   reason,
		"failed_at":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return w.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "reminder",
		AggregateID:   rem.AppointmentID,
		EventType:     "notification.reminder.dlq.v1",
		Payload:       payload,
	})
}
