package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jp-osorio/citabook/libs/config"
	"github.com/jp-osorio/citabook/libs/db"
	"github.com/jp-osorio/citabook/libs/httpx"
	"github.com/jp-osorio/citabook/libs/kafkax"
	otelx "github.com/jp-osorio/citabook/libs/otel"
	"github.com/jp-osorio/citabook/libs/runtime"
	"github.com/jp-osorio/citabook/services/notification-service/internal/consumer"
	"github.com/jp-osorio/citabook/services/notification-service/internal/email"
	"github.com/jp-osorio/citabook/services/notification-service/internal/inbox"
	"github.com/jp-osorio/citabook/services/notification-service/internal/outbox"
	"github.com/jp-osorio/citabook/services/notification-service/internal/reminders"
	"github.com/jp-osorio/citabook/services/notification-service/internal/sms"
	"github.com/jp-osorio/citabook/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type userCreated struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type appointmentEvent struct {
	AppointmentID string `json:"appointment_id"`
	CompanyID     string `json:"company_id"`
	LocationID    string `json:"location_id"`
	ServiceID     string `json:"service_id"`
	StaffID       string `json:"staff_id"`
	CustomerID    string `json:"customer_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
}

type reminderRequested struct {
	AppointmentID string `json:"appointment_id"`
	CompanyID     string `json:"company_id"`
	ServiceID     string `json:"service_id"`
	CustomerID    string `json:"customer_id"`
	StartTime     string `json:"start_time"`
	RemindAt      string `json:"remind_at"`
}

// dispatcher resolves a customer's contact data and sends over the first
// usable channel (email preferred, SMS fallback).
type dispatcher struct {
	recipients *storage.RecipientRepository
	email      email.Sender
	sms        sms.Sender
	failSuffix string
}

func (d *dispatcher) send(ctx context.Context, customerID, subject, body string) (channel, recipient string, err error) {
	rec, found, err := d.recipients.Get(ctx, customerID)
	if err != nil {
		return "", "", err
	}
	if !found {
		return "", "", fmt.Errorf("no recipient for customer %s", customerID)
	}

	switch {
	case rec.Email != "":
		channel, recipient = "email", rec.Email
	case rec.Phone != "":
		channel, recipient = "sms", rec.Phone
	default:
		return "", "", fmt.Errorf("customer %s has no contact address", customerID)
	}

	if d.failSuffix != "" && strings.HasSuffix(recipient, d.failSuffix) {
		return channel, recipient, errors.New("simulated failure")
	}

	if channel == "email" {
		err = d.email.Send(recipient, subject, body)
	} else {
		err = d.sms.Send(ctx, recipient, body)
	}
	return channel, recipient, err
}

func writeOutboxEvent(ctx context.Context, pool *db.Pool, outboxRepo *outbox.Repository, eventType, appointmentID string, fields map[string]any) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "notification",
		AggregateID:   appointmentID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
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
	notificationsRepo := storage.NewRepository(pool)
	recipientsRepo := storage.NewRecipientRepository(pool)
	remindersRepo := reminders.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	smtpHost := config.String("SMTP_HOST", "mailpit")
	smtpPort := config.String("SMTP_PORT", "1025")
	smtpFrom := config.String("SMTP_FROM", "no-reply@citabook.local")
	emailSender := email.NewSMTPSender(smtpHost, smtpPort, smtpFrom)

	smsProvider := strings.ToLower(config.String("SMS_PROVIDER", "noop"))
	smsWebhookURL := config.String("SMS_WEBHOOK_URL", "")
	smsWebhookToken := config.String("SMS_WEBHOOK_TOKEN", "")
	var smsSender sms.Sender
	switch smsProvider {
	case "webhook":
		smsSender = sms.NewWebhookSender(smsWebhookURL, smsWebhookToken)
	default:
		smsSender = sms.NewNoopSender()
	}

	disp := &dispatcher{
		recipients: recipientsRepo,
		email:      emailSender,
		sms:        smsSender,
		failSuffix: config.String("NOTIFICATION_FAIL_SUFFIX", ""),
	}

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notification-service")
	startConsumer := func(topic string, handler consumer.Handler) {
		c := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}, handler)
		go c.Run(ctx)
	}

	startConsumer(config.String("KAFKA_TOPIC_USER_CREATED", "auth.user.created.v1"), func(ctx context.Context, msg kafka.Message) error {
		var evt userCreated
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Error("invalid user created payload", "err", err)
			return nil
		}
		if evt.UserID == "" {
			return nil
		}
		return recipientsRepo.Upsert(ctx, storage.Recipient{
			UserID:    evt.UserID,
			CompanyID: evt.CompanyID,
			Name:      evt.Name,
			Email:     evt.Email,
			Phone:     evt.Phone,
		})
	})

	notify := func(kind, eventType, subject, bodyFmt string) consumer.Handler {
		return func(ctx context.Context, msg kafka.Message) error {
			var evt appointmentEvent
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				logger.Error("invalid appointment payload", "err", err)
				return nil
			}
			if evt.AppointmentID == "" || evt.CustomerID == "" {
				logger.Error("missing appointment fields", "event_type", eventType)
				return nil
			}

			if kind == storage.KindCancellation {
				if err := remindersRepo.CancelPending(ctx, evt.AppointmentID); err != nil {
					return err
				}
			}

			body := fmt.Sprintf(bodyFmt, evt.StartTime)
			channel, recipient, sendErr := disp.send(ctx, evt.CustomerID, subject, body)
			status := "sent"
			if sendErr != nil {
				status = "failed"
				logger.Error("notification send failed", "err", sendErr, "appointment_id", evt.AppointmentID)
			}

			if err := notificationsRepo.Insert(ctx, storage.Notification{
				AppointmentID: evt.AppointmentID,
				CompanyID:     evt.CompanyID,
				Kind:          kind,
				Channel:       channel,
				Recipient:     recipient,
				Payload:       map[string]any{"start_time": evt.StartTime, "reason": evt.Reason},
				Status:        status,
			}); err != nil {
				return err
			}

			outType := "notification.sent.v1"
			fields := map[string]any{
				"appointment_id": evt.AppointmentID,
				"company_id":     evt.CompanyID,
				"kind":           kind,
				"channel":        channel,
			}
			if sendErr != nil {
				outType = "notification.failed.v1"
				fields["error_reason"] = sendErr.Error()
				fields["failed_at"] = time.Now().UTC().Format(time.RFC3339)
			} else {
				fields["recipient"] = recipient
				fields["sent_at"] = time.Now().UTC().Format(time.RFC3339)
			}
			if err := writeOutboxEvent(ctx, pool, outboxRepo, outType, evt.AppointmentID, fields); err != nil {
				return err
			}

			logger.Info("appointment event processed", "event_type", eventType, "appointment_id", evt.AppointmentID, "status", status)
			return nil
		}
	}

	createdTopic := config.String("KAFKA_TOPIC_APPOINTMENT_CREATED", "booking.appointment.created.v1")
	cancelledTopic := config.String("KAFKA_TOPIC_APPOINTMENT_CANCELLED", "booking.appointment.cancelled.v1")
	startConsumer(createdTopic, notify(storage.KindConfirmation, createdTopic,
		"Appointment received", "Your appointment for %s was received and is pending confirmation."))
	startConsumer(cancelledTopic, notify(storage.KindCancellation, cancelledTopic,
		"Appointment cancelled", "Your appointment for %s was cancelled."))

	startConsumer(config.String("KAFKA_TOPIC_REMINDER_REQUESTED", "booking.reminder.requested.v1"), func(ctx context.Context, msg kafka.Message) error {
		var evt reminderRequested
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Error("invalid reminder payload", "err", err)
			return nil
		}
		if evt.AppointmentID == "" || evt.CustomerID == "" || evt.RemindAt == "" {
			logger.Error("missing reminder fields")
			return nil
		}
		remindAt, err := time.Parse(time.RFC3339, evt.RemindAt)
		if err != nil {
			logger.Error("invalid remind_at", "err", err)
			return nil
		}
		startTime, err := time.Parse(time.RFC3339, evt.StartTime)
		if err != nil {
			logger.Error("invalid start_time", "err", err)
			return nil
		}
		return remindersRepo.Insert(ctx, reminders.Reminder{
			AppointmentID: evt.AppointmentID,
			CompanyID:     evt.CompanyID,
			CustomerID:    evt.CustomerID,
			ServiceID:     evt.ServiceID,
			StartTime:     startTime,
			RemindAt:      remindAt,
		})
	})

	deliverReminder := func(ctx context.Context, rem reminders.Reminder) (string, string, error) {
		body := fmt.Sprintf("Reminder: you have an appointment at %s.", rem.StartTime.UTC().Format(time.RFC3339))
		channel, recipient, err := disp.send(ctx, rem.CustomerID, "Appointment reminder", body)
		if err != nil {
			return channel, recipient, err
		}
		if insertErr := notificationsRepo.Insert(ctx, storage.Notification{
			AppointmentID: rem.AppointmentID,
			CompanyID:     rem.CompanyID,
			Kind:          storage.KindReminder,
			Channel:       channel,
			Recipient:     recipient,
			Payload:       map[string]any{"start_time": rem.StartTime.UTC().Format(time.RFC3339)},
			Status:        "sent",
		}); insertErr != nil {
			logger.Error("failed to persist reminder notification", "err", insertErr)
		}
		return channel, recipient, nil
	}
	reminderWorker := reminders.NewWorker(pool, remindersRepo, outboxRepo, deliverReminder, logger, reminders.WorkerConfig{})
	go reminderWorker.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
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
