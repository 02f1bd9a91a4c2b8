package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jp-osorio/citabook/libs/auth"
	"github.com/jp-osorio/citabook/services/booking-service/internal/directory"
	"github.com/jp-osorio/citabook/services/booking-service/internal/outbox"
	"github.com/jp-osorio/citabook/services/booking-service/internal/schedule"
	"github.com/jp-osorio/citabook/services/booking-service/internal/storage"
)

// BookingHandler serves the appointment API. Identity arrives in headers the
// gateway sets from the verified JWT (X-User-Id, X-Company-Id, X-Role); the
// booking core trusts them.
type BookingHandler struct {
	repo            *storage.AppointmentRepository
	dir             *directory.Source
	outboxRepo      *outbox.Repository
	logger          *slog.Logger
	schedCfg        schedule.Config
	reminderOffsets []time.Duration
}

func NewBookingHandler(repo *storage.AppointmentRepository, dir *directory.Source, outboxRepo *outbox.Repository, logger *slog.Logger, schedCfg schedule.Config, reminderOffsets []time.Duration) *BookingHandler {
	return &BookingHandler{
		repo:            repo,
		dir:             dir,
		outboxRepo:      outboxRepo,
		logger:          logger,
		schedCfg:        schedCfg,
		reminderOffsets: reminderOffsets,
	}
}

func (h *BookingHandler) scheduler(store *storage.Store) *schedule.Scheduler {
	return schedule.NewScheduler(h.schedCfg, h.dir, h.dir, store)
}

type identity struct {
	UserID    string
	CompanyID string
	Role      auth.Role
}

func callerIdentity(r *http.Request) (identity, bool) {
	role, err := auth.ParseRole(strings.TrimSpace(r.Header.Get("X-Role")))
	if err != nil {
		return identity{}, false
	}
	id := identity{
		UserID:    strings.TrimSpace(r.Header.Get("X-User-Id")),
		CompanyID: strings.TrimSpace(r.Header.Get("X-Company-Id")),
		Role:      role,
	}
	if id.UserID == "" {
		return identity{}, false
	}
	return id, true
}

type createAppointmentRequest struct {
	LocationID string `json:"location_id"`
	ServiceID  string `json:"service_id"`
	StaffID    string `json:"staff_id"`
	CustomerID string `json:"customer_id,omitempty"`
	StartTime  string `json:"start_time"`
}

type updateAppointmentRequest struct {
	AppointmentID string  `json:"appointment_id"`
	LocationID    *string `json:"location_id,omitempty"`
	ServiceID     *string `json:"service_id,omitempty"`
	StaffID       *string `json:"staff_id,omitempty"`
	StartTime     *string `json:"start_time,omitempty"`
	Status        *string `json:"status,omitempty"`
}

type cancelAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type appointmentResponse struct {
	AppointmentID string `json:"appointment_id"`
	CompanyID     string `json:"company_id"`
	LocationID    string `json:"location_id"`
	ServiceID     string `json:"service_id"`
	StaffID       string `json:"staff_id"`
	CustomerID    string `json:"customer_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	CancelReason  string `json:"cancel_reason,omitempty"`
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func appointmentToResponse(a schedule.Appointment) appointmentResponse {
	return appointmentResponse{
		AppointmentID: a.ID,
		CompanyID:     a.CompanyID,
		LocationID:    a.LocationID,
		ServiceID:     a.ServiceID,
		StaffID:       a.StaffID,
		CustomerID:    a.CustomerID,
		StartTime:     a.Start.UTC().Format(time.RFC3339),
		EndTime:       a.End.UTC().Format(time.RFC3339),
		Status:        string(a.Status),
	}
}

// scheduleErrorStatus maps core errors to HTTP statuses. Zero means the error
// is not a domain rejection and should be treated as internal.
func scheduleErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, schedule.ErrServiceNotFound):
		return http.StatusNotFound, "service not found"
	case errors.Is(err, schedule.ErrAppointmentNotFound):
		return http.StatusNotFound, "appointment not found"
	case errors.Is(err, schedule.ErrNotAvailable):
		return http.StatusUnprocessableEntity, "staff member does not work that day"
	case errors.Is(err, schedule.ErrOutsideAvailability):
		return http.StatusUnprocessableEntity, "requested time is outside the availability window"
	case errors.Is(err, schedule.ErrSlotTaken):
		return http.StatusConflict, "time slot already booked"
	case errors.Is(err, schedule.ErrInvalidTransition):
		return http.StatusConflict, "invalid status transition"
	default:
		return 0, ""
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller, ok := callerIdentity(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	if caller.CompanyID == "" {
		http.Error(w, "missing company scope", http.StatusUnauthorized)
		return
	}
	if !canCreate(caller) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.LocationID = strings.TrimSpace(req.LocationID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.StaffID = strings.TrimSpace(req.StaffID)
	if req.LocationID == "" || req.ServiceID == "" || req.StaffID == "" {
		http.Error(w, "location_id, service_id and staff_id are required", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	// Customers book for themselves; managers book on a customer's behalf.
	customerID := caller.UserID
	if req.CustomerID != "" && caller.Role.CanManageCompany() {
		customerID = strings.TrimSpace(req.CustomerID)
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, caller.CompanyID, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.ResponsePayload)
			return
		}
	}

	appt, err := h.scheduler(h.repo.TxStore(tx)).Create(ctx, schedule.CreateRequest{
		CustomerID: customerID,
		StaffID:    req.StaffID,
		ServiceID:  req.ServiceID,
		LocationID: req.LocationID,
		CompanyID:  caller.CompanyID,
		Start:      start,
	})
	if err != nil {
		if code, msg := scheduleErrorStatus(err); code != 0 {
			if idempotencyKey != "" && h.finalizeIdempotencyError(ctx, tx, caller.CompanyID, idempotencyKey, code, msg) {
				_ = tx.Commit(ctx)
			}
			http.Error(w, msg, code)
			return
		}
		h.logger.Error("appointment create failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"company_id":     appt.CompanyID,
		"location_id":    appt.LocationID,
		"service_id":     appt.ServiceID,
		"staff_id":       appt.StaffID,
		"customer_id":    appt.CustomerID,
		"start_time":     appt.Start.UTC().Format(time.RFC3339),
		"end_time":       appt.End.UTC().Format(time.RFC3339),
		"status":         string(appt.Status),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "booking.appointment.created.v1",
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := h.enqueueReminders(ctx, tx, appt); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(appointmentToResponse(appt))
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, caller.CompanyID, idempotencyKey, appt.ID, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller, ok := callerIdentity(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	if !caller.Role.CanManageCompany() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	upd := schedule.UpdateRequest{
		ID:         req.AppointmentID,
		ServiceID:  req.ServiceID,
		LocationID: req.LocationID,
		StaffID:    req.StaffID,
	}
	if req.StartTime != nil {
		start, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			http.Error(w, "invalid start_time", http.StatusBadRequest)
			return
		}
		upd.Start = &start
	}
	if req.Status != nil {
		status, err := schedule.ParseStatus(*req.Status)
		if err != nil {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		upd.Status = &status
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	store := h.repo.TxStore(tx)
	prior, found, err := store.FindByID(ctx, req.AppointmentID)
	if err != nil {
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "appointment not found", http.StatusNotFound)
		return
	}
	if caller.Role != auth.RoleSuperAdmin && prior.CompanyID != caller.CompanyID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	appt, err := h.scheduler(store).Update(ctx, upd)
	if err != nil {
		if code, msg := scheduleErrorStatus(err); code != 0 {
			http.Error(w, msg, code)
			return
		}
		h.logger.Error("appointment update failed", "err", err)
		http.Error(w, "failed to update appointment", http.StatusInternalServerError)
		return
	}

	if appt.Status != prior.Status {
		eventType := ""
		switch appt.Status {
		case schedule.StatusConfirmed:
			eventType = "booking.appointment.confirmed.v1"
		case schedule.StatusCancelled:
			eventType = "booking.appointment.cancelled.v1"
		}
		if eventType != "" {
			if err := h.insertLifecycleEvent(ctx, tx, eventType, appt, ""); err != nil {
				http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
				return
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, appointmentToResponse(appt))
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller, ok := callerIdentity(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req cancelAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	store := h.repo.TxStore(tx)
	prior, found, err := store.FindByID(ctx, req.AppointmentID)
	if err != nil {
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "appointment not found", http.StatusNotFound)
		return
	}
	if !h.canCancel(caller, prior) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if prior.Status == schedule.StatusCancelled {
		// Repeated cancels are idempotent from the caller's point of view.
		writeJSON(w, http.StatusOK, appointmentToResponse(prior))
		return
	}

	appt, err := h.scheduler(store).Cancel(ctx, req.AppointmentID)
	if err != nil {
		if code, msg := scheduleErrorStatus(err); code != 0 {
			http.Error(w, msg, code)
			return
		}
		h.logger.Error("appointment cancel failed", "err", err)
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}
	if req.Reason != "" {
		if err := h.repo.SetCancelReason(ctx, tx, appt.ID, req.Reason); err != nil {
			http.Error(w, "failed to record cancellation reason", http.StatusInternalServerError)
			return
		}
	}

	if err := h.insertLifecycleEvent(ctx, tx, "booking.appointment.cancelled.v1", appt, req.Reason); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	resp := appointmentToResponse(appt)
	resp.CancelReason = req.Reason
	writeJSON(w, http.StatusOK, resp)
}

// canCreate limits appointment creation to customers booking for themselves
// and managers booking on a customer's behalf. Staff manage their agenda
// through updates and cancellations, not new bookings.
func canCreate(caller identity) bool {
	return caller.Role == auth.RoleCustomer || caller.Role.CanManageCompany()
}

// canView is the per-record visibility matrix: admins see their company,
// staff their own agenda, customers their own bookings.
func canView(caller identity, appt schedule.Appointment) bool {
	switch caller.Role {
	case auth.RoleSuperAdmin:
		return true
	case auth.RoleAdmin:
		return appt.CompanyID == caller.CompanyID
	case auth.RoleStaff:
		return appt.StaffID == caller.UserID
	case auth.RoleCustomer:
		return appt.CustomerID == caller.UserID
	default:
		return false
	}
}

// Cancellation rights match visibility: anyone who can see an appointment
// may cancel it.
func (h *BookingHandler) canCancel(caller identity, appt schedule.Appointment) bool {
	return canView(caller, appt)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	appt, found, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	// A 404 for records outside the caller's scope avoids leaking existence.
	if !found || !canView(caller, appt.Scheduled()) {
		http.Error(w, "appointment not found", http.StatusNotFound)
		return
	}

	resp := appointmentToResponse(appt.Scheduled())
	if appt.CancelledAt != nil {
		resp.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
	}
	resp.CancelReason = appt.CancelReason
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller, ok := callerIdentity(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	// Visibility derives from the verified role: managers see their company,
	// staff their own agenda, customers their own bookings.
	filter := storage.ListFilter{Limit: limit}
	switch caller.Role {
	case auth.RoleSuperAdmin:
		filter.CompanyID = strings.TrimSpace(r.URL.Query().Get("company_id"))
	case auth.RoleAdmin:
		filter.CompanyID = caller.CompanyID
	case auth.RoleStaff:
		filter.StaffID = caller.UserID
	case auth.RoleCustomer:
		filter.CustomerID = caller.UserID
	}
	if filter.CompanyID == "" && filter.StaffID == "" && filter.CustomerID == "" && caller.Role != auth.RoleSuperAdmin {
		http.Error(w, "missing scope", http.StatusUnauthorized)
		return
	}

	appts, err := h.repo.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		item := appointmentToResponse(a.Scheduled())
		if a.CancelledAt != nil {
			item.CancelledAt = a.CancelledAt.UTC().Format(time.RFC3339)
		}
		item.CancelReason = a.CancelReason
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	locationID := strings.TrimSpace(r.URL.Query().Get("location_id"))
	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if locationID == "" || staffID == "" || serviceID == "" || dateStr == "" {
		http.Error(w, "location_id, staff_id, service_id and date are required", http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, h.schedCfg.Location)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	slots, err := h.scheduler(h.repo.Store()).FreeSlots(r.Context(), locationID, staffID, serviceID, date)
	if err != nil {
		if code, msg := scheduleErrorStatus(err); code != 0 {
			http.Error(w, msg, code)
			return
		}
		h.logger.Error("slot listing failed", "err", err)
		http.Error(w, "failed to list slots", http.StatusInternalServerError)
		return
	}

	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{
			StartTime: s.Start.UTC().Format(time.RFC3339),
			EndTime:   s.End.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) insertLifecycleEvent(ctx context.Context, tx pgx.Tx, eventType string, appt schedule.Appointment, reason string) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"company_id":     appt.CompanyID,
		"location_id":    appt.LocationID,
		"service_id":     appt.ServiceID,
		"staff_id":       appt.StaffID,
		"customer_id":    appt.CustomerID,
		"start_time":     appt.Start.UTC().Format(time.RFC3339),
		"end_time":       appt.End.UTC().Format(time.RFC3339),
		"status":         string(appt.Status),
		"reason":         reason,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     eventType,
		Payload:       payload,
	})
}

// enqueueReminders writes one reminder event per configured offset. A failed
// insert aborts the surrounding transaction, so the error must reach the
// caller rather than being swallowed here.
func (h *BookingHandler) enqueueReminders(ctx context.Context, tx pgx.Tx, appt schedule.Appointment) error {
	now := time.Now().UTC()
	for _, offset := range h.reminderOffsets {
		remindAt := appt.Start.Add(-offset)
		if remindAt.Before(now) {
			continue
		}
		payload, err := json.Marshal(map[string]any{
			"appointment_id": appt.ID,
			"company_id":     appt.CompanyID,
			"service_id":     appt.ServiceID,
			"customer_id":    appt.CustomerID,
			"start_time":     appt.Start.UTC().Format(time.RFC3339),
			"remind_at":      remindAt.Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
		if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
			AggregateType: "appointment",
			AggregateID:   appt.ID,
			EventType:     "booking.reminder.requested.v1",
			Payload:       payload,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (h *BookingHandler) finalizeIdempotencyError(ctx context.Context, tx pgx.Tx, companyID, key string, statusCode int, msg string) bool {
	body, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return false
	}
	if err := h.repo.FinalizeIdempotency(ctx, tx, companyID, key, "", statusCode, body); err != nil {
		h.logger.Error("failed to finalize idempotency (error)", "err", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
