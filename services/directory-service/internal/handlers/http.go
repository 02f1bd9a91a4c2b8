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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jp-osorio/citabook/libs/auth"
	"github.com/jp-osorio/citabook/services/directory-service/internal/outbox"
	"github.com/jp-osorio/citabook/services/directory-service/internal/storage"
)

// Handler serves the company directory API. The gateway verifies the JWT and
// forwards identity in X-User-Id, X-Company-Id and X-Role headers.
type Handler struct {
	repo       *storage.Repository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
}

func New(repo *storage.Repository, outboxRepo *outbox.Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, outboxRepo: outboxRepo, logger: logger}
}

func companyIDFromHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Company-Id"))
}

func roleFromHeader(r *http.Request) (auth.Role, bool) {
	role, err := auth.ParseRole(strings.TrimSpace(r.Header.Get("X-Role")))
	if err != nil {
		return "", false
	}
	return role, true
}

// requireManager gates write operations to admin and superadmin.
func requireManager(w http.ResponseWriter, r *http.Request) bool {
	role, ok := roleFromHeader(r)
	if !ok || !role.CanManageCompany() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// parseClock validates an "HH:MM" wall-clock value and returns its minute of
// day.
func parseClock(v string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, ok := roleFromHeader(r)
	if !ok || role != auth.RoleSuperAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		TaxID       string `json:"tax_id"`
		AdminUserID string `json:"admin_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if req.Name == "" || req.Slug == "" {
		http.Error(w, "name and slug required", http.StatusBadRequest)
		return
	}

	id, err := h.repo.CreateCompany(r.Context(), storage.Company{
		Name:        req.Name,
		Slug:        req.Slug,
		TaxID:       strings.TrimSpace(req.TaxID),
		AdminUserID: strings.TrimSpace(req.AdminUserID),
	})
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "slug already in use", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create company", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}
	c, found, err := h.repo.GetCompany(r.Context(), companyID)
	if err != nil {
		http.Error(w, "failed to load company", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "company not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     c.ID,
		"name":   c.Name,
		"slug":   c.Slug,
		"tax_id": c.TaxID,
	})
}

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	if !requireManager(w, r) {
		return
	}
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	id, err := h.repo.CreateLocation(r.Context(), companyID, req.Name, strings.TrimSpace(req.Address))
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "location name already in use", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create location", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}
	locations, err := h.repo.ListLocations(r.Context(), companyID, 100)
	if err != nil {
		http.Error(w, "failed to list locations", http.StatusInternalServerError)
		return
	}
	items := make([]map[string]any, 0, len(locations))
	for _, l := range locations {
		items = append(items, map[string]any{
			"id":      l.ID,
			"name":    l.Name,
			"address": l.Address,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	if !requireManager(w, r) {
		return
	}
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name         string  `json:"name"`
		Description  string  `json:"description"`
		DurationMins int     `json:"duration_minutes"`
		Price        float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DurationMins <= 0 {
		http.Error(w, "name and a positive duration_minutes are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	svc, err := h.repo.CreateService(ctx, tx, storage.Service{
		CompanyID:    companyID,
		Name:         req.Name,
		Description:  strings.TrimSpace(req.Description),
		DurationMins: req.DurationMins,
		Price:        strconv.FormatFloat(req.Price, 'f', 2, 64),
	})
	if err != nil {
		http.Error(w, "failed to create service", http.StatusInternalServerError)
		return
	}
	if err := h.insertServiceEvent(ctx, tx, svc); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": svc.ID})
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}
	services, err := h.repo.ListServices(r.Context(), companyID, 100)
	if err != nil {
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	items := make([]map[string]any, 0, len(services))
	for _, s := range services {
		items = append(items, map[string]any{
			"id":               s.ID,
			"name":             s.Name,
			"description":      s.Description,
			"duration_minutes": s.DurationMins,
			"price":            s.Price,
			"available":        s.Available,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// SetServiceAvailability toggles a service in or out of the bookable catalog.
// Removal is a soft operation; existing appointments keep their service id.
func (h *Handler) SetServiceAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !requireManager(w, r) {
		return
	}
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		ServiceID string `json:"service_id"`
		Available *bool  `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	if req.ServiceID == "" || req.Available == nil {
		http.Error(w, "service_id and available are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	svc, found, err := h.repo.SetServiceAvailability(ctx, tx, companyID, req.ServiceID, *req.Available)
	if err != nil {
		http.Error(w, "failed to update service", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}
	if err := h.insertServiceEvent(ctx, tx, svc); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	if !requireManager(w, r) {
		return
	}
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		UserID     string `json:"user_id"`
		LocationID string `json:"location_id"`
		Name       string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.LocationID = strings.TrimSpace(req.LocationID)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.Name == "" || req.LocationID == "" || req.UserID == "" {
		http.Error(w, "user_id, name and location_id are required", http.StatusBadRequest)
		return
	}

	id, err := h.repo.CreateStaff(r.Context(), storage.Staff{
		ID:         req.UserID,
		CompanyID:  companyID,
		LocationID: req.LocationID,
		Name:       req.Name,
		Active:     true,
	})
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "staff member already registered", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create staff", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}
	staff, err := h.repo.ListStaff(r.Context(), companyID, 100)
	if err != nil {
		http.Error(w, "failed to list staff", http.StatusInternalServerError)
		return
	}
	items := make([]map[string]any, 0, len(staff))
	for _, s := range staff {
		items = append(items, map[string]any{
			"id":          s.ID,
			"location_id": s.LocationID,
			"name":        s.Name,
			"active":      s.Active,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) UpsertWindow(w http.ResponseWriter, r *http.Request) {
	if !requireManager(w, r) {
		return
	}
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		StaffID    string `json:"staff_id"`
		LocationID string `json:"location_id"`
		Weekday    int    `json:"weekday"`
		StartTime  string `json:"start_time"`
		EndTime    string `json:"end_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.StaffID = strings.TrimSpace(req.StaffID)
	req.LocationID = strings.TrimSpace(req.LocationID)
	if req.StaffID == "" || req.LocationID == "" {
		http.Error(w, "staff_id and location_id are required", http.StatusBadRequest)
		return
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		http.Error(w, "weekday must be between 0 and 6", http.StatusBadRequest)
		return
	}
	startMin, ok := parseClock(req.StartTime)
	if !ok {
		http.Error(w, "start_time must be HH:MM", http.StatusBadRequest)
		return
	}
	endMin, ok := parseClock(req.EndTime)
	if !ok {
		http.Error(w, "end_time must be HH:MM", http.StatusBadRequest)
		return
	}
	// Overnight windows are rejected rather than wrapped to the next day.
	if endMin <= startMin {
		http.Error(w, "end_time must be after start_time", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	win, deactivated, err := h.repo.UpsertWindow(ctx, tx, storage.Window{
		CompanyID:  companyID,
		LocationID: req.LocationID,
		StaffID:    req.StaffID,
		Weekday:    req.Weekday,
		StartTime:  strings.TrimSpace(req.StartTime),
		EndTime:    strings.TrimSpace(req.EndTime),
	})
	if err != nil {
		http.Error(w, "failed to upsert availability window", http.StatusInternalServerError)
		return
	}
	for _, d := range deactivated {
		if err := h.insertWindowEvent(ctx, tx, d); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
	}
	if err := h.insertWindowEvent(ctx, tx, win); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": win.ID})
}

func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}
	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))
	if staffID == "" {
		http.Error(w, "staff_id is required", http.StatusBadRequest)
		return
	}
	windows, err := h.repo.ListWindows(r.Context(), companyID, staffID)
	if err != nil {
		http.Error(w, "failed to list availability windows", http.StatusInternalServerError)
		return
	}
	items := make([]map[string]any, 0, len(windows))
	for _, win := range windows {
		items = append(items, map[string]any{
			"id":          win.ID,
			"location_id": win.LocationID,
			"staff_id":    win.StaffID,
			"weekday":     win.Weekday,
			"start_time":  win.StartTime,
			"end_time":    win.EndTime,
			"active":      win.Active,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) DeactivateWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !requireManager(w, r) {
		return
	}
	companyID := companyIDFromHeader(r)
	if companyID == "" {
		http.Error(w, "missing X-Company-Id", http.StatusBadRequest)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	win, found, err := h.repo.DeactivateWindow(ctx, tx, companyID, id)
	if err != nil {
		http.Error(w, "failed to deactivate availability window", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "availability window not found", http.StatusNotFound)
		return
	}
	if err := h.insertWindowEvent(ctx, tx, win); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) insertServiceEvent(ctx context.Context, tx pgx.Tx, svc storage.Service) error {
	payload, err := json.Marshal(map[string]any{
		"service_id":       svc.ID,
		"company_id":       svc.CompanyID,
		"name":             svc.Name,
		"duration_minutes": svc.DurationMins,
		"price":            svc.Price,
		"available":        svc.Available,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "service",
		AggregateID:   svc.ID,
		EventType:     "directory.service.upserted.v1",
		Payload:       payload,
	})
}

func (h *Handler) insertWindowEvent(ctx context.Context, tx pgx.Tx, win storage.Window) error {
	payload, err := json.Marshal(map[string]any{
		"window_id":   win.ID,
		"company_id":  win.CompanyID,
		"location_id": win.LocationID,
		"staff_id":    win.StaffID,
		"weekday":     win.Weekday,
		"start_time":  win.StartTime,
		"end_time":    win.EndTime,
		"active":      win.Active,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "availability_window",
		AggregateID:   win.ID,
		EventType:     "directory.availability.upserted.v1",
		Payload:       payload,
	})
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
