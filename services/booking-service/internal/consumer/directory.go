package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jp-osorio/citabook/services/booking-service/internal/storage"
	"github.com/segmentio/kafka-go"
)

// Payloads published by directory-service. Upserts carry the full current
// row, so replaying the topic rebuilds the cache from scratch.
type serviceUpserted struct {
	ServiceID       string `json:"service_id"`
	CompanyID       string `json:"company_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Price           string `json:"price"`
	Available       bool   `json:"available"`
}

type availabilityUpserted struct {
	WindowID   string `json:"window_id"`
	CompanyID  string `json:"company_id"`
	LocationID string `json:"location_id"`
	StaffID    string `json:"staff_id"`
	Weekday    int    `json:"weekday"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Active     bool   `json:"active"`
}

// ServiceUpsertedHandler applies directory.service.upserted.v1 to the cache.
func ServiceUpsertedHandler(cache *storage.DirectoryCache) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt serviceUpserted
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return fmt.Errorf("decode service upserted: %w", err)
		}
		if evt.ServiceID == "" {
			return fmt.Errorf("service upserted event missing service_id")
		}
		return cache.UpsertService(ctx, storage.CachedService{
			ID:              evt.ServiceID,
			CompanyID:       evt.CompanyID,
			Name:            evt.Name,
			DurationMinutes: evt.DurationMinutes,
			Price:           evt.Price,
			Available:       evt.Available,
		})
	}
}

// AvailabilityUpsertedHandler applies directory.availability.upserted.v1 to
// the cache. Deactivations arrive as upserts with active=false.
func AvailabilityUpsertedHandler(cache *storage.DirectoryCache) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt availabilityUpserted
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return fmt.Errorf("decode availability upserted: %w", err)
		}
		if evt.WindowID == "" {
			return fmt.Errorf("availability upserted event missing window_id")
		}
		return cache.UpsertWindow(ctx, storage.CachedWindow{
			ID:         evt.WindowID,
			CompanyID:  evt.CompanyID,
			LocationID: evt.LocationID,
			StaffID:    evt.StaffID,
			Weekday:    evt.Weekday,
			StartTime:  evt.StartTime,
			EndTime:    evt.EndTime,
			Active:     evt.Active,
		})
	}
}
