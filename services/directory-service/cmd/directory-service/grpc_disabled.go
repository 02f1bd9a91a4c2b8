//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/jp-osorio/citabook/libs/db"
	"github.com/jp-osorio/citabook/services/directory-service/internal/storage"
)

func startGrpcServer(_ context.Context, _ *slog.Logger, _ *db.Pool, _ *storage.Repository) error {
	return nil
}
