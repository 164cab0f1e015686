package services

import (
	"context"
	"fmt"

	"github.com/ytakahashi/tasks/internal/config"
)

// Open returns the store selected by cfg.Store.
func Open(ctx context.Context, cfg *config.Config) (TaskStore, error) {
	switch cfg.Store {
	case config.StoreSQLite, config.StoreMySQL:
		return NewGormStore(cfg.Store, cfg.DSN)
	case config.StoreFirestore:
		return NewFirestoreStore(ctx, cfg.ProjectID)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
