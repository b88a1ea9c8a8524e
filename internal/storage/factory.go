package storage

import (
	"context"
	"fmt"

	"github.com/dgellow/shop-admin/internal/config"
)

// New creates the login store selected by the storage configuration
func New(ctx context.Context, cfg config.StorageConfig) (LoginStore, error) {
	switch cfg.Kind {
	case config.StorageKindMemory, "":
		return NewMemoryStorage(), nil
	case config.StorageKindFirestore:
		collection := cfg.FirestoreCollection
		if collection == "" {
			collection = config.DefaultFirestoreCollection
		}
		return NewFirestoreStorage(ctx, cfg.GCPProject, cfg.FirestoreDatabase, collection)
	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.Kind)
	}
}
