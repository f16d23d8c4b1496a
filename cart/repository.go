package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/storage"
)

// SnapshotKey is the storage key holding the serialized cart.
const SnapshotKey = "cart"

var _ Repository = (*repository)(nil)

type Repository interface {
	Load(ctx context.Context) ([]models.CartItem, error)
	Save(ctx context.Context, items []models.CartItem) error
}

type repository struct {
	store  storage.Store
	logger *zap.Logger
}

func NewRepository(store storage.Store, logger *zap.Logger) Repository {
	return &repository{
		store:  store,
		logger: logger,
	}
}

func (r *repository) Load(ctx context.Context) ([]models.CartItem, error) {
	raw, err := r.store.Get(ctx, SnapshotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to read cart snapshot", zap.Error(err))
		return nil, err
	}

	var items []models.CartItem
	if err = json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("malformed cart snapshot: %w", err)
	}

	return items, nil
}

func (r *repository) Save(ctx context.Context, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		r.logger.Error("Failed to encode cart snapshot", zap.Error(err))
		return err
	}

	return r.store.Set(ctx, SnapshotKey, raw)
}
