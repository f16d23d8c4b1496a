package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/storage"
)

// SnapshotKey is the storage key holding the signed-in user.
const SnapshotKey = "user"

var _ Repository = (*repository)(nil)

type Repository interface {
	Load(ctx context.Context) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context) error
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

func (r *repository) Load(ctx context.Context) (*models.User, error) {
	raw, err := r.store.Get(ctx, SnapshotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to read user snapshot", zap.Error(err))
		return nil, err
	}

	var user *models.User
	if err = json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("malformed user snapshot: %w", err)
	}

	return user, nil
}

func (r *repository) Save(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		r.logger.Error("Failed to encode user snapshot", zap.Error(err))
		return err
	}

	return r.store.Set(ctx, SnapshotKey, raw)
}

func (r *repository) Delete(ctx context.Context) error {
	return r.store.Delete(ctx, SnapshotKey)
}
