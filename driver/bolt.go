package driver

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"gofalre.io/storefront/config"
)

// OpenBolt opens the local snapshot file. Only one process may hold it at a
// time; a second opener waits up to BoltTimeout and then fails.
func OpenBolt(cfg config.StorageConfig, logger *zap.Logger) (*bolt.DB, error) {
	db, err := bolt.Open(cfg.BoltPath, 0o600, &bolt.Options{Timeout: cfg.BoltTimeout})
	if err != nil {
		logger.Error("Bolt open error", zap.String("path", cfg.BoltPath), zap.Error(err))
		return nil, fmt.Errorf("failed to open %s: %w", cfg.BoltPath, err)
	}
	return db, nil
}
