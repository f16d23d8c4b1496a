package driver

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gofalre.io/storefront/config"
)

// DefaultSyncSubject carries cart snapshots between storefront processes.
const DefaultSyncSubject = "storefront.cart.snapshot"

const (
	natsMaxReconnects = 10
	natsReconnectWait = 2 * time.Second
)

// ConnectNATS connects to the NATS server used for cart snapshot sync.
func ConnectNATS(cfg config.SyncConfig, logger *zap.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("storefront"),
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		logger.Error("NATS connection error", zap.String("url", cfg.NATSURL), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}
