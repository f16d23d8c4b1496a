package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gofalre.io/storefront/cart"
	"gofalre.io/storefront/models"
)

// Conn is the part of *nats.Conn the snapshot sync uses.
type Conn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

var _ Conn = (*nats.Conn)(nil)

// EventManager mirrors local cart changes onto a NATS subject and feeds
// snapshots from other processes into a worker pool.
type EventManager struct {
	conn    Conn
	subject string
	origin  string
	sub     *nats.Subscription
	now     func() time.Time
	logger  *zap.Logger
}

func NewEventManager(conn Conn, subject, origin string, logger *zap.Logger) *EventManager {
	return &EventManager{
		conn:    conn,
		subject: subject,
		origin:  origin,
		now:     time.Now,
		logger:  logger,
	}
}

// PublishChange has the shape of a cart.Observer. Changes that arrived from
// another process are not published again.
func (em *EventManager) PublishChange(change cart.Change) {
	if change.Remote {
		return
	}

	event := models.CartSnapshotEvent{
		ID:        uuid.NewString(),
		Origin:    em.origin,
		Revision:  change.Revision,
		Items:     change.Items,
		CreatedAt: em.now(),
	}
	if err := em.publish(&event); err != nil {
		// 同步失敗不影響本地購物車
		em.logger.Warn("Failed to publish cart snapshot", zap.String("event_id", event.ID), zap.Error(err))
	}
}

func (em *EventManager) publish(event *models.CartSnapshotEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err = em.conn.Publish(em.subject, data); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

func (em *EventManager) SubscribeToSnapshots(wp *WorkerPool) error {
	sub, err := em.conn.Subscribe(em.subject, func(msg *nats.Msg) {
		em.handleMessage(msg, wp)
	})
	if err != nil {
		em.logger.Error("Failed to subscribe to cart snapshots", zap.String("subject", em.subject), zap.Error(err))
		return fmt.Errorf("failed to subscribe to %s: %w", em.subject, err)
	}
	em.sub = sub
	return nil
}

func (em *EventManager) handleMessage(msg *nats.Msg, wp *WorkerPool) {
	var event models.CartSnapshotEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		em.logger.Warn("Failed to unmarshal cart snapshot", zap.Error(err))
		return
	}
	if event.Origin == em.origin {
		return
	}
	if event.Revision <= 0 {
		em.logger.Warn("Cart snapshot without revision", zap.String("event_id", event.ID))
		return
	}

	wp.Submit(context.Background(), &event)
}

func (em *EventManager) Close() error {
	if em.sub == nil {
		return nil
	}
	err := em.sub.Unsubscribe()
	em.sub = nil
	if err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}
