package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"gofalre.io/storefront/auth"
	"gofalre.io/storefront/cart"
	"gofalre.io/storefront/catalog"
	"gofalre.io/storefront/checkout"
	"gofalre.io/storefront/config"
	"gofalre.io/storefront/driver"
	"gofalre.io/storefront/metrics"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/storage"
)

const defaultSyncWorkers = 4

type Options struct {
	// Store holds the cart and user snapshots. Required.
	Store storage.Store
	// CatalogPath overrides the built-in catalog.
	CatalogPath string

	// Conn enables cross-process cart sync when set.
	Conn        Conn
	SyncSubject string
	SyncWorkers int

	Registerer prometheus.Registerer
	Logger     *zap.Logger

	closers []func() error
}

// Storefront wires the cart with its collaborators over one snapshot store.
type Storefront struct {
	Cart     *cart.Store
	Auth     *auth.Store
	Catalog  catalog.Repository
	Checkout *checkout.Service
	Metrics  *metrics.Metrics

	// Registry is set by Open.
	Registry *prometheus.Registry

	origin      string
	events      *EventManager
	workers     *WorkerPool
	unsubscribe []func()

	store   storage.Store
	closers []func() error
	logger  *zap.Logger
}

func New(ctx context.Context, opts Options) (*Storefront, error) {
	if opts.Store == nil {
		return nil, errors.New("storefront: snapshot store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	products, err := catalog.NewRepository(opts.CatalogPath, logger)
	if err != nil {
		return nil, err
	}

	authStore, err := auth.NewStore(ctx, auth.NewRepository(opts.Store, logger), logger)
	if err != nil {
		return nil, err
	}

	cartStore := cart.NewStore(ctx, cart.NewRepository(opts.Store, logger), logger)

	s := &Storefront{
		Cart:     cartStore,
		Auth:     authStore,
		Catalog:  products,
		Checkout: checkout.NewService(cartStore, logger),
		Metrics:  metrics.New(opts.Registerer),
		origin:   uuid.NewString(),
		store:    opts.Store,
		closers:  opts.closers,
		logger:   logger,
	}

	s.unsubscribe = append(s.unsubscribe,
		cartStore.Subscribe(s.Metrics.ObserveCart),
		authStore.Subscribe(s.Metrics.ObserveUser),
	)
	s.Checkout.OnOrderPlaced(s.Metrics.ObserveOrder)

	if opts.Conn != nil {
		if err = s.startSync(opts); err != nil {
			_ = s.stop()
			return nil, err
		}
	}

	return s, nil
}

func (s *Storefront) startSync(opts Options) error {
	subject := opts.SyncSubject
	if subject == "" {
		subject = driver.DefaultSyncSubject
	}
	workers := opts.SyncWorkers
	if workers < 1 {
		workers = defaultSyncWorkers
	}

	s.events = NewEventManager(opts.Conn, subject, s.origin, s.logger)
	s.workers = NewWorkerPool(workers, s, s.logger)
	if err := s.events.SubscribeToSnapshots(s.workers); err != nil {
		return err
	}
	s.unsubscribe = append(s.unsubscribe, s.Cart.Subscribe(s.events.PublishChange))

	s.logger.Info("Cart sync started",
		zap.String("subject", subject),
		zap.String("origin", s.origin),
		zap.Int("workers", workers))
	return nil
}

// ProcessSnapshot applies a cart snapshot from another process. Older
// revisions lose to the local cart.
func (s *Storefront) ProcessSnapshot(ctx context.Context, event *models.CartSnapshotEvent) error {
	if event == nil {
		return errors.New("nil snapshot event")
	}
	if !s.Cart.Replace(ctx, event.Items, event.Revision) {
		s.logger.Debug("Stale cart snapshot ignored",
			zap.String("event_id", event.ID),
			zap.Int64("revision", event.Revision),
			zap.Int64("current", s.Cart.Revision()))
	}
	return nil
}

// Origin identifies this process on the sync subject.
func (s *Storefront) Origin() string {
	return s.origin
}

// stop detaches observers and stops sync. It leaves the store open.
func (s *Storefront) stop() error {
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.unsubscribe = nil

	var err error
	if s.events != nil {
		err = s.events.Close()
		s.events = nil
	}
	if s.workers != nil {
		s.workers.Shutdown()
		s.workers = nil
	}
	return err
}

// Close stops sync, then closes connections and the snapshot store.
func (s *Storefront) Close() error {
	errs := []error{s.stop()}
	for _, closer := range s.closers {
		errs = append(errs, closer())
	}
	s.closers = nil
	if s.store != nil {
		errs = append(errs, s.store.Close())
		s.store = nil
	}

	return errors.Join(errs...)
}

// Open builds a Storefront from cfg, connecting the configured storage
// backend and, when sync is enabled, NATS.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storefront, error) {
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	opts := Options{
		Store:       store,
		CatalogPath: cfg.Catalog.Path,
		SyncSubject: cfg.Sync.Subject,
		SyncWorkers: cfg.Sync.Workers,
		Registerer:  reg,
		Logger:      logger,
	}

	if cfg.Sync.Enabled {
		nc, err := driver.ConnectNATS(cfg.Sync, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		opts.Conn = nc
		opts.closers = append(opts.closers, func() error {
			nc.Close()
			return nil
		})
	}

	s, err := New(ctx, opts)
	if err != nil {
		for _, closer := range opts.closers {
			_ = closer()
		}
		_ = store.Close()
		return nil, err
	}
	s.Registry = reg
	return s, nil
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverBolt:
		db, err := driver.OpenBolt(cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		store, err := storage.NewBolt(db, cfg.Storage.BoltBucket, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	case config.StorageDriverRedis:
		client, err := driver.ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return storage.NewRedis(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL, logger), nil
	case config.StorageDriverMemory:
		return storage.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
