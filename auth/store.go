package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"gofalre.io/storefront/models"
)

// ErrMissingCredentials is returned when email or password is blank.
var ErrMissingCredentials = errors.New("email and password are required")

const nodeID = 1

// Observer receives the current user after every login, signup or logout.
// A nil user means signed out.
type Observer func(user *models.User)

type subscription struct {
	id       uint64
	observer Observer
}

// Store keeps the locally signed-in user. There is no credential check: any
// non-blank email and password succeed.
type Store struct {
	// writeMu keeps memory and the snapshot in the same order across writers
	writeMu sync.Mutex

	mu   sync.RWMutex
	user *models.User

	observerMu sync.Mutex
	observers  []subscription
	nextID     uint64

	repo   Repository
	node   *snowflake.Node
	logger *zap.Logger
}

func NewStore(ctx context.Context, repo Repository, logger *zap.Logger) (*Store, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id node: %w", err)
	}

	s := &Store{
		repo:   repo,
		node:   node,
		logger: logger,
	}

	user, err := repo.Load(ctx)
	if err != nil {
		logger.Warn("Failed to restore user, starting signed out", zap.Error(err))
		user = nil
	}
	if user != nil && user.Email == "" {
		user = nil
	}
	s.user = user

	return s, nil
}

func (s *Store) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return models.User{}, ErrMissingCredentials
	}

	user := models.User{
		ID:    s.node.Generate().Int64(),
		Email: email,
		Name:  localPart(email),
	}
	s.setUser(ctx, &user)

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return user, nil
}

// Signup behaves like Login but keeps the given name, falling back to the
// email local part when it is blank.
func (s *Store) Signup(ctx context.Context, name, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return models.User{}, ErrMissingCredentials
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = localPart(email)
	}

	user := models.User{
		ID:    s.node.Generate().Int64(),
		Email: email,
		Name:  name,
	}
	s.setUser(ctx, &user)

	s.logger.Info("User signed up", zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *Store) Logout(ctx context.Context) {
	s.setUser(ctx, nil)
}

func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.user != nil
}

func (s *Store) Subscribe(observer Observer) (unsubscribe func()) {
	s.observerMu.Lock()
	defer s.observerMu.Unlock()

	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subscription{id: id, observer: observer})

	return func() {
		s.observerMu.Lock()
		defer s.observerMu.Unlock()

		s.observers = slices.DeleteFunc(s.observers, func(sub subscription) bool {
			return sub.id == id
		})
	}
}

func (s *Store) setUser(ctx context.Context, user *models.User) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	var err error
	if user == nil {
		err = s.repo.Delete(ctx)
	} else {
		err = s.repo.Save(ctx, user)
	}
	if err != nil {
		s.logger.Warn("Failed to persist user snapshot", zap.Error(err))
	}

	s.observerMu.Lock()
	observers := slices.Clone(s.observers)
	s.observerMu.Unlock()

	for _, sub := range observers {
		if user == nil {
			sub.observer(nil)
			continue
		}
		u := *user
		sub.observer(&u)
	}
}

func localPart(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
