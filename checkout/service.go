package checkout

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"gofalre.io/storefront/catalog"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

// Cart is what checkout needs from the cart store. Drain must empty the cart
// and return its lines in one step.
type Cart interface {
	Drain(ctx context.Context) []models.CartItem
}

// OrderObserver is told about every placed order.
type OrderObserver func(order *models.Order)

type Service struct {
	cart     Cart
	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger

	mu        sync.Mutex
	observers []OrderObserver
}

func NewService(cart Cart, logger *zap.Logger) *Service {
	return &Service{
		cart:     cart,
		validate: newValidator(),
		now:      time.Now,
		logger:   logger,
	}
}

// NewSession starts at the shipping step with UPI preselected.
func (s *Service) NewSession() *Session {
	return &Session{
		step:     StepShipping,
		payment:  enum.PaymentMethodUPI,
		validate: s.validate,
	}
}

// ValidateShipping checks addr without a session.
func (s *Service) ValidateShipping(addr models.ShippingAddress) (models.ShippingAddress, error) {
	return validateShipping(s.validate, addr)
}

func (s *Service) OnOrderPlaced(observer OrderObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, observer)
}

// PlaceOrder turns the cart into an order, emptying the cart in the same
// step. Nothing is sent anywhere; the order id is derived from the clock.
func (s *Service) PlaceOrder(ctx context.Context, session *Session) (*models.Order, error) {
	if session.Step() != StepReview {
		return nil, ErrIncompleteCheckout
	}

	shipping, err := validateShipping(s.validate, session.Shipping())
	if err != nil {
		return nil, err
	}
	if !session.PaymentMethod().Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, session.PaymentMethod())
	}

	items := s.cart.Drain(ctx)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var total float64
	var count int
	for _, item := range items {
		total += item.Subtotal()
		if item.Quantity > math.MaxInt-count {
			count = math.MaxInt
			continue
		}
		count += item.Quantity
	}

	placedAt := s.now()
	order := &models.Order{
		ID:              fmt.Sprintf("ORD%d", placedAt.UnixMilli()),
		Status:          enum.OrderStatusPlaced,
		Currency:        catalog.DefaultCurrency,
		Total:           total,
		ItemCount:       count,
		PaymentMethod:   session.PaymentMethod(),
		ShippingAddress: shipping,
		Items:           items,
		PlacedAt:        placedAt,
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.Float64("total", order.Total),
		zap.Int("items", order.ItemCount),
		zap.String("payment_method", string(order.PaymentMethod)))

	s.mu.Lock()
	observers := append([]OrderObserver(nil), s.observers...)
	s.mu.Unlock()
	for _, observer := range observers {
		observer(order)
	}

	return order, nil
}
