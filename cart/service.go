package cart

import (
	"context"

	"gofalre.io/storefront/models"
)

var _ Service = (*Store)(nil)

// Service is the operation set pages use against the cart.
type Service interface {
	AddToCart(ctx context.Context, product models.Product, quantity int) error
	RemoveFromCart(ctx context.Context, id uint64)
	UpdateQuantity(ctx context.Context, id uint64, quantity int)
	UpdateQuantityInput(ctx context.Context, id uint64, raw string)
	ClearCart(ctx context.Context)
	Drain(ctx context.Context) []models.CartItem

	Items() []models.CartItem
	Total() float64
	Count() int
	Len() int

	Subscribe(observer Observer) (unsubscribe func())
}
