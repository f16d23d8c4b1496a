package cart

import "errors"

var (
	// ErrInvalidProduct means the caller passed a product without an id or
	// with a price that is negative or not a number.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrInvalidQuantity means an explicit add quantity below 1.
	ErrInvalidQuantity = errors.New("invalid quantity")
)
