package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrIncompleteCheckout   = errors.New("checkout has not reached the review step")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// ValidationError maps shipping form fields to the message shown next to them.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid shipping address: " + strings.Join(parts, "; ")
}
