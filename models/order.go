package models

import (
	"time"

	"github.com/stripe/stripe-go/v79"
	"gofalre.io/storefront/models/enum"
)

// Order 代表結帳後產生的訂單
type Order struct {
	ID              string             `json:"id"`
	Status          enum.OrderStatus   `json:"status"`
	Currency        stripe.Currency    `json:"currency"`
	Total           float64            `json:"total"`
	ItemCount       int                `json:"item_count"`
	PaymentMethod   enum.PaymentMethod `json:"payment_method"`
	ShippingAddress ShippingAddress    `json:"shipping_address"`
	Items           []CartItem         `json:"items"`
	PlacedAt        time.Time          `json:"placed_at"`
}

// ShippingAddress 代表收件地址
type ShippingAddress struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"required,phone"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,pincode"`
}
