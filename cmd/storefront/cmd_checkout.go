package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"gofalre.io/storefront/catalog"
	"gofalre.io/storefront/checkout"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

func newCheckoutCmd(c *cli) *cobra.Command {
	var (
		shipping models.ShippingAddress
		payment  string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the cart",
		Long: `Runs the three checkout steps (shipping address, payment method, review)
and places the order. The cart is emptied once the order is placed.

Example:
  storefront checkout --name "Ravi Kumar" --phone 9876543210 --address "12 Market Road" \
    --city Nashik --state Maharashtra --pincode 422001 --payment cod`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if c.app.Cart.Len() == 0 {
				fmt.Fprintln(out, "Your cart is empty")
				return checkout.ErrEmptyCart
			}

			session := c.app.Checkout.NewSession()
			session.SetShipping(shipping)
			if err := session.Next(); err != nil {
				printValidation(cmd, err)
				return err
			}
			if err := session.SetPaymentMethod(enum.PaymentMethod(payment)); err != nil {
				return err
			}
			if err := session.Next(); err != nil {
				return err
			}

			order, err := c.app.Checkout.PlaceOrder(cmd.Context(), session)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Order placed successfully!\nOrder ID: %s\n", order.ID)
			fmt.Fprintf(out, "Status: %s\nPayment: %s\nItems: %d\nTotal: %s\n",
				order.Status.Label(), order.PaymentMethod.Label(), order.ItemCount,
				catalog.FormatPrice(order.Currency, order.Total))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&shipping.FullName, "name", "", "Full name")
	flags.StringVar(&shipping.Phone, "phone", "", "10 digit phone number")
	flags.StringVar(&shipping.Address, "address", "", "Street address")
	flags.StringVar(&shipping.City, "city", "", "City")
	flags.StringVar(&shipping.State, "state", "", "State")
	flags.StringVar(&shipping.Pincode, "pincode", "", "6 digit pincode")
	flags.StringVar(&payment, "payment", string(enum.PaymentMethodUPI), "Payment method: upi, card or cod")
	return cmd
}

func printValidation(cmd *cobra.Command, err error) {
	var verr *checkout.ValidationError
	if !errors.As(err, &verr) {
		return
	}

	fields := make([]string, 0, len(verr.Fields))
	for field := range verr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", field, verr.Fields[field])
	}
}
