package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gofalre.io/storefront/catalog"
)

var errOutOfStock = errors.New("product is out of stock")

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCart(cmd, c)
		},
	}

	cmd.AddCommand(
		newCartAddCmd(c),
		newCartRemoveCmd(c),
		newCartUpdateCmd(c),
		newCartClearCmd(c),
	)
	return cmd
}

func newCartAddCmd(c *cli) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			product, err := c.app.Catalog.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if product.Stock <= 0 {
				return fmt.Errorf("%w: %s", errOutOfStock, product.Name)
			}
			if err = c.app.Cart.AddToCart(cmd.Context(), *product, quantity); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s added to cart! (%d items)\n", product.Name, c.app.Cart.Count())
			return nil
		},
	}

	cmd.Flags().IntVarP(&quantity, "qty", "q", 1, "Quantity to add")
	return cmd
}

func newCartRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			c.app.Cart.RemoveFromCart(cmd.Context(), id)
			return printCart(cmd, c)
		},
	}
}

func newCartUpdateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a product; 0 or less removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			// 跟輸入框一樣，無法解析的數量視為 0
			c.app.Cart.UpdateQuantityInput(cmd.Context(), id, args[1])
			return printCart(cmd, c)
		},
	}
}

func newCartClearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.app.Cart.ClearCart(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared")
			return nil
		},
	}
}

func parseProductID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid product id %q", raw)
	}
	return id, nil
}

func printCart(cmd *cobra.Command, c *cli) error {
	out := cmd.OutOrStdout()
	items := c.app.Cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "Your cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			item.ID, item.Name,
			catalog.FormatPrice(catalog.DefaultCurrency, item.Price),
			item.Quantity,
			catalog.FormatPrice(catalog.DefaultCurrency, item.Subtotal()))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nItems: %d\nShipping: FREE\nTotal: %s\n",
		c.app.Cart.Count(), catalog.FormatPrice(catalog.DefaultCurrency, c.app.Cart.Total()))
	return nil
}
