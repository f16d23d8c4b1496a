package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gofalre.io/storefront/catalog"
	"gofalre.io/storefront/models"
)

// stock above this is shown as plentiful
const lowStockThreshold = 20

func newProductsCmd(c *cli) *cobra.Command {
	var filter catalog.Filter

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally by category or search text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := c.app.Catalog.Filter(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No products found")
				return nil
			}
			return printProducts(cmd, products)
		},
	}

	cmd.Flags().StringVarP(&filter.Category, "category", "c", catalog.CategoryAll, "Category id")
	cmd.Flags().StringVarP(&filter.Query, "search", "s", "", "Match name or description")
	return cmd
}

func printProducts(cmd *cobra.Command, products []*models.Product) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s/%s\t%.1f\t%s\n",
			p.ID, p.Name, p.Category,
			catalog.FormatPrice(catalog.DefaultCurrency, p.Price), p.Unit,
			p.Rating, stockLabel(p.Stock))
	}
	return w.Flush()
}

func stockLabel(stock int) string {
	switch {
	case stock <= 0:
		return "out of stock"
	case stock > lowStockThreshold:
		return fmt.Sprintf("%d in stock", stock)
	default:
		return fmt.Sprintf("%d in stock (low)", stock)
	}
}

func newCategoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := c.app.Catalog.Categories(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, category := range categories {
				fmt.Fprintf(w, "%s\t%s\n", category.ID, category.Name)
			}
			return w.Flush()
		},
	}
}
