package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/almirah-shop/storefront/internal/catalog"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/spf13/cobra"
)

var (
	browseSearch string
	browseGender string
	browsePage   int
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"browse"},
	Short:   "Browse the catalog",
	Long: `List products a page at a time. --search matches names and categories;
--gender is men, women or unisex.`,
	RunE: runProducts,
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show a product with reviews and similar items",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

func init() {
	productsCmd.Flags().StringVarP(&browseSearch, "search", "s", "", "search text")
	productsCmd.Flags().StringVarP(&browseGender, "gender", "g", "", "men, women or unisex")
	productsCmd.Flags().IntVar(&browsePage, "page", 1, "page number")
	rootCmd.AddCommand(productsCmd, productCmd)
}

func runProducts(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b := app.Catalog
	if _, err := b.SetGender(ctx, types.Gender(strings.ToLower(browseGender))); err != nil {
		return err
	}
	if browseSearch != "" {
		if _, err := b.SetSearch(ctx, browseSearch); err != nil {
			return err
		}
	}
	page, err := b.Goto(ctx, browsePage)
	if err != nil {
		return err
	}
	renderPage(cmd.OutOrStdout(), page)
	return nil
}

func renderPage(out io.Writer, page catalog.Page) {
	rows := make([][]string, 0, len(page.Items))
	for _, p := range page.Items {
		rows = append(rows, []string{fmt.Sprint(p.ID), p.Name, string(p.Gender), priceLabel(p), stock(p)})
	}
	renderTable(out, []string{"ID", "Name", "For", "Price", "Stock"}, rows)
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d products", page.Page, max(page.TotalPages, 1), page.Total)))
}

func runProduct(cmd *cobra.Command, args []string) error {
	id, err := idArg(args, 0)
	if err != nil {
		return err
	}
	d, err := app.Catalog.Detail(cmd.Context(), id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	p := *d.Product
	heading(out, p.Name)
	if p.Description != "" {
		fmt.Fprintln(out, p.Description)
	}
	rows := [][]string{
		{"price", priceLabel(p)},
		{"stock", stock(p)},
		{"category", p.Category},
	}
	if len(p.Sizes) > 0 {
		rows = append(rows, []string{"sizes", strings.Join(p.Sizes, ", ")})
	}
	if len(p.Colors) > 0 {
		rows = append(rows, []string{"colors", strings.Join(p.Colors, ", ")})
	}
	renderTable(out, []string{"", ""}, rows)

	if app.Session.Snapshot().Authenticated() {
		if in, err := app.Wishlist.Contains(cmd.Context(), id); err == nil && in {
			fmt.Fprintln(out, okStyle.Render("♥ in your wishlist"))
		}
	}

	heading(out, "Reviews")
	reviews := make([][]string, 0, len(d.Reviews))
	for _, r := range d.Reviews {
		reviews = append(reviews, []string{r.Username, strings.Repeat("★", r.Rating), r.Comment})
	}
	renderTable(out, []string{"By", "Rating", "Comment"}, reviews)

	heading(out, "Similar")
	similar := make([][]string, 0, len(d.Similar))
	for _, s := range d.Similar {
		similar = append(similar, []string{fmt.Sprint(s.ID), s.Name, priceLabel(s)})
	}
	renderTable(out, []string{"ID", "Name", "Price"}, similar)
	return nil
}
