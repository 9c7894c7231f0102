package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/almirah-shop/storefront/internal/cart"
	"github.com/almirah-shop/storefront/internal/checkout"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/spf13/cobra"
)

var (
	addQty   int
	addSize  string
	addColor string

	checkoutAddress int64
	checkoutConfirm bool
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := app.Session.RequireRole(types.RoleCustomer); err != nil {
			return err
		}
		view, err := app.Cart.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		renderCart(cmd.OutOrStdout(), view)
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: cartMutation(func(cmd *cobra.Command, id int64) (cart.View, error) {
		return app.Cart.Add(cmd.Context(), types.AddToCartRequest{
			ProductID: id,
			Quantity:  addQty,
			Size:      strPtr(addSize),
			Color:     strPtr(addColor),
		})
	}),
}

var cartIncCmd = &cobra.Command{
	Use:   "inc <product-id>",
	Short: "Increase a line by one",
	Args:  cobra.ExactArgs(1),
	RunE: cartMutation(func(cmd *cobra.Command, id int64) (cart.View, error) {
		return app.Cart.Increase(cmd.Context(), id)
	}),
}

var cartDecCmd = &cobra.Command{
	Use:   "dec <product-id>",
	Short: "Decrease a line by one; the last unit removes it",
	Args:  cobra.ExactArgs(1),
	RunE: cartMutation(func(cmd *cobra.Command, id int64) (cart.View, error) {
		return app.Cart.Decrease(cmd.Context(), id)
	}),
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set a line's quantity; below one removes it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%q is not a quantity", args[1])
		}
		return cartMutation(func(cmd *cobra.Command, id int64) (cart.View, error) {
			return app.Cart.SetQuantity(cmd.Context(), id, qty)
		})(cmd, args)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a line",
	Args:  cobra.ExactArgs(1),
	RunE: cartMutation(func(cmd *cobra.Command, id int64) (cart.View, error) {
		return app.Cart.Remove(cmd.Context(), id)
	}),
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := app.Session.RequireRole(types.RoleCustomer); err != nil {
			return err
		}
		view, err := app.Cart.Clear(cmd.Context())
		if err != nil {
			return err
		}
		renderCart(cmd.OutOrStdout(), view)
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Review the cart and place an order",
	Long: `Without --yes, checkout prints the order summary and the shipping address
it would use. With --yes, it places the order.`,
	RunE: runCheckout,
}

func init() {
	cartAddCmd.Flags().IntVarP(&addQty, "qty", "q", 1, "quantity")
	cartAddCmd.Flags().StringVar(&addSize, "size", "", "size")
	cartAddCmd.Flags().StringVar(&addColor, "color", "", "color")
	cartCmd.AddCommand(cartAddCmd, cartIncCmd, cartDecCmd, cartSetCmd, cartRemoveCmd, cartClearCmd)

	checkoutCmd.Flags().Int64Var(&checkoutAddress, "address", 0, "address id (default address when omitted)")
	checkoutCmd.Flags().BoolVarP(&checkoutConfirm, "yes", "y", false, "place the order")
	rootCmd.AddCommand(cartCmd, checkoutCmd)
}

// cartMutation parses the product id, applies fn and renders the refetched cart.
func cartMutation(fn func(cmd *cobra.Command, id int64) (cart.View, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := app.Session.RequireRole(types.RoleCustomer); err != nil {
			return err
		}
		id, err := idArg(args, 0)
		if err != nil {
			return err
		}
		view, err := fn(cmd, id)
		if err != nil {
			return err
		}
		renderCart(cmd.OutOrStdout(), view)
		return nil
	}
}

func renderCart(out io.Writer, v cart.View) {
	if v.Empty() {
		fmt.Fprintln(out, mutedStyle.Render("Your cart is empty"))
		return
	}
	rows := make([][]string, 0, len(v.Lines))
	for _, l := range v.Lines {
		name := fmt.Sprintf("product %d (unavailable)", l.ProductID)
		if l.Available {
			name = l.Product.Name
		}
		variant := optional(l.Size)
		if c := optional(l.Color); c != "" {
			if variant != "" {
				variant += " / "
			}
			variant += c
		}
		rows = append(rows, []string{fmt.Sprint(l.ProductID), name, variant, fmt.Sprint(l.Quantity), money(l.UnitPrice), money(l.LineTotal)})
	}
	renderTable(out, []string{"ID", "Item", "Variant", "Qty", "Price", "Total"}, rows)

	taxLabel := "tax (" + v.TaxRate.Shift(2).String() + "%)"
	if v.Estimated {
		taxLabel += " est."
	}
	renderTable(out, []string{"", ""}, [][]string{
		{"items", fmt.Sprint(v.Count())},
		{"subtotal", money(v.Subtotal)},
		{taxLabel, money(v.Tax)},
		{"total", money(v.Total)},
	})
}

func runCheckout(cmd *cobra.Command, args []string) error {
	if _, err := app.Session.RequireRole(types.RoleCustomer); err != nil {
		return err
	}
	var preferred *int64
	if checkoutAddress > 0 {
		preferred = &checkoutAddress
	}
	out := cmd.OutOrStdout()

	if !checkoutConfirm {
		plan, err := app.Checkout.Prepare(cmd.Context(), preferred)
		if err != nil {
			return err
		}
		renderCart(out, plan.Cart)
		if plan.NeedsAddress() || plan.Selected == nil {
			fmt.Fprintln(out, errorStyle.Render("Add a shipping address first: almirah addresses add ..."))
			return nil
		}
		heading(out, "Ship to")
		fmt.Fprintln(out, formatAddress(*plan.Selected))
		fmt.Fprintln(out, mutedStyle.Render("Run again with --yes to place the order."))
		return nil
	}

	order, err := app.Checkout.Place(cmd.Context(), preferred)
	var addrErr *checkout.AddressRequiredError
	switch {
	case errors.As(err, &addrErr):
		fmt.Fprintln(out, errorStyle.Render(addrErr.Error()))
		fmt.Fprintln(out, mutedStyle.Render("Add one with `almirah addresses add`, then run `almirah "+strings.TrimPrefix(addrErr.ReturnTo, "/")+" --yes`."))
		return nil
	case err != nil:
		return err
	}
	success(out, "Order %s placed, total %s", order.OrderNumber, moneyFloat(order.TotalPrice))
	return nil
}
