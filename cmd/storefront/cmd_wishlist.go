package main

import (
	"fmt"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/spf13/cobra"
)

var wishlistCmd = &cobra.Command{
	Use:     "wishlist",
	Aliases: []string{"wl"},
	Short:   "Show the wishlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := app.Session.RequireRole(types.RoleCustomer); err != nil {
			return err
		}
		items, err := app.Wishlist.List(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			name, price := "", ""
			if it.Product != nil {
				name, price = it.Product.Name, priceLabel(*it.Product)
			}
			rows = append(rows, []string{fmt.Sprint(it.ProductID), name, price})
		}
		renderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Price"}, rows)
		return nil
	},
}

var wishlistToggleCmd = &cobra.Command{
	Use:   "toggle <product-id>",
	Short: "Add or remove a product",
	Args:  cobra.ExactArgs(1),
	RunE: wishlistChange(func(cmd *cobra.Command, id int64) (bool, error) {
		return app.Wishlist.Toggle(cmd.Context(), id)
	}),
}

var wishlistAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product",
	Args:  cobra.ExactArgs(1),
	RunE: wishlistChange(func(cmd *cobra.Command, id int64) (bool, error) {
		return app.Wishlist.Add(cmd.Context(), id)
	}),
}

var wishlistRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product",
	Args:  cobra.ExactArgs(1),
	RunE: wishlistChange(func(cmd *cobra.Command, id int64) (bool, error) {
		return app.Wishlist.Remove(cmd.Context(), id)
	}),
}

var wishlistCheckCmd = &cobra.Command{
	Use:   "check <product-id>",
	Short: "Report whether a product is in the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: wishlistChange(func(cmd *cobra.Command, id int64) (bool, error) {
		return app.Wishlist.Contains(cmd.Context(), id)
	}),
}

func init() {
	wishlistCmd.AddCommand(wishlistToggleCmd, wishlistAddCmd, wishlistRemoveCmd, wishlistCheckCmd)
	rootCmd.AddCommand(wishlistCmd)
}

// wishlistChange prints the membership the server reports after fn.
func wishlistChange(fn func(cmd *cobra.Command, id int64) (bool, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := app.Session.RequireRole(types.RoleCustomer); err != nil {
			return err
		}
		id, err := idArg(args, 0)
		if err != nil {
			return err
		}
		in, err := fn(cmd, id)
		if err != nil {
			return err
		}
		if in {
			success(cmd.OutOrStdout(), "♥ product %d is in your wishlist", id)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf("♡ product %d is not in your wishlist", id)))
		}
		return nil
	}
}
