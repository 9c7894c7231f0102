package main

import (
	"fmt"
	"io"

	"github.com/almirah-shop/storefront/internal/orders"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/spf13/cobra"
)

var returnReason string

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := app.Session.RequireRole(types.RoleCustomer); err != nil {
			return err
		}
		list, err := app.Orders.List(cmd.Context())
		if err != nil {
			return err
		}
		renderOrders(cmd.OutOrStdout(), list)
		return nil
	},
}

var orderCmd = &cobra.Command{
	Use:   "order <id>",
	Short: "Show one order with its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := app.Session.RequireRole(types.RoleCustomer); err != nil {
			return err
		}
		id, err := idArg(args, 0)
		if err != nil {
			return err
		}
		o, err := app.Orders.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		heading(out, fmt.Sprintf("Order %s", orderLabel(*o)))
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s, %s, total %s",
			o.CreatedAt.Format("02 Jan 2006"), o.Status, moneyFloat(o.TotalPrice))))
		renderItems(out, o.Items)
		return nil
	},
}

var returnsCmd = &cobra.Command{
	Use:   "returns",
	Short: "List your return requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := app.Session.RequireRole(types.RoleCustomer); err != nil {
			return err
		}
		rets, err := app.Orders.Returns(cmd.Context())
		if err != nil {
			return err
		}
		renderReturns(cmd.OutOrStdout(), rets)
		return nil
	},
}

var returnRequestCmd = &cobra.Command{
	Use:   "request <order-item-id>",
	Short: "Request a return for a delivered item",
	Args:  cobra.ExactArgs(1),
	RunE: returnChange(func(cmd *cobra.Command, id int64) (*orders.History, error) {
		return app.Orders.RequestReturn(cmd.Context(), id, returnReason)
	}),
}

var returnCancelCmd = &cobra.Command{
	Use:   "cancel <order-item-id>",
	Short: "Withdraw a requested return",
	Args:  cobra.ExactArgs(1),
	RunE: returnChange(func(cmd *cobra.Command, id int64) (*orders.History, error) {
		return app.Orders.CancelReturn(cmd.Context(), id)
	}),
}

func init() {
	returnRequestCmd.Flags().StringVarP(&returnReason, "reason", "r", "", "why the item is going back")
	_ = returnRequestCmd.MarkFlagRequired("reason")
	returnsCmd.AddCommand(returnRequestCmd, returnCancelCmd)
	rootCmd.AddCommand(ordersCmd, orderCmd, returnsCmd)
}

func returnChange(fn func(cmd *cobra.Command, id int64) (*orders.History, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := app.Session.RequireRole(types.RoleCustomer); err != nil {
			return err
		}
		id, err := idArg(args, 0)
		if err != nil {
			return err
		}
		h, err := fn(cmd, id)
		if err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Return for item %d updated", id)
		renderReturns(cmd.OutOrStdout(), h.Returns)
		return nil
	}
}

func orderLabel(o types.Order) string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return fmt.Sprintf("#%d", o.ID)
}

func renderOrders(out io.Writer, list []types.Order) {
	rows := make([][]string, 0, len(list))
	for _, o := range list {
		rows = append(rows, []string{
			fmt.Sprint(o.ID), orderLabel(o), o.CreatedAt.Format("02 Jan 2006"),
			string(o.Status), fmt.Sprint(len(o.Items)), moneyFloat(o.TotalPrice),
		})
	}
	renderTable(out, []string{"ID", "Order", "Placed", "Status", "Items", "Total"}, rows)
}

func renderItems(out io.Writer, items []types.OrderItem) {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		action := ""
		switch {
		case orders.Returnable(it):
			action = "returnable"
		case orders.Cancellable(it):
			action = "return cancellable"
		}
		rows = append(rows, []string{
			fmt.Sprint(it.ID), fmt.Sprint(it.ProductID), fmt.Sprint(it.Quantity),
			moneyFloat(it.Price), string(it.Status), it.ReturnStatus.String(), action,
		})
	}
	renderTable(out, []string{"Item", "Product", "Qty", "Price", "Status", "Return", ""}, rows)
}

func renderReturns(out io.Writer, rets []types.Return) {
	rows := make([][]string, 0, len(rets))
	for _, r := range rets {
		rows = append(rows, []string{
			fmt.Sprint(r.OrderItemID), fmt.Sprint(r.OrderID), fmt.Sprint(r.ProductID),
			r.Status.String(), r.Reason, r.CreatedAt.Format("02 Jan 2006"),
		})
	}
	renderTable(out, []string{"Item", "Order", "Product", "Status", "Reason", "Requested"}, rows)
}
