package main

import (
	"fmt"
	"io"

	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/spf13/cobra"
)

var (
	noteFilter string
	noteType   string
	noteUnread bool
	noteSkip   int
	noteLimit  int
	dashLimit  int
	markUnread bool
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Seller and admin dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ov, err := app.Dashboard.Overview(cmd.Context(), dashLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		heading(out, fmt.Sprintf("%s dashboard", ov.Role))
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d unread", ov.Unread)))
		renderNotifications(out, ov.Notifications)
		return nil
	},
}

var sellersCmd = &cobra.Command{
	Use:   "sellers",
	Short: "List registered sellers (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		sellers, err := app.Dashboard.Sellers(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(sellers))
		for _, s := range sellers {
			approved := "pending"
			if s.IsApproved {
				approved = "approved"
			}
			rows = append(rows, []string{fmt.Sprint(s.ID), s.Username, s.BusinessName, s.Email, approved})
		}
		renderTable(cmd.OutOrStdout(), []string{"ID", "Username", "Business", "Email", "Status"}, rows)
		return nil
	},
}

var sellerProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List your listed products (seller)",
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := app.Dashboard.Products(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(products))
		for _, p := range products {
			rows = append(rows, []string{fmt.Sprint(p.ID), p.Name, priceLabel(p), stock(p)})
		}
		renderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Price", "Stock"}, rows)
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notes"},
	Short:   "List notifications",
	Long: `List dashboard notifications, newest first. Sellers filter with --filter
(order, return, approval, OOS, low_stock); admins with --type and --unread.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := client.NotificationQuery{
			Skip:       noteSkip,
			Limit:      noteLimit,
			Filter:     noteFilter,
			TypeFilter: noteType,
		}
		if noteUnread {
			unread := false
			q.IsRead = &unread
		}
		notes, err := app.Dashboard.Notifications(cmd.Context(), q)
		if err != nil {
			return err
		}
		renderNotifications(cmd.OutOrStdout(), notes)
		return nil
	},
}

var notificationReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args, 0)
		if err != nil {
			return err
		}
		note, err := app.Dashboard.MarkRead(cmd.Context(), id, !markUnread)
		if err != nil {
			return err
		}
		renderNotifications(cmd.OutOrStdout(), []types.Notification{*note})
		return nil
	},
}

var notificationDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args, 0)
		if err != nil {
			return err
		}
		if err := app.Dashboard.Delete(cmd.Context(), id); err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Notification %d deleted", id)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().IntVar(&dashLimit, "limit", 10, "notifications to show")

	f := notificationsCmd.Flags()
	f.StringVar(&noteFilter, "filter", "", "seller filter")
	f.StringVar(&noteType, "type", "", "admin type filter")
	f.BoolVar(&noteUnread, "unread", false, "unread only (admin)")
	f.IntVar(&noteSkip, "skip", 0, "notifications to skip")
	f.IntVar(&noteLimit, "limit", 20, "page size")
	notificationReadCmd.Flags().BoolVar(&markUnread, "unread", false, "mark unread instead")
	notificationsCmd.AddCommand(notificationReadCmd, notificationDeleteCmd)

	dashboardCmd.AddCommand(sellersCmd, sellerProductsCmd, notificationsCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func renderNotifications(out io.Writer, notes []types.Notification) {
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		state := "unread"
		if n.IsRead {
			state = "read"
		}
		prio := string(n.Priority)
		if n.Priority == types.PriorityHigh {
			prio = errorStyle.Render(prio)
		}
		rows = append(rows, []string{
			fmt.Sprint(n.ID), n.Type, prio, n.Message, n.CreatedAt.Format("02 Jan 15:04"), state,
		})
	}
	renderTable(out, []string{"ID", "Type", "Priority", "Message", "At", ""}, rows)
}
