package main

import (
	"fmt"
	"io"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/spf13/cobra"
)

var (
	profileEmail    string
	profilePhone    string
	profileFullName string

	currentPassword string
	newPassword     string

	addrInput types.AddressInput
	addrTag   string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		p, err := app.Profile.Me(cmd.Context())
		if err != nil {
			return err
		}
		renderProfile(cmd.OutOrStdout(), *p)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change email, phone or full name",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		p, err := app.Profile.Update(cmd.Context(), types.ProfileUpdate{
			Email:    profileEmail,
			Phone:    profilePhone,
			FullName: profileFullName,
		})
		if err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Profile updated")
		renderProfile(cmd.OutOrStdout(), *p)
		return nil
	},
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		current, err := secret(cmd, currentPassword, "Current password")
		if err != nil {
			return err
		}
		next, err := secret(cmd, newPassword, "New password")
		if err != nil {
			return err
		}
		if err := app.Profile.ChangePassword(cmd.Context(), types.PasswordChange{
			CurrentPassword: current,
			NewPassword:     next,
		}); err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Password changed")
		return nil
	},
}

var addressesCmd = &cobra.Command{
	Use:     "addresses",
	Aliases: []string{"address"},
	Short:   "List saved shipping addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		list, err := app.Profile.Addresses(cmd.Context())
		if err != nil {
			return err
		}
		renderAddresses(cmd.OutOrStdout(), list)
		return nil
	},
}

var addressAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new address",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		addrInput.Tag = types.AddressTag(addrTag)
		list, err := app.Profile.AddAddress(cmd.Context(), addrInput)
		return addressResult(cmd, "Address saved", list, err)
	},
}

var addressUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		id, err := idArg(args, 0)
		if err != nil {
			return err
		}
		addrInput.Tag = types.AddressTag(addrTag)
		list, err := app.Profile.UpdateAddress(cmd.Context(), id, addrInput)
		return addressResult(cmd, "Address updated", list, err)
	},
}

var addressDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		id, err := idArg(args, 0)
		if err != nil {
			return err
		}
		list, err := app.Profile.DeleteAddress(cmd.Context(), id)
		return addressResult(cmd, "Address deleted", list, err)
	},
}

var addressDefaultCmd = &cobra.Command{
	Use:   "default <id>",
	Short: "Make an address the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		id, err := idArg(args, 0)
		if err != nil {
			return err
		}
		list, err := app.Profile.SetDefault(cmd.Context(), id)
		return addressResult(cmd, "Default address set", list, err)
	},
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileEmail, "email", "", "new email")
	profileUpdateCmd.Flags().StringVar(&profilePhone, "phone", "", "new 10 digit phone")
	profileUpdateCmd.Flags().StringVar(&profileFullName, "name", "", "full name")
	profilePasswordCmd.Flags().StringVar(&currentPassword, "current", "", "current password (read from stdin when omitted)")
	profilePasswordCmd.Flags().StringVar(&newPassword, "new", "", "new password (read from stdin when omitted)")
	profileCmd.AddCommand(profileUpdateCmd, profilePasswordCmd)

	for _, c := range []*cobra.Command{addressAddCmd, addressUpdateCmd} {
		f := c.Flags()
		f.StringVar(&addrInput.FullName, "name", "", "recipient name")
		f.StringVar(&addrInput.Phone, "phone", "", "10 digit phone")
		f.StringVar(&addrInput.Line1, "line1", "", "address line 1")
		f.StringVar(&addrInput.Line2, "line2", "", "address line 2")
		f.StringVar(&addrInput.Landmark, "landmark", "", "nearby landmark")
		f.StringVar(&addrInput.City, "city", "", "city")
		f.StringVar(&addrInput.State, "state", "", "state")
		f.StringVar(&addrInput.Pincode, "pincode", "", "6 digit pincode")
		f.StringVar(&addrTag, "tag", string(types.AddressTagHome), "home, office or other")
		f.BoolVar(&addrInput.IsDefault, "default", false, "make this the default address")
	}
	addressesCmd.AddCommand(addressAddCmd, addressUpdateCmd, addressDeleteCmd, addressDefaultCmd)
	rootCmd.AddCommand(profileCmd, addressesCmd)
}

func requireSignedIn() error {
	_, err := app.Session.RequireRole(types.RoleCustomer, types.RoleSeller, types.RoleAdmin)
	return err
}

// addressResult renders the refetched list even when the mutation failed.
func addressResult(cmd *cobra.Command, msg string, list []types.Address, err error) error {
	if list != nil {
		defer renderAddresses(cmd.OutOrStdout(), list)
	}
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "%s", msg)
	return nil
}

func renderProfile(out io.Writer, p types.Profile) {
	heading(out, p.Username)
	rows := [][]string{
		{"email", p.Email},
		{"phone", p.Phone},
		{"name", p.FullName},
	}
	if p.Role != "" {
		rows = append(rows, []string{"role", p.Role.String()})
	}
	renderTable(out, []string{"", ""}, rows)
}

func renderAddresses(out io.Writer, list []types.Address) {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		mark := ""
		if a.IsDefault {
			mark = "default"
		}
		rows = append(rows, []string{fmt.Sprint(a.ID), string(a.Tag), formatAddress(a), mark})
	}
	renderTable(out, []string{"ID", "Tag", "Address", ""}, rows)
}
