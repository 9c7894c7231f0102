package main

import (
	"fmt"

	"github.com/almirah-shop/storefront/internal/session"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/spf13/cobra"
)

var (
	loginPassword string
	loginPortal   string

	signupEmail    string
	signupPhone    string
	signupPassword string
	signupBusiness string
	signupGST      string

	otpEmail     string
	otpCode      string
	resetPass    string
	resetOTPCode string
)

// loginCmd signs in at the storefront or a portal
var loginCmd = &cobra.Command{
	Use:   "login <username|email|phone>",
	Short: "Sign in",
	Long: `Sign in with a username, email address or phone number.

Seller and admin accounts sign in through their portal:
  almirah login weaver --portal seller`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Session.Clear(); err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session and header badges",
	RunE:  runWhoami,
}

var signupCmd = &cobra.Command{
	Use:   "signup <username>",
	Short: "Create a customer account",
	Args:  cobra.ExactArgs(1),
	RunE:  runSignup,
}

var registerSellerCmd = &cobra.Command{
	Use:   "register-seller <username>",
	Short: "Apply for a seller account",
	Long: `Register a seller account. The account must be verified with the emailed
OTP and approved by an admin before the seller portal opens.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegisterSeller,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify an account with its OTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := app.Accounts.VerifyOTP(cmd.Context(), types.OTPVerification{Email: otpEmail, OTP: otpCode})
		if err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "%s", msg)
		return nil
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password <email>",
	Short: "Request a password reset OTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := app.Accounts.ForgotPassword(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "%s", msg)
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Set a new password with a reset OTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := secret(cmd, resetPass, "New password")
		if err != nil {
			return err
		}
		msg, err := app.Accounts.ResetPassword(cmd.Context(), types.ResetPasswordRequest{
			Email:       args[0],
			OTP:         resetOTPCode,
			NewPassword: password,
		})
		if err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "%s", msg)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (read from stdin when omitted)")
	loginCmd.Flags().StringVar(&loginPortal, "portal", "customer", "entry point: customer, seller or admin")

	for _, c := range []*cobra.Command{signupCmd, registerSellerCmd} {
		c.Flags().StringVar(&signupEmail, "email", "", "email address")
		c.Flags().StringVar(&signupPhone, "phone", "", "10 digit phone number")
		c.Flags().StringVarP(&signupPassword, "password", "p", "", "password (read from stdin when omitted)")
		_ = c.MarkFlagRequired("email")
	}
	registerSellerCmd.Flags().StringVar(&signupBusiness, "business", "", "business name")
	registerSellerCmd.Flags().StringVar(&signupGST, "gst", "", "GST number")
	_ = registerSellerCmd.MarkFlagRequired("business")

	verifyCmd.Flags().StringVar(&otpEmail, "email", "", "account email")
	verifyCmd.Flags().StringVar(&otpCode, "otp", "", "6 digit OTP")
	_ = verifyCmd.MarkFlagRequired("email")
	_ = verifyCmd.MarkFlagRequired("otp")

	resetPasswordCmd.Flags().StringVar(&resetOTPCode, "otp", "", "reset OTP")
	resetPasswordCmd.Flags().StringVarP(&resetPass, "password", "p", "", "new password (read from stdin when omitted)")
	_ = resetPasswordCmd.MarkFlagRequired("otp")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, signupCmd, registerSellerCmd,
		verifyCmd, forgotPasswordCmd, resetPasswordCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := secret(cmd, loginPassword, "Password")
	if err != nil {
		return err
	}
	portal, err := types.ParseRole(loginPortal)
	if err != nil || portal == types.RoleAnonymous {
		return fmt.Errorf("unknown portal %q", loginPortal)
	}

	var sess session.Session
	if portal == types.RoleCustomer {
		sess, err = app.Session.Authenticate(cmd.Context(), args[0], password)
	} else {
		sess, err = app.Session.AuthenticatePortal(cmd.Context(), args[0], password, portal)
	}
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Signed in as %s (%s)", sess.Principal, sess.Role)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	sess := app.Session.Snapshot()
	if !sess.Authenticated() {
		fmt.Fprintln(out, mutedStyle.Render("Not signed in"))
		return nil
	}
	heading(out, sess.Principal)
	rows := [][]string{{"role", sess.Role.String()}}
	if sess.Portal != "" {
		rows = append(rows, []string{"portal", sess.Portal.String()})
	}
	if sess.Role == types.RoleCustomer {
		badges, err := app.Badges(cmd.Context())
		if err != nil {
			return err
		}
		rows = append(rows,
			[]string{"cart", fmt.Sprint(badges.Cart)},
			[]string{"wishlist", fmt.Sprint(badges.Wishlist)})
	}
	renderTable(out, []string{"", ""}, rows)
	return nil
}

func signupRequest(cmd *cobra.Command, username string) (types.SignupRequest, error) {
	password, err := secret(cmd, signupPassword, "Password")
	if err != nil {
		return types.SignupRequest{}, err
	}
	return types.SignupRequest{Username: username, Email: signupEmail, Phone: signupPhone, Password: password}, nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	req, err := signupRequest(cmd, args[0])
	if err != nil {
		return err
	}
	user, err := app.Accounts.Signup(cmd.Context(), req)
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Account %s created. Check %s for the OTP, then run `almirah verify`.", user.Username, req.Email)
	return nil
}

func runRegisterSeller(cmd *cobra.Command, args []string) error {
	req, err := signupRequest(cmd, args[0])
	if err != nil {
		return err
	}
	user, err := app.Accounts.RegisterSeller(cmd.Context(), types.SellerSignupRequest{
		SignupRequest: req,
		BusinessName:  signupBusiness,
		GSTNumber:     signupGST,
	})
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Seller %s registered. Verify the OTP and wait for admin approval.", user.Username)
	return nil
}
