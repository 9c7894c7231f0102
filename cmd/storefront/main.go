package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/almirah-shop/storefront/internal/config"
	"github.com/almirah-shop/storefront/internal/storefront"
	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	apiURL  string
	verbose bool

	app *storefront.App
)

var rootCmd = &cobra.Command{
	Use:   "almirah",
	Short: "Almirah Shop storefront from the terminal",
	Long: `almirah browses the Almirah Shop catalog, manages the cart and wishlist,
places orders and tracks returns. Sellers and admins reach their dashboards
after signing in through their portal.

The session is kept in the credentials file between runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if apiURL != "" {
			cfg.APIBaseURL = apiURL
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		if err := utils.InitLogger(level, cfg.Debug); err != nil {
			return err
		}

		app, err = storefront.New(cfg, nil)
		if err != nil {
			return err
		}
		sess, err := app.Init(cmd.Context())
		if err != nil {
			utils.Zlog.Warn("Session restore incomplete",
				zap.String("role", sess.Role.String()),
				zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (overrides API_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+errorText(err)))
		utils.Zlog.Debug("Command failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}
