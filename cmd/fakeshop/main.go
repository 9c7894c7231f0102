package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/almirah-shop/storefront/internal/config"
	"github.com/almirah-shop/storefront/internal/fakeshop"
	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	port        string
	tokenTTL    time.Duration
	includeRole bool
	autoDeliver bool
	noSeed      bool
)

var rootCmd = &cobra.Command{
	Use:   "fakeshop",
	Short: "In-memory Almirah Shop backend for local development",
	Long: `fakeshop serves the Almirah Shop REST API from memory. It seeds an admin,
an approved seller and a customer with a small catalog unless --no-seed is set.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&port, "port", "", "listen port (overrides FAKESHOP_PORT)")
	rootCmd.Flags().DurationVar(&tokenTTL, "token-ttl", 30*time.Minute, "access token lifetime")
	rootCmd.Flags().BoolVar(&includeRole, "include-role", false, "return username and role in the login response")
	rootCmd.Flags().BoolVar(&autoDeliver, "auto-deliver", false, "mark new orders delivered")
	rootCmd.Flags().BoolVar(&noSeed, "no-seed", false, "start with an empty store")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := utils.InitLogger(cfg.LogLevel, cfg.Debug); err != nil {
		return err
	}
	defer utils.Sync()
	if port == "" {
		port = cfg.FakeShopPort
	}

	store := fakeshop.NewStore()
	if !noSeed {
		demo, err := fakeshop.Seed(store)
		if err != nil {
			return err
		}
		for _, a := range demo.Accounts {
			utils.Zlog.Info("Demo account",
				zap.String("username", a.Username),
				zap.String("password", a.Password),
				zap.String("role", a.Role.String()))
		}
		utils.Zlog.Info("Demo catalog seeded", zap.Int("products", len(demo.Products)))
	}

	srv := fakeshop.NewServer(store, fakeshop.Options{
		Secret:             cfg.FakeShopSecret,
		TokenTTL:           tokenTTL,
		Workers:            cfg.FakeShopWorkers,
		IncludeRoleInLogin: includeRole,
		AutoDeliver:        autoDeliver,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(":" + port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	utils.Zlog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Close(ctx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
