// Package storefront wires configuration, the session and every flow into a
// single App.
package storefront

import (
	"context"
	"fmt"

	"github.com/almirah-shop/storefront/internal/cart"
	"github.com/almirah-shop/storefront/internal/catalog"
	"github.com/almirah-shop/storefront/internal/checkout"
	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/config"
	"github.com/almirah-shop/storefront/internal/credentials"
	"github.com/almirah-shop/storefront/internal/dashboard"
	"github.com/almirah-shop/storefront/internal/orders"
	"github.com/almirah-shop/storefront/internal/profile"
	"github.com/almirah-shop/storefront/internal/session"
	"github.com/almirah-shop/storefront/internal/wishlist"
	"golang.org/x/sync/errgroup"
)

type App struct {
	Config    *config.Config
	API       *client.Client
	Session   *session.Manager
	Catalog   *catalog.Browser
	Cart      *cart.Reconciler
	Checkout  *checkout.Orchestrator
	Wishlist  *wishlist.Service
	Orders    *orders.Service
	Profile   *profile.Service
	Accounts  *profile.Accounts
	Dashboard *dashboard.Service
}

// New builds an App. A nil store falls back to the file store at
// cfg.CredentialsFile.
func New(cfg *config.Config, store credentials.Store, opts ...client.Option) (*App, error) {
	if store == nil {
		store = credentials.NewFileStore(cfg.CredentialsFile)
	}
	opts = append([]client.Option{client.WithTimeout(cfg.RequestTimeout)}, opts...)

	// The manager resolves roles with its own per-call credential; everything
	// else reads the live session token.
	base, err := client.New(cfg.APIBaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	manager := session.NewManager(base, store, session.NewResolver(base, cfg.RoleSource), cfg.LoginPolicy)

	api, err := client.New(cfg.APIBaseURL, append(opts, client.WithTokenSource(manager))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	reconciler := cart.NewReconciler(api, cfg.TaxRate)
	return &App{
		Config:    cfg,
		API:       api,
		Session:   manager,
		Catalog:   catalog.NewBrowser(api, cfg.PageSize),
		Cart:      reconciler,
		Checkout:  checkout.NewOrchestrator(api, reconciler),
		Wishlist:  wishlist.NewService(api),
		Orders:    orders.NewService(api),
		Profile:   profile.NewService(api),
		Accounts:  profile.NewAccounts(api),
		Dashboard: dashboard.NewService(api, manager),
	}, nil
}

// Init restores the stored session.
func (a *App) Init(ctx context.Context) (session.Session, error) {
	return a.Session.Init(ctx)
}

// Badges are the header counters.
type Badges struct {
	Cart     int
	Wishlist int
}

// Badges fetches both counters in parallel. Anonymous sessions get zeros
// without a call.
func (a *App) Badges(ctx context.Context) (Badges, error) {
	if !a.Session.Snapshot().Authenticated() {
		return Badges{}, nil
	}
	var b Badges
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lines, err := a.API.Cart(gctx)
		if err != nil {
			return fmt.Errorf("failed to count cart: %w", err)
		}
		for _, l := range lines {
			b.Cart += l.Quantity
		}
		return nil
	})
	g.Go(func() error {
		items, err := a.Wishlist.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to count wishlist: %w", err)
		}
		b.Wishlist = len(items)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Badges{}, err
	}
	return b, nil
}
