package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrLineBusy is returned when a mutation for the same product is still in flight.
	ErrLineBusy        = errors.New("cart line is busy")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Backend is the subset of the API client the reconciler needs.
type Backend interface {
	Cart(ctx context.Context) ([]types.CartLine, error)
	Products(ctx context.Context, gender types.Gender) ([]types.Product, error)
	AddToCart(ctx context.Context, req types.AddToCartRequest) (*types.CartLine, error)
	IncreaseCartItem(ctx context.Context, productID int64) (*types.CartLine, error)
	DecreaseCartItem(ctx context.Context, productID int64) (*types.CartLine, error)
	SetCartQuantity(ctx context.Context, productID int64, quantity int) (*types.CartLine, error)
	RemoveFromCart(ctx context.Context, productID int64) error
	ClearCart(ctx context.Context) error
}

// Reconciler keeps a local view of the server-owned cart. It never edits the
// view optimistically: every mutation is followed by a full refetch.
type Reconciler struct {
	api     Backend
	taxRate decimal.Decimal

	mu        sync.Mutex
	view      View
	issued    uint64
	committed uint64
	busy      map[int64]struct{}
}

func NewReconciler(api Backend, taxRate decimal.Decimal) *Reconciler {
	return &Reconciler{
		api:     api,
		taxRate: taxRate,
		view:    newView(nil, nil, taxRate),
		busy:    make(map[int64]struct{}),
	}
}

// View returns the last committed view.
func (r *Reconciler) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.clone()
}

// Refresh refetches the cart and the catalog in parallel and joins them. The
// result is committed only if ctx is still live and no later refresh has
// already committed.
func (r *Reconciler) Refresh(ctx context.Context) (View, error) {
	r.mu.Lock()
	r.issued++
	seq := r.issued
	r.mu.Unlock()

	var (
		lines    []types.CartLine
		products []types.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = r.api.Cart(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch cart: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = r.api.Products(gctx, "")
		if err != nil {
			return fmt.Errorf("failed to fetch products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return r.View(), err
	}

	next := newView(lines, products, r.taxRate)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return r.view.clone(), err
	}
	if seq < r.committed {
		utils.Zlog.Debug("Discarding stale cart refresh",
			zap.Uint64("seq", seq),
			zap.Uint64("committed", r.committed))
		return r.view.clone(), nil
	}
	r.committed = seq
	r.view = next
	return next.clone(), nil
}

func (r *Reconciler) Add(ctx context.Context, req types.AddToCartRequest) (View, error) {
	if req.Quantity < 1 {
		return r.View(), ErrInvalidQuantity
	}
	return r.mutate(ctx, req.ProductID, "add", func(ctx context.Context) error {
		_, err := r.api.AddToCart(ctx, req)
		return err
	})
}

func (r *Reconciler) Increase(ctx context.Context, productID int64) (View, error) {
	return r.mutate(ctx, productID, "increase", func(ctx context.Context) error {
		_, err := r.api.IncreaseCartItem(ctx, productID)
		return err
	})
}

// Decrease lowers the quantity by one; at quantity 1 the line is removed instead.
// A line missing from the local view is refetched first so the choice is made
// against the server's quantity.
func (r *Reconciler) Decrease(ctx context.Context, productID int64) (View, error) {
	if !r.acquire(productID) {
		return r.View(), ErrLineBusy
	}
	defer r.release(productID)

	line, ok := r.View().Line(productID)
	if !ok {
		view, err := r.Refresh(ctx)
		if err != nil {
			return view, err
		}
		line, ok = view.Line(productID)
	}
	if ok && line.Quantity <= 1 {
		return r.apply(ctx, productID, "remove", func(ctx context.Context) error {
			return r.api.RemoveFromCart(ctx, productID)
		})
	}
	return r.apply(ctx, productID, "decrease", func(ctx context.Context) error {
		_, err := r.api.DecreaseCartItem(ctx, productID)
		return err
	})
}

// SetQuantity sets an absolute quantity; below 1 the line is removed.
func (r *Reconciler) SetQuantity(ctx context.Context, productID int64, quantity int) (View, error) {
	if quantity < 1 {
		return r.Remove(ctx, productID)
	}
	return r.mutate(ctx, productID, "setQuantity", func(ctx context.Context) error {
		_, err := r.api.SetCartQuantity(ctx, productID, quantity)
		return err
	})
}

func (r *Reconciler) Remove(ctx context.Context, productID int64) (View, error) {
	return r.mutate(ctx, productID, "remove", func(ctx context.Context) error {
		return r.api.RemoveFromCart(ctx, productID)
	})
}

func (r *Reconciler) Clear(ctx context.Context) (View, error) {
	err := r.api.ClearCart(ctx)
	if err != nil {
		utils.Zlog.Warn("Cart clear failed", zap.Error(err))
	}
	view, refreshErr := r.Refresh(ctx)
	return view, errors.Join(err, refreshErr)
}

// Busy reports whether a mutation for productID is in flight.
func (r *Reconciler) Busy(productID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.busy[productID]
	return ok
}

func (r *Reconciler) mutate(ctx context.Context, productID int64, op string, call func(context.Context) error) (View, error) {
	if !r.acquire(productID) {
		return r.View(), ErrLineBusy
	}
	defer r.release(productID)
	return r.apply(ctx, productID, op, call)
}

// apply runs call with the product's guard already held and then refetches.
func (r *Reconciler) apply(ctx context.Context, productID int64, op string, call func(context.Context) error) (View, error) {
	err := call(ctx)
	if err != nil {
		utils.Zlog.Warn("Cart mutation failed",
			zap.String("op", op),
			zap.Int64("productId", productID),
			zap.Error(err))
	}
	// The server is the source of truth whether or not the call succeeded.
	view, refreshErr := r.Refresh(ctx)
	return view, errors.Join(err, refreshErr)
}

func (r *Reconciler) acquire(productID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.busy[productID]; ok {
		return false
	}
	r.busy[productID] = struct{}{}
	return true
}

func (r *Reconciler) release(productID int64) {
	r.mu.Lock()
	delete(r.busy, productID)
	r.mu.Unlock()
}
