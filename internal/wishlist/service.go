package wishlist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"go.uber.org/zap"
)

var ErrBusy = errors.New("wishlist update already in progress")

type Backend interface {
	Wishlist(ctx context.Context) ([]types.WishlistItem, error)
	WishlistContains(ctx context.Context, productID int64) (bool, error)
	AddToWishlist(ctx context.Context, productID int64) error
	RemoveFromWishlist(ctx context.Context, productID int64) error
}

// Service never trusts a locally remembered membership flag; Toggle reads
// the server state before and after the change.
type Service struct {
	api Backend

	mu   sync.Mutex
	busy map[int64]struct{}
}

func NewService(api Backend) *Service {
	return &Service{api: api, busy: make(map[int64]struct{})}
}

func (s *Service) List(ctx context.Context) ([]types.WishlistItem, error) {
	items, err := s.api.Wishlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}
	return items, nil
}

func (s *Service) Contains(ctx context.Context, productID int64) (bool, error) {
	return s.api.WishlistContains(ctx, productID)
}

func (s *Service) Add(ctx context.Context, productID int64) (bool, error) {
	return s.guarded(ctx, productID, func(ctx context.Context) error {
		return s.api.AddToWishlist(ctx, productID)
	})
}

func (s *Service) Remove(ctx context.Context, productID int64) (bool, error) {
	return s.guarded(ctx, productID, func(ctx context.Context) error {
		return s.api.RemoveFromWishlist(ctx, productID)
	})
}

// Toggle flips membership and returns the membership the server reports afterwards.
func (s *Service) Toggle(ctx context.Context, productID int64) (bool, error) {
	return s.guarded(ctx, productID, func(ctx context.Context) error {
		in, err := s.api.WishlistContains(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to check wishlist: %w", err)
		}
		if in {
			return s.api.RemoveFromWishlist(ctx, productID)
		}
		return s.api.AddToWishlist(ctx, productID)
	})
}

// guarded runs change with the per-product guard held and then re-reads
// membership from the server.
func (s *Service) guarded(ctx context.Context, productID int64, change func(context.Context) error) (bool, error) {
	s.mu.Lock()
	if _, ok := s.busy[productID]; ok {
		s.mu.Unlock()
		return false, ErrBusy
	}
	s.busy[productID] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.busy, productID)
		s.mu.Unlock()
	}()

	changeErr := change(ctx)
	if changeErr != nil {
		utils.Zlog.Warn("Wishlist update failed",
			zap.Int64("productId", productID),
			zap.Error(changeErr))
	}
	in, err := s.api.WishlistContains(ctx, productID)
	if err != nil {
		return false, errors.Join(changeErr, fmt.Errorf("failed to check wishlist: %w", err))
	}
	return in, changeErr
}
