package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"go.uber.org/zap"
)

var (
	ErrItemNotFound   = errors.New("order item not found")
	ErrNotReturnable  = errors.New("only delivered items without a return in progress can be returned")
	ErrNotCancellable = errors.New("only a requested return can be cancelled")
	ErrReasonRequired = errors.New("a return reason is required")
)

type Backend interface {
	Orders(ctx context.Context) ([]types.Order, error)
	Order(ctx context.Context, id int64) (*types.Order, error)
	RequestReturn(ctx context.Context, orderItemID int64, reason string) (*types.Return, error)
	CancelReturn(ctx context.Context, orderItemID int64) (*types.Return, error)
	MyReturns(ctx context.Context) ([]types.Return, error)
}

// History is the refetched state after a return mutation.
type History struct {
	Orders  []types.Order
	Returns []types.Return
}

type Service struct {
	api Backend
}

func NewService(api Backend) *Service {
	return &Service{api: api}
}

func (s *Service) List(ctx context.Context) ([]types.Order, error) {
	orders, err := s.api.Orders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*types.Order, error) {
	order, err := s.api.Order(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return order, nil
}

func (s *Service) Returns(ctx context.Context) ([]types.Return, error) {
	rets, err := s.api.MyReturns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load returns: %w", err)
	}
	return rets, nil
}

// Returnable reports whether a return may be requested for item.
func Returnable(item types.OrderItem) bool {
	return item.Status == types.StatusDelivered && item.ReturnStatus == types.ReturnNone
}

// Cancellable reports whether a return on item may still be withdrawn.
func Cancellable(item types.OrderItem) bool {
	return item.ReturnStatus == types.ReturnRequested
}

// RequestReturn asks for a return of one order item and refetches history.
func (s *Service) RequestReturn(ctx context.Context, orderItemID int64, reason string) (*History, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	item, err := s.findItem(ctx, orderItemID)
	if err != nil {
		return nil, err
	}
	if !Returnable(item) {
		return nil, ErrNotReturnable
	}
	_, err = s.api.RequestReturn(ctx, orderItemID, reason)
	return s.afterMutation(ctx, "request", orderItemID, err)
}

// CancelReturn withdraws a requested return and refetches history.
func (s *Service) CancelReturn(ctx context.Context, orderItemID int64) (*History, error) {
	item, err := s.findItem(ctx, orderItemID)
	if err != nil {
		return nil, err
	}
	if !Cancellable(item) {
		return nil, ErrNotCancellable
	}
	_, err = s.api.CancelReturn(ctx, orderItemID)
	return s.afterMutation(ctx, "cancel", orderItemID, err)
}

func (s *Service) findItem(ctx context.Context, orderItemID int64) (types.OrderItem, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return types.OrderItem{}, err
	}
	for _, o := range orders {
		for _, it := range o.Items {
			if it.ID == orderItemID {
				return it, nil
			}
		}
	}
	return types.OrderItem{}, fmt.Errorf("%w: %d", ErrItemNotFound, orderItemID)
}

func (s *Service) afterMutation(ctx context.Context, op string, orderItemID int64, mutErr error) (*History, error) {
	if mutErr != nil {
		utils.Zlog.Warn("Return update failed",
			zap.String("op", op),
			zap.Int64("orderItemId", orderItemID),
			zap.Error(mutErr))
	}
	var h History
	var err error
	if h.Orders, err = s.List(ctx); err != nil {
		return nil, errors.Join(mutErr, err)
	}
	if h.Returns, err = s.Returns(ctx); err != nil {
		return nil, errors.Join(mutErr, err)
	}
	return &h, mutErr
}
