package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/almirah-shop/storefront/internal/cart"
	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"go.uber.org/zap"
)

// ReturnPath is where the address form sends the user back to.
const ReturnPath = "/checkout"

var ErrEmptyCart = errors.New("cart is empty")

// AddressRequiredError means the user must add a shipping address before an
// order can be placed.
type AddressRequiredError struct {
	ReturnTo string
	Message  string
}

func (e *AddressRequiredError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "a shipping address is required before checkout"
}

type Backend interface {
	Addresses(ctx context.Context) ([]types.Address, error)
	CreateOrder(ctx context.Context, addressID *int64) (*types.Order, error)
}

// Cart is the reconciler the orchestrator reads from and refreshes after an order.
type Cart interface {
	Refresh(ctx context.Context) (cart.View, error)
}

// Plan is what the user confirms before placing an order.
type Plan struct {
	Addresses []types.Address
	Selected  *types.Address
	Cart      cart.View
}

func (p Plan) NeedsAddress() bool {
	return len(p.Addresses) == 0
}

type Orchestrator struct {
	api  Backend
	cart Cart
}

func NewOrchestrator(api Backend, c Cart) *Orchestrator {
	return &Orchestrator{api: api, cart: c}
}

// Prepare loads the address book and the current cart. preferred may be nil.
func (o *Orchestrator) Prepare(ctx context.Context, preferred *int64) (*Plan, error) {
	addresses, err := o.api.Addresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	view, err := o.cart.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &Plan{
		Addresses: addresses,
		Selected:  SelectAddress(addresses, preferred),
		Cart:      view,
	}, nil
}

// Place creates an order for the server-side cart. Without any saved address it
// returns *AddressRequiredError and does not call the order endpoint.
func (o *Orchestrator) Place(ctx context.Context, preferred *int64) (*types.Order, error) {
	addresses, err := o.api.Addresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	if len(addresses) == 0 {
		return nil, &AddressRequiredError{ReturnTo: ReturnPath}
	}
	view, err := o.cart.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if view.Empty() {
		return nil, ErrEmptyCart
	}

	addressID := SelectAddress(addresses, preferred).ID
	order, err := o.api.CreateOrder(ctx, &addressID)
	if err != nil {
		if client.IsKind(err, types.KindAddressRequired) {
			return nil, &AddressRequiredError{ReturnTo: ReturnPath, Message: client.UserMessage(err)}
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	utils.Zlog.Info("Order placed",
		zap.Int64("orderId", order.ID),
		zap.Int64("addressId", addressID),
		zap.Float64("total", order.TotalPrice))

	// The backend empties the cart on success.
	if _, err := o.cart.Refresh(ctx); err != nil {
		utils.Zlog.Warn("Cart refresh after order failed", zap.Error(err))
	}
	return order, nil
}

// SelectAddress picks preferred when it is in the list, else the default
// address, else the first one. It returns nil for an empty list.
func SelectAddress(addresses []types.Address, preferred *int64) *types.Address {
	if len(addresses) == 0 {
		return nil
	}
	if preferred != nil {
		for i := range addresses {
			if addresses[i].ID == *preferred {
				return &addresses[i]
			}
		}
	}
	for i := range addresses {
		if addresses[i].IsDefault {
			return &addresses[i]
		}
	}
	return &addresses[0]
}
