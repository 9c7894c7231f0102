package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	orders    []types.Order
	returns   []types.Return
	calls     []string
	returnErr error
}

func (f *fakeOrders) Orders(ctx context.Context) ([]types.Order, error) {
	f.calls = append(f.calls, "orders")
	return f.orders, nil
}

func (f *fakeOrders) Order(ctx context.Context, id int64) (*types.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, errors.New("Order not found")
}

func (f *fakeOrders) setStatus(itemID int64, st types.ReturnStatus) {
	for i := range f.orders {
		for j := range f.orders[i].Items {
			if f.orders[i].Items[j].ID == itemID {
				f.orders[i].Items[j].ReturnStatus = st
			}
		}
	}
}

func (f *fakeOrders) RequestReturn(ctx context.Context, orderItemID int64, reason string) (*types.Return, error) {
	f.calls = append(f.calls, "request")
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	f.setStatus(orderItemID, types.ReturnRequested)
	r := types.Return{ID: 1, OrderItemID: orderItemID, Reason: reason, Status: types.ReturnRequested}
	f.returns = append(f.returns, r)
	return &r, nil
}

func (f *fakeOrders) CancelReturn(ctx context.Context, orderItemID int64) (*types.Return, error) {
	f.calls = append(f.calls, "cancel")
	f.setStatus(orderItemID, types.ReturnNone)
	f.returns = nil
	return &types.Return{OrderItemID: orderItemID}, nil
}

func (f *fakeOrders) MyReturns(ctx context.Context) ([]types.Return, error) {
	f.calls = append(f.calls, "returns")
	return f.returns, nil
}

func sample() *fakeOrders {
	return &fakeOrders{orders: []types.Order{{
		ID:     1,
		Status: types.StatusDelivered,
		Items: []types.OrderItem{
			{ID: 10, ProductID: 1, Quantity: 1, Status: types.StatusDelivered},
			{ID: 11, ProductID: 2, Quantity: 1, Status: types.StatusShipped},
			{ID: 12, ProductID: 3, Quantity: 1, Status: types.StatusDelivered, ReturnStatus: types.ReturnAccepted},
		},
	}}}
}

func TestReturnable(t *testing.T) {
	o := sample().orders[0]
	assert.True(t, Returnable(o.Items[0]))
	assert.False(t, Returnable(o.Items[1]))
	assert.False(t, Returnable(o.Items[2]))
	assert.False(t, Cancellable(o.Items[2]))
}

func TestRequestThenCancelReturn(t *testing.T) {
	f := sample()
	s := NewService(f)
	ctx := context.Background()

	h, err := s.RequestReturn(ctx, 10, "Size too small")
	require.NoError(t, err)
	require.Len(t, h.Returns, 1)
	assert.Equal(t, types.ReturnRequested, h.Orders[0].Items[0].ReturnStatus)

	// A second request while one is in progress is refused locally.
	_, err = s.RequestReturn(ctx, 10, "again")
	assert.ErrorIs(t, err, ErrNotReturnable)

	h, err = s.CancelReturn(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, h.Returns)
	assert.Equal(t, types.ReturnNone, h.Orders[0].Items[0].ReturnStatus)

	assert.Equal(t, []string{
		"orders", "request", "orders", "returns",
		"orders",
		"orders", "cancel", "orders", "returns",
	}, f.calls)
}

func TestRequestReturn_Gating(t *testing.T) {
	s := NewService(sample())
	ctx := context.Background()

	_, err := s.RequestReturn(ctx, 11, "changed my mind")
	assert.ErrorIs(t, err, ErrNotReturnable)

	_, err = s.RequestReturn(ctx, 99, "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = s.RequestReturn(ctx, 10, "")
	assert.ErrorIs(t, err, ErrReasonRequired)

	_, err = s.CancelReturn(ctx, 12)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestRequestReturn_FailureStillRefetches(t *testing.T) {
	f := sample()
	f.returnErr = errors.New("Return window closed")
	s := NewService(f)

	h, err := s.RequestReturn(context.Background(), 10, "late")
	assert.ErrorIs(t, err, f.returnErr)
	require.NotNil(t, h)
	assert.Equal(t, []string{"orders", "request", "orders", "returns"}, f.calls)
}

func TestGet(t *testing.T) {
	s := NewService(sample())
	o, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, o.Items, 3)

	_, err = s.Get(context.Background(), 5)
	assert.Error(t, err)
}
