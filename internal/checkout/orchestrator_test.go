package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/almirah-shop/storefront/internal/cart"
	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	addresses []types.Address
	orderErr  error
	orderAddr []int64
}

func (f *fakeBackend) Addresses(ctx context.Context) ([]types.Address, error) {
	return f.addresses, nil
}

func (f *fakeBackend) CreateOrder(ctx context.Context, addressID *int64) (*types.Order, error) {
	f.orderAddr = append(f.orderAddr, *addressID)
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &types.Order{ID: 77, TotalPrice: 231, Status: types.StatusPending}, nil
}

type fakeCart struct {
	lines     int
	refreshes int
	err       error
}

func (f *fakeCart) Refresh(ctx context.Context) (cart.View, error) {
	f.refreshes++
	if f.err != nil {
		return cart.View{}, f.err
	}
	v := cart.View{}
	for i := 0; i < f.lines; i++ {
		v.Lines = append(v.Lines, cart.Line{CartLine: types.CartLine{ID: int64(i + 1), ProductID: int64(i + 1), Quantity: 1}})
	}
	return v, nil
}

func addresses() []types.Address {
	return []types.Address{
		{ID: 1, FullName: "Asha", Tag: types.AddressTagOffice},
		{ID: 2, FullName: "Asha", Tag: types.AddressTagHome, IsDefault: true},
		{ID: 3, FullName: "Asha", Tag: types.AddressTagOther},
	}
}

func TestSelectAddress(t *testing.T) {
	list := addresses()
	three := int64(3)
	missing := int64(42)

	assert.Nil(t, SelectAddress(nil, nil))
	assert.Equal(t, int64(3), SelectAddress(list, &three).ID)
	assert.Equal(t, int64(2), SelectAddress(list, &missing).ID)
	assert.Equal(t, int64(2), SelectAddress(list, nil).ID)
	assert.Equal(t, int64(1), SelectAddress(list[:1], nil).ID)
}

func TestPlace_NoAddressNeverCallsOrderEndpoint(t *testing.T) {
	api := &fakeBackend{}
	o := NewOrchestrator(api, &fakeCart{lines: 2})

	_, err := o.Place(context.Background(), nil)
	var addrErr *AddressRequiredError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, "/checkout", addrErr.ReturnTo)
	assert.Empty(t, api.orderAddr)
}

func TestPlace_NoAddressWinsOverCartFailure(t *testing.T) {
	api := &fakeBackend{}
	c := &fakeCart{err: errors.New("catalog unavailable")}
	o := NewOrchestrator(api, c)

	_, err := o.Place(context.Background(), nil)
	var addrErr *AddressRequiredError
	require.ErrorAs(t, err, &addrErr)
	assert.Zero(t, c.refreshes)
	assert.Empty(t, api.orderAddr)
}

func TestPlace_CartFailureWithAddress(t *testing.T) {
	boom := errors.New("catalog unavailable")
	api := &fakeBackend{addresses: addresses()}
	o := NewOrchestrator(api, &fakeCart{err: boom})

	_, err := o.Place(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, api.orderAddr)
}

func TestPlace_EmptyCart(t *testing.T) {
	api := &fakeBackend{addresses: addresses()}
	o := NewOrchestrator(api, &fakeCart{})

	_, err := o.Place(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, api.orderAddr)
}

func TestPlace_Success(t *testing.T) {
	api := &fakeBackend{addresses: addresses()}
	c := &fakeCart{lines: 2}
	o := NewOrchestrator(api, c)

	one := int64(1)
	order, err := o.Place(context.Background(), &one)
	require.NoError(t, err)
	assert.Equal(t, int64(77), order.ID)
	assert.Equal(t, []int64{1}, api.orderAddr)
	assert.Equal(t, 2, c.refreshes)
}

func TestPlace_ServerAddressRequired(t *testing.T) {
	api := &fakeBackend{
		addresses: addresses(),
		orderErr: &client.APIError{
			Status:  400,
			Kind:    types.KindAddressRequired,
			Code:    types.CodeAddressRequired,
			Message: "Please add a shipping address",
		},
	}
	o := NewOrchestrator(api, &fakeCart{lines: 1})

	_, err := o.Place(context.Background(), nil)
	var addrErr *AddressRequiredError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, ReturnPath, addrErr.ReturnTo)
	assert.Equal(t, "Please add a shipping address", addrErr.Error())
}

func TestPlace_OtherFailure(t *testing.T) {
	boom := &client.APIError{Status: 500, Kind: types.KindServer}
	api := &fakeBackend{addresses: addresses(), orderErr: boom}
	c := &fakeCart{lines: 1}
	o := NewOrchestrator(api, c)

	_, err := o.Place(context.Background(), nil)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, c.refreshes)
}

func TestPrepare(t *testing.T) {
	o := NewOrchestrator(&fakeBackend{addresses: addresses()}, &fakeCart{lines: 3})

	plan, err := o.Prepare(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, plan.NeedsAddress())
	assert.Equal(t, int64(2), plan.Selected.ID)
	assert.Len(t, plan.Cart.Lines, 3)
}
