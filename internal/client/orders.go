package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/almirah-shop/storefront/internal/types"
)

func (c *Client) Orders(ctx context.Context) ([]types.Order, error) {
	var orders []types.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) Order(ctx context.Context, id int64) (*types.Order, error) {
	var order types.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+itoa(id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder places an order from the server-side cart. A nil addressID
// leaves address selection to the backend.
func (c *Client) CreateOrder(ctx context.Context, addressID *int64) (*types.Order, error) {
	var q url.Values
	if addressID != nil {
		q = url.Values{}
		q.Set("address_id", itoa(*addressID))
	}
	var order types.Order
	if err := c.do(ctx, http.MethodPost, "/orders/create", q, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
