package client

import (
	"context"
	"net/http"

	"github.com/almirah-shop/storefront/internal/types"
)

// cartLineOrRemoval decodes both a cart line and the {"detail": "..."} body the
// backend sends with a 200 when a quantity change removed the line.
type cartLineOrRemoval struct {
	types.CartLine
	Detail string `json:"detail"`
}

func (r *cartLineOrRemoval) line() *types.CartLine {
	if r.ID == 0 && r.ProductID == 0 {
		return nil
	}
	line := r.CartLine
	return &line
}

func (c *Client) Cart(ctx context.Context) ([]types.CartLine, error) {
	var lines []types.CartLine
	if err := c.do(ctx, http.MethodGet, "/cart", nil, nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *Client) AddToCart(ctx context.Context, req types.AddToCartRequest) (*types.CartLine, error) {
	var line types.CartLine
	if err := c.do(ctx, http.MethodPost, "/cart/add", nil, req, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

// SetCartQuantity returns nil when the backend removed the line.
func (c *Client) SetCartQuantity(ctx context.Context, productID int64, quantity int) (*types.CartLine, error) {
	var resp cartLineOrRemoval
	body := types.QuantityUpdate{ProductID: productID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPatch, "/cart/quantity", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.line(), nil
}

func (c *Client) IncreaseCartItem(ctx context.Context, productID int64) (*types.CartLine, error) {
	var line types.CartLine
	if err := c.do(ctx, http.MethodPost, "/cart/increase/"+itoa(productID), nil, nil, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

// DecreaseCartItem returns nil when the backend removed the line.
func (c *Client) DecreaseCartItem(ctx context.Context, productID int64) (*types.CartLine, error) {
	var resp cartLineOrRemoval
	if err := c.do(ctx, http.MethodPost, "/cart/decrease/"+itoa(productID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.line(), nil
}

func (c *Client) RemoveFromCart(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, "/cart/remove/"+itoa(productID), nil, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart/clear", nil, nil, nil)
}
