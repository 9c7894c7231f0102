package client

import (
	"context"
	"net/http"

	"github.com/almirah-shop/storefront/internal/types"
)

func (c *Client) Wishlist(ctx context.Context) ([]types.WishlistItem, error) {
	var items []types.WishlistItem
	if err := c.do(ctx, http.MethodGet, "/wishlist", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// WishlistContains is a read-only membership check.
func (c *Client) WishlistContains(ctx context.Context, productID int64) (bool, error) {
	var resp types.WishlistCheck
	if err := c.do(ctx, http.MethodGet, "/wishlist/check/"+itoa(productID), nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.InWishlist, nil
}

func (c *Client) AddToWishlist(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodPost, "/wishlist/add/"+itoa(productID), nil, nil, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, "/wishlist/remove/"+itoa(productID), nil, nil, nil)
}
