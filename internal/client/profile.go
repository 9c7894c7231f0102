package client

import (
	"context"
	"net/http"

	"github.com/almirah-shop/storefront/internal/types"
)

func (c *Client) Profile(ctx context.Context) (*types.Profile, error) {
	var p types.Profile
	if err := c.do(ctx, http.MethodGet, "/profile/me", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update types.ProfileUpdate) (*types.Profile, error) {
	var p types.Profile
	if err := c.do(ctx, http.MethodPut, "/profile/update", nil, update, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ChangePassword(ctx context.Context, change types.PasswordChange) error {
	return c.do(ctx, http.MethodPut, "/profile/change-password", nil, change, nil)
}

func (c *Client) Addresses(ctx context.Context) ([]types.Address, error) {
	var addrs []types.Address
	if err := c.do(ctx, http.MethodGet, "/profile/addresses", nil, nil, &addrs); err != nil {
		return nil, err
	}
	return addrs, nil
}

func (c *Client) CreateAddress(ctx context.Context, in types.AddressInput) (*types.Address, error) {
	var a types.Address
	if err := c.do(ctx, http.MethodPost, "/profile/addresses", nil, in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdateAddress(ctx context.Context, id int64, in types.AddressInput) (*types.Address, error) {
	var a types.Address
	if err := c.do(ctx, http.MethodPut, "/profile/addresses/"+itoa(id), nil, in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/profile/addresses/"+itoa(id), nil, nil, nil)
}

func (c *Client) SetDefaultAddress(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, "/profile/addresses/"+itoa(id)+"/set-default", nil, nil, nil)
}
