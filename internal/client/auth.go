package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/almirah-shop/storefront/internal/types"
)

// Login exchanges credentials for a bearer token. The identifier may be a
// username, email or phone number.
func (c *Client) Login(ctx context.Context, identifier, password string) (*types.LoginResponse, error) {
	form := url.Values{}
	form.Set("username", identifier)
	form.Set("password", password)
	var resp types.LoginResponse
	if err := c.doForm(ctx, "/users/login", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Signup(ctx context.Context, req types.SignupRequest) (*types.User, error) {
	var user types.User
	if err := c.do(ctx, http.MethodPost, "/users/signup", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) RegisterSeller(ctx context.Context, req types.SellerSignupRequest) (*types.User, error) {
	var user types.User
	if err := c.do(ctx, http.MethodPost, "/users/register-seller", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) VerifyOTP(ctx context.Context, req types.OTPVerification) (*types.Message, error) {
	var msg types.Message
	if err := c.do(ctx, http.MethodPost, "/verify-otp", nil, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) ForgotPassword(ctx context.Context, req types.ForgotPasswordRequest) (*types.Message, error) {
	var msg types.Message
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) ResetPassword(ctx context.Context, req types.ResetPasswordRequest) (*types.Message, error) {
	var msg types.Message
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", nil, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Me returns the caller's identity with its role, for backends that expose it.
func (c *Client) Me(ctx context.Context) (*types.Identity, error) {
	var id types.Identity
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}
