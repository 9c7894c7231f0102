package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/go-playground/validator/v10"
)

// AccountBackend covers the unauthenticated account endpoints.
type AccountBackend interface {
	Signup(ctx context.Context, req types.SignupRequest) (*types.User, error)
	RegisterSeller(ctx context.Context, req types.SellerSignupRequest) (*types.User, error)
	VerifyOTP(ctx context.Context, req types.OTPVerification) (*types.Message, error)
	ForgotPassword(ctx context.Context, req types.ForgotPasswordRequest) (*types.Message, error)
	ResetPassword(ctx context.Context, req types.ResetPasswordRequest) (*types.Message, error)
}

// Accounts handles signup, OTP verification and password recovery.
type Accounts struct {
	api      AccountBackend
	validate *validator.Validate
}

func NewAccounts(api AccountBackend) *Accounts {
	return &Accounts{api: api, validate: NewValidator()}
}

func (a *Accounts) Signup(ctx context.Context, req types.SignupRequest) (*types.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := Validate(a.validate, req); err != nil {
		return nil, err
	}
	u, err := a.api.Signup(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	return u, nil
}

func (a *Accounts) RegisterSeller(ctx context.Context, req types.SellerSignupRequest) (*types.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.BusinessName = strings.TrimSpace(req.BusinessName)
	if err := Validate(a.validate, req); err != nil {
		return nil, err
	}
	u, err := a.api.RegisterSeller(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to register seller: %w", err)
	}
	return u, nil
}

func (a *Accounts) VerifyOTP(ctx context.Context, req types.OTPVerification) (string, error) {
	if err := Validate(a.validate, req); err != nil {
		return "", err
	}
	return message(a.api.VerifyOTP(ctx, req))
}

func (a *Accounts) ForgotPassword(ctx context.Context, email string) (string, error) {
	req := types.ForgotPasswordRequest{Email: strings.ToLower(strings.TrimSpace(email))}
	if err := Validate(a.validate, req); err != nil {
		return "", err
	}
	return message(a.api.ForgotPassword(ctx, req))
}

func (a *Accounts) ResetPassword(ctx context.Context, req types.ResetPasswordRequest) (string, error) {
	if err := Validate(a.validate, req); err != nil {
		return "", err
	}
	return message(a.api.ResetPassword(ctx, req))
}

func message(m *types.Message, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", nil
	}
	return m.Message, nil
}
