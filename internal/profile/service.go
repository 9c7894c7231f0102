package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Backend interface {
	Profile(ctx context.Context) (*types.Profile, error)
	UpdateProfile(ctx context.Context, update types.ProfileUpdate) (*types.Profile, error)
	ChangePassword(ctx context.Context, change types.PasswordChange) error
	Addresses(ctx context.Context) ([]types.Address, error)
	CreateAddress(ctx context.Context, in types.AddressInput) (*types.Address, error)
	UpdateAddress(ctx context.Context, id int64, in types.AddressInput) (*types.Address, error)
	DeleteAddress(ctx context.Context, id int64) error
	SetDefaultAddress(ctx context.Context, id int64) error
}

type Service struct {
	api      Backend
	validate *validator.Validate
}

func NewService(api Backend) *Service {
	return &Service{api: api, validate: NewValidator()}
}

func (s *Service) Me(ctx context.Context) (*types.Profile, error) {
	p, err := s.api.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, update types.ProfileUpdate) (*types.Profile, error) {
	if err := Validate(s.validate, update); err != nil {
		return nil, err
	}
	p, err := s.api.UpdateProfile(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

func (s *Service) ChangePassword(ctx context.Context, change types.PasswordChange) error {
	if err := Validate(s.validate, change); err != nil {
		return err
	}
	if err := s.api.ChangePassword(ctx, change); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

func (s *Service) Addresses(ctx context.Context) ([]types.Address, error) {
	list, err := s.api.Addresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	return list, nil
}

// AddAddress validates and saves a new address and returns the refetched list.
func (s *Service) AddAddress(ctx context.Context, in types.AddressInput) ([]types.Address, error) {
	in = normalize(in)
	if err := Validate(s.validate, in); err != nil {
		return nil, err
	}
	_, err := s.api.CreateAddress(ctx, in)
	return s.refetch(ctx, "create", 0, err)
}

func (s *Service) UpdateAddress(ctx context.Context, id int64, in types.AddressInput) ([]types.Address, error) {
	in = normalize(in)
	if err := Validate(s.validate, in); err != nil {
		return nil, err
	}
	_, err := s.api.UpdateAddress(ctx, id, in)
	return s.refetch(ctx, "update", id, err)
}

func (s *Service) DeleteAddress(ctx context.Context, id int64) ([]types.Address, error) {
	return s.refetch(ctx, "delete", id, s.api.DeleteAddress(ctx, id))
}

func (s *Service) SetDefault(ctx context.Context, id int64) ([]types.Address, error) {
	return s.refetch(ctx, "setDefault", id, s.api.SetDefaultAddress(ctx, id))
}

func (s *Service) refetch(ctx context.Context, op string, id int64, mutErr error) ([]types.Address, error) {
	if mutErr != nil {
		utils.Zlog.Warn("Address update failed",
			zap.String("op", op),
			zap.Int64("addressId", id),
			zap.Error(mutErr))
	}
	list, err := s.Addresses(ctx)
	if err != nil {
		return nil, errors.Join(mutErr, err)
	}
	return list, mutErr
}

func normalize(in types.AddressInput) types.AddressInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Line1 = strings.TrimSpace(in.Line1)
	in.Line2 = strings.TrimSpace(in.Line2)
	in.Landmark = strings.TrimSpace(in.Landmark)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Pincode = strings.TrimSpace(in.Pincode)
	in.Tag = types.AddressTag(strings.ToLower(strings.TrimSpace(string(in.Tag))))
	return in
}
