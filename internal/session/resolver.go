package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// RoleResolver determines which role a credential belongs to. It returns
// ErrCredentialRejected (wrapped) when the credential itself is invalid and
// RoleCustomer with ErrRoleUndetermined (wrapped) when it could not tell.
type RoleResolver interface {
	ResolveRole(ctx context.Context, credential string) (types.Role, error)
}

// ProbeResolver infers the role by calling an admin-only and then a
// seller-only endpoint. A 403 or 404 means "not this role"; a 401 rejects the
// credential; anything else fails open to customer with ErrRoleUndetermined.
type ProbeResolver struct {
	api *client.Client
}

func NewProbeResolver(api *client.Client) *ProbeResolver {
	return &ProbeResolver{api: api}
}

func (r *ProbeResolver) ResolveRole(ctx context.Context, credential string) (types.Role, error) {
	api := r.api.WithToken(credential)

	_, err := api.AdminSellers(ctx)
	if role, done, err := interpretProbe(ctx, err, types.RoleAdmin, client.AdminProbePath); done {
		return role, err
	}

	_, err = api.SellerProducts(ctx)
	if role, done, err := interpretProbe(ctx, err, types.RoleSeller, client.SellerProbePath); done {
		return role, err
	}

	return types.RoleCustomer, nil
}

// interpretProbe reports done=false only when the probe answered "not this
// role" and the next probe should run.
func interpretProbe(ctx context.Context, err error, role types.Role, path string) (types.Role, bool, error) {
	if err == nil {
		return role, true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return types.RoleAnonymous, true, ctxErr
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.AuthorizationDenied() {
			return "", false, nil
		}
		if apiErr.Status == http.StatusUnauthorized {
			return types.RoleAnonymous, true, fmt.Errorf("%w: %s", ErrCredentialRejected, apiErr.Message)
		}
	}
	utils.Zlog.Warn("Role probe failed, defaulting to customer",
		zap.String("path", path),
		zap.Error(err))
	return types.RoleCustomer, true, fmt.Errorf("%w: %w", ErrRoleUndetermined, err)
}

// IdentityResolver asks the backend directly via GET /users/me.
type IdentityResolver struct {
	api *client.Client
}

func NewIdentityResolver(api *client.Client) *IdentityResolver {
	return &IdentityResolver{api: api}
}

func (r *IdentityResolver) ResolveRole(ctx context.Context, credential string) (types.Role, error) {
	id, err := r.api.WithToken(credential).Me(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.RoleAnonymous, ctxErr
		}
		if client.IsKind(err, types.KindUnauthenticated) {
			return types.RoleAnonymous, fmt.Errorf("%w: %s", ErrCredentialRejected, client.UserMessage(err))
		}
		utils.Zlog.Warn("Identity lookup failed, defaulting to customer", zap.Error(err))
		return types.RoleCustomer, fmt.Errorf("%w: %w", ErrRoleUndetermined, err)
	}
	role, err := types.ParseRole(string(id.Role))
	if err != nil || !role.Authenticated() {
		utils.Zlog.Warn("Identity returned an unusable role, defaulting to customer",
			zap.String("role", string(id.Role)))
		return types.RoleCustomer, nil
	}
	return role, nil
}

// tokenExpired reports whether credential is a JWT whose exp claim has passed.
// Opaque tokens are never considered expired here; the backend decides.
func tokenExpired(credential string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
