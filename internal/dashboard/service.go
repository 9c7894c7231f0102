package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/session"
	"github.com/almirah-shop/storefront/internal/types"
	"golang.org/x/sync/errgroup"
)

// ErrRoleRequired wraps every refusal made before a network call because the
// session lacks the seller or admin role.
var ErrRoleRequired = errors.New("dashboard requires a seller or admin session")

type Backend interface {
	AdminSellers(ctx context.Context) ([]types.Seller, error)
	SellerProducts(ctx context.Context) ([]types.Product, error)
	Notifications(ctx context.Context, scope client.NotificationScope, q client.NotificationQuery) ([]types.Notification, error)
	UnreadNotifications(ctx context.Context, scope client.NotificationScope) (int, error)
	MarkNotificationRead(ctx context.Context, scope client.NotificationScope, id int64, read bool) (*types.Notification, error)
	DeleteNotification(ctx context.Context, scope client.NotificationScope, id int64) error
}

// Gate reports the current session when it holds one of the given roles.
type Gate interface {
	RequireRole(roles ...types.Role) (session.Session, error)
}

type Service struct {
	api  Backend
	gate Gate
}

func NewService(api Backend, gate Gate) *Service {
	return &Service{api: api, gate: gate}
}

// Overview is the landing view of a dashboard.
type Overview struct {
	Role          types.Role
	Unread        int
	Notifications []types.Notification
}

func (s *Service) require(roles ...types.Role) (types.Role, error) {
	sess, err := s.gate.RequireRole(roles...)
	if err != nil {
		return types.RoleAnonymous, fmt.Errorf("%w: %w", ErrRoleRequired, err)
	}
	return sess.Role, nil
}

// scope picks the notification routes for the session's role.
func (s *Service) scope() (types.Role, client.NotificationScope, error) {
	role, err := s.require(types.RoleSeller, types.RoleAdmin)
	if err != nil {
		return role, "", err
	}
	if role == types.RoleAdmin {
		return role, client.AdminNotifications, nil
	}
	return role, client.SellerNotifications, nil
}

func (s *Service) Sellers(ctx context.Context) ([]types.Seller, error) {
	if _, err := s.require(types.RoleAdmin); err != nil {
		return nil, err
	}
	sellers, err := s.api.AdminSellers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sellers: %w", err)
	}
	return sellers, nil
}

func (s *Service) Products(ctx context.Context) ([]types.Product, error) {
	if _, err := s.require(types.RoleSeller); err != nil {
		return nil, err
	}
	products, err := s.api.SellerProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load seller products: %w", err)
	}
	return products, nil
}

func (s *Service) Notifications(ctx context.Context, q client.NotificationQuery) ([]types.Notification, error) {
	_, scope, err := s.scope()
	if err != nil {
		return nil, err
	}
	if scope == client.SellerNotifications {
		q.TypeFilter, q.IsRead = "", nil
	} else {
		q.Filter = ""
	}
	notes, err := s.api.Notifications(ctx, scope, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return notes, nil
}

func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	_, scope, err := s.scope()
	if err != nil {
		return 0, err
	}
	return s.api.UnreadNotifications(ctx, scope)
}

func (s *Service) MarkRead(ctx context.Context, id int64, read bool) (*types.Notification, error) {
	_, scope, err := s.scope()
	if err != nil {
		return nil, err
	}
	return s.api.MarkNotificationRead(ctx, scope, id, read)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	_, scope, err := s.scope()
	if err != nil {
		return err
	}
	return s.api.DeleteNotification(ctx, scope, id)
}

// Overview loads the unread count and the first page of notifications together.
func (s *Service) Overview(ctx context.Context, limit int) (*Overview, error) {
	role, scope, err := s.scope()
	if err != nil {
		return nil, err
	}
	ov := &Overview{Role: role}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.api.UnreadNotifications(gctx, scope)
		ov.Unread = n
		return err
	})
	g.Go(func() error {
		notes, err := s.api.Notifications(gctx, scope, client.NotificationQuery{Limit: limit})
		ov.Notifications = notes
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	return ov, nil
}
