package dashboard

import (
	"context"
	"sync"
	"testing"

	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/session"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedGate struct {
	sess session.Session
}

func (g fixedGate) RequireRole(roles ...types.Role) (session.Session, error) {
	if !g.sess.Authenticated() {
		return g.sess, session.ErrNotAuthenticated
	}
	for _, r := range roles {
		if r == g.sess.Role {
			return g.sess, nil
		}
	}
	return g.sess, &session.RoleError{Have: g.sess.Role, Want: roles}
}

func gateFor(role types.Role) fixedGate {
	if role == types.RoleAnonymous {
		return fixedGate{sess: session.Anonymous()}
	}
	return fixedGate{sess: session.Session{Principal: "u", Role: role, Credential: "tok"}}
}

type recordingBackend struct {
	mu      sync.Mutex
	scopes  []client.NotificationScope
	queries []client.NotificationQuery
	calls   int
}

func (b *recordingBackend) AdminSellers(ctx context.Context) ([]types.Seller, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return []types.Seller{{ID: 1, Username: "vendor", IsApproved: false}}, nil
}

func (b *recordingBackend) SellerProducts(ctx context.Context) ([]types.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return []types.Product{{ID: 3}}, nil
}

func (b *recordingBackend) Notifications(ctx context.Context, scope client.NotificationScope, q client.NotificationQuery) ([]types.Notification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.scopes = append(b.scopes, scope)
	b.queries = append(b.queries, q)
	return []types.Notification{{ID: 1, Type: "order"}}, nil
}

func (b *recordingBackend) UnreadNotifications(ctx context.Context, scope client.NotificationScope) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return 4, nil
}

func (b *recordingBackend) MarkNotificationRead(ctx context.Context, scope client.NotificationScope, id int64, read bool) (*types.Notification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.scopes = append(b.scopes, scope)
	return &types.Notification{ID: id, IsRead: read}, nil
}

func (b *recordingBackend) DeleteNotification(ctx context.Context, scope client.NotificationScope, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.scopes = append(b.scopes, scope)
	return nil
}

func TestWrongRoleMakesNoCall(t *testing.T) {
	for _, role := range []types.Role{types.RoleAnonymous, types.RoleCustomer} {
		b := &recordingBackend{}
		s := NewService(b, gateFor(role))
		ctx := context.Background()

		_, err := s.Notifications(ctx, client.NotificationQuery{})
		assert.ErrorIs(t, err, ErrRoleRequired)
		_, err = s.Sellers(ctx)
		assert.ErrorIs(t, err, ErrRoleRequired)
		_, err = s.Products(ctx)
		assert.ErrorIs(t, err, ErrRoleRequired)
		assert.ErrorIs(t, s.Delete(ctx, 1), ErrRoleRequired)
		assert.Zero(t, b.calls, role)
	}

	_, err := NewService(&recordingBackend{}, gateFor(types.RoleAnonymous)).UnreadCount(context.Background())
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestSellerScope(t *testing.T) {
	b := &recordingBackend{}
	s := NewService(b, gateFor(types.RoleSeller))
	ctx := context.Background()

	read := true
	_, err := s.Notifications(ctx, client.NotificationQuery{Filter: "low_stock", TypeFilter: "x", IsRead: &read})
	require.NoError(t, err)
	assert.Equal(t, client.SellerNotifications, b.scopes[0])
	assert.Equal(t, client.NotificationQuery{Filter: "low_stock"}, b.queries[0])

	_, err = s.Products(ctx)
	require.NoError(t, err)
	_, err = s.Sellers(ctx)
	var roleErr *session.RoleError
	assert.ErrorAs(t, err, &roleErr)
}

func TestAdminScope(t *testing.T) {
	b := &recordingBackend{}
	s := NewService(b, gateFor(types.RoleAdmin))
	ctx := context.Background()

	sellers, err := s.Sellers(ctx)
	require.NoError(t, err)
	assert.Len(t, sellers, 1)

	note, err := s.MarkRead(ctx, 9, true)
	require.NoError(t, err)
	assert.True(t, note.IsRead)
	require.NoError(t, s.Delete(ctx, 9))
	assert.Equal(t, []client.NotificationScope{client.AdminNotifications, client.AdminNotifications}, b.scopes)
}

func TestOverview(t *testing.T) {
	b := &recordingBackend{}
	s := NewService(b, gateFor(types.RoleAdmin))

	ov, err := s.Overview(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, ov.Role)
	assert.Equal(t, 4, ov.Unread)
	assert.Len(t, ov.Notifications, 1)
}
