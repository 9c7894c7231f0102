package fakeshop_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/almirah-shop/storefront/internal/cart"
	"github.com/almirah-shop/storefront/internal/checkout"
	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/config"
	"github.com/almirah-shop/storefront/internal/credentials"
	"github.com/almirah-shop/storefront/internal/fakeshop"
	"github.com/almirah-shop/storefront/internal/session"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store   *fakeshop.Store
	demo    fakeshop.Demo
	manager *session.Manager
	creds   *credentials.MemoryStore
	api     *client.Client
}

func newHarness(t *testing.T, opts fakeshop.Options, policy config.LoginPolicy) *harness {
	t.Helper()
	store := fakeshop.NewStore()
	demo, err := fakeshop.Seed(store)
	require.NoError(t, err)

	if opts.Secret == "" {
		opts.Secret = "test-secret"
	}
	srv := fakeshop.NewServer(store, opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Close(ctx)
	})

	base, err := client.New(ts.URL)
	require.NoError(t, err)
	creds := credentials.NewMemoryStore()
	m := session.NewManager(base, creds, session.NewProbeResolver(base), policy)
	api, err := client.New(ts.URL, client.WithTokenSource(m))
	require.NoError(t, err)
	return &harness{store: store, demo: demo, manager: m, creds: creds, api: api}
}

func (h *harness) product(t *testing.T, name string) types.Product {
	t.Helper()
	for _, p := range h.demo.Products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no seeded product %q", name)
	return types.Product{}
}

func TestLogin_CustomerResolvedByProbes(t *testing.T) {
	h := newHarness(t, fakeshop.Options{}, config.LoginPolicyStrict)

	sess, err := h.manager.Authenticate(context.Background(), "asha@example.com", "asha-pass")
	require.NoError(t, err)
	assert.Equal(t, types.RoleCustomer, sess.Role)
	assert.Equal(t, "asha@example.com", sess.Principal)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(sess.Credential, claims)
	require.NoError(t, err)
	assert.Equal(t, "asha", claims["sub"])
	assert.NotContains(t, claims, "role")

	stored, err := h.creds.Load()
	require.NoError(t, err)
	assert.Equal(t, types.RoleCustomer, stored.Role)
}

func TestLogin_BadPassword(t *testing.T) {
	h := newHarness(t, fakeshop.Options{}, config.LoginPolicyStrict)

	_, err := h.manager.Authenticate(context.Background(), "asha", "nope")
	assert.True(t, client.IsKind(err, types.KindUnauthenticated))
	assert.False(t, h.manager.Snapshot().Authenticated())
}

func TestLogin_StrictStorefrontRejectsAdmin(t *testing.T) {
	h := newHarness(t, fakeshop.Options{}, config.LoginPolicyStrict)

	_, err := h.manager.Authenticate(context.Background(), "admin", "admin-pass")
	var portalErr *session.PortalError
	require.ErrorAs(t, err, &portalErr)
	assert.Equal(t, types.RoleAdmin, portalErr.Role)

	sess, err := h.manager.AuthenticateAdmin(context.Background(), "admin", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, sess.Role)
}

func TestLogin_SellerPortal(t *testing.T) {
	h := newHarness(t, fakeshop.Options{}, config.LoginPolicyStrict)
	ctx := context.Background()

	sess, err := h.manager.AuthenticateSeller(ctx, "weaver", "weaver-pass")
	require.NoError(t, err)
	assert.Equal(t, types.RoleSeller, sess.Role)

	refreshed, err := h.manager.RefreshRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.RoleSeller, refreshed.Role)

	products, err := h.api.SellerProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestLogin_RoleInLoginResponse(t *testing.T) {
	h := newHarness(t, fakeshop.Options{IncludeRoleInLogin: true}, config.LoginPolicyLenient)

	sess, err := h.manager.Authenticate(context.Background(), "weaver", "weaver-pass")
	require.NoError(t, err)
	assert.Equal(t, types.RoleSeller, sess.Role)
	assert.Equal(t, "weaver", sess.Principal)
}

func TestLogin_ExpiredTokenIsRejected(t *testing.T) {
	h := newHarness(t, fakeshop.Options{TokenTTL: time.Nanosecond}, config.LoginPolicyStrict)

	_, err := h.manager.Authenticate(context.Background(), "asha", "asha-pass")
	assert.ErrorIs(t, err, session.ErrCredentialRejected)
}

func TestUnauthenticatedCartCall(t *testing.T) {
	h := newHarness(t, fakeshop.Options{}, config.LoginPolicyStrict)

	_, err := h.api.Cart(context.Background())
	assert.True(t, client.IsKind(err, types.KindUnauthenticated))
}

func TestCartTotalsAndCheckout(t *testing.T) {
	h := newHarness(t, fakeshop.Options{Workers: 1}, config.LoginPolicyStrict)
	ctx := context.Background()
	_, err := h.manager.Authenticate(ctx, "asha", "asha-pass")
	require.NoError(t, err)

	kurta := h.product(t, "Indigo Block Print Kurta")
	stole := h.product(t, "Handwoven Cotton Stole")

	rec := cart.NewReconciler(h.api, decimal.NewFromFloat(0.10))
	_, err = rec.Add(ctx, types.AddToCartRequest{ProductID: kurta.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = rec.Add(ctx, types.AddToCartRequest{ProductID: stole.ID, Quantity: 1})
	require.NoError(t, err)
	view, err := rec.Increase(ctx, stole.ID)
	require.NoError(t, err)

	// 1199 discounted kurta plus two stoles at list price; the stole's discount
	// is above list and ignored.
	assert.Equal(t, "2797", view.Subtotal.String())
	assert.Equal(t, "279.7", view.Tax.String())
	assert.Equal(t, "3076.7", view.Total.String())
	assert.Equal(t, 3, view.Count())

	view, err = rec.Decrease(ctx, kurta.ID)
	require.NoError(t, err)
	_, ok := view.Line(kurta.ID)
	assert.False(t, ok)

	orch := checkout.NewOrchestrator(h.api, rec)
	_, err = orch.Place(ctx, nil)
	var addrErr *checkout.AddressRequiredError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, checkout.ReturnPath, addrErr.ReturnTo)

	_, err = h.api.CreateAddress(ctx, types.AddressInput{
		FullName: "Asha", Phone: "9876543210", Line1: "12 MG Road",
		City: "Pune", State: "MH", Pincode: "411001", Tag: types.AddressTagHome,
	})
	require.NoError(t, err)

	order, err := orch.Place(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1598.0, order.TotalPrice)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ALM-"))
	assert.True(t, rec.View().Empty())

	_, err = orch.Place(ctx, nil)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)

	require.Eventually(t, func() bool {
		return h.store.UnreadCount(types.RoleAdmin, 0) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCartTotals_TaxRounding(t *testing.T) {
	h := newHarness(t, fakeshop.Options{}, config.LoginPolicyStrict)
	ctx := context.Background()
	_, err := h.manager.Authenticate(ctx, "asha", "asha-pass")
	require.NoError(t, err)

	a := h.store.AddProduct(types.Product{Name: "Tote", Price: 100, InStock: true}, 0)
	b := h.store.AddProduct(types.Product{Name: "Scarf", Price: 55, InStock: true}, 0)

	rec := cart.NewReconciler(h.api, decimal.NewFromFloat(0.10))
	_, err = rec.Add(ctx, types.AddToCartRequest{ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)
	view, err := rec.SetQuantity(ctx, b.ID, 2)
	assert.Error(t, err, "quantity on a product not in the cart")
	_, err = rec.Add(ctx, types.AddToCartRequest{ProductID: b.ID, Quantity: 2})
	require.NoError(t, err)
	view, err = rec.Refresh(ctx)
	require.NoError(t, err)

	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(210)))
	assert.True(t, view.Tax.Equal(decimal.NewFromInt(21)))
	assert.True(t, view.Total.Equal(decimal.NewFromInt(231)))

	view, err = rec.SetQuantity(ctx, b.ID, 0)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)
}

func TestSellerDashboardSeesOwnOrders(t *testing.T) {
	h := newHarness(t, fakeshop.Options{Workers: 1, AutoDeliver: true}, config.LoginPolicyStrict)
	ctx := context.Background()

	_, err := h.manager.Authenticate(ctx, "asha", "asha-pass")
	require.NoError(t, err)
	kurta := h.product(t, "Indigo Block Print Kurta")
	_, err = h.api.AddToCart(ctx, types.AddToCartRequest{ProductID: kurta.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = h.api.CreateAddress(ctx, types.AddressInput{
		FullName: "Asha", Phone: "9876543210", Line1: "12 MG Road",
		City: "Pune", State: "MH", Pincode: "411001", Tag: types.AddressTagHome,
	})
	require.NoError(t, err)
	order, err := h.api.CreateOrder(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, types.StatusDelivered, order.Items[0].Status)

	ret, err := h.api.RequestReturn(ctx, order.Items[0].ID, "wrong size")
	require.NoError(t, err)
	assert.Equal(t, types.ReturnRequested, ret.Status)

	_, err = h.manager.AuthenticateSeller(ctx, "weaver", "weaver-pass")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		n, err := h.api.UnreadNotifications(ctx, client.SellerNotifications)
		return err == nil && n == 2
	}, time.Second, 10*time.Millisecond)

	notes, err := h.api.Notifications(ctx, client.SellerNotifications, client.NotificationQuery{Filter: "return"})
	require.NoError(t, err)
	require.Len(t, notes, 1)

	note, err := h.api.MarkNotificationRead(ctx, client.SellerNotifications, notes[0].ID, true)
	require.NoError(t, err)
	assert.True(t, note.IsRead)
	require.NoError(t, h.api.DeleteNotification(ctx, client.SellerNotifications, notes[0].ID))

	_, err = h.api.AdminSellers(ctx)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.AuthorizationDenied())
}

func TestDecreaseEndpointReportsRemoval(t *testing.T) {
	h := newHarness(t, fakeshop.Options{}, config.LoginPolicyStrict)
	ctx := context.Background()
	_, err := h.manager.Authenticate(ctx, "asha", "asha-pass")
	require.NoError(t, err)
	kurta := h.product(t, "Indigo Block Print Kurta")

	line, err := h.api.IncreaseCartItem(ctx, kurta.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)

	removed, err := h.api.DecreaseCartItem(ctx, kurta.ID)
	require.NoError(t, err)
	assert.Nil(t, removed)

	lines, err := h.api.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSignupVerifyAndLogin(t *testing.T) {
	h := newHarness(t, fakeshop.Options{}, config.LoginPolicyStrict)
	ctx := context.Background()

	_, err := h.api.Signup(ctx, types.SignupRequest{Username: "ravi", Email: "ravi@example.com", Password: "ravi-pass-1"})
	require.NoError(t, err)

	_, err = h.manager.Authenticate(ctx, "ravi", "ravi-pass-1")
	assert.True(t, client.IsKind(err, types.KindNotVerified))

	otp, ok := h.store.PendingOTP("ravi@example.com")
	require.True(t, ok)
	_, err = h.api.VerifyOTP(ctx, types.OTPVerification{Email: "ravi@example.com", OTP: otp})
	require.NoError(t, err)

	sess, err := h.manager.Authenticate(ctx, "ravi", "ravi-pass-1")
	require.NoError(t, err)
	assert.Equal(t, types.RoleCustomer, sess.Role)
}

func TestValidationErrorsAreReadable(t *testing.T) {
	h := newHarness(t, fakeshop.Options{}, config.LoginPolicyStrict)

	_, err := h.api.Signup(context.Background(), types.SignupRequest{Username: "x"})
	require.Error(t, err)
	assert.True(t, client.IsKind(err, types.KindValidation))
	assert.NotEqual(t, client.GenericMessage, client.UserMessage(err))
}
