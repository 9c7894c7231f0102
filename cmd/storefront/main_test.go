package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/config"
	"github.com/almirah-shop/storefront/internal/credentials"
	"github.com/almirah-shop/storefront/internal/fakeshop"
	"github.com/almirah-shop/storefront/internal/storefront"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestIDArg(t *testing.T) {
	id, err := idArg([]string{"42"}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-3", "abc"} {
		_, err := idArg([]string{bad}, 0)
		assert.Error(t, err, bad)
	}
}

func TestPriceLabel(t *testing.T) {
	kurta := types.Product{Price: 1499, DiscountedPrice: ptr(1199.0)}
	label := priceLabel(kurta)
	assert.True(t, strings.HasPrefix(label, "₹1199.00"), label)
	assert.Contains(t, label, "₹1499.00")

	// A "discount" above the list price is ignored.
	stole := types.Product{Price: 799, DiscountedPrice: ptr(899.0)}
	assert.Equal(t, "₹799.00", priceLabel(stole))
}

func TestFormatAddress(t *testing.T) {
	got := formatAddress(types.Address{
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Line1:    "12 MG Road",
		Landmark: "Metro gate 2",
		City:     "Bengaluru",
		State:    "KA",
		Pincode:  "560001",
		Tag:      types.AddressTagHome,
	})
	assert.Equal(t, "Asha Rao (home)\n12 MG Road\nnear Metro gate 2\nBengaluru, KA 560001\n9876543210", got)
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "boom", errorText(errors.New("boom")))

	netErr := &client.NetworkError{Method: "GET", Path: "/cart", Err: errors.New("connection refused")}
	assert.Equal(t, "could not reach the shop: connection refused", errorText(netErr))
}

func TestSecret(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetErr(&bytes.Buffer{})

	got, err := secret(cmd, "from-flag", "Password")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", got)

	cmd.SetIn(strings.NewReader("typed\n"))
	got, err = secret(cmd, "", "Password")
	require.NoError(t, err)
	assert.Equal(t, "typed", got)

	cmd.SetIn(strings.NewReader("\n"))
	_, err = secret(cmd, "", "Password")
	assert.EqualError(t, err, "Password is required")
}

// withShop points the package-level app at a seeded fake shop and signs asha in.
func withShop(t *testing.T) fakeshop.Demo {
	t.Helper()
	store := fakeshop.NewStore()
	demo, err := fakeshop.Seed(store)
	require.NoError(t, err)
	srv := fakeshop.NewServer(store, fakeshop.Options{Secret: "test"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Close(ctx)
	})

	app, err = storefront.New(&config.Config{
		APIBaseURL:  ts.URL,
		LoginPolicy: config.LoginPolicyStrict,
		RoleSource:  config.RoleSourceProbe,
		PageSize:    4,
		TaxRate:     decimal.NewFromFloat(0.10),
	}, credentials.NewMemoryStore())
	require.NoError(t, err)
	t.Cleanup(func() { app = nil })

	_, err = app.Session.Authenticate(context.Background(), "asha", "asha-pass")
	require.NoError(t, err)
	return demo
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.RunE(cmd, args))
	return out.String()
}

func TestCartAndCheckout(t *testing.T) {
	demo := withShop(t)
	kurta := demo.Products[0]
	addQty, addSize, addColor = 2, "M", ""
	t.Cleanup(func() { addQty, addSize = 1, "" })

	out := execute(t, cartAddCmd, idString(kurta.ID))
	assert.Contains(t, out, kurta.Name)
	assert.Contains(t, out, "₹2398.00")

	checkoutConfirm = false
	out = execute(t, checkoutCmd)
	assert.Contains(t, out, "Add a shipping address first")

	addrInput = types.AddressInput{
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Line1:    "12 MG Road",
		City:     "Bengaluru",
		State:    "KA",
		Pincode:  "560001",
	}
	addrTag = "home"
	out = execute(t, addressAddCmd)
	assert.Contains(t, out, "Address saved")
	assert.Contains(t, out, "default")

	checkoutConfirm = true
	t.Cleanup(func() { checkoutConfirm = false })
	out = execute(t, checkoutCmd)
	assert.Contains(t, out, "placed, total ₹2398.00")

	out = execute(t, cartCmd)
	assert.Contains(t, out, "Your cart is empty")

	out = execute(t, ordersCmd)
	assert.Contains(t, out, "ALM-")
}

func TestWishlistToggle(t *testing.T) {
	demo := withShop(t)
	id := idString(demo.Products[1].ID)

	assert.Contains(t, execute(t, wishlistToggleCmd, id), "is in your wishlist")
	assert.Contains(t, execute(t, wishlistCmd), demo.Products[1].Name)
	assert.Contains(t, execute(t, wishlistToggleCmd, id), "is not in your wishlist")
}

func TestDashboard_CustomerRefused(t *testing.T) {
	withShop(t)
	dashLimit = 10
	var out bytes.Buffer
	dashboardCmd.SetOut(&out)
	dashboardCmd.SetContext(context.Background())
	err := dashboardCmd.RunE(dashboardCmd, nil)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
