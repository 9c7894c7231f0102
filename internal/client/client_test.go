package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixedToken string

func (f fixedToken) Token() string { return string(f) }

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	utils.SetLogger(zap.New(core))
	t.Cleanup(func() { utils.SetLogger(nil) })
	return logs
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
	_, err = New("://nope")
	assert.Error(t, err)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`[]`))
	}, WithTokenSource(fixedToken("tok-123")))

	_, err := c.Cart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_NoTokenIsNotAnError(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Kurta","price":10,"in_stock":true}]`))
	})

	products, err := c.Products(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Empty(t, gotAuth)
}

func TestClient_WithTokenOverridesSource(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}, WithTokenSource(fixedToken("session")))

	_, err := c.WithToken("candidate").Cart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer candidate", gotAuth)
}

func TestClient_ProbeRejectionIsNotLoggedAsError(t *testing.T) {
	logs := observeLogs(t)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Admin access required"}`))
	})

	_, err := c.AdminSellers(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.True(t, apiErr.AuthorizationDenied())

	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("Role probe answered negatively").Len())
}

func TestClient_NonProbeFailureIsLogged(t *testing.T) {
	logs := observeLogs(t)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Customer access required"}`))
	})

	_, err := c.Cart(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind types.ErrorKind
		wantMsg  string
	}{
		{
			name:     "string detail",
			status:   http.StatusBadRequest,
			body:     `{"detail":"Cart is empty"}`,
			wantKind: types.KindValidation,
			wantMsg:  "Cart is empty",
		},
		{
			name:     "validation list",
			status:   http.StatusUnprocessableEntity,
			body:     `{"detail":[{"loc":["body","quantity"],"msg":"field required"},{"msg":"bad id"}]}`,
			wantKind: types.KindValidation,
			wantMsg:  "field required; bad id",
		},
		{
			name:     "structured code",
			status:   http.StatusBadRequest,
			body:     `{"detail":"Please add a shipping address","code":"ADDRESS_REQUIRED"}`,
			wantKind: types.KindAddressRequired,
			wantMsg:  "Please add a shipping address",
		},
		{
			name:     "code inside detail object",
			status:   http.StatusForbidden,
			body:     `{"detail":{"code":"SELLER_NOT_APPROVED","message":"Seller pending review"}}`,
			wantKind: types.KindNotApproved,
			wantMsg:  "Seller pending review",
		},
		{
			name:     "legacy address text",
			status:   http.StatusBadRequest,
			body:     `{"detail":"Address required before checkout"}`,
			wantKind: types.KindAddressRequired,
			wantMsg:  "Address required before checkout",
		},
		{
			name:     "legacy not verified text",
			status:   http.StatusForbidden,
			body:     `{"detail":"Account not verified"}`,
			wantKind: types.KindNotVerified,
			wantMsg:  "Account not verified",
		},
		{
			name:     "unauthenticated",
			status:   http.StatusUnauthorized,
			body:     `{"detail":"Invalid or expired token"}`,
			wantKind: types.KindUnauthenticated,
			wantMsg:  "Invalid or expired token",
		},
		{
			name:     "server error without body",
			status:   http.StatusBadGateway,
			body:     ``,
			wantKind: types.KindServer,
			wantMsg:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Orders(context.Background())
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Cart is empty", UserMessage(&APIError{Status: 400, Message: "Cart is empty"}))
	assert.Equal(t, GenericMessage, UserMessage(&APIError{Status: 500}))
	assert.Equal(t, GenericMessage, UserMessage(errors.New("boom")))
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c, err := New(srv.URL)
	require.NoError(t, err)
	srv.Close()

	_, err = c.Cart(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, types.KindNetwork, KindOf(err))
}

func TestClient_CanceledContextIsNotANetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Cart(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEqual(t, types.KindNetwork, KindOf(err))
}

func TestClient_DecreaseRemovalBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cart/decrease/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"detail":"Item removed from cart"}`))
	})

	line, err := c.DecreaseCartItem(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, line)
}

func TestClient_LoginIsFormEncoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "asha", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
	})

	resp, err := c.Login(context.Background(), "asha", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.AccessToken)
}

func TestClient_CreateOrderPassesAddress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/create", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("address_id"))
		_, _ = w.Write([]byte(`{"id":9,"total_price":231,"status":"Pending","order_items":[]}`))
	})

	addr := int64(42)
	order, err := c.CreateOrder(context.Background(), &addr)
	require.NoError(t, err)
	assert.Equal(t, int64(9), order.ID)
}
