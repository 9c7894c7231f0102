package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/almirah-shop/storefront/internal/types"
)

// NotificationScope selects the seller or admin notification routes.
type NotificationScope string

const (
	SellerNotifications NotificationScope = "/seller/notifications"
	AdminNotifications  NotificationScope = "/admin/notifications"
)

type NotificationQuery struct {
	Skip  int
	Limit int
	// Filter is the seller-side filter (OOS, low_stock, approval, order, ...).
	Filter string
	// TypeFilter and IsRead are admin-side filters.
	TypeFilter string
	IsRead     *bool
}

func (q NotificationQuery) values() url.Values {
	v := url.Values{}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	if q.TypeFilter != "" {
		v.Set("type_filter", q.TypeFilter)
	}
	if q.IsRead != nil {
		v.Set("is_read", strconv.FormatBool(*q.IsRead))
	}
	return v
}

// AdminSellers lists sellers. It doubles as the admin role probe.
func (c *Client) AdminSellers(ctx context.Context) ([]types.Seller, error) {
	var sellers []types.Seller
	if err := c.do(ctx, http.MethodGet, AdminProbePath, nil, nil, &sellers); err != nil {
		return nil, err
	}
	return sellers, nil
}

// SellerProducts lists the caller's products. It doubles as the seller role probe.
func (c *Client) SellerProducts(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	if err := c.do(ctx, http.MethodGet, SellerProbePath, nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Notifications(ctx context.Context, scope NotificationScope, q NotificationQuery) ([]types.Notification, error) {
	var notes []types.Notification
	if err := c.do(ctx, http.MethodGet, string(scope), q.values(), nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) UnreadNotifications(ctx context.Context, scope NotificationScope) (int, error) {
	var resp types.UnreadCount
	if err := c.do(ctx, http.MethodGet, string(scope)+"/unread/count", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, scope NotificationScope, id int64, read bool) (*types.Notification, error) {
	var note types.Notification
	body := types.NotificationUpdate{IsRead: &read}
	if err := c.do(ctx, http.MethodPatch, string(scope)+"/"+itoa(id)+"/read", nil, body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNotification(ctx context.Context, scope NotificationScope, id int64) error {
	return c.do(ctx, http.MethodDelete, string(scope)+"/"+itoa(id), nil, nil, nil)
}
