package client

import (
	"context"
	"net/http"

	"github.com/almirah-shop/storefront/internal/types"
)

func (c *Client) RequestReturn(ctx context.Context, orderItemID int64, reason string) (*types.Return, error) {
	var ret types.Return
	body := types.ReturnRequest{Reason: reason}
	if err := c.do(ctx, http.MethodPost, "/returns/request/"+itoa(orderItemID), nil, body, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) CancelReturn(ctx context.Context, orderItemID int64) (*types.Return, error) {
	var ret types.Return
	if err := c.do(ctx, http.MethodPatch, "/returns/cancel/"+itoa(orderItemID), nil, nil, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) MyReturns(ctx context.Context) ([]types.Return, error) {
	var rets []types.Return
	if err := c.do(ctx, http.MethodGet, "/returns/my", nil, nil, &rets); err != nil {
		return nil, err
	}
	return rets, nil
}
