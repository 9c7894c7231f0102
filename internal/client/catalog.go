package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/almirah-shop/storefront/internal/types"
)

func (c *Client) Products(ctx context.Context, gender types.Gender) ([]types.Product, error) {
	q := url.Values{}
	if gender != "" {
		q.Set("gender", string(gender))
	}
	var products []types.Product
	if err := c.do(ctx, http.MethodGet, "/products", q, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) ProductsPage(ctx context.Context, page, pageSize int, gender types.Gender) (*types.ProductPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	if gender != "" {
		q.Set("gender", string(gender))
	}
	var resp types.ProductPage
	if err := c.do(ctx, http.MethodGet, "/products/paginated", q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SearchProducts(ctx context.Context, name string, gender types.Gender) ([]types.Product, error) {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	if gender != "" {
		q.Set("gender", string(gender))
	}
	var products []types.Product
	if err := c.do(ctx, http.MethodGet, "/products/search", q, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*types.Product, error) {
	var p types.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+itoa(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Reviews(ctx context.Context, productID int64) ([]types.Review, error) {
	var reviews []types.Review
	if err := c.do(ctx, http.MethodGet, "/products/"+itoa(productID)+"/reviews", nil, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) SimilarProducts(ctx context.Context, productID int64) ([]types.Product, error) {
	var products []types.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+itoa(productID)+"/similar", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}
