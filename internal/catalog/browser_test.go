package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageCall struct {
	page, size int
	gender     types.Gender
}

type fakeCatalog struct {
	products    []types.Product
	pageCalls   []pageCall
	searchCalls []string
	reviewsErr  error
	similarErr  error
	productErr  error
}

func (f *fakeCatalog) ProductsPage(ctx context.Context, page, pageSize int, gender types.Gender) (*types.ProductPage, error) {
	f.pageCalls = append(f.pageCalls, pageCall{page, pageSize, gender})
	items := f.filter(gender)
	p := slicePage(items, page, pageSize)
	return &types.ProductPage{Items: p.Items, Total: p.Total, Page: page, PageSize: pageSize}, nil
}

func (f *fakeCatalog) SearchProducts(ctx context.Context, name string, gender types.Gender) ([]types.Product, error) {
	f.searchCalls = append(f.searchCalls, name)
	return f.filter(gender), nil
}

func (f *fakeCatalog) Product(ctx context.Context, id int64) (*types.Product, error) {
	if f.productErr != nil {
		return nil, f.productErr
	}
	return &types.Product{ID: id, Name: "Kurta"}, nil
}

func (f *fakeCatalog) Reviews(ctx context.Context, productID int64) ([]types.Review, error) {
	if f.reviewsErr != nil {
		return nil, f.reviewsErr
	}
	return []types.Review{{ID: 1, ProductID: productID, Rating: 5}}, nil
}

func (f *fakeCatalog) SimilarProducts(ctx context.Context, productID int64) ([]types.Product, error) {
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	return []types.Product{{ID: productID + 1}}, nil
}

func (f *fakeCatalog) filter(g types.Gender) []types.Product {
	var out []types.Product
	for _, p := range f.products {
		if g == "" || p.Gender == g {
			out = append(out, p)
		}
	}
	return out
}

func newCatalog(n int) *fakeCatalog {
	f := &fakeCatalog{}
	for i := 1; i <= n; i++ {
		g := types.GenderMen
		if i%2 == 0 {
			g = types.GenderWomen
		}
		f.products = append(f.products, types.Product{ID: int64(i), Name: fmt.Sprintf("item-%d", i), Gender: g})
	}
	return f
}

func TestBrowser_PaginatesThroughServer(t *testing.T) {
	f := newCatalog(30)
	b := NewBrowser(f, 12)
	ctx := context.Background()

	page, err := b.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 12)
	assert.False(t, page.HasPrev())

	page, err = b.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)

	page, err = b.Goto(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, page.Items, 6)
	assert.False(t, page.HasNext())

	page, err = b.Prev(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)

	assert.Equal(t, []pageCall{{1, 12, ""}, {2, 12, ""}, {3, 12, ""}, {2, 12, ""}}, f.pageCalls)
	assert.Empty(t, f.searchCalls)
}

func TestBrowser_NextStopsAtLastPage(t *testing.T) {
	f := newCatalog(30)
	b := NewBrowser(f, 12)
	ctx := context.Background()

	_, err := b.Goto(ctx, 3)
	require.NoError(t, err)

	page, err := b.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Len(t, page.Items, 6)
	assert.Equal(t, 3, b.Filter().Page)
	assert.Len(t, f.pageCalls, 1)
}

func TestBrowser_FilterChangesResetPage(t *testing.T) {
	f := newCatalog(30)
	b := NewBrowser(f, 5)
	ctx := context.Background()

	_, err := b.Goto(ctx, 3)
	require.NoError(t, err)

	page, err := b.SetGender(ctx, types.GenderWomen)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 15, page.Total)

	_, err = b.Goto(ctx, 2)
	require.NoError(t, err)
	page, err = b.SetSearch(ctx, "  item ")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, "item", b.Filter().Search)
	assert.Equal(t, []string{"item"}, f.searchCalls)
}

func TestBrowser_SearchSlicesLocally(t *testing.T) {
	f := newCatalog(7)
	b := NewBrowser(f, 3)
	ctx := context.Background()

	page, err := b.SetSearch(ctx, "item")
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 3, page.TotalPages)

	page, err = b.Goto(ctx, 3)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(7), page.Items[0].ID)

	// Past the last page clamps to the last page.
	page, err = b.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
}

func TestBrowser_RejectsBadInput(t *testing.T) {
	f := newCatalog(3)
	b := NewBrowser(f, 12)

	_, err := b.SetGender(context.Background(), "kids")
	assert.Error(t, err)
	_, err = b.Goto(context.Background(), 0)
	assert.Error(t, err)
	assert.Empty(t, f.pageCalls)
}

func TestBrowser_PageSizeClamped(t *testing.T) {
	assert.Equal(t, 60, NewBrowser(newCatalog(1), 500).Filter().PageSize)
}

func TestBrowser_Detail(t *testing.T) {
	f := newCatalog(1)
	b := NewBrowser(f, 12)

	d, err := b.Detail(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.Product.ID)
	assert.Len(t, d.Reviews, 1)
	assert.Len(t, d.Similar, 1)

	f.reviewsErr = errors.New("reviews down")
	f.similarErr = errors.New("similar down")
	d, err = b.Detail(context.Background(), 4)
	require.NoError(t, err)
	assert.Empty(t, d.Reviews)
	assert.NotNil(t, d.Reviews)
	assert.Empty(t, d.Similar)

	f.productErr = errors.New("not found")
	_, err = b.Detail(context.Background(), 4)
	assert.ErrorIs(t, err, f.productErr)
}
