package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/almirah-shop/storefront/internal/config"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Backend is the subset of the API client used for browsing.
type Backend interface {
	ProductsPage(ctx context.Context, page, pageSize int, gender types.Gender) (*types.ProductPage, error)
	SearchProducts(ctx context.Context, name string, gender types.Gender) ([]types.Product, error)
	Product(ctx context.Context, id int64) (*types.Product, error)
	Reviews(ctx context.Context, productID int64) ([]types.Review, error)
	SimilarProducts(ctx context.Context, productID int64) ([]types.Product, error)
}

type Filter struct {
	Search   string
	Gender   types.Gender
	Page     int
	PageSize int
}

type Page struct {
	Items      []types.Product
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

func (p Page) HasNext() bool { return p.Page < p.TotalPages }
func (p Page) HasPrev() bool { return p.Page > 1 }

// Detail is a product with its reviews and similar products.
type Detail struct {
	Product *types.Product
	Reviews []types.Review
	Similar []types.Product
}

// Browser holds the current filter and the last fetched page.
type Browser struct {
	api Backend

	mu     sync.Mutex
	filter Filter
	last   Page
}

func NewBrowser(api Backend, pageSize int) *Browser {
	return &Browser{
		api:    api,
		filter: Filter{Page: 1, PageSize: config.ClampPageSize(pageSize)},
	}
}

func (b *Browser) Filter() Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// Fetch loads the page for the current filter.
func (b *Browser) Fetch(ctx context.Context) (Page, error) {
	return b.apply(ctx, func(f *Filter) error { return nil })
}

// SetSearch changes the search text and goes back to the first page.
func (b *Browser) SetSearch(ctx context.Context, search string) (Page, error) {
	return b.apply(ctx, func(f *Filter) error {
		f.Search = strings.TrimSpace(search)
		f.Page = 1
		return nil
	})
}

// SetGender changes the gender filter and goes back to the first page.
func (b *Browser) SetGender(ctx context.Context, gender types.Gender) (Page, error) {
	return b.apply(ctx, func(f *Filter) error {
		if !gender.Valid() {
			return fmt.Errorf("unknown gender %q", gender)
		}
		f.Gender = gender
		f.Page = 1
		return nil
	})
}

// Next moves one page forward. On the last known page it returns that page
// without fetching.
func (b *Browser) Next(ctx context.Context) (Page, error) {
	b.mu.Lock()
	last := b.last
	b.mu.Unlock()
	if last.TotalPages > 0 && !last.HasNext() {
		return last, nil
	}
	return b.apply(ctx, func(f *Filter) error {
		f.Page++
		return nil
	})
}

func (b *Browser) Prev(ctx context.Context) (Page, error) {
	return b.apply(ctx, func(f *Filter) error {
		if f.Page > 1 {
			f.Page--
		}
		return nil
	})
}

func (b *Browser) Goto(ctx context.Context, page int) (Page, error) {
	return b.apply(ctx, func(f *Filter) error {
		if page < 1 {
			return fmt.Errorf("page must be at least 1, got %d", page)
		}
		f.Page = page
		return nil
	})
}

func (b *Browser) apply(ctx context.Context, change func(*Filter) error) (Page, error) {
	b.mu.Lock()
	next := b.filter
	b.mu.Unlock()
	if err := change(&next); err != nil {
		return Page{}, err
	}

	page, err := b.load(ctx, next)
	if err != nil {
		return Page{}, err
	}

	b.mu.Lock()
	b.filter = next
	b.filter.Page = page.Page
	b.last = page
	b.mu.Unlock()
	return page, nil
}

func (b *Browser) load(ctx context.Context, f Filter) (Page, error) {
	if f.Search == "" {
		resp, err := b.api.ProductsPage(ctx, f.Page, f.PageSize, f.Gender)
		if err != nil {
			return Page{}, fmt.Errorf("failed to load products: %w", err)
		}
		size := resp.PageSize
		if size < 1 {
			size = f.PageSize
		}
		page := resp.Page
		if page < 1 {
			page = f.Page
		}
		return Page{
			Items:      resp.Items,
			Total:      resp.Total,
			Page:       page,
			PageSize:   size,
			TotalPages: totalPages(resp.Total, size),
		}, nil
	}

	results, err := b.api.SearchProducts(ctx, f.Search, f.Gender)
	if err != nil {
		return Page{}, fmt.Errorf("failed to search products: %w", err)
	}
	return slicePage(results, f.Page, f.PageSize), nil
}

// slicePage paginates search results locally; the search endpoint is not paginated.
func slicePage(items []types.Product, page, size int) Page {
	pages := totalPages(len(items), size)
	if page > pages && pages > 0 {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	if start > end {
		start = end
	}
	return Page{
		Items:      items[start:end],
		Total:      len(items),
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
	}
}

func totalPages(total, size int) int {
	if size < 1 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Detail fetches a product together with its reviews and similar products.
// Only a product failure is returned; the other two degrade to empty lists.
func (b *Browser) Detail(ctx context.Context, id int64) (*Detail, error) {
	var (
		d   Detail
		g   errgroup.Group
		err error
	)
	g.Go(func() error {
		d.Product, err = b.api.Product(ctx, id)
		return err
	})
	g.Go(func() error {
		reviews, rerr := b.api.Reviews(ctx, id)
		if rerr != nil {
			utils.Zlog.Warn("Failed to load reviews", zap.Int64("productId", id), zap.Error(rerr))
			reviews = []types.Review{}
		}
		d.Reviews = reviews
		return nil
	})
	g.Go(func() error {
		similar, serr := b.api.SimilarProducts(ctx, id)
		if serr != nil {
			utils.Zlog.Warn("Failed to load similar products", zap.Int64("productId", id), zap.Error(serr))
			similar = []types.Product{}
		}
		d.Similar = similar
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	return &d, nil
}
