package types

import "github.com/shopspring/decimal"

type Gender string

const (
	GenderMen    Gender = "men"
	GenderWomen  Gender = "women"
	GenderUnisex Gender = "unisex"
)

func (g Gender) Valid() bool {
	switch g {
	case "", GenderMen, GenderWomen, GenderUnisex:
		return true
	}
	return false
}

type Product struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
	Price           float64  `json:"price"`
	DiscountedPrice *float64 `json:"discounted_price,omitempty"`
	Gender          Gender   `json:"gender,omitempty"`
	Category        string   `json:"category,omitempty"`
	InStock         bool     `json:"in_stock"`
	Sizes           []string `json:"sizes,omitempty"`
	Colors          []string `json:"colors,omitempty"`
}

// EffectivePrice is the discounted price when it is set, positive and below
// the list price; otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	price := decimal.NewFromFloat(p.Price)
	if p.DiscountedPrice == nil {
		return price
	}
	discounted := decimal.NewFromFloat(*p.DiscountedPrice)
	if discounted.IsPositive() && discounted.LessThan(price) {
		return discounted
	}
	return price
}

func (p Product) Discounted() bool {
	return !p.EffectivePrice().Equal(decimal.NewFromFloat(p.Price))
}

// ProductPage is the body of GET /products/paginated.
type ProductPage struct {
	Items    []Product `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

type Review struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Username  string `json:"username"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}
