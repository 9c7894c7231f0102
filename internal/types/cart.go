package types

// CartLine is a server-owned cart row. Quantity is always >= 1.
type CartLine struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Size      *string `json:"size,omitempty"`
	Color     *string `json:"color,omitempty"`
}

// AddToCartRequest is the body of POST /cart/add.
type AddToCartRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Size      *string `json:"size,omitempty"`
	Color     *string `json:"color,omitempty"`
}

// QuantityUpdate is the body of PATCH /cart/quantity.
type QuantityUpdate struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type WishlistItem struct {
	ID        int64    `json:"id"`
	ProductID int64    `json:"product_id"`
	Product   *Product `json:"product,omitempty"`
}

// WishlistCheck is the body of GET /wishlist/check/:id.
type WishlistCheck struct {
	InWishlist bool `json:"in_wishlist"`
}

// Message is the generic {"message": ...} acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
