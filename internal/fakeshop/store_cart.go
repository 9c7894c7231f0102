package fakeshop

import (
	"github.com/almirah-shop/storefront/internal/types"
)

func (s *Store) Cart(userID int64) []types.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.CartLine{}, s.carts[userID]...)
}

func (s *Store) cartIndex(userID, productID int64) int {
	for i, l := range s.carts[userID] {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddToCart merges into an existing line for the same product.
func (s *Store) AddToCart(userID int64, req types.AddToCartRequest) (types.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[req.ProductID]
	if !ok {
		return types.CartLine{}, notFound("Product not found")
	}
	if !p.InStock {
		return types.CartLine{}, badRequest("Product is out of stock")
	}
	if i := s.cartIndex(userID, req.ProductID); i >= 0 {
		line := &s.carts[userID][i]
		line.Quantity += req.Quantity
		if req.Size != nil {
			line.Size = req.Size
		}
		if req.Color != nil {
			line.Color = req.Color
		}
		return *line, nil
	}
	line := types.CartLine{
		ID:        s.nextID(),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	}
	s.carts[userID] = append(s.carts[userID], line)
	return line, nil
}

// SetCartQuantity returns removed=true when quantity <= 0 dropped the line.
func (s *Store) SetCartQuantity(userID, productID int64, quantity int) (types.CartLine, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.cartIndex(userID, productID)
	if i < 0 {
		return types.CartLine{}, false, notFound("Item not in cart")
	}
	if quantity <= 0 {
		s.dropLine(userID, i)
		return types.CartLine{}, true, nil
	}
	s.carts[userID][i].Quantity = quantity
	return s.carts[userID][i], false, nil
}

// IncreaseCartItem adds a line with quantity 1 when the product is not in the cart.
func (s *Store) IncreaseCartItem(userID, productID int64) (types.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return types.CartLine{}, notFound("Product not found")
	}
	if i := s.cartIndex(userID, productID); i >= 0 {
		s.carts[userID][i].Quantity++
		return s.carts[userID][i], nil
	}
	line := types.CartLine{ID: s.nextID(), ProductID: productID, Quantity: 1}
	s.carts[userID] = append(s.carts[userID], line)
	return line, nil
}

func (s *Store) DecreaseCartItem(userID, productID int64) (types.CartLine, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.cartIndex(userID, productID)
	if i < 0 {
		return types.CartLine{}, false, notFound("Item not in cart")
	}
	if s.carts[userID][i].Quantity <= 1 {
		s.dropLine(userID, i)
		return types.CartLine{}, true, nil
	}
	s.carts[userID][i].Quantity--
	return s.carts[userID][i], false, nil
}

func (s *Store) RemoveFromCart(userID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.cartIndex(userID, productID)
	if i < 0 {
		return notFound("Item not in cart")
	}
	s.dropLine(userID, i)
	return nil
}

func (s *Store) ClearCart(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

func (s *Store) dropLine(userID int64, i int) {
	lines := s.carts[userID]
	s.carts[userID] = append(lines[:i:i], lines[i+1:]...)
}

func (s *Store) Wishlist(userID int64) []types.WishlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.WishlistItem, 0, len(s.wishlists[userID]))
	for _, it := range s.wishlists[userID] {
		if p, ok := s.products[it.ProductID]; ok {
			it.Product = &p
		}
		out = append(out, it)
	}
	return out
}

func (s *Store) wishlistIndex(userID, productID int64) int {
	for i, it := range s.wishlists[userID] {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) WishlistContains(userID, productID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wishlistIndex(userID, productID) >= 0
}

func (s *Store) AddToWishlist(userID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return notFound("Product not found")
	}
	if s.wishlistIndex(userID, productID) >= 0 {
		return badRequest("Product already in wishlist")
	}
	s.wishlists[userID] = append(s.wishlists[userID], types.WishlistItem{ID: s.nextID(), ProductID: productID})
	return nil
}

func (s *Store) RemoveFromWishlist(userID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.wishlistIndex(userID, productID)
	if i < 0 {
		return notFound("Product not in wishlist")
	}
	items := s.wishlists[userID]
	s.wishlists[userID] = append(items[:i:i], items[i+1:]...)
	return nil
}
