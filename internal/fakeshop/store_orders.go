package fakeshop

import (
	"fmt"
	"strings"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *Store) Addresses(userID int64) []types.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Address{}, s.addresses[userID]...)
}

func addressFromInput(id int64, in types.AddressInput) types.Address {
	return types.Address{
		ID:        id,
		FullName:  in.FullName,
		Phone:     in.Phone,
		Line1:     in.Line1,
		Line2:     in.Line2,
		Landmark:  in.Landmark,
		City:      in.City,
		State:     in.State,
		Pincode:   in.Pincode,
		Tag:       in.Tag,
		IsDefault: in.IsDefault,
	}
}

// CreateAddress saves an address. The first address, or one flagged default,
// becomes the only default.
func (s *Store) CreateAddress(userID int64, in types.AddressInput) types.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := addressFromInput(s.nextID(), in)
	if len(s.addresses[userID]) == 0 {
		a.IsDefault = true
	}
	s.addresses[userID] = append(s.addresses[userID], a)
	if a.IsDefault {
		s.setDefault(userID, a.ID)
	}
	return a
}

func (s *Store) UpdateAddress(userID, id int64, in types.AddressInput) (types.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	for i := range list {
		if list[i].ID != id {
			continue
		}
		wasDefault := list[i].IsDefault
		list[i] = addressFromInput(id, in)
		list[i].IsDefault = wasDefault || in.IsDefault
		if in.IsDefault {
			s.setDefault(userID, id)
		}
		return list[i], nil
	}
	return types.Address{}, notFound("Address not found")
}

// DeleteAddress removes an address; deleting the default promotes the first remaining one.
func (s *Store) DeleteAddress(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	for i := range list {
		if list[i].ID != id {
			continue
		}
		wasDefault := list[i].IsDefault
		list = append(list[:i:i], list[i+1:]...)
		if wasDefault && len(list) > 0 {
			list[0].IsDefault = true
		}
		s.addresses[userID] = list
		return nil
	}
	return notFound("Address not found")
}

func (s *Store) SetDefaultAddress(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.setDefault(userID, id) {
		return notFound("Address not found")
	}
	return nil
}

func (s *Store) setDefault(userID, id int64) bool {
	found := false
	list := s.addresses[userID]
	for i := range list {
		list[i].IsDefault = list[i].ID == id
		found = found || list[i].ID == id
	}
	return found
}

func (s *Store) resolveAddress(userID int64, addressID *int64) (types.Address, error) {
	list := s.addresses[userID]
	if len(list) == 0 {
		return types.Address{}, withCode(400, types.CodeAddressRequired, "Address required. Please add a shipping address before checkout.")
	}
	if addressID != nil {
		for _, a := range list {
			if a.ID == *addressID {
				return a, nil
			}
		}
		return types.Address{}, notFound("Address not found")
	}
	for _, a := range list {
		if a.IsDefault {
			return a, nil
		}
	}
	return list[0], nil
}

// CreateOrder turns the cart into an order at current effective prices and
// empties the cart. With deliver set, items are marked delivered right away.
func (s *Store) CreateOrder(userID int64, addressID *int64, deliver bool) (types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr, err := s.resolveAddress(userID, addressID)
	if err != nil {
		return types.Order{}, err
	}
	lines := s.carts[userID]
	if len(lines) == 0 {
		return types.Order{}, badRequest("Cart is empty")
	}

	status := types.StatusPending
	if deliver {
		status = types.StatusDelivered
	}
	order := types.Order{
		ID:          s.nextID(),
		OrderNumber: "ALM-" + strings.ToUpper(uuid.NewString()[:8]),
		UserID:      userID,
		Status:      status,
		AddressID:   &addr.ID,
		CreatedAt:   s.now().UTC(),
	}
	total := decimal.Zero
	for _, l := range lines {
		p, ok := s.products[l.ProductID]
		if !ok {
			return types.Order{}, notFound(fmt.Sprintf("Product id %d not found", l.ProductID))
		}
		price := p.EffectivePrice()
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		order.Items = append(order.Items, types.OrderItem{
			ID:        s.nextID(),
			ProductID: p.ID,
			Quantity:  l.Quantity,
			Price:     price.InexactFloat64(),
			Status:    status,
			Size:      l.Size,
			Color:     l.Color,
		})
	}
	order.TotalPrice = total.Round(2).InexactFloat64()
	s.orders[userID] = append(s.orders[userID], order)
	delete(s.carts, userID)
	return order, nil
}

func (s *Store) Orders(userID int64) []types.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Order{}, s.orders[userID]...)
}

func (s *Store) Order(userID, id int64) (types.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders[userID] {
		if o.ID == id {
			return o, nil
		}
	}
	return types.Order{}, notFound("Order not found or access denied")
}

// SetItemStatus moves an order item to a fulfillment status.
func (s *Store) SetItemStatus(orderItemID int64, status types.FulfillmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uid := range s.orders {
		if o, it := s.findItem(uid, orderItemID); it != nil {
			it.Status = status
			o.Status = status
			return nil
		}
	}
	return notFound("Order item not found")
}

func (s *Store) findItem(userID, orderItemID int64) (*types.Order, *types.OrderItem) {
	orders := s.orders[userID]
	for i := range orders {
		for j := range orders[i].Items {
			if orders[i].Items[j].ID == orderItemID {
				return &orders[i], &orders[i].Items[j]
			}
		}
	}
	return nil, nil
}

// RequestReturn opens a return for a delivered item that has none in progress.
func (s *Store) RequestReturn(userID, orderItemID int64, reason string) (types.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, item := s.findItem(userID, orderItemID)
	if item == nil {
		return types.Return{}, notFound("Order item not found")
	}
	if item.Status != types.StatusDelivered {
		return types.Return{}, badRequest("Only delivered items can be returned")
	}
	if !types.CanTransition(item.ReturnStatus, types.ReturnRequested) {
		return types.Return{}, badRequest("A return already exists for this item")
	}
	item.ReturnStatus = types.ReturnRequested
	ret := types.Return{
		ID:          s.nextID(),
		OrderID:     order.ID,
		OrderItemID: item.ID,
		ProductID:   item.ProductID,
		Reason:      reason,
		Status:      types.ReturnRequested,
		CreatedAt:   s.now().UTC(),
	}
	s.returns[userID] = append(s.returns[userID], ret)
	return ret, nil
}

// CancelReturn withdraws a return that is still only requested.
func (s *Store) CancelReturn(userID, orderItemID int64) (types.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, item := s.findItem(userID, orderItemID)
	if item == nil {
		return types.Return{}, notFound("Order item not found")
	}
	if item.ReturnStatus != types.ReturnRequested {
		return types.Return{}, badRequest("Only a requested return can be cancelled")
	}
	item.ReturnStatus = types.ReturnNone
	rets := s.returns[userID]
	for i := range rets {
		if rets[i].OrderItemID == orderItemID {
			cancelled := rets[i]
			cancelled.Status = types.ReturnNone
			s.returns[userID] = append(rets[:i:i], rets[i+1:]...)
			return cancelled, nil
		}
	}
	return types.Return{OrderItemID: orderItemID}, nil
}

// AdvanceReturn moves a return along its state machine.
func (s *Store) AdvanceReturn(orderItemID int64, to types.ReturnStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uid, rets := range s.returns {
		for i := range rets {
			if rets[i].OrderItemID != orderItemID {
				continue
			}
			if !types.CanTransition(rets[i].Status, to) {
				return badRequest(fmt.Sprintf("Cannot move return from %s to %s", rets[i].Status, to))
			}
			rets[i].Status = to
			if _, item := s.findItem(uid, orderItemID); item != nil {
				item.ReturnStatus = to
			}
			return nil
		}
	}
	return notFound("Return not found")
}

func (s *Store) Returns(userID int64) []types.Return {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Return{}, s.returns[userID]...)
}

// Owner returns the seller account id of a product, or 0.
func (s *Store) Owner(productID int64) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owners[productID]
}

func (s *Store) AddNotification(scope types.Role, n types.Notification) types.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.nextID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	if n.Priority == "" {
		n.Priority = types.PriorityMedium
	}
	s.notifications[scope] = append(s.notifications[scope], n)
	return n
}

// visible reports whether n belongs to the caller of scope; sellers only see their own.
func visible(scope types.Role, sellerID int64, n types.Notification) bool {
	if scope != types.RoleSeller {
		return true
	}
	return n.SellerID != nil && *n.SellerID == sellerID
}

// Notifications lists newest first.
func (s *Store) Notifications(scope types.Role, sellerID int64, f NotificationFilter) []types.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.notifications[scope]
	out := []types.Notification{}
	for i := len(all) - 1; i >= 0; i-- {
		n := all[i]
		if !visible(scope, sellerID, n) || !f.match(n) {
			continue
		}
		out = append(out, n)
	}
	start := min(f.Skip, len(out))
	end := len(out)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(out))
	}
	return out[start:end]
}

func (s *Store) UnreadCount(scope types.Role, sellerID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, note := range s.notifications[scope] {
		if visible(scope, sellerID, note) && !note.IsRead {
			n++
		}
	}
	return n
}

func (s *Store) MarkNotification(scope types.Role, sellerID, id int64, read bool) (types.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.notifications[scope]
	for i := range list {
		if list[i].ID == id && visible(scope, sellerID, list[i]) {
			list[i].IsRead = read
			return list[i], nil
		}
	}
	return types.Notification{}, notFound("Notification not found")
}

func (s *Store) DeleteNotification(scope types.Role, sellerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.notifications[scope]
	for i := range list {
		if list[i].ID == id && visible(scope, sellerID, list[i]) {
			s.notifications[scope] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return notFound("Notification not found")
}
