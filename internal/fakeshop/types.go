package fakeshop

import (
	"strings"

	"github.com/almirah-shop/storefront/internal/types"
)

// LoginForm is the form body of POST /users/login.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// NotificationFilter narrows a notification listing. Filter is the seller
// side filter; TypeFilter and IsRead are admin side.
type NotificationFilter struct {
	Skip       int    `form:"skip" binding:"min=0"`
	Limit      int    `form:"limit" binding:"min=0,max=200"`
	Filter     string `form:"filter"`
	TypeFilter string `form:"type_filter"`
	IsRead     *bool  `form:"is_read"`
}

func (f NotificationFilter) match(n types.Notification) bool {
	if f.Filter != "" && !strings.EqualFold(f.Filter, n.Type) {
		return false
	}
	if f.TypeFilter != "" && !strings.EqualFold(f.TypeFilter, n.Type) {
		return false
	}
	if f.IsRead != nil && *f.IsRead != n.IsRead {
		return false
	}
	return true
}

type catalogQuery struct {
	Page     int          `form:"page,default=1" binding:"min=1"`
	PageSize int          `form:"page_size,default=12" binding:"min=1,max=60"`
	Gender   types.Gender `form:"gender" binding:"omitempty,oneof=men women unisex"`
	Name     string       `form:"name"`
}

type removedLine struct {
	Detail string `json:"detail"`
}

const lineRemoved = "Item removed from cart"
