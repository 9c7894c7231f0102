package fakeshop

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/gin-gonic/gin"
)

const maxReturnReason = 500

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// queryID parses an optional positive id from the query string.
func queryID(c *gin.Context, name string) (*int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, badRequest(fmt.Sprintf("%s must be a positive integer", name))
	}
	return &id, nil
}

func ValidateReturnRequest(r *types.ReturnRequest) error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return badRequest("reason cannot be empty")
	}
	if len(r.Reason) > maxReturnReason {
		return badRequest(fmt.Sprintf("reason must be at most %d characters", maxReturnReason))
	}
	return nil
}

func ValidateNotificationUpdate(u *types.NotificationUpdate) error {
	if u.IsRead == nil {
		return badRequest("is_read is required")
	}
	return nil
}

// ValidateAddress normalizes free text fields and checks the tag.
func ValidateAddress(in *types.AddressInput) error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Line1 = strings.TrimSpace(in.Line1)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Tag = types.AddressTag(strings.ToLower(string(in.Tag)))
	switch in.Tag {
	case types.AddressTagHome, types.AddressTagOffice, types.AddressTagOther:
	default:
		return badRequest("tag must be home, office or other")
	}
	if len(in.Pincode) != 6 {
		return badRequest("pincode must have 6 digits")
	}
	if len(in.Phone) != 10 {
		return badRequest("phone must have 10 digits")
	}
	return nil
}
