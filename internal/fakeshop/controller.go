package fakeshop

import (
	"net/http"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controller serves the storefront REST API from a Store.
type Controller struct {
	store  *Store
	tokens *Tokens
	pool   *NotificationPool
	opts   Options
}

func NewController(store *Store, tokens *Tokens, pool *NotificationPool, opts Options) *Controller {
	return &Controller{store: store, tokens: tokens, pool: pool, opts: opts}
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeValidation(c, err)
		return false
	}
	return true
}

func (ctrl *Controller) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		writeValidation(c, err)
		return
	}
	acct, err := ctrl.store.Authenticate(form.Username, form.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := ctrl.tokens.Issue(acct.Username, acct.Role, ctrl.opts.IncludeRoleInLogin)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := types.LoginResponse{AccessToken: token, TokenType: "bearer"}
	if ctrl.opts.IncludeRoleInLogin {
		resp.Username = acct.Username
		resp.Role = string(acct.Role)
	}
	utils.Zlog.Info("User logged in",
		zap.String("username", acct.Username),
		zap.String("role", string(acct.Role)))
	c.JSON(http.StatusOK, resp)
}

func (ctrl *Controller) Signup(c *gin.Context) {
	var req types.SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	acct, err := ctrl.store.CreateAccount(AccountSpec{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     types.RoleCustomer,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	logOTP("Signup OTP issued", acct.Email, acct.OTP)
	c.JSON(http.StatusCreated, acct.user())
}

func (ctrl *Controller) RegisterSeller(c *gin.Context) {
	var req types.SellerSignupRequest
	if !bindJSON(c, &req) {
		return
	}
	acct, err := ctrl.store.CreateAccount(AccountSpec{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		Role:         types.RoleSeller,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	logOTP("Seller OTP issued", acct.Email, acct.OTP)
	ctrl.pool.Enqueue(NotificationJob{Kind: EventSellerRegistered, SellerID: acct.ID, Username: acct.Username})
	c.JSON(http.StatusCreated, acct.user())
}

// logOTP stands in for the mail gateway.
func logOTP(msg, email, otp string) {
	utils.Zlog.Info(msg, zap.String("email", email), zap.String("otp", otp))
}

func (ctrl *Controller) VerifyOTP(c *gin.Context) {
	var req types.OTPVerification
	if !bindJSON(c, &req) {
		return
	}
	if err := ctrl.store.VerifyOTP(req.Email, req.OTP); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Account verified successfully"})
}

// ForgotPassword answers the same way for known and unknown emails.
func (ctrl *Controller) ForgotPassword(c *gin.Context) {
	var req types.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if otp := ctrl.store.ForgotPassword(req.Email); otp != "" {
		logOTP("Password reset OTP issued", req.Email, otp)
	}
	c.JSON(http.StatusOK, types.Message{Message: "If the email is registered, an OTP has been sent"})
}

func (ctrl *Controller) ResetPassword(c *gin.Context) {
	var req types.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ctrl.store.ResetPassword(req.Email, req.OTP, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Password reset successfully"})
}

func (ctrl *Controller) Me(c *gin.Context) {
	acct := current(c)
	c.JSON(http.StatusOK, types.Identity{Username: acct.Username, Role: acct.Role})
}

func (ctrl *Controller) Products(c *gin.Context) {
	var q catalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeValidation(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.store.Products(q.Gender))
}

func (ctrl *Controller) ProductsPage(c *gin.Context) {
	var q catalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeValidation(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.store.ProductsPage(q.Page, q.PageSize, q.Gender))
}

func (ctrl *Controller) SearchProducts(c *gin.Context) {
	var q catalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeValidation(c, err)
		return
	}
	products := ctrl.store.SearchProducts(q.Name, q.Gender)
	if products == nil {
		products = []types.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (ctrl *Controller) Product(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := ctrl.store.Product(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ctrl *Controller) Reviews(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	reviews, err := ctrl.store.Reviews(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (ctrl *Controller) SimilarProducts(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	products, err := ctrl.store.SimilarProducts(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (ctrl *Controller) Cart(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.store.Cart(current(c).ID))
}

func (ctrl *Controller) AddToCart(c *gin.Context) {
	var req types.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := ctrl.store.AddToCart(current(c).ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (ctrl *Controller) SetCartQuantity(c *gin.Context) {
	var req types.QuantityUpdate
	if !bindJSON(c, &req) {
		return
	}
	line, removed, err := ctrl.store.SetCartQuantity(current(c).ID, req.ProductID, req.Quantity)
	ctrl.writeLine(c, line, removed, err)
}

func (ctrl *Controller) IncreaseCartItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	line, err := ctrl.store.IncreaseCartItem(current(c).ID, id)
	ctrl.writeLine(c, line, false, err)
}

func (ctrl *Controller) DecreaseCartItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	line, removed, err := ctrl.store.DecreaseCartItem(current(c).ID, id)
	ctrl.writeLine(c, line, removed, err)
}

// writeLine answers a quantity change. A removed line is a 200 with a detail body.
func (ctrl *Controller) writeLine(c *gin.Context, line types.CartLine, removed bool, err error) {
	switch {
	case err != nil:
		writeError(c, err)
	case removed:
		c.JSON(http.StatusOK, removedLine{Detail: lineRemoved})
	default:
		c.JSON(http.StatusOK, line)
	}
}

func (ctrl *Controller) RemoveFromCart(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := ctrl.store.RemoveFromCart(current(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: lineRemoved})
}

func (ctrl *Controller) ClearCart(c *gin.Context) {
	ctrl.store.ClearCart(current(c).ID)
	c.JSON(http.StatusOK, types.Message{Message: "Cart cleared"})
}

func (ctrl *Controller) Wishlist(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.store.Wishlist(current(c).ID))
}

func (ctrl *Controller) WishlistCheck(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.WishlistCheck{InWishlist: ctrl.store.WishlistContains(current(c).ID, id)})
}

func (ctrl *Controller) AddToWishlist(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := ctrl.store.AddToWishlist(current(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Added to wishlist"})
}

func (ctrl *Controller) RemoveFromWishlist(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := ctrl.store.RemoveFromWishlist(current(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Removed from wishlist"})
}

func (ctrl *Controller) Profile(c *gin.Context) {
	p, err := ctrl.store.Profile(current(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ctrl *Controller) UpdateProfile(c *gin.Context) {
	var req types.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	p, err := ctrl.store.UpdateProfile(current(c).ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ctrl *Controller) ChangePassword(c *gin.Context) {
	var req types.PasswordChange
	if !bindJSON(c, &req) {
		return
	}
	if err := ctrl.store.ChangePassword(current(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Password updated"})
}

func (ctrl *Controller) Addresses(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.store.Addresses(current(c).ID))
}

func (ctrl *Controller) CreateAddress(c *gin.Context) {
	var req types.AddressInput
	if !bindJSON(c, &req) {
		return
	}
	if err := ValidateAddress(&req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ctrl.store.CreateAddress(current(c).ID, req))
}

func (ctrl *Controller) UpdateAddress(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req types.AddressInput
	if !bindJSON(c, &req) {
		return
	}
	if err := ValidateAddress(&req); err != nil {
		writeError(c, err)
		return
	}
	a, err := ctrl.store.UpdateAddress(current(c).ID, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ctrl *Controller) DeleteAddress(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := ctrl.store.DeleteAddress(current(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Address deleted"})
}

func (ctrl *Controller) SetDefaultAddress(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := ctrl.store.SetDefaultAddress(current(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Default address updated"})
}

func (ctrl *Controller) Orders(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.store.Orders(current(c).ID))
}

func (ctrl *Controller) Order(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	o, err := ctrl.store.Order(current(c).ID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (ctrl *Controller) CreateOrder(c *gin.Context) {
	addressID, err := queryID(c, "address_id")
	if err != nil {
		writeError(c, err)
		return
	}
	acct := current(c)
	order, err := ctrl.store.CreateOrder(acct.ID, addressID, ctrl.opts.AutoDeliver)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Zlog.Info("Order created",
		zap.String("username", acct.Username),
		zap.String("orderNumber", order.OrderNumber),
		zap.Int("items", len(order.Items)))
	placed := order
	ctrl.pool.Enqueue(NotificationJob{Kind: EventOrderPlaced, Order: &placed})
	c.JSON(http.StatusOK, order)
}

func (ctrl *Controller) RequestReturn(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req types.ReturnRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ValidateReturnRequest(&req); err != nil {
		writeError(c, err)
		return
	}
	ret, err := ctrl.store.RequestReturn(current(c).ID, id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	requested := ret
	ctrl.pool.Enqueue(NotificationJob{Kind: EventReturnRequested, Return: &requested})
	c.JSON(http.StatusOK, ret)
}

func (ctrl *Controller) CancelReturn(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	ret, err := ctrl.store.CancelReturn(current(c).ID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}

func (ctrl *Controller) MyReturns(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.store.Returns(current(c).ID))
}

func (ctrl *Controller) Sellers(c *gin.Context) {
	sellers := ctrl.store.Sellers()
	if sellers == nil {
		sellers = []types.Seller{}
	}
	c.JSON(http.StatusOK, sellers)
}

func (ctrl *Controller) ApproveSeller(c *gin.Context) {
	if err := ctrl.store.ApproveSeller(c.Param("username")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Seller approved"})
}

func (ctrl *Controller) SellerProducts(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.store.SellerProducts(current(c).ID))
}

// itemStatusUpdate is the body of the admin fulfillment and return updates.
type itemStatusUpdate struct {
	Status string `json:"status" binding:"required"`
}

func (ctrl *Controller) SetItemStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req itemStatusUpdate
	if !bindJSON(c, &req) {
		return
	}
	status := types.FulfillmentStatus(req.Status)
	switch status {
	case types.StatusPending, types.StatusPaid, types.StatusShipped, types.StatusDelivered, types.StatusCancelled:
	default:
		writeError(c, badRequest("Unknown fulfillment status"))
		return
	}
	if err := ctrl.store.SetItemStatus(id, status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Status updated"})
}

func (ctrl *Controller) AdvanceReturn(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req itemStatusUpdate
	if !bindJSON(c, &req) {
		return
	}
	to, err := types.ParseReturnStatus(req.Status)
	if err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}
	if err := ctrl.store.AdvanceReturn(id, to); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Return updated"})
}

// notificationRoutes serves one notification feed. Sellers only reach their own rows.
type notificationRoutes struct {
	store *Store
	scope types.Role
}

func (n notificationRoutes) List(c *gin.Context) {
	var f NotificationFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		writeValidation(c, err)
		return
	}
	c.JSON(http.StatusOK, n.store.Notifications(n.scope, current(c).ID, f))
}

func (n notificationRoutes) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, types.UnreadCount{UnreadCount: n.store.UnreadCount(n.scope, current(c).ID)})
}

func (n notificationRoutes) MarkRead(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req types.NotificationUpdate
	if !bindJSON(c, &req) {
		return
	}
	if err := ValidateNotificationUpdate(&req); err != nil {
		writeError(c, err)
		return
	}
	note, err := n.store.MarkNotification(n.scope, current(c).ID, id, *req.IsRead)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (n notificationRoutes) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := n.store.DeleteNotification(n.scope, current(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Message{Message: "Notification deleted"})
}
