package fakeshop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	Secret    string
	TokenTTL  time.Duration
	Workers   int
	QueueSize int
	// IncludeRoleInLogin adds username and role to the login response and token.
	IncludeRoleInLogin bool
	// AutoDeliver marks new orders delivered so returns can be exercised.
	AutoDeliver bool
}

// RegisterRoutes mounts the API on router and starts the notification pool
// backing it. The caller stops the returned pool.
func RegisterRoutes(router *gin.RouterGroup, store *Store, opts Options) *NotificationPool {
	queueCapacity := opts.QueueSize
	if queueCapacity <= 0 {
		queueCapacity = 100
	}
	workers := NewNotificationPool(opts.Workers, queueCapacity, store)
	workers.Start()

	tokens := NewTokens(opts.Secret, opts.TokenTTL)
	ctrl := NewController(store, tokens, workers, opts)
	auth := authenticate(store, tokens)

	router.POST("/users/login", ctrl.Login)
	router.POST("/users/signup", ctrl.Signup)
	router.POST("/users/register-seller", ctrl.RegisterSeller)
	router.POST("/verify-otp", ctrl.VerifyOTP)
	router.POST("/auth/forgot-password", ctrl.ForgotPassword)
	router.POST("/auth/reset-password", ctrl.ResetPassword)
	router.GET("/users/me", auth, ctrl.Me)

	products := router.Group("/products")
	products.GET("", ctrl.Products)
	products.GET("/paginated", ctrl.ProductsPage)
	products.GET("/search", ctrl.SearchProducts)
	products.GET("/:id", ctrl.Product)
	products.GET("/:id/reviews", ctrl.Reviews)
	products.GET("/:id/similar", ctrl.SimilarProducts)

	cart := router.Group("/cart", auth)
	cart.GET("", ctrl.Cart)
	cart.POST("/add", ctrl.AddToCart)
	cart.PATCH("/quantity", ctrl.SetCartQuantity)
	cart.POST("/increase/:id", ctrl.IncreaseCartItem)
	cart.POST("/decrease/:id", ctrl.DecreaseCartItem)
	cart.DELETE("/remove/:id", ctrl.RemoveFromCart)
	cart.DELETE("/clear", ctrl.ClearCart)

	wishlist := router.Group("/wishlist", auth)
	wishlist.GET("", ctrl.Wishlist)
	wishlist.GET("/check/:id", ctrl.WishlistCheck)
	wishlist.POST("/add/:id", ctrl.AddToWishlist)
	wishlist.DELETE("/remove/:id", ctrl.RemoveFromWishlist)

	profile := router.Group("/profile", auth)
	profile.GET("/me", ctrl.Profile)
	profile.PUT("/update", ctrl.UpdateProfile)
	profile.PUT("/change-password", ctrl.ChangePassword)
	profile.GET("/addresses", ctrl.Addresses)
	profile.POST("/addresses", ctrl.CreateAddress)
	profile.PUT("/addresses/:id", ctrl.UpdateAddress)
	profile.DELETE("/addresses/:id", ctrl.DeleteAddress)
	profile.POST("/addresses/:id/set-default", ctrl.SetDefaultAddress)

	orders := router.Group("/orders", auth)
	orders.GET("", ctrl.Orders)
	orders.POST("/create", ctrl.CreateOrder)
	orders.GET("/:id", ctrl.Order)

	returns := router.Group("/returns", auth)
	returns.POST("/request/:id", ctrl.RequestReturn)
	returns.PATCH("/cancel/:id", ctrl.CancelReturn)
	returns.GET("/my", ctrl.MyReturns)

	seller := router.Group("/seller", auth, requireSeller())
	seller.GET("/products", ctrl.SellerProducts)
	mountNotifications(seller.Group("/notifications"), notificationRoutes{store: store, scope: types.RoleSeller})

	admin := router.Group("/admin", auth, requireAdmin())
	admin.GET("/sellers", ctrl.Sellers)
	admin.POST("/sellers/:username/approve", ctrl.ApproveSeller)
	admin.PATCH("/order-items/:id/status", ctrl.SetItemStatus)
	admin.PATCH("/returns/:id/status", ctrl.AdvanceReturn)
	mountNotifications(admin.Group("/notifications"), notificationRoutes{store: store, scope: types.RoleAdmin})

	return workers
}

func mountNotifications(g *gin.RouterGroup, n notificationRoutes) {
	g.GET("", n.List)
	g.GET("/unread/count", n.UnreadCount)
	g.PATCH("/:id/read", n.MarkRead)
	g.DELETE("/:id", n.Delete)
}

// requestLogger logs one line per request with the caller's request id.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		utils.Zlog.Debug("Request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("requestId", c.GetHeader("X-Request-ID")),
			zap.Duration("duration", time.Since(start)))
	}
}

// Server is a runnable backend around a Store.
type Server struct {
	engine  *gin.Engine
	workers *NotificationPool
	http    *http.Server
}

func NewServer(store *Store, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.NoRoute(func(c *gin.Context) {
		writeError(c, notFound("Not Found"))
	})
	workers := RegisterRoutes(engine.Group(""), store, opts)
	return &Server{engine: engine, workers: workers}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves on addr until Close is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	utils.Zlog.Info("Fake shop listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Close drains in-flight requests and stops the notification workers.
func (s *Server) Close(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.workers.Stop(ctx)
	return err
}
