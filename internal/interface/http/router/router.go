// Package router 组装gin引擎：全局中间件、运维端点和/api/v1路由
package router

import (
	"fmt"

	"github.com/MonkyMars/gecho"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/tintayhojas/internal/infrastructure/config"
	"github.com/xiebiao/tintayhojas/internal/interface/http/handler"
	"github.com/xiebiao/tintayhojas/internal/interface/http/middleware"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	Catalog *handler.CatalogHandler
	Review  *handler.ReviewHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	User    *handler.UserHandler
	Admin   *handler.AdminHandler
}

// New 创建gin引擎并注册所有路由
func New(
	cfg *config.Config,
	logger *gecho.Logger,
	h *Handlers,
	auth *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
) (*gin.Engine, error) {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	if err := handler.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("注册校验规则失败: %w", err)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20
	r.Use(
		middleware.Logger(logger),
		gin.Recovery(),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(),
	)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// 生产环境文档关闭，图片由反向代理直接提供
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		r.Static(cfg.Server.MediaURL, cfg.Server.MediaRoot)
	}

	v1 := r.Group("/api/v1")
	registerPublic(v1, h, auth, limiter)
	registerAccount(v1, h, auth, limiter)
	registerAdmin(v1, h, auth)

	return r, nil
}

// registerPublic 无需登录的目录接口
func registerPublic(v1 *gin.RouterGroup, h *Handlers, auth *middleware.AuthMiddleware, limiter *middleware.RateLimiter) {
	v1.GET("/home", h.Catalog.Home)
	v1.GET("/collections", h.Catalog.ListCollections)
	v1.GET("/authors", h.Catalog.ListAuthors)
	v1.GET("/authors/:id", h.Catalog.GetAuthor)
	v1.GET("/reviews", h.Catalog.ListReviews)

	books := v1.Group("/books")
	{
		books.GET("", h.Catalog.ListBooks)
		books.GET("/:id", auth.OptionalAuth(), h.Catalog.GetBook)
		books.POST("/:id/reviews", auth.RequireAuth(), h.Review.Submit)
	}

	users := v1.Group("/users")
	{
		users.POST("/register", limiter.Limit(), h.User.Register)
		users.POST("/login", limiter.Limit(), h.User.Login)
		users.POST("/refresh", h.User.Refresh)
		users.POST("/logout", auth.RequireAuth(), h.User.Logout)
	}
}

// registerAccount 需要登录的个人接口：资料、购物车、结账、订单
func registerAccount(v1 *gin.RouterGroup, h *Handlers, auth *middleware.AuthMiddleware, limiter *middleware.RateLimiter) {
	authorized := v1.Group("")
	authorized.Use(auth.RequireAuth())
	{
		authorized.GET("/profile", h.User.GetProfile)
		authorized.PUT("/profile", h.User.UpdateProfile)
		authorized.GET("/profile/orders", h.Order.MyOrders)

		authorized.GET("/cart", h.Cart.View)
		authorized.POST("/cart/books/:id", h.Cart.Add)
		authorized.PATCH("/cart/items/:id", h.Cart.ChangeItem)
		authorized.DELETE("/cart/items/:id", h.Cart.RemoveItem)

		authorized.GET("/checkout", h.Order.Preview)
		authorized.POST("/checkout", limiter.Limit(), h.Order.Checkout)

		authorized.GET("/orders/:id/receipt", h.Order.Receipt)
		authorized.GET("/orders/:id/receipt.pdf", h.Order.ReceiptPDF)
	}
}

// registerAdmin 后台接口，权限以数据库中的is_staff为准
func registerAdmin(v1 *gin.RouterGroup, h *Handlers, auth *middleware.AuthMiddleware) {
	a := v1.Group("/admin")
	a.Use(auth.RequireAuth(), auth.RequireStaff())

	a.GET("/dashboard", h.Admin.Dashboard)

	a.GET("/books", h.Admin.ListBooks)
	a.POST("/books", h.Admin.CreateBook)
	a.GET("/books/:id", h.Admin.GetBook)
	a.PUT("/books/:id", h.Admin.UpdateBook)
	a.DELETE("/books/:id", h.Admin.DeleteBook)

	a.GET("/authors", h.Admin.ListAuthors)
	a.POST("/authors", h.Admin.CreateAuthor)
	a.GET("/authors/:id", h.Admin.GetAuthor)
	a.PUT("/authors/:id", h.Admin.UpdateAuthor)
	a.DELETE("/authors/:id", h.Admin.DeleteAuthor)

	a.GET("/collections", h.Admin.ListCollections)
	a.POST("/collections", h.Admin.CreateCollection)
	a.GET("/collections/:id", h.Admin.GetCollection)
	a.PUT("/collections/:id", h.Admin.UpdateCollection)
	a.DELETE("/collections/:id", h.Admin.DeleteCollection)

	a.GET("/suppliers", h.Admin.ListSuppliers)
	a.POST("/suppliers", h.Admin.CreateSupplier)
	a.GET("/suppliers/:id", h.Admin.GetSupplier)
	a.PUT("/suppliers/:id", h.Admin.UpdateSupplier)
	a.DELETE("/suppliers/:id", h.Admin.DeleteSupplier)

	a.GET("/orders", h.Admin.ListOrders)
	a.POST("/orders", h.Admin.CreateOrder)
	a.GET("/orders/:id", h.Admin.GetOrder)
	a.PUT("/orders/:id", h.Admin.UpdateOrder)
	a.PATCH("/orders/:id/status", h.Admin.ChangeOrderStatus)
	a.DELETE("/orders/:id", h.Admin.DeleteOrder)

	a.GET("/users", h.Admin.ListUsers)
	a.POST("/users", h.Admin.CreateUser)
	a.GET("/users/:id", h.Admin.GetUser)
	a.PUT("/users/:id", h.Admin.UpdateUser)
	a.DELETE("/users/:id", h.Admin.DeleteUser)

	a.GET("/reviews", h.Admin.ListReviews)
	a.POST("/reviews", h.Admin.CreateReview)
	a.GET("/reviews/:id", h.Admin.GetReview)
	a.PUT("/reviews/:id", h.Admin.UpdateReview)
	a.DELETE("/reviews/:id", h.Admin.DeleteReview)
}
