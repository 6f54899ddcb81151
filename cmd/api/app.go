package main

import (
	"fmt"

	"github.com/MonkyMars/gecho"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/xiebiao/tintayhojas/internal/application/admin"
	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/config"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/messaging"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/receipt"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/storage"
	"github.com/xiebiao/tintayhojas/internal/interface/http/handler"
	"github.com/xiebiao/tintayhojas/internal/interface/http/middleware"
	"github.com/xiebiao/tintayhojas/internal/interface/http/router"
	"github.com/xiebiao/tintayhojas/pkg/jwt"
	"github.com/xiebiao/tintayhojas/pkg/mq"

	catalogapp "github.com/xiebiao/tintayhojas/internal/application/catalog"
	cartapp "github.com/xiebiao/tintayhojas/internal/application/cart"
	orderapp "github.com/xiebiao/tintayhojas/internal/application/order"
	reviewapp "github.com/xiebiao/tintayhojas/internal/application/review"
	userapp "github.com/xiebiao/tintayhojas/internal/application/user"
)

// shopName 收据抬头
const shopName = "Tinta y Hojas"

// components 手动组装的HTTP层依赖
// 依赖链：Repository ← Service ← UseCase ← Handler
type components struct {
	handlers *router.Handlers
	auth     *middleware.AuthMiddleware
	limiter  *middleware.RateLimiter
}

func buildComponents(
	cfg *config.Config,
	logger *gecho.Logger,
	db *gorm.DB,
	redisClient *goredis.Client,
	events port.OrderEventPublisher,
) (*components, error) {
	// 基础设施层
	txManager := mysql.NewTxManager(db)
	bookRepo := mysql.NewBookRepository(db)
	authorRepo := mysql.NewAuthorRepository(db)
	collectionRepo := mysql.NewCollectionRepository(db)
	supplierRepo := mysql.NewSupplierRepository(db)
	userRepo := mysql.NewUserRepository(db)
	profileRepo := mysql.NewProfileRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)

	sessionStore := redis.NewSessionStore(redisClient)
	catalogCache := redis.NewCatalogCache(redisClient, cfg.Cache.CatalogTTL, logger)
	images := storage.NewLocalStorage(cfg.Server.MediaRoot, cfg.Server.MediaURL, cfg.Server.MaxUploadMB<<20, cfg.Server.MaxImageSide)
	jwtManager := provideJWTManager(cfg)

	// 领域层
	userService := user.NewService(userRepo)
	pricer, err := order.NewPricer(cfg.Shop.TaxRateDecimal())
	if err != nil {
		return nil, fmt.Errorf("初始化计价器失败: %w", err)
	}

	// 应用层
	register := userapp.NewRegisterUseCase(txManager, userService, userRepo, profileRepo, cartRepo, logger)

	adminBooks := admin.NewBookUseCase(txManager, bookRepo, authorRepo, collectionRepo, supplierRepo, cartRepo, images, catalogCache)
	adminAuthors := admin.NewAuthorUseCase(txManager, authorRepo, bookRepo, cartRepo, images, catalogCache)
	adminCollections := admin.NewCollectionUseCase(txManager, collectionRepo, bookRepo, cartRepo, catalogCache)
	adminSuppliers := admin.NewSupplierUseCase(txManager, supplierRepo)
	adminOrders := admin.NewOrderUseCase(txManager, orderRepo, userRepo, events, logger)
	adminUsers := admin.NewUserUseCase(txManager, userRepo, profileRepo, orderRepo, register, images)
	adminReviews := admin.NewReviewUseCase(reviewRepo, bookRepo, userRepo)

	// 接口层
	handlers := &router.Handlers{
		Catalog: handler.NewCatalogHandler(
			catalogapp.NewHomeUseCase(bookRepo, catalogCache, images.URL, cfg.Shop.HomeRecommendedLimit, cfg.Shop.HomeNewestLimit),
			catalogapp.NewListBooksUseCase(bookRepo, images.URL),
			catalogapp.NewGetBookUseCase(bookRepo, reviewRepo, orderRepo, images.URL),
			catalogapp.NewListAuthorsUseCase(authorRepo, images.URL),
			catalogapp.NewGetAuthorUseCase(authorRepo, bookRepo, images.URL),
			catalogapp.NewListCollectionsUseCase(collectionRepo, catalogCache),
			reviewapp.NewListReviewsUseCase(reviewRepo),
		),
		Review: handler.NewReviewHandler(reviewapp.NewSubmitReviewUseCase(reviewRepo, orderRepo, bookRepo)),
		Cart: handler.NewCartHandler(
			cartapp.NewViewCartUseCase(cartRepo),
			cartapp.NewAddToCartUseCase(bookRepo, cartRepo, txManager),
			cartapp.NewChangeItemUseCase(cartRepo),
		),
		Order: handler.NewOrderHandler(
			orderapp.NewPreviewCheckoutUseCase(cartRepo, pricer),
			orderapp.NewCheckoutUseCase(txManager, cartRepo, bookRepo, orderRepo, userRepo, pricer, events, logger),
			orderapp.NewGetReceiptUseCase(orderRepo),
			orderapp.NewReceiptPDFUseCase(orderRepo, receipt.NewPDFRenderer(shopName)),
			orderapp.NewListUserOrdersUseCase(orderRepo),
		),
		User: handler.NewUserHandler(
			register,
			userapp.NewLoginUseCase(userService, jwtManager, sessionStore, logger),
			userapp.NewLogoutUseCase(sessionStore, jwtManager),
			userapp.NewRefreshTokenUseCase(userRepo, jwtManager, sessionStore),
			userapp.NewProfileUseCase(profileRepo, images),
		),
		Admin: handler.NewAdminHandler(
			admin.NewDashboardUseCase(adminOrders, adminUsers, adminBooks, adminAuthors, adminCollections, adminSuppliers, adminReviews),
			adminBooks, adminAuthors, adminCollections, adminSuppliers, adminOrders, adminUsers, adminReviews,
		),
	}

	return &components{
		handlers: handlers,
		auth:     middleware.NewAuthMiddleware(jwtManager, sessionStore, userRepo),
		limiter:  middleware.NewRateLimiter(cfg.RateLimit),
	}, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideEvents MQ启用时经RabbitMQ发布订单事件，否则只写日志
// 返回的cleanup负责关闭连接
func provideEvents(cfg *config.Config, logger *gecho.Logger) (port.OrderEventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return messaging.NewLogPublisher(logger), func() {}, nil
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic", logger)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("关闭RabbitMQ连接失败", gecho.Field("error", err.Error()))
		}
	}
	return messaging.NewOrderEventPublisher(publisher, logger), cleanup, nil
}
