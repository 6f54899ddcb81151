//go:build wireinject
// +build wireinject

// wire gen ./cmd/api 生成wire_gen.go后，main可以改用InitializeRouter代替buildComponents

package main

import (
	"github.com/MonkyMars/gecho"
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/xiebiao/tintayhojas/internal/application/admin"
	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/config"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/receipt"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/storage"
	"github.com/xiebiao/tintayhojas/internal/interface/http/handler"
	"github.com/xiebiao/tintayhojas/internal/interface/http/middleware"
	"github.com/xiebiao/tintayhojas/internal/interface/http/router"

	catalogapp "github.com/xiebiao/tintayhojas/internal/application/catalog"
	cartapp "github.com/xiebiao/tintayhojas/internal/application/cart"
	orderapp "github.com/xiebiao/tintayhojas/internal/application/order"
	reviewapp "github.com/xiebiao/tintayhojas/internal/application/review"
	userapp "github.com/xiebiao/tintayhojas/internal/application/user"
)

// repositorySet 仓储和事务
var repositorySet = wire.NewSet(
	mysql.NewTxManager,
	mysql.NewBookRepository,
	mysql.NewAuthorRepository,
	mysql.NewCollectionRepository,
	mysql.NewSupplierRepository,
	mysql.NewUserRepository,
	mysql.NewProfileRepository,
	mysql.NewCartRepository,
	mysql.NewOrderRepository,
	mysql.NewReviewRepository,
	wire.Bind(new(port.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(order.Repository), new(*mysql.OrderRepository)),
	wire.Bind(new(review.PurchaseChecker), new(*mysql.OrderRepository)),
)

// adapterSet Redis、本地图片存储、PDF收据
var adapterSet = wire.NewSet(
	redis.NewSessionStore,
	provideCatalogCache,
	provideImageStore,
	provideURLFunc,
	provideReceiptRenderer,
	provideJWTManager,
	wire.Bind(new(port.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(port.CatalogCache), new(*redis.CatalogCache)),
	wire.Bind(new(port.ImageStore), new(*storage.LocalStorage)),
	wire.Bind(new(port.ReceiptRenderer), new(*receipt.PDFRenderer)),
)

var domainSet = wire.NewSet(
	provideUserService,
	providePricer,
)

var applicationSet = wire.NewSet(
	provideHomeUseCase,
	catalogapp.NewListBooksUseCase,
	catalogapp.NewGetBookUseCase,
	catalogapp.NewListAuthorsUseCase,
	catalogapp.NewGetAuthorUseCase,
	catalogapp.NewListCollectionsUseCase,
	reviewapp.NewListReviewsUseCase,
	reviewapp.NewSubmitReviewUseCase,
	cartapp.NewViewCartUseCase,
	cartapp.NewAddToCartUseCase,
	cartapp.NewChangeItemUseCase,
	orderapp.NewPreviewCheckoutUseCase,
	orderapp.NewCheckoutUseCase,
	orderapp.NewGetReceiptUseCase,
	orderapp.NewReceiptPDFUseCase,
	orderapp.NewListUserOrdersUseCase,
	userapp.NewRegisterUseCase,
	userapp.NewLoginUseCase,
	userapp.NewLogoutUseCase,
	userapp.NewRefreshTokenUseCase,
	userapp.NewProfileUseCase,
	admin.NewDashboardUseCase,
	admin.NewBookUseCase,
	admin.NewAuthorUseCase,
	admin.NewCollectionUseCase,
	admin.NewSupplierUseCase,
	admin.NewOrderUseCase,
	admin.NewUserUseCase,
	admin.NewReviewUseCase,
)

var handlerSet = wire.NewSet(
	handler.NewCatalogHandler,
	handler.NewReviewHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
	handler.NewUserHandler,
	handler.NewAdminHandler,
	wire.Struct(new(router.Handlers), "*"),
	middleware.NewAuthMiddleware,
	provideRateLimiter,
)

func provideCatalogCache(cfg *config.Config, client *goredis.Client, logger *gecho.Logger) *redis.CatalogCache {
	return redis.NewCatalogCache(client, cfg.Cache.CatalogTTL, logger)
}

func provideImageStore(cfg *config.Config) *storage.LocalStorage {
	return storage.NewLocalStorage(cfg.Server.MediaRoot, cfg.Server.MediaURL, cfg.Server.MaxUploadMB<<20, cfg.Server.MaxImageSide)
}

func provideURLFunc(images *storage.LocalStorage) view.URLFunc {
	return images.URL
}

func provideReceiptRenderer() *receipt.PDFRenderer {
	return receipt.NewPDFRenderer(shopName)
}

func provideUserService(users user.Repository) user.Service {
	return user.NewService(users)
}

func providePricer(cfg *config.Config) (*order.Pricer, error) {
	return order.NewPricer(cfg.Shop.TaxRateDecimal())
}

func provideHomeUseCase(cfg *config.Config, books catalog.BookRepository, cache port.CatalogCache, url view.URLFunc) *catalogapp.HomeUseCase {
	return catalogapp.NewHomeUseCase(books, cache, url, cfg.Shop.HomeRecommendedLimit, cfg.Shop.HomeNewestLimit)
}

func provideRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg.RateLimit)
}

// InitializeRouter 组装HTTP引擎
// 配置、日志、数据库、Redis、事件发布器由main创建并传入，便于统一关闭
func InitializeRouter(
	cfg *config.Config,
	logger *gecho.Logger,
	db *gorm.DB,
	client *goredis.Client,
	events port.OrderEventPublisher,
) (*gin.Engine, error) {
	wire.Build(
		repositorySet,
		adapterSet,
		domainSet,
		applicationSet,
		handlerSet,
		router.New,
	)
	return nil, nil
}
