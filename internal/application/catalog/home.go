package catalog

import (
	"context"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
)

// 缓存键，后台修改目录时整体失效
const (
	cacheHome        = "home"
	cacheCollections = "collections"
)

// HomeView 首页：推荐图书和最新上架
type HomeView struct {
	Recommended []view.BookSummary `json:"recommended"`
	Newest      []view.BookSummary `json:"newest"`
}

// HomeUseCase 首页
type HomeUseCase struct {
	books            catalog.BookRepository
	cache            port.CatalogCache
	url              view.URLFunc
	recommendedLimit int
	newestLimit      int
}

func NewHomeUseCase(books catalog.BookRepository, cache port.CatalogCache, url view.URLFunc, recommendedLimit, newestLimit int) *HomeUseCase {
	return &HomeUseCase{
		books:            books,
		cache:            cache,
		url:              url,
		recommendedLimit: recommendedLimit,
		newestLimit:      newestLimit,
	}
}

func (uc *HomeUseCase) Execute(ctx context.Context) (*HomeView, error) {
	var home HomeView
	if uc.cache.Get(ctx, cacheHome, &home) {
		return &home, nil
	}

	recommended, err := uc.books.ListRecommended(ctx, uc.recommendedLimit)
	if err != nil {
		return nil, err
	}
	newest, err := uc.books.ListNewest(ctx, uc.newestLimit)
	if err != nil {
		return nil, err
	}

	home = HomeView{
		Recommended: view.NewBookSummaries(recommended, uc.url),
		Newest:      view.NewBookSummaries(newest, uc.url),
	}
	uc.cache.Set(ctx, cacheHome, home)
	return &home, nil
}
