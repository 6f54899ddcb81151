package admin

import (
	"context"

	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
)

// dashboardPageSize 后台首页每类数据展示的条数
const dashboardPageSize = 10

// Dashboard 后台首页
type Dashboard struct {
	Orders      *view.Page[view.OrderView]  `json:"orders"`
	Users       *view.Page[view.UserView]   `json:"users"`
	Books       *view.Page[view.BookSummary] `json:"books"`
	Authors     []view.AuthorView           `json:"authors"`
	Collections []view.CollectionView       `json:"collections"`
	Suppliers   []view.SupplierView         `json:"suppliers"`
	Reviews     *view.Page[view.ReviewView] `json:"reviews"`
}

// DashboardUseCase 汇总各类数据的第一页，书评可以按图书、作者、书系过滤
type DashboardUseCase struct {
	orders      *OrderUseCase
	users       *UserUseCase
	books       *BookUseCase
	authors     *AuthorUseCase
	collections *CollectionUseCase
	suppliers   *SupplierUseCase
	reviews     *ReviewUseCase
}

func NewDashboardUseCase(
	orders *OrderUseCase,
	users *UserUseCase,
	books *BookUseCase,
	authors *AuthorUseCase,
	collections *CollectionUseCase,
	suppliers *SupplierUseCase,
	reviews *ReviewUseCase,
) *DashboardUseCase {
	return &DashboardUseCase{
		orders:      orders,
		users:       users,
		books:       books,
		authors:     authors,
		collections: collections,
		suppliers:   suppliers,
		reviews:     reviews,
	}
}

func (uc *DashboardUseCase) Execute(ctx context.Context, reviewFilter review.Filter) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Orders, err = uc.orders.List(ctx, 1, dashboardPageSize); err != nil {
		return nil, err
	}
	if d.Users, err = uc.users.List(ctx, 1, dashboardPageSize); err != nil {
		return nil, err
	}
	if d.Books, err = uc.books.List(ctx, catalog.BookFilter{Page: 1, PageSize: dashboardPageSize}); err != nil {
		return nil, err
	}
	if d.Authors, err = uc.authors.List(ctx); err != nil {
		return nil, err
	}
	if d.Collections, err = uc.collections.List(ctx); err != nil {
		return nil, err
	}
	if d.Suppliers, err = uc.suppliers.List(ctx); err != nil {
		return nil, err
	}
	reviewFilter.Page, reviewFilter.PageSize = 1, dashboardPageSize
	if d.Reviews, err = uc.reviews.List(ctx, reviewFilter); err != nil {
		return nil, err
	}
	return &d, nil
}
