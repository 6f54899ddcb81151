// Package admin 后台管理用例，只有staff账号可以调用（由路由中间件保证）
// 作者、书系、图书的写操作会让目录缓存失效
package admin

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/storage"
	"github.com/xiebiao/tintayhojas/pkg/saga"
)

// BookUseCase 图书管理
type BookUseCase struct {
	txManager   port.TxManager
	books       catalog.BookRepository
	authors     catalog.AuthorRepository
	collections catalog.CollectionRepository
	suppliers   catalog.SupplierRepository
	carts       cart.Repository
	images      port.ImageStore
	cache       port.CatalogCache
}

func NewBookUseCase(
	txManager port.TxManager,
	books catalog.BookRepository,
	authors catalog.AuthorRepository,
	collections catalog.CollectionRepository,
	suppliers catalog.SupplierRepository,
	carts cart.Repository,
	images port.ImageStore,
	cache port.CatalogCache,
) *BookUseCase {
	return &BookUseCase{
		txManager:   txManager,
		books:       books,
		authors:     authors,
		collections: collections,
		suppliers:   suppliers,
		carts:       carts,
		images:      images,
		cache:       cache,
	}
}

// BookInput 新建和编辑共用，Image为nil时不修改封面
type BookInput struct {
	Title        string
	AuthorID     uint
	CollectionID uint
	SupplierID   *uint
	Price        decimal.Decimal
	Stock        int
	Description  string
	Recommended  bool
	Image        io.Reader
}

// List 按书名排序
func (uc *BookUseCase) List(ctx context.Context, filter catalog.BookFilter) (*view.Page[view.BookSummary], error) {
	filter.SortBy = "title"
	filter.Normalize()
	list, total, err := uc.books.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &view.Page[view.BookSummary]{
		List:     view.NewBookSummaries(list, uc.images.URL),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (uc *BookUseCase) Get(ctx context.Context, id uint) (*view.BookDetail, error) {
	b, err := uc.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := view.NewBookDetail(b, uc.images.URL)
	return &v, nil
}

func (uc *BookUseCase) Create(ctx context.Context, in BookInput) (*view.BookDetail, error) {
	if err := uc.checkRefs(ctx, in); err != nil {
		return nil, err
	}
	b, err := catalog.NewBook(in.Title, in.AuthorID, in.CollectionID, in.Price, in.Stock)
	if err != nil {
		return nil, err
	}
	b.SupplierID = in.SupplierID
	b.Description = in.Description
	b.Recommended = in.Recommended

	_, err = withImage(ctx, uc.images, storage.KindBooks, in.Image, func(ctx context.Context, stored string) error {
		b.Image = stored
		return uc.books.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	return uc.Get(ctx, b.ID)
}

func (uc *BookUseCase) Update(ctx context.Context, id uint, in BookInput) (*view.BookDetail, error) {
	b, err := uc.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.checkRefs(ctx, in); err != nil {
		return nil, err
	}

	b.Title = in.Title
	b.AuthorID = in.AuthorID
	b.CollectionID = in.CollectionID
	b.SupplierID = in.SupplierID
	b.Price = in.Price
	b.Stock = in.Stock
	b.Description = in.Description
	b.Recommended = in.Recommended
	if err := b.Validate(); err != nil {
		return nil, err
	}

	old := b.Image
	image, err := withImage(ctx, uc.images, storage.KindBooks, in.Image, func(ctx context.Context, stored string) error {
		if stored != "" {
			b.Image = stored
		}
		return uc.books.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	if image != "" {
		discard(ctx, uc.images, old)
	}
	uc.cache.Invalidate(ctx)
	return uc.Get(ctx, id)
}

// Delete 归档图书并从所有购物车中移除，订单明细仍然可以引用
func (uc *BookUseCase) Delete(ctx context.Context, id uint) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.books.Archive(txCtx, id); err != nil {
			return err
		}
		return uc.carts.DeleteItemsByBookIDs(txCtx, []uint{id})
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate(ctx)
	return nil
}

// checkRefs 作者、书系必须存在，供应商可选
func (uc *BookUseCase) checkRefs(ctx context.Context, in BookInput) error {
	if in.AuthorID != 0 {
		if _, err := uc.authors.FindByID(ctx, in.AuthorID); err != nil {
			return err
		}
	}
	if in.CollectionID != 0 {
		if _, err := uc.collections.FindByID(ctx, in.CollectionID); err != nil {
			return err
		}
	}
	if in.SupplierID != nil {
		if _, err := uc.suppliers.FindByID(ctx, *in.SupplierID); err != nil {
			return err
		}
	}
	return nil
}

// withImage 先保存上传的图片再执行persist，persist失败时删除刚保存的图片
// r为nil时不保存，stored为空串
func withImage(ctx context.Context, images port.ImageStore, kind string, r io.Reader, persist func(ctx context.Context, stored string) error) (string, error) {
	var stored string
	err := saga.NewSaga(0).
		AddStep("保存图片", func(ctx context.Context) error {
			if r == nil {
				return nil
			}
			var err error
			stored, err = images.Save(ctx, kind, r)
			return err
		}, func(ctx context.Context) error {
			if stored == "" {
				return nil
			}
			return images.Delete(ctx, stored)
		}).
		AddStep("保存记录", func(ctx context.Context) error {
			return persist(ctx, stored)
		}, nil).
		Execute(ctx)
	if err != nil {
		return "", err
	}
	return stored, nil
}

func discard(ctx context.Context, images port.ImageStore, stored string) {
	if stored != "" {
		_ = images.Delete(ctx, stored)
	}
}
