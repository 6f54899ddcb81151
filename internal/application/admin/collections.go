package admin

import (
	"context"
	"strings"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
)

// CollectionUseCase 书系管理
type CollectionUseCase struct {
	txManager   port.TxManager
	collections catalog.CollectionRepository
	books       catalog.BookRepository
	carts       cart.Repository
	cache       port.CatalogCache
}

func NewCollectionUseCase(
	txManager port.TxManager,
	collections catalog.CollectionRepository,
	books catalog.BookRepository,
	carts cart.Repository,
	cache port.CatalogCache,
) *CollectionUseCase {
	return &CollectionUseCase{txManager: txManager, collections: collections, books: books, carts: carts, cache: cache}
}

// CollectionInput 图标和背景色留空时使用默认值
type CollectionInput struct {
	Name            string
	Description     string
	Icon            string
	BackgroundColor string
}

func (in CollectionInput) apply(c *catalog.Collection) error {
	c.Name = strings.TrimSpace(in.Name)
	c.Description = in.Description
	c.Icon = strings.TrimSpace(in.Icon)
	c.BackgroundColor = strings.TrimSpace(in.BackgroundColor)
	c.ApplyDefaults()
	return c.Validate()
}

func (uc *CollectionUseCase) List(ctx context.Context) ([]view.CollectionView, error) {
	collections, err := uc.collections.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]view.CollectionView, 0, len(collections))
	for _, c := range collections {
		list = append(list, view.NewCollection(c))
	}
	return list, nil
}

func (uc *CollectionUseCase) Get(ctx context.Context, id uint) (*view.CollectionView, error) {
	c, err := uc.collections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := view.NewCollection(c)
	return &v, nil
}

func (uc *CollectionUseCase) Create(ctx context.Context, in CollectionInput) (*view.CollectionView, error) {
	c := &catalog.Collection{}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if err := uc.collections.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	v := view.NewCollection(c)
	return &v, nil
}

func (uc *CollectionUseCase) Update(ctx context.Context, id uint, in CollectionInput) (*view.CollectionView, error) {
	c, err := uc.collections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if err := uc.collections.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	v := view.NewCollection(c)
	return &v, nil
}

// Delete 归档书系和其中的图书，并从购物车中移除这些图书
func (uc *CollectionUseCase) Delete(ctx context.Context, id uint) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.collections.Archive(txCtx, id); err != nil {
			return err
		}
		ids, err := uc.books.ArchiveByCollection(txCtx, id)
		if err != nil {
			return err
		}
		return uc.carts.DeleteItemsByBookIDs(txCtx, ids)
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate(ctx)
	return nil
}
