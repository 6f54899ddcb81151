package admin

import (
	"context"
	"io"
	"strings"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/storage"
)

// AuthorUseCase 作者管理
type AuthorUseCase struct {
	txManager port.TxManager
	authors   catalog.AuthorRepository
	books     catalog.BookRepository
	carts     cart.Repository
	images    port.ImageStore
	cache     port.CatalogCache
}

func NewAuthorUseCase(
	txManager port.TxManager,
	authors catalog.AuthorRepository,
	books catalog.BookRepository,
	carts cart.Repository,
	images port.ImageStore,
	cache port.CatalogCache,
) *AuthorUseCase {
	return &AuthorUseCase{txManager: txManager, authors: authors, books: books, carts: carts, images: images, cache: cache}
}

// AuthorInput Photo为nil时不修改照片
type AuthorInput struct {
	Name  string
	Bio   string
	Photo io.Reader
}

func (uc *AuthorUseCase) List(ctx context.Context) ([]view.AuthorView, error) {
	authors, err := uc.authors.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]view.AuthorView, 0, len(authors))
	for _, a := range authors {
		list = append(list, view.NewAuthor(a, uc.images.URL))
	}
	return list, nil
}

func (uc *AuthorUseCase) Get(ctx context.Context, id uint) (*view.AuthorView, error) {
	a, err := uc.authors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := view.NewAuthor(a, uc.images.URL)
	return &v, nil
}

func (uc *AuthorUseCase) Create(ctx context.Context, in AuthorInput) (*view.AuthorView, error) {
	a := &catalog.Author{Name: strings.TrimSpace(in.Name), Bio: in.Bio}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	_, err := withImage(ctx, uc.images, storage.KindAuthors, in.Photo, func(ctx context.Context, stored string) error {
		a.Photo = stored
		return uc.authors.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx)
	v := view.NewAuthor(a, uc.images.URL)
	return &v, nil
}

func (uc *AuthorUseCase) Update(ctx context.Context, id uint, in AuthorInput) (*view.AuthorView, error) {
	a, err := uc.authors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Name = strings.TrimSpace(in.Name)
	a.Bio = in.Bio
	if err := a.Validate(); err != nil {
		return nil, err
	}

	old := a.Photo
	photo, err := withImage(ctx, uc.images, storage.KindAuthors, in.Photo, func(ctx context.Context, stored string) error {
		if stored != "" {
			a.Photo = stored
		}
		return uc.authors.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	if photo != "" {
		discard(ctx, uc.images, old)
	}
	uc.cache.Invalidate(ctx)
	v := view.NewAuthor(a, uc.images.URL)
	return &v, nil
}

// Delete 归档作者和名下所有图书，并从购物车中移除这些图书
func (uc *AuthorUseCase) Delete(ctx context.Context, id uint) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.authors.Archive(txCtx, id); err != nil {
			return err
		}
		ids, err := uc.books.ArchiveByAuthor(txCtx, id)
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
