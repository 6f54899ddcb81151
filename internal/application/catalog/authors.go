package catalog

import (
	"context"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
)

// ListAuthorsUseCase 作者列表，按名称排序
type ListAuthorsUseCase struct {
	authors catalog.AuthorRepository
	url     view.URLFunc
}

func NewListAuthorsUseCase(authors catalog.AuthorRepository, url view.URLFunc) *ListAuthorsUseCase {
	return &ListAuthorsUseCase{authors: authors, url: url}
}

func (uc *ListAuthorsUseCase) Execute(ctx context.Context) ([]view.AuthorView, error) {
	authors, err := uc.authors.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]view.AuthorView, 0, len(authors))
	for _, a := range authors {
		list = append(list, view.NewAuthor(a, uc.url))
	}
	return list, nil
}

// AuthorPage 作者详情和作品
type AuthorPage struct {
	view.AuthorView
	Books []view.BookSummary `json:"books"`
}

// authorBooksLimit 作者详情页最多展示的作品数
const authorBooksLimit = 100

// GetAuthorUseCase 作者详情
type GetAuthorUseCase struct {
	authors catalog.AuthorRepository
	books   catalog.BookRepository
	url     view.URLFunc
}

func NewGetAuthorUseCase(authors catalog.AuthorRepository, books catalog.BookRepository, url view.URLFunc) *GetAuthorUseCase {
	return &GetAuthorUseCase{authors: authors, books: books, url: url}
}

func (uc *GetAuthorUseCase) Execute(ctx context.Context, authorID uint) (*AuthorPage, error) {
	a, err := uc.authors.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	books, _, err := uc.books.List(ctx, catalog.BookFilter{AuthorID: authorID, Page: 1, PageSize: authorBooksLimit, SortBy: "title"})
	if err != nil {
		return nil, err
	}
	return &AuthorPage{
		AuthorView: view.NewAuthor(a, uc.url),
		Books:      view.NewBookSummaries(books, uc.url),
	}, nil
}

// ListCollectionsUseCase 书系列表（缓存）
type ListCollectionsUseCase struct {
	collections catalog.CollectionRepository
	cache       port.CatalogCache
}

func NewListCollectionsUseCase(collections catalog.CollectionRepository, cache port.CatalogCache) *ListCollectionsUseCase {
	return &ListCollectionsUseCase{collections: collections, cache: cache}
}

func (uc *ListCollectionsUseCase) Execute(ctx context.Context) ([]view.CollectionView, error) {
	var list []view.CollectionView
	if uc.cache.Get(ctx, cacheCollections, &list) {
		return list, nil
	}

	collections, err := uc.collections.List(ctx)
	if err != nil {
		return nil, err
	}
	list = make([]view.CollectionView, 0, len(collections))
	for _, c := range collections {
		list = append(list, view.NewCollection(c))
	}
	uc.cache.Set(ctx, cacheCollections, list)
	return list, nil
}
