package catalog

import (
	"context"

	reviewapp "github.com/xiebiao/tintayhojas/internal/application/review"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
)

// ListBooksUseCase 图书目录
type ListBooksUseCase struct {
	books catalog.BookRepository
	url   view.URLFunc
}

func NewListBooksUseCase(books catalog.BookRepository, url view.URLFunc) *ListBooksUseCase {
	return &ListBooksUseCase{books: books, url: url}
}

func (uc *ListBooksUseCase) Execute(ctx context.Context, filter catalog.BookFilter) (*view.Page[view.BookSummary], error) {
	filter.Normalize()
	list, total, err := uc.books.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &view.Page[view.BookSummary]{
		List:     view.NewBookSummaries(list, uc.url),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// BookPage 图书详情页
// Eligibility只在登录用户访问时返回
type BookPage struct {
	Book        view.BookDetail     `json:"book"`
	Reviews     []view.ReviewView   `json:"reviews"`
	Eligibility *review.Eligibility `json:"eligibility,omitempty"`
}

// GetBookUseCase 图书详情、书评（最新的在前）和当前用户的评价资格
type GetBookUseCase struct {
	books     catalog.BookRepository
	reviews   review.Repository
	purchases review.PurchaseChecker
	url       view.URLFunc
}

func NewGetBookUseCase(books catalog.BookRepository, reviews review.Repository, purchases review.PurchaseChecker, url view.URLFunc) *GetBookUseCase {
	return &GetBookUseCase{books: books, reviews: reviews, purchases: purchases, url: url}
}

// Execute viewerID为0表示匿名访问
func (uc *GetBookUseCase) Execute(ctx context.Context, bookID, viewerID uint) (*BookPage, error) {
	b, err := uc.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	reviews, _, err := uc.reviews.List(ctx, review.Filter{BookID: bookID, Page: 1, PageSize: 50})
	if err != nil {
		return nil, err
	}

	page := &BookPage{
		Book:    view.NewBookDetail(b, uc.url),
		Reviews: view.NewReviews(reviews),
	}

	if viewerID != 0 {
		e, err := reviewapp.Eligibility(ctx, uc.purchases, uc.reviews, viewerID, bookID)
		if err != nil {
			return nil, err
		}
		page.Eligibility = &e
	}
	return page, nil
}
