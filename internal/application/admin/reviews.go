package admin

import (
	"context"

	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
)

// ReviewUseCase 书评管理
// 后台可以直接创建书评，不检查购买记录，但(user, book)唯一约束仍然有效
type ReviewUseCase struct {
	reviews review.Repository
	books   catalog.BookRepository
	users   user.Repository
}

func NewReviewUseCase(reviews review.Repository, books catalog.BookRepository, users user.Repository) *ReviewUseCase {
	return &ReviewUseCase{reviews: reviews, books: books, users: users}
}

type ReviewInput struct {
	BookID  uint
	UserID  uint
	Rating  int
	Comment string
}

func (uc *ReviewUseCase) List(ctx context.Context, filter review.Filter) (*view.Page[view.ReviewView], error) {
	filter.Page, filter.PageSize = view.NormalizePage(filter.Page, filter.PageSize)
	list, total, err := uc.reviews.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &view.Page[view.ReviewView]{List: view.NewReviews(list), Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (uc *ReviewUseCase) Get(ctx context.Context, id uint) (*view.ReviewView, error) {
	r, err := uc.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := view.NewReview(r)
	return &v, nil
}

func (uc *ReviewUseCase) Create(ctx context.Context, in ReviewInput) (*view.ReviewView, error) {
	if _, err := uc.books.FindByID(ctx, in.BookID); err != nil {
		return nil, err
	}
	if _, err := uc.users.FindByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	r, err := review.NewReview(in.UserID, in.BookID, in.Rating, in.Comment)
	if err != nil {
		return nil, err
	}
	if err := uc.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	return uc.Get(ctx, r.ID)
}

// Update 只修改评分和评论
func (uc *ReviewUseCase) Update(ctx context.Context, id uint, rating int, comment string) (*view.ReviewView, error) {
	r, err := uc.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Edit(rating, comment); err != nil {
		return nil, err
	}
	if err := uc.reviews.Update(ctx, r); err != nil {
		return nil, err
	}
	v := view.NewReview(r)
	return &v, nil
}

func (uc *ReviewUseCase) Delete(ctx context.Context, id uint) error {
	return uc.reviews.Delete(ctx, id)
}
