package review

import (
	"context"
	"errors"

	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
	"github.com/xiebiao/tintayhojas/pkg/metrics"
)

// SubmitReviewUseCase 发表书评
type SubmitReviewUseCase struct {
	reviews   review.Repository
	purchases review.PurchaseChecker
	books     catalog.BookRepository
}

func NewSubmitReviewUseCase(reviews review.Repository, purchases review.PurchaseChecker, books catalog.BookRepository) *SubmitReviewUseCase {
	return &SubmitReviewUseCase{reviews: reviews, purchases: purchases, books: books}
}

type SubmitReviewRequest struct {
	UserID  uint
	BookID  uint
	Rating  int
	Comment string
}

// Execute 买过这本书且还没有评价过才能发表
// 并发重复提交由(user_id, book_id)唯一索引拦截，同样返回ErrDuplicate
func (uc *SubmitReviewUseCase) Execute(ctx context.Context, req SubmitReviewRequest) (*view.ReviewView, error) {
	if _, err := uc.books.FindByID(ctx, req.BookID); err != nil {
		return nil, err
	}

	eligibility, err := Eligibility(ctx, uc.purchases, uc.reviews, req.UserID, req.BookID)
	if err != nil {
		return nil, err
	}
	if err := eligibility.Err(); err != nil {
		record(err)
		return nil, err
	}

	r, err := review.NewReview(req.UserID, req.BookID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := uc.reviews.Create(ctx, r); err != nil {
		record(err)
		return nil, err
	}
	record(nil)

	saved, err := uc.reviews.FindByID(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	v := view.NewReview(saved)
	return &v, nil
}

// Eligibility 用户对某本书的评价资格，图书详情页也使用
func Eligibility(ctx context.Context, purchases review.PurchaseChecker, reviews review.Repository, userID, bookID uint) (review.Eligibility, error) {
	purchased, err := purchases.HasPurchased(ctx, userID, bookID)
	if err != nil {
		return review.Eligibility{}, err
	}
	reviewed, err := reviews.Exists(ctx, userID, bookID)
	if err != nil {
		return review.Eligibility{}, err
	}
	return review.Evaluate(purchased, reviewed), nil
}

func record(err error) {
	result := "created"
	switch {
	case err == nil:
	case errors.Is(err, review.ErrDuplicate):
		result = "duplicate"
	case errors.Is(err, review.ErrNotAllowed):
		result = "not_allowed"
	default:
		return
	}
	metrics.IncCounterVec(metrics.ReviewsTotal, map[string]string{"result": result})
}
