package review

import (
	"context"

	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
)

// ListReviewsUseCase 书评列表，最新的在前
type ListReviewsUseCase struct {
	reviews review.Repository
}

func NewListReviewsUseCase(reviews review.Repository) *ListReviewsUseCase {
	return &ListReviewsUseCase{reviews: reviews}
}

func (uc *ListReviewsUseCase) Execute(ctx context.Context, filter review.Filter) (*view.Page[view.ReviewView], error) {
	filter.Page, filter.PageSize = view.NormalizePage(filter.Page, filter.PageSize)
	list, total, err := uc.reviews.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &view.Page[view.ReviewView]{
		List:     view.NewReviews(list),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}
