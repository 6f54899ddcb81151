package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/tintayhojas/internal/domain/review"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// reviewRepository 书评仓储实现
type reviewRepository struct {
	baseRepo
}

func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{baseRepo{db: db}}
}

type reviewRow struct {
	ID        uint
	BookID    uint
	UserID    uint
	Rating    int
	Comment   string
	CreatedAt time.Time
	Username  string
	BookTitle string
}

func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := &ReviewModel{BookID: rv.BookID, UserID: rv.UserID, Rating: rv.Rating, Comment: rv.Comment}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return review.ErrDuplicate
		}
		return apperrors.Wrap(err, "创建书评失败")
	}
	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var rows []reviewRow
	err := r.joined(ctx).Where("r.id = ?", id).Limit(1).
		Select("r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at, u.username, b.title AS book_title").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询书评失败")
	}
	if len(rows) == 0 {
		return nil, review.ErrReviewNotFound
	}
	return toReviewEntity(&rows[0]), nil
}

func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	result := r.getDB(ctx).Model(&ReviewModel{}).Where("id = ?", rv.ID).Updates(map[string]interface{}{
		"rating":  rv.Rating,
		"comment": rv.Comment,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新书评失败")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.getDB(ctx).Model(&ReviewModel{}).Where("id = ?", rv.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询书评失败")
		}
		if count == 0 {
			return review.ErrReviewNotFound
		}
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&ReviewModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除书评失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) Exists(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&ReviewModel{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询书评失败")
	}
	return count > 0, nil
}

func (r *reviewRepository) List(ctx context.Context, filter review.Filter) ([]*review.Review, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	query := r.joined(ctx).Where("b.deleted_at IS NULL")
	if filter.BookID > 0 {
		query = query.Where("r.book_id = ?", filter.BookID)
	}
	if filter.AuthorID > 0 {
		query = query.Where("b.author_id = ?", filter.AuthorID)
	}
	if filter.CollectionID > 0 {
		query = query.Where("b.collection_id = ?", filter.CollectionID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询书评总数失败")
	}
	if total == 0 {
		return []*review.Review{}, 0, nil
	}

	var rows []reviewRow
	err := query.
		Select("r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at, u.username, b.title AS book_title").
		Order("r.created_at DESC").Order("r.id DESC").
		Offset(offset(filter.Page, filter.PageSize)).
		Limit(filter.PageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询书评列表失败")
	}

	reviews := make([]*review.Review, 0, len(rows))
	for i := range rows {
		reviews = append(reviews, toReviewEntity(&rows[i]))
	}
	return reviews, total, nil
}

func (r *reviewRepository) joined(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).Table("reviews AS r").
		Joins("JOIN users AS u ON u.id = r.user_id").
		Joins("JOIN books AS b ON b.id = r.book_id")
}

func toReviewEntity(row *reviewRow) *review.Review {
	return &review.Review{
		ID:        row.ID,
		BookID:    row.BookID,
		UserID:    row.UserID,
		Rating:    row.Rating,
		Comment:   row.Comment,
		CreatedAt: row.CreatedAt,
		Username:  row.Username,
		BookTitle: row.BookTitle,
	}
}
