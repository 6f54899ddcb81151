package review

import (
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review 书评，(UserID, BookID)唯一
type Review struct {
	ID        uint
	BookID    uint
	UserID    uint
	Rating    int
	Comment   string
	CreatedAt time.Time

	// 查询时带出，用于展示
	Username  string
	BookTitle string
}

// NewReview 创建书评（工厂方法）
func NewReview(userID, bookID uint, rating int, comment string) (*Review, error) {
	r := &Review{
		BookID:    bookID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := r.Edit(rating, comment); err != nil {
		return nil, err
	}
	return r, nil
}

// Edit 修改评分和评论
func (r *Review) Edit(rating int, comment string) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ErrEmptyComment
	}
	r.Rating = rating
	r.Comment = comment
	return nil
}

// ValidateRating 评分必须在1-5之间
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// Eligibility 当前用户对某本书的评价资格
type Eligibility struct {
	CanReview       bool `json:"can_review"`
	AlreadyReviewed bool `json:"already_reviewed"`
}

// Evaluate 买过且还没评价过才能评价
func Evaluate(purchased, reviewed bool) Eligibility {
	return Eligibility{
		CanReview:       purchased && !reviewed,
		AlreadyReviewed: reviewed,
	}
}

// Err 不能评价时对应的错误，可以评价时返回nil
func (e Eligibility) Err() error {
	switch {
	case e.AlreadyReviewed:
		return ErrDuplicate
	case !e.CanReview:
		return ErrNotAllowed
	default:
		return nil
	}
}
