package review

import (
	"context"
)

// Repository 书评仓储接口
type Repository interface {
	// Create 创建书评，(user_id, book_id)唯一索引冲突时返回ErrDuplicate
	Create(ctx context.Context, review *Review) error

	FindByID(ctx context.Context, id uint) (*Review, error)

	Update(ctx context.Context, review *Review) error

	Delete(ctx context.Context, id uint) error

	// Exists 用户是否已评价过该图书
	Exists(ctx context.Context, userID, bookID uint) (bool, error)

	// List 按创建时间倒序，可按图书、作者、书系过滤
	List(ctx context.Context, filter Filter) ([]*Review, int64, error)
}

// Filter 书评列表过滤条件
type Filter struct {
	BookID       uint
	AuthorID     uint
	CollectionID uint
	Page         int
	PageSize     int
}

// PurchaseChecker 购买记录查询（由订单仓储实现）
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, userID, bookID uint) (bool, error)
}
