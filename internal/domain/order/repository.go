package order

import (
	"context"
)

// Repository 订单仓储接口
type Repository interface {
	// Create 创建订单及其明细（需要在事务中调用）
	Create(ctx context.Context, order *Order) error

	// FindByID 查询订单及明细（带出书名和用户名）
	FindByID(ctx context.Context, id uint) (*Order, error)

	// Update 保存地址、支付方式、总额、状态
	Update(ctx context.Context, order *Order) error

	// DeleteLines 删除订单明细，和Delete在同一事务中调用
	DeleteLines(ctx context.Context, orderID uint) error

	// Delete 删除订单本身，订单不存在时返回ErrOrderNotFound
	Delete(ctx context.Context, id uint) error

	// ListByUserID 用户的订单，按创建时间倒序
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)

	// List 全部订单，按创建时间倒序
	List(ctx context.Context, page, pageSize int) ([]*Order, int64, error)

	// HasPurchased 用户是否有包含该图书的订单
	HasPurchased(ctx context.Context, userID, bookID uint) (bool, error)
}
