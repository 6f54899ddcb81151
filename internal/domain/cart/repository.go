package cart

import (
	"context"
)

// Repository 购物车仓储接口
type Repository interface {
	// FindByUserID 查询用户购物车及条目（带出图书标题、价格、库存）
	// 没有购物车时返回ErrCartNotFound
	FindByUserID(ctx context.Context, userID uint) (*Cart, error)

	Create(ctx context.Context, cart *Cart) error

	// FindItemByID 查询条目（带出OwnerID和图书数据），不存在返回ErrItemNotFound
	FindItemByID(ctx context.Context, itemID uint) (*Item, error)

	// FindItem 按(购物车,图书)查询条目，不存在返回ErrItemNotFound
	FindItem(ctx context.Context, cartID, bookID uint) (*Item, error)

	// CreateItem 创建条目，(cart_id, book_id)冲突时返回ErrItemExists
	CreateItem(ctx context.Context, item *Item) error

	// IncrementItem 原子地把条目数量加delta
	IncrementItem(ctx context.Context, itemID uint, delta int) error

	UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error

	DeleteItem(ctx context.Context, itemID uint) error

	// ClearItems 删除购物车所有条目，购物车本身保留
	ClearItems(ctx context.Context, cartID uint) error

	// DeleteItemsByBookIDs 从所有购物车移除这些图书（图书归档时使用）
	DeleteItemsByBookIDs(ctx context.Context, bookIDs []uint) error
}
