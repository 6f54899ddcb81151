package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart 购物车（每个用户一个，随账号创建，账号存在期间不删除）
type Cart struct {
	ID        uint
	UserID    uint
	CreatedAt time.Time
	Items     []*Item
}

// NewCart 创建购物车
func NewCart(userID uint) *Cart {
	return &Cart{UserID: userID, CreatedAt: time.Now()}
}

// Total 购物车总额，每次访问都按图书当前价格重新计算
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty 是否没有任何条目
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// BookIDs 条目引用的图书ID
func (c *Cart) BookIDs() []uint {
	ids := make([]uint, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.BookID)
	}
	return ids
}

// IsOwnedBy 检查购物车是否属于指定用户
func (c *Cart) IsOwnedBy(userID uint) bool {
	return c.UserID == userID
}

// Item 购物车条目，(CartID, BookID)唯一，Quantity≥1
// BookTitle/UnitPrice/Stock是查询时从图书表带出的实时数据
type Item struct {
	ID       uint
	CartID   uint
	BookID   uint
	Quantity int
	OwnerID  uint // 所属购物车的用户ID

	BookTitle string
	UnitPrice decimal.Decimal
	Stock     int
}

// Subtotal 小计 = 单价 × 数量
func (i *Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// IsOwnedBy 检查条目是否属于指定用户的购物车
func (i *Item) IsOwnedBy(userID uint) bool {
	return i.OwnerID == userID
}

// Increment 数量+1，已达到库存上限时返回ErrNoMoreStock且数量不变
func (i *Item) Increment() error {
	if i.Quantity >= i.Stock {
		return ErrNoMoreStock
	}
	i.Quantity++
	return nil
}

// Decrement 数量-1，返回true表示数量为1的条目应被删除
func (i *Item) Decrement() (remove bool) {
	if i.Quantity > 1 {
		i.Quantity--
		return false
	}
	return true
}
