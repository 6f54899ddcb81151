package mysql

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// cartRepository 购物车仓储实现
// 条目查询时关联carts和books，带出所属用户和图书的实时价格、库存
type cartRepository struct {
	baseRepo
}

func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{baseRepo{db: db}}
}

// cartItemRow 条目联表查询结果
type cartItemRow struct {
	ID        uint
	CartID    uint
	BookID    uint
	Quantity  int
	OwnerID   uint
	BookTitle string
	UnitPrice decimal.Decimal
	Stock     int
}

const cartItemColumns = "ci.id, ci.cart_id, ci.book_id, ci.quantity, " +
	"c.user_id AS owner_id, b.title AS book_title, b.price AS unit_price, b.stock"

func (r *cartRepository) itemQuery(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).Table("cart_items AS ci").
		Select(cartItemColumns).
		Joins("JOIN carts AS c ON c.id = ci.cart_id").
		Joins("JOIN books AS b ON b.id = ci.book_id AND b.deleted_at IS NULL")
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	var model CartModel
	if err := r.getDB(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}

	var rows []cartItemRow
	if err := r.itemQuery(ctx).Where("ci.cart_id = ?", model.ID).Order("ci.id ASC").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询购物车条目失败")
	}

	c := &cart.Cart{
		ID:        model.ID,
		UserID:    model.UserID,
		CreatedAt: model.CreatedAt,
		Items:     make([]*cart.Item, 0, len(rows)),
	}
	for i := range rows {
		c.Items = append(c.Items, toCartItem(&rows[i]))
	}
	return c, nil
}

func (r *cartRepository) Create(ctx context.Context, c *cart.Cart) error {
	model := &CartModel{UserID: c.UserID}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建购物车失败")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	return nil
}

func (r *cartRepository) FindItemByID(ctx context.Context, itemID uint) (*cart.Item, error) {
	return r.findItem(ctx, "ci.id = ?", itemID)
}

func (r *cartRepository) FindItem(ctx context.Context, cartID, bookID uint) (*cart.Item, error) {
	return r.findItem(ctx, "ci.cart_id = ? AND ci.book_id = ?", cartID, bookID)
}

func (r *cartRepository) findItem(ctx context.Context, query string, args ...interface{}) (*cart.Item, error) {
	var rows []cartItemRow
	if err := r.itemQuery(ctx).Where(query, args...).Limit(1).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询购物车条目失败")
	}
	if len(rows) == 0 {
		return nil, cart.ErrItemNotFound
	}
	return toCartItem(&rows[0]), nil
}

func (r *cartRepository) CreateItem(ctx context.Context, item *cart.Item) error {
	model := &CartItemModel{CartID: item.CartID, BookID: item.BookID, Quantity: item.Quantity}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return cart.ErrItemExists
		}
		return apperrors.Wrap(err, "添加购物车条目失败")
	}
	item.ID = model.ID
	return nil
}

// IncrementItem UPDATE cart_items SET quantity = quantity + ? WHERE id = ?
func (r *cartRepository) IncrementItem(ctx context.Context, itemID uint, delta int) error {
	result := r.getDB(ctx).Model(&CartItemModel{}).
		Where("id = ?", itemID).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新购物车条目失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	result := r.getDB(ctx).Model(&CartItemModel{}).Where("id = ?", itemID).Update("quantity", quantity)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新购物车条目失败")
	}
	if result.RowsAffected == 0 {
		// 数量未变化时MySQL也返回0行，需再确认条目是否存在
		var count int64
		if err := r.getDB(ctx).Model(&CartItemModel{}).Where("id = ?", itemID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询购物车条目失败")
		}
		if count == 0 {
			return cart.ErrItemNotFound
		}
	}
	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID uint) error {
	result := r.getDB(ctx).Delete(&CartItemModel{}, itemID)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除购物车条目失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uint) error {
	if err := r.getDB(ctx).Where("cart_id = ?", cartID).Delete(&CartItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "清空购物车失败")
	}
	return nil
}

func (r *cartRepository) DeleteItemsByBookIDs(ctx context.Context, bookIDs []uint) error {
	if len(bookIDs) == 0 {
		return nil
	}
	if err := r.getDB(ctx).Where("book_id IN ?", bookIDs).Delete(&CartItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "移除购物车中的图书失败")
	}
	return nil
}

func toCartItem(row *cartItemRow) *cart.Item {
	return &cart.Item{
		ID:        row.ID,
		CartID:    row.CartID,
		BookID:    row.BookID,
		Quantity:  row.Quantity,
		OwnerID:   row.OwnerID,
		BookTitle: row.BookTitle,
		UnitPrice: row.UnitPrice,
		Stock:     row.Stock,
	}
}
