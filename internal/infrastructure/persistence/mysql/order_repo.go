package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/tintayhojas/internal/domain/order"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// OrderRepository 订单仓储实现
type OrderRepository struct {
	baseRepo
}

// NewOrderRepository 创建订单仓储
// 返回具体类型，同时满足order.Repository和review.PurchaseChecker
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{baseRepo{db: db}}
}

var _ order.Repository = (*OrderRepository)(nil)

// Create 订单和明细一起插入（GORM自动保存Lines关联）
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	for i := range model.Lines {
		o.Lines[i].ID = model.Lines[i].ID
		o.Lines[i].OrderID = model.ID
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := r.getDB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	o := toOrderEntity(&model)
	if err := r.fillDisplayFields(ctx, []*order.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// Update 只保存后台可编辑的字段，明细不变
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	result := r.getDB(ctx).Model(&OrderModel{ID: o.ID}).Updates(map[string]interface{}{
		"address":        o.Address,
		"payment_method": o.PaymentMethod,
		"total":          o.Total,
		"status":         int(o.Status),
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.getDB(ctx).Model(&OrderModel{}).Where("id = ?", o.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询订单失败")
		}
		if count == 0 {
			return order.ErrOrderNotFound
		}
	}
	return nil
}

func (r *OrderRepository) DeleteLines(ctx context.Context, orderID uint) error {
	if err := r.getDB(ctx).Where("order_id = ?", orderID).Delete(&OrderLineModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除订单明细失败")
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&OrderModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除订单失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return r.list(ctx, r.getDB(ctx).Model(&OrderModel{}).Where("user_id = ?", userID), page, pageSize)
}

func (r *OrderRepository) List(ctx context.Context, page, pageSize int) ([]*order.Order, int64, error) {
	return r.list(ctx, r.getDB(ctx).Model(&OrderModel{}), page, pageSize)
}

func (r *OrderRepository) list(ctx context.Context, query *gorm.DB, page, pageSize int) ([]*order.Order, int64, error) {
	if pageSize < 1 {
		pageSize = 20
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}
	if total == 0 {
		return []*order.Order{}, 0, nil
	}

	var models []OrderModel
	err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").Order("id DESC").
		Offset(offset(page, pageSize)).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toOrderEntity(&models[i]))
	}
	if err := r.fillDisplayFields(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// HasPurchased SELECT EXISTS(...)，用于书评资格判断
func (r *OrderRepository) HasPurchased(ctx context.Context, userID, bookID uint) (bool, error) {
	var exists bool
	err := r.getDB(ctx).Raw(
		"SELECT EXISTS(SELECT 1 FROM order_lines AS ol JOIN orders AS o ON o.id = ol.order_id WHERE o.user_id = ? AND ol.book_id = ?)",
		userID, bookID,
	).Scan(&exists).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询购买记录失败")
	}
	return exists, nil
}

// fillDisplayFields 批量带出用户名和书名（已归档图书也要显示）
func (r *OrderRepository) fillDisplayFields(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	userIDs := make([]uint, 0, len(orders))
	bookIDs := make([]uint, 0)
	for _, o := range orders {
		userIDs = append(userIDs, o.UserID)
		for _, l := range o.Lines {
			bookIDs = append(bookIDs, l.BookID)
		}
	}

	db := r.getDB(ctx)

	var users []UserModel
	if err := db.Select("id", "username").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return apperrors.Wrap(err, "查询订单用户失败")
	}
	usernames := make(map[uint]string, len(users))
	for _, u := range users {
		usernames[u.ID] = u.Username
	}

	titles := make(map[uint]string)
	if len(bookIDs) > 0 {
		var books []BookModel
		if err := db.Unscoped().Select("id", "title").Where("id IN ?", bookIDs).Find(&books).Error; err != nil {
			return apperrors.Wrap(err, "查询订单图书失败")
		}
		for _, b := range books {
			titles[b.ID] = b.Title
		}
	}

	for _, o := range orders {
		o.Username = usernames[o.UserID]
		for i := range o.Lines {
			o.Lines[i].BookTitle = titles[o.Lines[i].BookID]
		}
	}
	return nil
}

func toOrderModel(o *order.Order) *OrderModel {
	lines := make([]OrderLineModel, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineModel{
			BookID:    l.BookID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return &OrderModel{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		Subtotal:      o.Subtotal,
		Taxes:         o.Taxes,
		Total:         o.Total,
		Status:        int(o.Status),
		Lines:         lines,
	}
}

func toOrderEntity(m *OrderModel) *order.Order {
	lines := make([]order.Line, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, order.Line{
			ID:        l.ID,
			OrderID:   l.OrderID,
			BookID:    l.BookID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return &order.Order{
		ID:            m.ID,
		OrderNo:       m.OrderNo,
		UserID:        m.UserID,
		Address:       m.Address,
		PaymentMethod: m.PaymentMethod,
		Subtotal:      m.Subtotal,
		Taxes:         m.Taxes,
		Total:         m.Total,
		Status:        order.Status(m.Status),
		Lines:         lines,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
