package admin

import (
	"context"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
)

// OrderUseCase 订单管理
// 状态变化后发布order.status_changed事件（失败只记录日志）
type OrderUseCase struct {
	txManager port.TxManager
	orders    order.Repository
	users     user.Repository
	events    port.OrderEventPublisher
	logger    *gecho.Logger
}

func NewOrderUseCase(txManager port.TxManager, orders order.Repository, users user.Repository, events port.OrderEventPublisher, logger *gecho.Logger) *OrderUseCase {
	return &OrderUseCase{txManager: txManager, orders: orders, users: users, events: events, logger: logger}
}

// OrderInput 手工录入和整体编辑共用，Status取值 pending/paid/shipped
type OrderInput struct {
	UserID        uint
	Address       string
	PaymentMethod string
	Total         decimal.Decimal
	Status        string
}

// List 最新的在前
func (uc *OrderUseCase) List(ctx context.Context, page, pageSize int) (*view.Page[view.OrderView], error) {
	page, pageSize = view.NormalizePage(page, pageSize)
	list, total, err := uc.orders.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &view.Page[view.OrderView]{List: view.NewOrders(list), Total: total, Page: page, PageSize: pageSize}, nil
}

func (uc *OrderUseCase) Get(ctx context.Context, id uint) (*view.OrderView, error) {
	o, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := view.NewOrder(o)
	return &v, nil
}

// Create 手工录入订单（没有明细）
func (uc *OrderUseCase) Create(ctx context.Context, in OrderInput) (*view.OrderView, error) {
	if _, err := uc.users.FindByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	o, err := order.NewManualOrder(in.UserID, in.Address, in.PaymentMethod, in.Total, status)
	if err != nil {
		return nil, err
	}
	if err := uc.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return uc.Get(ctx, o.ID)
}

// ChangeStatus 只修改状态
func (uc *OrderUseCase) ChangeStatus(ctx context.Context, id uint, status string) (*view.OrderView, error) {
	next, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := o.Status
	if err := o.SetStatus(next); err != nil {
		return nil, err
	}
	if err := uc.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	uc.statusChanged(ctx, o, prev)

	v := view.NewOrder(o)
	return &v, nil
}

// Edit 修改地址、支付方式、总额和状态
func (uc *OrderUseCase) Edit(ctx context.Context, id uint, in OrderInput) (*view.OrderView, error) {
	status, err := order.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	o, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := o.Status
	if err := o.Edit(in.Address, in.PaymentMethod, in.Total, status); err != nil {
		return nil, err
	}
	if err := uc.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	uc.statusChanged(ctx, o, prev)

	v := view.NewOrder(o)
	return &v, nil
}

// Delete 在一个事务中删除明细和订单，任一步失败都不会留下没有明细的订单
func (uc *OrderUseCase) Delete(ctx context.Context, id uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.orders.DeleteLines(txCtx, id); err != nil {
			return err
		}
		return uc.orders.Delete(txCtx, id)
	})
}

func (uc *OrderUseCase) statusChanged(ctx context.Context, o *order.Order, prev order.Status) {
	if o.Status == prev {
		return
	}
	event := order.StatusChangedEvent{
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		From:       prev.String(),
		To:         o.Status.String(),
		OccurredAt: time.Now(),
	}
	if err := uc.events.PublishOrderStatusChanged(ctx, event); err != nil {
		uc.logger.Warn("发布订单状态事件失败",
			gecho.Field("order_no", o.OrderNo),
			gecho.Field("error", err.Error()),
		)
	}
}
