package order

import (
	"context"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// GetReceiptUseCase 查看订单收据，只有下单用户可以查看
type GetReceiptUseCase struct {
	orders order.Repository
}

func NewGetReceiptUseCase(orders order.Repository) *GetReceiptUseCase {
	return &GetReceiptUseCase{orders: orders}
}

func (uc *GetReceiptUseCase) Execute(ctx context.Context, userID, orderID uint) (*view.OrderView, error) {
	o, err := findOwned(ctx, uc.orders, userID, orderID)
	if err != nil {
		return nil, err
	}
	v := view.NewOrder(o)
	return &v, nil
}

func findOwned(ctx context.Context, orders order.Repository, userID, orderID uint) (*order.Order, error) {
	o, err := orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, order.ErrNotOwner
	}
	return o, nil
}

// ReceiptPDFUseCase 生成可打印的PDF收据
type ReceiptPDFUseCase struct {
	orders   order.Repository
	renderer port.ReceiptRenderer
}

func NewReceiptPDFUseCase(orders order.Repository, renderer port.ReceiptRenderer) *ReceiptPDFUseCase {
	return &ReceiptPDFUseCase{orders: orders, renderer: renderer}
}

// ReceiptFile PDF内容和建议的文件名
type ReceiptFile struct {
	Filename string
	Content  []byte
}

func (uc *ReceiptPDFUseCase) Execute(ctx context.Context, userID, orderID uint) (*ReceiptFile, error) {
	o, err := findOwned(ctx, uc.orders, userID, orderID)
	if err != nil {
		return nil, err
	}

	content, err := uc.renderer.Render(o)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成收据失败")
	}
	return &ReceiptFile{Filename: "recibo-" + o.OrderNo + ".pdf", Content: content}, nil
}

// ListUserOrdersUseCase 我的订单，按创建时间倒序
type ListUserOrdersUseCase struct {
	orders order.Repository
}

func NewListUserOrdersUseCase(orders order.Repository) *ListUserOrdersUseCase {
	return &ListUserOrdersUseCase{orders: orders}
}

func (uc *ListUserOrdersUseCase) Execute(ctx context.Context, userID uint, page, pageSize int) (*view.Page[view.OrderView], error) {
	page, pageSize = view.NormalizePage(page, pageSize)
	list, total, err := uc.orders.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &view.Page[view.OrderView]{List: view.NewOrders(list), Total: total, Page: page, PageSize: pageSize}, nil
}
