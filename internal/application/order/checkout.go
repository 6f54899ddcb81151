package order

import (
	"context"
	"errors"
	"time"

	"github.com/MonkyMars/gecho"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
	"github.com/xiebiao/tintayhojas/pkg/metrics"
	"github.com/xiebiao/tintayhojas/pkg/tracing"
)

const tracerName = "checkout"

// CheckoutPreview 结账预览（没有副作用，可以重复请求）
type CheckoutPreview struct {
	Items    []view.CartItemView `json:"items"`
	Subtotal string              `json:"subtotal"`
	Taxes    string              `json:"taxes"`
	Total    string              `json:"total"`
	TaxRate  string              `json:"tax_rate"`
}

// PreviewCheckoutUseCase 结账预览
type PreviewCheckoutUseCase struct {
	carts  cart.Repository
	pricer *order.Pricer
}

func NewPreviewCheckoutUseCase(carts cart.Repository, pricer *order.Pricer) *PreviewCheckoutUseCase {
	return &PreviewCheckoutUseCase{carts: carts, pricer: pricer}
}

func (uc *PreviewCheckoutUseCase) Execute(ctx context.Context, userID uint) (*CheckoutPreview, error) {
	c, err := loadCart(ctx, uc.carts, userID)
	if err != nil {
		return nil, err
	}

	quote := uc.pricer.Quote(c.Total())
	cv := view.NewCart(c)
	return &CheckoutPreview{
		Items:    cv.Items,
		Subtotal: view.Money(quote.Subtotal),
		Taxes:    view.Money(quote.Tax),
		Total:    view.Money(quote.Total),
		TaxRate:  uc.pricer.TaxRate().String(),
	}, nil
}

// loadCart 没有购物车或没有条目都视为购物车为空
func loadCart(ctx context.Context, carts cart.Repository, userID uint) (*cart.Cart, error) {
	c, err := carts.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			return nil, cart.ErrCartEmpty
		}
		return nil, err
	}
	if c.IsEmpty() {
		return nil, cart.ErrCartEmpty
	}
	return c, nil
}

// CheckoutUseCase 提交结账
type CheckoutUseCase struct {
	txManager port.TxManager
	carts     cart.Repository
	books     catalog.BookRepository
	orders    order.Repository
	users     user.Repository
	pricer    *order.Pricer
	events    port.OrderEventPublisher
	logger    *gecho.Logger
}

func NewCheckoutUseCase(
	txManager port.TxManager,
	carts cart.Repository,
	books catalog.BookRepository,
	orders order.Repository,
	users user.Repository,
	pricer *order.Pricer,
	events port.OrderEventPublisher,
	logger *gecho.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		txManager: txManager,
		carts:     carts,
		books:     books,
		orders:    orders,
		users:     users,
		pricer:    pricer,
		events:    events,
		logger:    logger,
	}
}

// CheckoutRequest 结账请求，UserID从JWT中提取
type CheckoutRequest struct {
	UserID        uint
	Address       string
	PaymentMethod string
}

// CheckoutResponse 结账结果
type CheckoutResponse struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Subtotal  string `json:"subtotal"`
	Taxes     string `json:"taxes"`
	Total     string `json:"total"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Execute 在一个事务中完成：
//  1. 重新读取购物车条目
//  2. 按ID升序锁定图书行（SELECT ... FOR UPDATE），逐条检查库存
//  3. 按锁定时的价格生成已支付订单和明细
//  4. 扣减库存（stock + delta >= 0 条件更新）
//  5. 清空购物车条目，购物车本身保留
//
// 任何一步失败整个事务回滚，库存和购物车不变
// 提交之后才记录指标、发布order.paid事件
func (uc *CheckoutUseCase) Execute(ctx context.Context, req CheckoutRequest) (resp *CheckoutResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "checkout.commit")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		metrics.IncCounterVec(metrics.CheckoutsTotal, map[string]string{"result": checkoutResult(err)})
	}()

	var placed *order.Order
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := loadCart(txCtx, uc.carts, req.UserID)
		if err != nil {
			return err
		}

		lines, err := uc.lockAndPrice(txCtx, c)
		if err != nil {
			return err
		}

		o, err := order.NewPaidOrder(req.UserID, req.Address, req.PaymentMethod, uc.pricer.QuoteLines(lines), lines)
		if err != nil {
			return err
		}
		if err := uc.orders.Create(txCtx, o); err != nil {
			return err
		}

		for _, l := range lines {
			if err := uc.books.UpdateStock(txCtx, l.BookID, -l.Quantity); err != nil {
				return err
			}
		}

		if err := uc.carts.ClearItems(txCtx, c.ID); err != nil {
			return err
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveHistogram(metrics.CheckoutDuration, time.Since(start).Seconds())
	metrics.ObserveHistogram(metrics.OrderAmount, placed.Total.InexactFloat64())
	uc.logger.Info("订单已支付",
		gecho.Field("order_no", placed.OrderNo),
		gecho.Field("user_id", placed.UserID),
		gecho.Field("total", placed.Total.StringFixed(2)),
	)
	uc.publishPaid(ctx, placed)

	return &CheckoutResponse{
		OrderID:   placed.ID,
		OrderNo:   placed.OrderNo,
		Subtotal:  view.Money(placed.Subtotal),
		Taxes:     view.Money(placed.Taxes),
		Total:     view.Money(placed.Total),
		Status:    placed.Status.String(),
		CreatedAt: view.Time(placed.CreatedAt),
	}, nil
}

// lockAndPrice 锁定图书并生成明细，单价取锁定时的价格
func (uc *CheckoutUseCase) lockAndPrice(ctx context.Context, c *cart.Cart) ([]order.Line, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "checkout.lock_books")
	defer span.End()

	books, err := uc.books.LockByIDs(ctx, c.BookIDs())
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	byID := make(map[uint]*catalog.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	lines := make([]order.Line, 0, len(c.Items))
	for _, item := range c.Items {
		b, ok := byID[item.BookID]
		if !ok {
			return nil, catalog.ErrBookNotFound
		}
		if !b.CanSupply(item.Quantity) {
			err := catalog.ErrInsufficientStock.
				WithMessage("《%s》库存不足，当前库存:%d，需要:%d", b.Title, b.Stock, item.Quantity).
				WithRedirect(cart.RedirectCart)
			tracing.RecordError(span, err)
			return nil, err
		}
		lines = append(lines, order.Line{
			BookID:    b.ID,
			BookTitle: b.Title,
			Quantity:  item.Quantity,
			UnitPrice: b.Price,
		})
	}
	return lines, nil
}

// publishPaid 事件发布失败不影响已提交的订单，只记录日志
func (uc *CheckoutUseCase) publishPaid(ctx context.Context, o *order.Order) {
	var email string
	u, err := uc.users.FindByID(ctx, o.UserID)
	if err != nil {
		uc.logger.Warn("加载下单用户失败",
			gecho.Field("order_no", o.OrderNo),
			gecho.Field("user_id", o.UserID),
			gecho.Field("error", err.Error()),
		)
	} else {
		email = u.Email
		o.Username = u.Username
	}

	if err := uc.events.PublishOrderPaid(ctx, order.NewPaidEvent(o, email, nil)); err != nil {
		uc.logger.Warn("发布订单事件失败",
			gecho.Field("order_no", o.OrderNo),
			gecho.Field("error", err.Error()),
		)
	}
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, catalog.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, cart.ErrCartEmpty):
		return "empty_cart"
	default:
		return "error"
	}
}
