package cart

import (
	"context"
	"errors"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/pkg/metrics"
	"github.com/xiebiao/tintayhojas/pkg/tracing"
)

const tracerName = "cart"

// AddToCartUseCase 加入购物车
type AddToCartUseCase struct {
	books     catalog.BookRepository
	carts     cart.Repository
	txManager port.TxManager
}

func NewAddToCartUseCase(books catalog.BookRepository, carts cart.Repository, txManager port.TxManager) *AddToCartUseCase {
	return &AddToCartUseCase{books: books, carts: carts, txManager: txManager}
}

// AddToCartResponse Created为true表示新增了条目，否则是已有条目数量+1
type AddToCartResponse struct {
	Created bool          `json:"created"`
	Cart    view.CartView `json:"cart"`
}

// Execute 加入购物车
//  1. 库存为0时返回ErrOutOfStock，不创建条目
//  2. 没有购物车时先创建
//  3. 已有条目数量+1，否则新建数量为1的条目（不再比较数量和库存）
func (uc *AddToCartUseCase) Execute(ctx context.Context, userID, bookID uint) (resp *AddToCartResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "cart.add")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		recordOp("add", err)
	}()

	b, err := uc.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !b.InStock() {
		return nil, cart.ErrOutOfStock
	}

	var created bool
	var c *cart.Cart
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		current, err := uc.getOrCreateCart(txCtx, userID)
		if err != nil {
			return err
		}

		created, err = uc.addItem(txCtx, current.ID, bookID)
		if err != nil {
			return err
		}

		c, err = uc.carts.FindByUserID(txCtx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &AddToCartResponse{Created: created, Cart: view.NewCart(c)}, nil
}

func (uc *AddToCartUseCase) getOrCreateCart(ctx context.Context, userID uint) (*cart.Cart, error) {
	c, err := uc.carts.FindByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, cart.ErrCartNotFound) {
		return nil, err
	}

	c = cart.NewCart(userID)
	if err := uc.carts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *AddToCartUseCase) addItem(ctx context.Context, cartID, bookID uint) (bool, error) {
	item, err := uc.carts.FindItem(ctx, cartID, bookID)
	if err == nil {
		return false, uc.carts.IncrementItem(ctx, item.ID, 1)
	}
	if !errors.Is(err, cart.ErrItemNotFound) {
		return false, err
	}

	err = uc.carts.CreateItem(ctx, &cart.Item{CartID: cartID, BookID: bookID, Quantity: 1})
	if !errors.Is(err, cart.ErrItemExists) {
		return err == nil, err
	}

	// 并发请求先插入了同一本书
	item, err = uc.carts.FindItem(ctx, cartID, bookID)
	if err != nil {
		return false, err
	}
	return false, uc.carts.IncrementItem(ctx, item.ID, 1)
}

func recordOp(op string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.IncCounterVec(metrics.CartOperationsTotal, map[string]string{"op": op, "result": result})
}
