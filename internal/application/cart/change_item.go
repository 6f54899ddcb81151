package cart

import (
	"context"

	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
	"github.com/xiebiao/tintayhojas/pkg/tracing"
)

// Action 购物车条目操作
type Action string

const (
	ActionIncrement Action = "increment"
	ActionDecrement Action = "decrement"
	ActionRemove    Action = "remove"
)

// ErrUnknownAction 不支持的操作
var ErrUnknownAction = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的购物车操作")

// ChangeItemUseCase 增加、减少、移除购物车条目
type ChangeItemUseCase struct {
	carts cart.Repository
}

func NewChangeItemUseCase(carts cart.Repository) *ChangeItemUseCase {
	return &ChangeItemUseCase{carts: carts}
}

type ChangeItemRequest struct {
	UserID uint
	ItemID uint
	Action Action
}

// ChangeItemResponse Removed为true时条目已被删除
type ChangeItemResponse struct {
	Removed  bool          `json:"removed"`
	Quantity int           `json:"quantity"`
	Cart     view.CartView `json:"cart"`
}

// Execute 只能操作自己购物车里的条目，否则返回ErrNotOwner
// 增加时已达库存上限返回ErrNoMoreStock，数量不变
func (uc *ChangeItemUseCase) Execute(ctx context.Context, req ChangeItemRequest) (resp *ChangeItemResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "cart."+string(req.Action))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		recordOp(string(req.Action), err)
	}()

	item, err := uc.carts.FindItemByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(req.UserID) {
		return nil, cart.ErrNotOwner
	}

	resp = &ChangeItemResponse{}
	switch req.Action {
	case ActionIncrement:
		if err := item.Increment(); err != nil {
			return nil, err
		}
		err = uc.carts.UpdateItemQuantity(ctx, item.ID, item.Quantity)
	case ActionDecrement:
		if item.Decrement() {
			resp.Removed = true
			err = uc.carts.DeleteItem(ctx, item.ID)
		} else {
			err = uc.carts.UpdateItemQuantity(ctx, item.ID, item.Quantity)
		}
	case ActionRemove:
		resp.Removed = true
		err = uc.carts.DeleteItem(ctx, item.ID)
	default:
		return nil, ErrUnknownAction
	}
	if err != nil {
		return nil, err
	}
	if !resp.Removed {
		resp.Quantity = item.Quantity
	}

	c, err := uc.carts.FindByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	resp.Cart = view.NewCart(c)
	return resp, nil
}
