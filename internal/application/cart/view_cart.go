package cart

import (
	"context"
	"errors"

	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/cart"
)

// ViewCartUseCase 查看购物车
type ViewCartUseCase struct {
	carts cart.Repository
}

func NewViewCartUseCase(carts cart.Repository) *ViewCartUseCase {
	return &ViewCartUseCase{carts: carts}
}

// Execute 没有购物车的用户看到空购物车
func (uc *ViewCartUseCase) Execute(ctx context.Context, userID uint) (*view.CartView, error) {
	c, err := uc.carts.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, cart.ErrCartNotFound) {
			return nil, err
		}
		c = cart.NewCart(userID)
	}

	v := view.NewCart(c)
	return &v, nil
}
