package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tintayhojas/internal/application/apptest"
	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// apptestUser 没有购物车和资料的用户
func apptestUser(username string) user.User {
	return user.User{Username: username, Email: username + "@example.com"}
}

func TestAddToCart(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	u := store.AddUser("lector", false)
	b := store.AddBook("Pedro Páramo", "10.00", 2)
	uc := NewAddToCartUseCase(store.Books(), store.Carts(), store)

	resp, err := uc.Execute(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, resp.Created)
	assert.Equal(t, 1, resp.Cart.Count)

	resp, err = uc.Execute(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, resp.Created)
	assert.Equal(t, "20.00", resp.Cart.Total)

	// 加入购物车不比较数量和库存
	_, err = uc.Execute(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{b.ID: 3}, store.CartQuantities(u.ID))
}

func TestAddToCartOutOfStock(t *testing.T) {
	store := apptest.NewStore()
	u := store.AddUser("lector", false)
	b := store.AddBook("Agotado", "10.00", 0)
	uc := NewAddToCartUseCase(store.Books(), store.Carts(), store)

	_, err := uc.Execute(context.Background(), u.ID, b.ID)
	require.ErrorIs(t, err, cart.ErrOutOfStock)
	assert.Equal(t, "/catalog", apperrors.GetAppError(err).Redirect)
	assert.Empty(t, store.CartQuantities(u.ID))
}

func TestAddToCartCreatesMissingCart(t *testing.T) {
	store := apptest.NewStore()
	u := store.PutUser(apptestUser("sin-carrito"))
	b := store.AddBook("Aura", "5.50", 1)
	uc := NewAddToCartUseCase(store.Books(), store.Carts(), store)

	require.False(t, store.HasCart(u.ID))
	resp, err := uc.Execute(context.Background(), u.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, resp.Created)
	assert.True(t, store.HasCart(u.ID))
}

func TestAddToCartUnknownBook(t *testing.T) {
	store := apptest.NewStore()
	u := store.AddUser("lector", false)
	uc := NewAddToCartUseCase(store.Books(), store.Carts(), store)

	_, err := uc.Execute(context.Background(), u.ID, 999)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func TestChangeItem(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	u := store.AddUser("lector", false)
	b := store.AddBook("Rayuela", "12.00", 2)
	itemID := store.AddCartItem(u.ID, b.ID, 1)
	uc := NewChangeItemUseCase(store.Carts())

	resp, err := uc.Execute(ctx, ChangeItemRequest{UserID: u.ID, ItemID: itemID, Action: ActionIncrement})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Quantity)
	assert.Equal(t, "24.00", resp.Cart.Total)

	_, err = uc.Execute(ctx, ChangeItemRequest{UserID: u.ID, ItemID: itemID, Action: ActionIncrement})
	require.ErrorIs(t, err, cart.ErrNoMoreStock)
	assert.Equal(t, map[uint]int{b.ID: 2}, store.CartQuantities(u.ID))

	resp, err = uc.Execute(ctx, ChangeItemRequest{UserID: u.ID, ItemID: itemID, Action: ActionDecrement})
	require.NoError(t, err)
	assert.False(t, resp.Removed)
	assert.Equal(t, 1, resp.Quantity)

	resp, err = uc.Execute(ctx, ChangeItemRequest{UserID: u.ID, ItemID: itemID, Action: ActionDecrement})
	require.NoError(t, err)
	assert.True(t, resp.Removed)
	assert.Empty(t, store.CartQuantities(u.ID))
	assert.Equal(t, "0.00", resp.Cart.Total)
}

func TestChangeItemRemove(t *testing.T) {
	store := apptest.NewStore()
	u := store.AddUser("lector", false)
	b := store.AddBook("Rayuela", "12.00", 9)
	itemID := store.AddCartItem(u.ID, b.ID, 4)

	resp, err := NewChangeItemUseCase(store.Carts()).Execute(context.Background(),
		ChangeItemRequest{UserID: u.ID, ItemID: itemID, Action: ActionRemove})
	require.NoError(t, err)
	assert.True(t, resp.Removed)
	assert.Empty(t, store.CartQuantities(u.ID))
}

func TestChangeItemNotOwner(t *testing.T) {
	store := apptest.NewStore()
	owner := store.AddUser("duena", false)
	other := store.AddUser("intruso", false)
	b := store.AddBook("Rayuela", "12.00", 9)
	itemID := store.AddCartItem(owner.ID, b.ID, 2)
	uc := NewChangeItemUseCase(store.Carts())

	for _, action := range []Action{ActionIncrement, ActionDecrement, ActionRemove} {
		_, err := uc.Execute(context.Background(), ChangeItemRequest{UserID: other.ID, ItemID: itemID, Action: action})
		require.ErrorIs(t, err, cart.ErrNotOwner, action)
		assert.Equal(t, "/cart", apperrors.GetAppError(err).Redirect)
	}
	assert.Equal(t, map[uint]int{b.ID: 2}, store.CartQuantities(owner.ID))
}

func TestChangeItemUnknown(t *testing.T) {
	store := apptest.NewStore()
	u := store.AddUser("lector", false)
	b := store.AddBook("Rayuela", "12.00", 9)
	itemID := store.AddCartItem(u.ID, b.ID, 2)
	uc := NewChangeItemUseCase(store.Carts())

	_, err := uc.Execute(context.Background(), ChangeItemRequest{UserID: u.ID, ItemID: 999, Action: ActionRemove})
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	_, err = uc.Execute(context.Background(), ChangeItemRequest{UserID: u.ID, ItemID: itemID, Action: "double"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestViewCart(t *testing.T) {
	store := apptest.NewStore()
	u := store.AddUser("lector", false)
	b1 := store.AddBook("Ficciones", "10.00", 5)
	b2 := store.AddBook("El Aleph", "7.25", 5)
	store.AddCartItem(u.ID, b1.ID, 3)
	store.AddCartItem(u.ID, b2.ID, 2)
	uc := NewViewCartUseCase(store.Carts())

	v, err := uc.Execute(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "30.00", v.Items[0].Subtotal)
	assert.Equal(t, "44.50", v.Total)
	assert.Equal(t, 5, v.Count)

	// 总额按图书当前价格重新计算
	store.SetPrice(b1.ID, "11.00")
	v, err = uc.Execute(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "47.50", v.Total)

	// 没有购物车的用户看到空购物车
	nobody := store.PutUser(apptestUser("sin-carrito"))
	v, err = uc.Execute(context.Background(), nobody.ID)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.Equal(t, "0.00", v.Total)
}
