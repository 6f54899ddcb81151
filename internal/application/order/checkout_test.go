package order

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/MonkyMars/gecho"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tintayhojas/internal/application/apptest"
	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

type checkoutFixture struct {
	store  *apptest.Store
	events *apptest.Events
	uc     *CheckoutUseCase
}

func newCheckout(t *testing.T) *checkoutFixture {
	t.Helper()
	store := apptest.NewStore()
	events := &apptest.Events{}
	pricer, err := order.NewPricer(order.DefaultTaxRate)
	require.NoError(t, err)

	uc := NewCheckoutUseCase(store, store.Carts(), store.Books(), store.Orders(), store.Users(),
		pricer, events, gecho.NewDefaultLogger())
	return &checkoutFixture{store: store, events: events, uc: uc}
}

func TestCheckoutCommit(t *testing.T) {
	f := newCheckout(t)
	u := f.store.AddUser("lectora", false)
	b := f.store.AddBook("Pedro Páramo", "10.00", 5)
	f.store.AddCartItem(u.ID, b.ID, 3)

	resp, err := f.uc.Execute(context.Background(), CheckoutRequest{UserID: u.ID, Address: "Av. Juárez 12"})
	require.NoError(t, err)

	assert.Equal(t, "30.00", resp.Subtotal)
	assert.Equal(t, "4.80", resp.Taxes)
	assert.Equal(t, "34.80", resp.Total)
	assert.Equal(t, "paid", resp.Status)
	assert.NotEmpty(t, resp.OrderNo)

	assert.Equal(t, 2, f.store.Stock(b.ID))
	assert.Empty(t, f.store.CartQuantities(u.ID))
	assert.True(t, f.store.HasCart(u.ID), "结账后购物车本身保留")

	o, err := f.store.Orders().FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, 3, o.Lines[0].Quantity)
	assert.True(t, o.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, order.DefaultPaymentMethod, o.PaymentMethod)
	assert.True(t, o.LinesSubtotal().Equal(o.Subtotal))

	require.Len(t, f.events.Paid, 1)
	assert.Equal(t, resp.OrderNo, f.events.Paid[0].OrderNo)
	assert.Equal(t, "lectora@example.com", f.events.Paid[0].Email)
	assert.Equal(t, "Pedro Páramo", f.events.Paid[0].Lines[0].Title)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	f := newCheckout(t)
	u := f.store.AddUser("lectora", false)
	b := f.store.AddBook("Pedro Páramo", "10.00", 2)
	f.store.AddCartItem(u.ID, b.ID, 3)

	_, err := f.uc.Execute(context.Background(), CheckoutRequest{UserID: u.ID, Address: "Av. Juárez 12"})
	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Pedro Páramo")
	assert.Equal(t, "/cart", apperrors.GetAppError(err).Redirect)

	assert.Equal(t, 2, f.store.Stock(b.ID))
	assert.Equal(t, map[uint]int{b.ID: 3}, f.store.CartQuantities(u.ID))
	assert.Zero(t, f.store.OrderCount())
	assert.Empty(t, f.events.Paid)
}

func TestCheckoutPartialShortageWritesNothing(t *testing.T) {
	f := newCheckout(t)
	u := f.store.AddUser("lectora", false)
	ok := f.store.AddBook("Aura", "8.00", 10)
	short := f.store.AddBook("Rayuela", "12.00", 1)
	f.store.AddCartItem(u.ID, ok.ID, 2)
	f.store.AddCartItem(u.ID, short.ID, 2)

	_, err := f.uc.Execute(context.Background(), CheckoutRequest{UserID: u.ID, Address: "x"})
	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Equal(t, 10, f.store.Stock(ok.ID))
	assert.Equal(t, 1, f.store.Stock(short.ID))
	assert.Len(t, f.store.CartQuantities(u.ID), 2)
}

func TestCheckoutStorageFailureRollsBack(t *testing.T) {
	f := newCheckout(t)
	u := f.store.AddUser("lectora", false)
	b := f.store.AddBook("Pedro Páramo", "10.00", 5)
	f.store.AddCartItem(u.ID, b.ID, 3)
	f.store.FailOn("cart.ClearItems", errors.New("connection reset"))

	_, err := f.uc.Execute(context.Background(), CheckoutRequest{UserID: u.ID, Address: "x"})
	require.Error(t, err)

	assert.Equal(t, 5, f.store.Stock(b.ID))
	assert.Zero(t, f.store.OrderCount())
	assert.Equal(t, map[uint]int{b.ID: 3}, f.store.CartQuantities(u.ID))
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckout(t)
	u := f.store.AddUser("lectora", false)

	_, err := f.uc.Execute(context.Background(), CheckoutRequest{UserID: u.ID, Address: "x"})
	require.ErrorIs(t, err, cart.ErrCartEmpty)
	assert.Equal(t, "/catalog", apperrors.GetAppError(err).Redirect)

	// 没有购物车的用户
	_, err = f.uc.Execute(context.Background(), CheckoutRequest{UserID: 999, Address: "x"})
	assert.ErrorIs(t, err, cart.ErrCartEmpty)
}

func TestCheckoutRequiresAddress(t *testing.T) {
	f := newCheckout(t)
	u := f.store.AddUser("lectora", false)
	b := f.store.AddBook("Aura", "8.00", 10)
	f.store.AddCartItem(u.ID, b.ID, 1)

	_, err := f.uc.Execute(context.Background(), CheckoutRequest{UserID: u.ID, Address: "   "})
	require.ErrorIs(t, err, order.ErrAddressRequired)
	assert.Equal(t, 10, f.store.Stock(b.ID))
}

func TestCheckoutEventFailureKeepsOrder(t *testing.T) {
	f := newCheckout(t)
	f.events.Err = errors.New("circuit breaker is open")
	u := f.store.AddUser("lectora", false)
	b := f.store.AddBook("Aura", "8.00", 10)
	f.store.AddCartItem(u.ID, b.ID, 1)

	resp, err := f.uc.Execute(context.Background(), CheckoutRequest{UserID: u.ID, Address: "x", PaymentMethod: "efectivo"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.OrderCount())

	o, err := f.store.Orders().FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "efectivo", o.PaymentMethod)
}

func TestCheckoutUserLookupFailureIsLogged(t *testing.T) {
	f := newCheckout(t)
	var buf bytes.Buffer
	f.uc.logger = gecho.NewLogger(gecho.NewConfig(
		gecho.WithLogFormat(gecho.LogFormatJSON),
		gecho.WithOutput(&buf),
		gecho.WithShowCaller(false),
	))
	u := f.store.AddUser("lectora", false)
	b := f.store.AddBook("Aura", "8.00", 10)
	f.store.AddCartItem(u.ID, b.ID, 1)
	f.store.FailOn("user.FindByID", errors.New("bad connection"))

	resp, err := f.uc.Execute(context.Background(), CheckoutRequest{UserID: u.ID, Address: "x"})
	require.NoError(t, err)

	require.Len(t, f.events.Paid, 1)
	assert.Equal(t, resp.OrderNo, f.events.Paid[0].OrderNo)
	assert.Empty(t, f.events.Paid[0].Email)
	assert.Contains(t, buf.String(), "加载下单用户失败")
	assert.Contains(t, buf.String(), "bad connection")
}

func TestUnitPriceFrozenAfterCheckout(t *testing.T) {
	f := newCheckout(t)
	u := f.store.AddUser("lectora", false)
	b := f.store.AddBook("Aura", "8.00", 10)
	f.store.AddCartItem(u.ID, b.ID, 2)

	resp, err := f.uc.Execute(context.Background(), CheckoutRequest{UserID: u.ID, Address: "x"})
	require.NoError(t, err)

	f.store.SetPrice(b.ID, "99.00")
	o, err := f.store.Orders().FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "8.00", o.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "18.56", o.Total.StringFixed(2))
}

func TestPreviewCheckout(t *testing.T) {
	store := apptest.NewStore()
	pricer, err := order.NewPricer(order.DefaultTaxRate)
	require.NoError(t, err)
	uc := NewPreviewCheckoutUseCase(store.Carts(), pricer)

	u := store.AddUser("lectora", false)
	_, err = uc.Execute(context.Background(), u.ID)
	require.ErrorIs(t, err, cart.ErrCartEmpty)

	b := store.AddBook("Pedro Páramo", "10.00", 5)
	store.AddCartItem(u.ID, b.ID, 3)

	for i := 0; i < 2; i++ {
		p, err := uc.Execute(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, "30.00", p.Subtotal)
		assert.Equal(t, "4.80", p.Taxes)
		assert.Equal(t, "34.80", p.Total)
		assert.Equal(t, "0.16", p.TaxRate)
		assert.Len(t, p.Items, 1)
	}
	assert.Equal(t, 5, store.Stock(b.ID))
}
