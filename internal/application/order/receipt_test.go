package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tintayhojas/internal/domain/order"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

type fakeRenderer struct {
	err error
}

func (r fakeRenderer) Render(o *order.Order) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-" + o.OrderNo), nil
}

// placeOrder 通过结账生成一张订单
func placeOrder(t *testing.T, f *checkoutFixture, userID uint) uint {
	t.Helper()
	b := f.store.AddBook("Aura", "8.00", 10)
	f.store.AddCartItem(userID, b.ID, 1)
	resp, err := f.uc.Execute(context.Background(), CheckoutRequest{UserID: userID, Address: "x"})
	require.NoError(t, err)
	return resp.OrderID
}

func TestGetReceipt(t *testing.T) {
	f := newCheckout(t)
	owner := f.store.AddUser("duena", false)
	other := f.store.AddUser("intruso", false)
	orderID := placeOrder(t, f, owner.ID)
	uc := NewGetReceiptUseCase(f.store.Orders())

	v, err := uc.Execute(context.Background(), owner.ID, orderID)
	require.NoError(t, err)
	assert.Equal(t, "9.28", v.Total)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "Aura", v.Lines[0].BookTitle)

	_, err = uc.Execute(context.Background(), other.ID, orderID)
	require.ErrorIs(t, err, order.ErrNotOwner)
	assert.Equal(t, "/", apperrors.GetAppError(err).Redirect)

	_, err = uc.Execute(context.Background(), owner.ID, 999)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestReceiptPDF(t *testing.T) {
	f := newCheckout(t)
	owner := f.store.AddUser("duena", false)
	other := f.store.AddUser("intruso", false)
	orderID := placeOrder(t, f, owner.ID)

	file, err := NewReceiptPDFUseCase(f.store.Orders(), fakeRenderer{}).Execute(context.Background(), owner.ID, orderID)
	require.NoError(t, err)
	assert.Contains(t, file.Filename, "recibo-ORD")
	assert.Equal(t, "%PDF-", string(file.Content[:5]))

	_, err = NewReceiptPDFUseCase(f.store.Orders(), fakeRenderer{}).Execute(context.Background(), other.ID, orderID)
	assert.ErrorIs(t, err, order.ErrNotOwner)

	_, err = NewReceiptPDFUseCase(f.store.Orders(), fakeRenderer{err: errors.New("font")}).Execute(context.Background(), owner.ID, orderID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
}

func TestListUserOrders(t *testing.T) {
	f := newCheckout(t)
	u := f.store.AddUser("lectora", false)
	other := f.store.AddUser("otra", false)
	first := placeOrder(t, f, u.ID)
	second := placeOrder(t, f, u.ID)
	placeOrder(t, f, other.ID)

	page, err := NewListUserOrdersUseCase(f.store.Orders()).Execute(context.Background(), u.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	require.Len(t, page.List, 2)
	assert.Equal(t, second, page.List[0].ID)
	assert.Equal(t, first, page.List[1].ID)
}
