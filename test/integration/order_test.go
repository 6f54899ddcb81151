//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCheckoutFlow 加购 → 预览 → 结账 → 收据 → 评价
func TestCheckoutFlow(t *testing.T) {
	admin := AdminToken(t)
	bookID := PublishTestBook(t, admin, "El llano en llamas", "10.00", 5)
	_, token := RegisterTestUser(t, "compradora")

	AddToCart(t, token, bookID, 2)

	resp := GetJSON(t, BaseURL+"/cart", token)
	require.Equal(t, 0, resp.Code)
	var cart CartData
	resp.Decode(t, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "20.00", cart.Total)

	resp = GetJSON(t, BaseURL+"/checkout", token)
	require.Equal(t, 0, resp.Code, resp.Message)
	var preview CheckoutData
	resp.Decode(t, &preview)
	assert.Equal(t, "20.00", preview.Subtotal)
	assert.Equal(t, "3.20", preview.Taxes)
	assert.Equal(t, "23.20", preview.Total)

	resp = Checkout(t, token)
	require.Equal(t, 0, resp.Code, resp.Message)
	var order CheckoutData
	resp.Decode(t, &order)
	assert.NotZero(t, order.OrderID)
	assert.Equal(t, "23.20", order.Total)
	assert.Equal(t, "paid", order.Status)

	t.Run("结账后购物车清空", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/cart", token)
		var after CartData
		resp.Decode(t, &after)
		assert.Empty(t, after.Items)
	})

	t.Run("库存扣减", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
		var book BookData
		resp.Decode(t, &book)
		assert.Equal(t, 3, book.Stock)
	})

	t.Run("收据", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/orders/%d/receipt", BaseURL, order.OrderID), token)
		assert.Equal(t, 0, resp.Code, resp.Message)

		httpResp, body := GetRaw(t, fmt.Sprintf("%s/orders/%d/receipt.pdf", BaseURL, order.OrderID), token)
		assert.Equal(t, http.StatusOK, httpResp.StatusCode)
		assert.Equal(t, "application/pdf", httpResp.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF", string(body[:4]))
	})

	t.Run("他人不能查看收据", func(t *testing.T) {
		_, other := RegisterTestUser(t, "curiosa")
		resp := GetJSON(t, fmt.Sprintf("%s/orders/%d/receipt", BaseURL, order.OrderID), other)
		assert.Equal(t, 40104, resp.Code)
	})

	t.Run("购买后可以评价一次", func(t *testing.T) {
		url := fmt.Sprintf("%s/books/%d/reviews", BaseURL, bookID)
		review := map[string]interface{}{"rating": 5, "comment": "Imprescindible"}

		resp := PostJSON(t, url, review, token)
		assert.Equal(t, 0, resp.Code, resp.Message)

		resp = PostJSON(t, url, review, token)
		assert.Equal(t, 40010, resp.Code)
	})
}

// TestReviewRequiresPurchase 未购买不能评价
func TestReviewRequiresPurchase(t *testing.T) {
	admin := AdminToken(t)
	bookID := PublishTestBook(t, admin, "Aura", "99.00", 3)
	_, token := RegisterTestUser(t, "lectora_sin_compra")

	resp := PostJSON(t, fmt.Sprintf("%s/books/%d/reviews", BaseURL, bookID), map[string]interface{}{
		"rating":  4,
		"comment": "Sin haberlo comprado",
	}, token)
	assert.Equal(t, 40008, resp.Code)
}

// TestCheckoutEmptyCart 空购物车不能结账
func TestCheckoutEmptyCart(t *testing.T) {
	_, token := RegisterTestUser(t, "vacio")
	resp := Checkout(t, token)
	assert.Equal(t, 40007, resp.Code)
}

// TestCartStockLimit 售罄的书不能加购；数量加到库存上限后不再增加
func TestCartStockLimit(t *testing.T) {
	admin := AdminToken(t)
	bookID := PublishTestBook(t, admin, "Ficciones", "150.00", 1)
	_, token := RegisterTestUser(t, "limite")

	AddToCart(t, token, bookID, 1)
	resp := GetJSON(t, BaseURL+"/cart", token)
	var cart CartData
	resp.Decode(t, &cart)
	require.Len(t, cart.Items, 1)

	url := fmt.Sprintf("%s/cart/items/%d", BaseURL, cart.Items[0].ID)
	resp = Do(t, http.MethodPatch, url, map[string]string{"action": "increment"}, token)
	assert.Equal(t, 40011, resp.Code)

	resp = Do(t, http.MethodPatch, url, map[string]string{"action": "decrement"}, token)
	require.Equal(t, 0, resp.Code, resp.Message)
	resp = GetJSON(t, BaseURL+"/cart", token)
	resp.Decode(t, &cart)
	assert.Empty(t, cart.Items, "数量为1时减少即删除条目")

	soldOut := PublishTestBook(t, admin, "Agotado", "150.00", 0)
	resp = PostJSON(t, fmt.Sprintf("%s/cart/books/%d", BaseURL, soldOut), nil, token)
	assert.Equal(t, 40006, resp.Code)
}

// TestCheckoutConcurrency 多个顾客同时抢最后几本，成功数不能超过库存
//
// 每个顾客先把书放进自己的购物车，然后并发结账；
// 结账时对图书行加锁，库存不足的一方整单回滚。
func TestCheckoutConcurrency(t *testing.T) {
	admin := AdminToken(t)
	const stock = 3
	const buyers = 8
	bookID := PublishTestBook(t, admin, "Rayuela", "250.00", stock)

	tokens := make([]string, buyers)
	for i := range tokens {
		_, tokens[i] = RegisterTestUser(t, fmt.Sprintf("concurrente%d", i))
		AddToCart(t, tokens[i], bookID, 1)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			resp := Checkout(t, token)
			mu.Lock()
			defer mu.Unlock()
			switch resp.Code {
			case 0:
				succeeded++
			case 40001:
				rejected++
			}
		}(token)
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, buyers-stock, rejected)

	resp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
	var book BookData
	resp.Decode(t, &book)
	assert.Equal(t, 0, book.Stock)
	assert.False(t, book.InStock)
}
