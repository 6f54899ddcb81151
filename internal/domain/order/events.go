package order

import (
	"time"
)

// 订单事件的routing key
const (
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
)

// PaidEvent 结账成功后发布（事务提交之后）
// 金额使用两位小数的字符串，消费方不需要decimal库
type PaidEvent struct {
	OrderID       uint        `json:"order_id"`
	OrderNo       string      `json:"order_no"`
	UserID        uint        `json:"user_id"`
	Username      string      `json:"username"`
	Email         string      `json:"email"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"payment_method"`
	Subtotal      string      `json:"subtotal"`
	Taxes         string      `json:"taxes"`
	Total         string      `json:"total"`
	Lines         []EventLine `json:"lines"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

type EventLine struct {
	BookID    uint   `json:"book_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// StatusChangedEvent 后台修改订单状态后发布
type StatusChangedEvent struct {
	OrderID    uint      `json:"order_id"`
	OrderNo    string    `json:"order_no"`
	UserID     uint      `json:"user_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewPaidEvent 由已保存的订单构造事件，titles按BookID提供书名
func NewPaidEvent(o *Order, email string, titles map[uint]string) PaidEvent {
	lines := make([]EventLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		title := l.BookTitle
		if title == "" {
			title = titles[l.BookID]
		}
		lines = append(lines, EventLine{
			BookID:    l.BookID,
			Title:     title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
		})
	}
	return PaidEvent{
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		Username:      o.Username,
		Email:         email,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		Subtotal:      o.Subtotal.StringFixed(2),
		Taxes:         o.Taxes.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Lines:         lines,
		OccurredAt:    time.Now(),
	}
}
