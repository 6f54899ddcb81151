package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status 订单状态
type Status int

const (
	StatusPending Status = 1 // 待处理
	StatusPaid    Status = 2 // 已支付
	StatusShipped Status = 3 // 已发货
)

// DefaultPaymentMethod 默认支付方式（只是展示用的标签，不对接支付网关）
const DefaultPaymentMethod = "tarjeta"

// String 实现Stringer接口，也是对外展示和接口传参使用的取值
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPaid:
		return "paid"
	case StatusShipped:
		return "shipped"
	default:
		return "unknown"
	}
}

// IsValid 是否为合法状态
func (s Status) IsValid() bool {
	return s >= StatusPending && s <= StatusShipped
}

// ParseStatus 解析状态字符串，空串视为pending
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return StatusPending, nil
	case "paid":
		return StatusPaid, nil
	case "shipped":
		return StatusShipped, nil
	default:
		return 0, ErrInvalidStatus
	}
}

// Order 订单（聚合根）
// 创建后金额和明细不再随图书变化；后台可以修改地址、状态、总额和支付方式
type Order struct {
	ID            uint
	OrderNo       string
	UserID        uint
	Username      string // 查询时带出，用于后台展示
	Address       string
	PaymentMethod string
	Subtotal      decimal.Decimal
	Taxes         decimal.Decimal
	Total         decimal.Decimal
	Status        Status
	Lines         []Line
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Line 订单明细
// UnitPrice是下单时锁定的单价快照，之后图书改价不影响历史订单
type Line struct {
	ID        uint
	OrderID   uint
	BookID    uint
	BookTitle string // 查询时带出
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal 明细小计
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// NewPaidOrder 结账生成的订单，状态直接为已支付
func NewPaidOrder(userID uint, address, paymentMethod string, quote Quote, lines []Line) (*Order, error) {
	o, err := newOrder(userID, address, paymentMethod, StatusPaid)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	o.Subtotal = quote.Subtotal
	o.Taxes = quote.Tax
	o.Total = quote.Total
	o.Lines = lines
	return o, nil
}

// NewManualOrder 后台手工录入的订单（没有明细，总额由管理员填写）
func NewManualOrder(userID uint, address, paymentMethod string, total decimal.Decimal, status Status) (*Order, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if total.IsNegative() {
		return nil, ErrInvalidTotal
	}
	o, err := newOrder(userID, address, paymentMethod, status)
	if err != nil {
		return nil, err
	}
	o.Subtotal = total
	o.Taxes = decimal.Zero
	o.Total = total
	return o, nil
}

func newOrder(userID uint, address, paymentMethod string, status Status) (*Order, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}
	now := time.Now()
	return &Order{
		OrderNo:       GenerateOrderNo(),
		UserID:        userID,
		Address:       address,
		PaymentMethod: paymentMethod,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SetStatus 修改状态，后台可以在任意合法状态之间切换
func (o *Order) SetStatus(status Status) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

// Edit 后台整体编辑
func (o *Order) Edit(address, paymentMethod string, total decimal.Decimal, status Status) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrAddressRequired
	}
	if total.IsNegative() {
		return ErrInvalidTotal
	}
	if err := o.SetStatus(status); err != nil {
		return err
	}
	o.Address = address
	if pm := strings.TrimSpace(paymentMethod); pm != "" {
		o.PaymentMethod = pm
	}
	o.Total = total
	return nil
}

// LinesSubtotal 明细小计之和
func (o *Order) LinesSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range o.Lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
