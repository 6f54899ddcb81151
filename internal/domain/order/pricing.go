package order

import (
	"github.com/shopspring/decimal"
)

// DefaultTaxRate 默认税率16%
var DefaultTaxRate = decimal.RequireFromString("0.16")

// Quote 报价：小计、税额、总额
type Quote struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Pricer 按固定税率计算报价
type Pricer struct {
	taxRate decimal.Decimal
}

// NewPricer 创建报价器，税率必须在[0,1)之间
func NewPricer(taxRate decimal.Decimal) (*Pricer, error) {
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, ErrInvalidTaxRate
	}
	return &Pricer{taxRate: taxRate}, nil
}

// TaxRate 当前税率
func (p *Pricer) TaxRate() decimal.Decimal {
	return p.taxRate
}

// Quote 税额 = 小计 × 税率，四舍五入到分；总额 = 小计 + 税额
func (p *Pricer) Quote(subtotal decimal.Decimal) Quote {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(p.taxRate).Round(2)
	return Quote{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// QuoteLines 按明细计算报价
func (p *Pricer) QuoteLines(lines []Line) Quote {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return p.Quote(sum)
}
