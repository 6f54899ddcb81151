package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestQuote(t *testing.T) {
	p, err := NewPricer(DefaultTaxRate)
	require.NoError(t, err)

	tests := []struct {
		subtotal string
		tax      string
		total    string
	}{
		{"30.00", "4.80", "34.80"},
		{"0", "0.00", "0.00"},
		{"19.99", "3.20", "23.19"},   // 3.1984
		{"0.03", "0.00", "0.03"},     // 0.0048
		{"10.03", "1.60", "11.63"},   // 1.6048
		{"0.25", "0.04", "0.29"},     // 0.04 整除
		{"15.3125", "2.45", "17.76"}, // 小计先舍入到15.31
	}
	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			q := p.Quote(d(tt.subtotal))
			assert.Equal(t, tt.tax, q.Tax.StringFixed(2))
			assert.Equal(t, tt.total, q.Total.StringFixed(2))
			assert.True(t, q.Total.Equal(q.Subtotal.Add(q.Tax)))
		})
	}
}

func TestQuoteRoundsHalfUp(t *testing.T) {
	p, err := NewPricer(d("0.5"))
	require.NoError(t, err)

	// 0.05 × 0.5 = 0.025 → 0.03
	assert.Equal(t, "0.03", p.Quote(d("0.05")).Tax.StringFixed(2))
}

func TestQuoteLines(t *testing.T) {
	p, _ := NewPricer(DefaultTaxRate)
	q := p.QuoteLines([]Line{
		{Quantity: 3, UnitPrice: d("10.00")},
	})
	assert.Equal(t, "30.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "34.80", q.Total.StringFixed(2))
}

func TestNewPricerRejectsInvalidRate(t *testing.T) {
	_, err := NewPricer(d("-0.01"))
	assert.ErrorIs(t, err, ErrInvalidTaxRate)
	_, err = NewPricer(d("1"))
	assert.ErrorIs(t, err, ErrInvalidTaxRate)
	_, err = NewPricer(decimal.Zero)
	assert.NoError(t, err)
}
