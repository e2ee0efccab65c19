package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscountPrice_RoundsHalfUp(t *testing.T) {
	// 99.99 * 0.90 = 89.991 -> 89.99
	got := DiscountPrice(decimal.RequireFromString("99.99"), decimal.NewFromInt(10))
	assert.True(t, decimal.RequireFromString("89.99").Equal(got), "got %s", got)

	// 10.05 * 0.50 = 5.025 -> 5.03 (half rounds up)
	got = DiscountPrice(decimal.RequireFromString("10.05"), decimal.NewFromInt(50))
	assert.True(t, decimal.RequireFromString("5.03").Equal(got), "got %s", got)
}

func TestDiscountPrice_ZeroDiscount(t *testing.T) {
	got := DiscountPrice(decimal.RequireFromString("250.00"), decimal.Zero)
	assert.True(t, decimal.RequireFromString("250.00").Equal(got))
}

func TestDiscountPrice_FullDiscount(t *testing.T) {
	got := DiscountPrice(decimal.RequireFromString("250.00"), decimal.NewFromInt(100))
	assert.True(t, got.IsZero())
}

func TestRecalculate(t *testing.T) {
	p := Product{
		Price:    decimal.RequireFromString("200.00"),
		Discount: decimal.NewFromInt(25),
	}
	p.Recalculate()
	assert.True(t, decimal.RequireFromString("150.00").Equal(p.DiscountPrice))
}
