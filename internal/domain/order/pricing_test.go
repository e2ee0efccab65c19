package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meatkart/meatkart/internal/domain/coupon"
)

type mockCouponRepo struct {
	byID map[string]*coupon.Coupon
}

func (m *mockCouponRepo) GetByID(_ context.Context, id string) (*coupon.Coupon, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return c, nil
}

func (m *mockCouponRepo) ListAvailable(_ context.Context, _ string, _ time.Time) ([]coupon.Coupon, error) {
	return nil, nil
}

func (m *mockCouponRepo) Upsert(_ context.Context, _ *coupon.Coupon) error { return nil }

func lines(total int64) []LineItem {
	return []LineItem{{Name: "Chicken Curry Cut", Quantity: 1, UnitPrice: decimal.NewFromInt(total)}}
}

func TestQuote_NoDiscount(t *testing.T) {
	p := NewPricer(&mockCouponRepo{})

	q, err := p.Quote(context.Background(), lines(100), 0, "", 0)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(139).Equal(q.Total), "got %s", q.Total)
	assert.Zero(t, q.WalletDebit)
}

func TestQuote_WalletWinsOverCoupon(t *testing.T) {
	coupons := &mockCouponRepo{byID: map[string]*coupon.Coupon{
		"c1": {ID: "c1", DiscountPercent: decimal.NewFromInt(10)},
	}}
	p := NewPricer(coupons)

	// Both mechanisms requested: wallet takes precedence.
	q, err := p.Quote(context.Background(), lines(1000), 100, "c1", 500)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(939).Equal(q.Total), "got %s", q.Total)
	assert.Equal(t, 100, q.WalletDebit)
	assert.Empty(t, q.CouponID)
}

func TestQuote_WalletBelowMinimumOrder(t *testing.T) {
	p := NewPricer(&mockCouponRepo{})

	_, err := p.Quote(context.Background(), lines(400), 50, "", 500)
	require.ErrorIs(t, err, ErrMinimumOrderNotMet)
}

func TestQuote_InsufficientWallet(t *testing.T) {
	p := NewPricer(&mockCouponRepo{})

	_, err := p.Quote(context.Background(), lines(1000), 200, "", 100)
	require.ErrorIs(t, err, ErrInsufficientWallet)
}

func TestQuote_CouponDiscount(t *testing.T) {
	coupons := &mockCouponRepo{byID: map[string]*coupon.Coupon{
		"c1": {ID: "c1", DiscountPercent: decimal.NewFromInt(20)},
	}}
	p := NewPricer(coupons)

	q, err := p.Quote(context.Background(), lines(1000), 0, "c1", 0)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(839).Equal(q.Total), "got %s", q.Total)
	assert.Equal(t, "c1", q.CouponID)
	assert.Zero(t, q.WalletDebit)
}

func TestQuote_ExpiredCouponStillApplies(t *testing.T) {
	// Expiry is only enforced on the listing path; checkout pricing applies
	// the coupon regardless.
	coupons := &mockCouponRepo{byID: map[string]*coupon.Coupon{
		"c1": {
			ID:              "c1",
			DiscountPercent: decimal.NewFromInt(10),
			ExpiresAt:       time.Now().Add(-time.Hour),
		},
	}}
	p := NewPricer(coupons)

	q, err := p.Quote(context.Background(), lines(1000), 0, "c1", 0)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(939).Equal(q.Total))
}

func TestQuote_UnknownCoupon(t *testing.T) {
	p := NewPricer(&mockCouponRepo{})

	_, err := p.Quote(context.Background(), lines(1000), 0, "missing", 0)
	require.ErrorIs(t, err, coupon.ErrNotFound)
}

func TestQuote_NegativeTotalPassesThrough(t *testing.T) {
	p := NewPricer(&mockCouponRepo{})

	// 600 - 1000 + 39 = -361; the pricer does not clamp.
	q, err := p.Quote(context.Background(), lines(600), 1000, "", 1000)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-361).Equal(q.Total), "got %s", q.Total)
}

func TestQuote_MultiLineSubtotal(t *testing.T) {
	items := []LineItem{
		{Name: "Mutton Boneless", Quantity: 2, UnitPrice: decimal.RequireFromString("450.50")},
		{Name: "Eggs (12)", Quantity: 1, UnitPrice: decimal.RequireFromString("99.00")},
	}
	p := NewPricer(&mockCouponRepo{})

	q, err := p.Quote(context.Background(), items, 0, "", 0)
	require.NoError(t, err)
	// 901.00 + 99.00 = 1000.00, + 39 fee.
	assert.True(t, decimal.RequireFromString("1039.00").Equal(q.Total), "got %s", q.Total)
}
