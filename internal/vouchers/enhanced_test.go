package vouchers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brickfolio/brickfolio/internal/domain"
	"github.com/brickfolio/brickfolio/internal/valuation"
)

func metricsFixture(intrinsic, price domain.Cents) valuation.ValueMetrics {
	return valuation.ValueMetrics{
		CurrentPrice:   price,
		IntrinsicValue: intrinsic,
	}
}

func resultFixture(subtotal, discount domain.Cents) ApplicationResult {
	return ApplicationResult{
		Subtotal:      subtotal,
		TotalDiscount: discount,
		FinalTotal:    subtotal - discount,
		OptimalOrder:  true,
	}
}

func TestEnhanceMetrics_WorthItTransition(t *testing.T) {
	cfg := valuation.DefaultConfig()

	// Intrinsic 100.00, price 90.00: original margin 10% (below 15%).
	// A 10.00 voucher brings the price to 80.00: enhanced margin 20%.
	e := EnhanceMetrics(cfg, metricsFixture(10000, 9000), resultFixture(9000, 1000))

	assert.InDelta(t, 10, e.OriginalMarginOfSafety, 1e-9)
	assert.InDelta(t, 20, e.VoucherEnhancedMarginOfSafety, 1e-9)
	assert.True(t, e.WorthItWithVoucher)

	assert.Equal(t, domain.Cents(8000), e.VoucherDiscountedPrice)
	assert.Equal(t, domain.Cents(1000), e.VoucherSavings)
	// ROI: (10000-9000)/9000 = 11.11% -> (10000-8000)/8000 = 25%
	assert.InDelta(t, 11.11, e.OriginalROI, 0.01)
	assert.InDelta(t, 25, e.VoucherEnhancedROI, 1e-9)
	assert.InDelta(t, 13.89, e.ROIImprovement, 0.01)
}

func TestEnhanceMetrics_NoTransitionWhenAlreadyWorthIt(t *testing.T) {
	cfg := valuation.DefaultConfig()

	// Already above the threshold without a voucher: not a transition.
	e := EnhanceMetrics(cfg, metricsFixture(10000, 8000), resultFixture(8000, 500))

	assert.GreaterOrEqual(t, e.OriginalMarginOfSafety, cfg.WorthItMarginThreshold)
	assert.False(t, e.WorthItWithVoucher)
}

func TestEnhanceMetrics_NoTransitionWhenStillNotWorthIt(t *testing.T) {
	cfg := valuation.DefaultConfig()

	// Tiny voucher, still under the threshold afterwards.
	e := EnhanceMetrics(cfg, metricsFixture(10000, 9800), resultFixture(9800, 100))

	assert.Less(t, e.VoucherEnhancedMarginOfSafety, cfg.WorthItMarginThreshold)
	assert.False(t, e.WorthItWithVoucher)
}

func TestEnhanceMetrics_Recommendation(t *testing.T) {
	cfg := valuation.DefaultConfig()

	// Enhanced margin 28%, large ROI improvement -> strong buy
	e := EnhanceMetrics(cfg, metricsFixture(10000, 9000), resultFixture(9000, 1800))
	assert.Equal(t, valuation.RecommendStrongBuy, e.Recommendation)

	// Enhanced margin 20%, modest improvement -> buy
	e = EnhanceMetrics(cfg, metricsFixture(10000, 8500), resultFixture(8500, 500))
	assert.Equal(t, valuation.RecommendBuy, e.Recommendation)

	// No discount, thin but positive margin -> hold
	e = EnhanceMetrics(cfg, metricsFixture(10000, 9400), resultFixture(9400, 0))
	assert.Equal(t, valuation.RecommendHold, e.Recommendation)

	// Overpriced even after the voucher -> pass
	e = EnhanceMetrics(cfg, metricsFixture(10000, 12000), resultFixture(12000, 500))
	assert.Equal(t, valuation.RecommendPass, e.Recommendation)
}

func TestEnhanceMetrics_ZeroIntrinsicSafe(t *testing.T) {
	cfg := valuation.DefaultConfig()

	e := EnhanceMetrics(cfg, metricsFixture(0, 5000), resultFixture(5000, 1000))

	assert.Equal(t, 0.0, e.OriginalMarginOfSafety)
	assert.Equal(t, 0.0, e.VoucherEnhancedMarginOfSafety)
	assert.False(t, e.WorthItWithVoucher)
	assert.Equal(t, valuation.RecommendPass, e.Recommendation)
}
