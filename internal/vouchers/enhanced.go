package vouchers

import (
	"github.com/brickfolio/brickfolio/internal/domain"
	"github.com/brickfolio/brickfolio/internal/valuation"
)

// =============================================================================
// VOUCHER-ENHANCED METRICS COMPOSER
// =============================================================================
// Merges a product's value metrics with the optimizer's result for that
// product's single-item cart into a before/after comparison.

// EnhancedMetrics compares a product's buy metrics with and without the best
// voucher sequence applied.
//
// Both margin-of-safety figures here use the intrinsic value as denominator
// (unlike ValueMetrics.MarginOfSafety, which is relative to the target buy
// price), so the worth-it transition compares like with like.
type EnhancedMetrics struct {
	OriginalPrice          domain.Cents `json:"original_price"`
	OriginalMarginOfSafety float64      `json:"original_margin_of_safety"`
	OriginalROI            float64      `json:"original_roi"`
	IntrinsicValue         domain.Cents `json:"intrinsic_value"`

	VoucherDiscountedPrice        domain.Cents `json:"voucher_discounted_price"`
	VoucherSavings                domain.Cents `json:"voucher_savings"`
	VoucherEnhancedROI            float64      `json:"voucher_enhanced_roi"`
	VoucherEnhancedMarginOfSafety float64      `json:"voucher_enhanced_margin_of_safety"`

	// ROIImprovement is in percentage points.
	ROIImprovement float64 `json:"roi_improvement"`
	// WorthItWithVoucher marks a state transition: the margin of safety was
	// below the threshold without the voucher and crosses it with one.
	WorthItWithVoucher bool   `json:"worth_it_with_voucher"`
	Recommendation     string `json:"recommendation"`

	OptimalVoucherOrder []Applied `json:"optimal_voucher_order"`
	OptimalOrder        bool      `json:"optimal_order"`
}

// EnhanceMetrics combines a product's ValueMetrics with an optimizer result.
func EnhanceMetrics(cfg valuation.Config, metrics valuation.ValueMetrics, result ApplicationResult) EnhancedMetrics {
	intrinsic := metrics.IntrinsicValue
	price := metrics.CurrentPrice
	discounted := price - result.TotalDiscount
	if discounted < 0 {
		discounted = 0
	}

	e := EnhancedMetrics{
		OriginalPrice:          price,
		IntrinsicValue:         intrinsic,
		VoucherDiscountedPrice: discounted,
		VoucherSavings:         result.TotalDiscount,
		OptimalVoucherOrder:    result.AppliedVouchers,
		OptimalOrder:           result.OptimalOrder,
	}

	if intrinsic > 0 {
		e.OriginalMarginOfSafety = float64(intrinsic-price) / float64(intrinsic) * 100
		e.VoucherEnhancedMarginOfSafety = float64(intrinsic-discounted) / float64(intrinsic) * 100
	}
	if price > 0 {
		e.OriginalROI = float64(intrinsic-price) / float64(price) * 100
	}
	if discounted > 0 {
		e.VoucherEnhancedROI = float64(intrinsic-discounted) / float64(discounted) * 100
	}
	e.ROIImprovement = e.VoucherEnhancedROI - e.OriginalROI

	threshold := cfg.WorthItMarginThreshold
	e.WorthItWithVoucher = e.OriginalMarginOfSafety < threshold &&
		e.VoucherEnhancedMarginOfSafety >= threshold

	e.Recommendation = recommend(cfg, e.VoucherEnhancedMarginOfSafety, e.ROIImprovement)
	return e
}

// recommend walks the descending-threshold recommendation table; both floors
// of a tier must be met. Falls through to pass.
func recommend(cfg valuation.Config, enhancedMargin, roiImprovement float64) string {
	for _, tier := range cfg.VoucherRatings {
		if enhancedMargin >= tier.MinMargin && roiImprovement >= tier.MinROIImprovement {
			return tier.Recommendation
		}
	}
	return valuation.RecommendPass
}
