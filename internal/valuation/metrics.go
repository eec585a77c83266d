package valuation

import (
	"github.com/brickfolio/brickfolio/internal/domain"
)

// =============================================================================
// MARGIN & ROI CALCULATOR
// =============================================================================

// ValueMetrics is the full buy-side picture for a product at a given price.
// Computed fresh per request; never persisted by this package.
type ValueMetrics struct {
	CurrentPrice   domain.Cents  `json:"current_price"`
	TargetPrice    domain.Cents  `json:"target_price"`
	IntrinsicValue domain.Cents  `json:"intrinsic_value"`
	RealizedValue  *domain.Cents `json:"realized_value,omitempty"`

	// MarginOfSafety is the percentage discount of the current price below
	// the target buy price: (target - current) / target * 100.
	MarginOfSafety float64 `json:"margin_of_safety"`
	// ExpectedROI is (intrinsic - current) / current * 100.
	ExpectedROI float64  `json:"expected_roi"`
	RealizedROI *float64 `json:"realized_roi,omitempty"`

	Rating      RatingTier `json:"rating"`
	TimeHorizon string     `json:"time_horizon"`
	Confidence  float64    `json:"confidence"`
	Bubble      bool       `json:"bubble"`
}

// ComputeValueMetrics derives target price, margin of safety, expected ROI and
// the discrete value rating for a product trading at currentPrice.
func ComputeValueMetrics(cfg Config, currentPrice domain.Cents, in Inputs) ValueMetrics {
	v := ComputeValuation(cfg, in)

	margin := marginFraction(cfg, v.Confidence)
	target := v.Value.MulRatio(1 - margin)

	m := ValueMetrics{
		CurrentPrice:   currentPrice,
		TargetPrice:    target,
		IntrinsicValue: v.Value,
		Confidence:     v.Confidence,
		Bubble:         v.Bubble,
		TimeHorizon:    timeHorizon(in),
	}

	if target > 0 {
		m.MarginOfSafety = float64(target-currentPrice) / float64(target) * 100
	}
	if currentPrice > 0 {
		m.ExpectedROI = float64(v.Value-currentPrice) / float64(currentPrice) * 100
	}

	// Net value after selling costs, assuming a sale at intrinsic value.
	if v.Value > 0 {
		realized := RealizedValue(cfg, v.Value, estimatedWeightUnits(in))
		m.RealizedValue = &realized
		if currentPrice > 0 {
			roi := float64(realized-currentPrice) / float64(currentPrice) * 100
			m.RealizedROI = &roi
		}
	}

	m.Rating = RateMarginOfSafety(cfg, m.MarginOfSafety)
	return m
}

// RateMarginOfSafety assigns the discrete value rating: an ordered
// descending-threshold table, first match wins.
func RateMarginOfSafety(cfg Config, marginOfSafety float64) RatingTier {
	for _, tier := range cfg.ValueRatings {
		if marginOfSafety >= tier.Threshold {
			return tier
		}
	}
	return OvervaluedRating
}

// marginFraction is confidence-aware: richer data earns a tighter margin.
func marginFraction(cfg Config, confidence float64) float64 {
	switch {
	case confidence >= cfg.ConfidenceHigh:
		return cfg.MarginHighConfidence
	case confidence >= cfg.ConfidenceMedium:
		return cfg.MarginMediumConfidence
	default:
		return cfg.MarginLowConfidence
	}
}

// timeHorizon is a display hint derived from the lifecycle stage.
func timeHorizon(in Inputs) string {
	switch in.RetirementStatus {
	case domain.RetirementRetired:
		return "1-3 years"
	case domain.RetirementRetiringSoon:
		return "2-5 years"
	default:
		return "5+ years (hold through retirement)"
	}
}

// estimatedWeightUnits approximates shipping weight (pounds) from the parts
// count. Roughly one pound per 450 parts, minimum one unit.
func estimatedWeightUnits(in Inputs) float64 {
	if in.PartsCount == nil || *in.PartsCount <= 0 {
		return 1
	}
	units := float64(*in.PartsCount) / 450
	if units < 1 {
		return 1
	}
	return units
}
