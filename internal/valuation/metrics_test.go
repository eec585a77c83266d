package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickfolio/brickfolio/internal/domain"
)

func TestMarginFraction_ConfidenceBands(t *testing.T) {
	cfg := DefaultConfig()

	assert.InDelta(t, 0.20, marginFraction(cfg, 85), 1e-9)
	assert.InDelta(t, 0.20, marginFraction(cfg, 80), 1e-9)
	assert.InDelta(t, 0.30, marginFraction(cfg, 65), 1e-9)
	assert.InDelta(t, 0.40, marginFraction(cfg, 30), 1e-9)
}

func TestComputeValueMetrics(t *testing.T) {
	cfg := DefaultConfig()
	msrp := domain.Cents(10000)

	// MSRP-only inputs: intrinsic = 10000, confidence 15 -> low band, margin 0.40
	m := ComputeValueMetrics(cfg, 5000, Inputs{MSRP: &msrp})

	assert.Equal(t, domain.Cents(10000), m.IntrinsicValue)
	assert.Equal(t, domain.Cents(6000), m.TargetPrice)
	// (6000 - 5000) / 6000 * 100
	assert.InDelta(t, 16.667, m.MarginOfSafety, 0.01)
	// (10000 - 5000) / 5000 * 100
	assert.InDelta(t, 100, m.ExpectedROI, 1e-9)
	assert.Equal(t, "Fair Value", m.Rating.Label)

	require.NotNil(t, m.RealizedValue)
	// 10000*0.85 - 599 - 125 - 250 = 7526
	assert.Equal(t, domain.Cents(7526), *m.RealizedValue)
	require.NotNil(t, m.RealizedROI)
	assert.InDelta(t, 50.52, *m.RealizedROI, 0.01)
}

func TestComputeValueMetrics_ZeroPriceSafe(t *testing.T) {
	cfg := DefaultConfig()
	msrp := domain.Cents(10000)

	m := ComputeValueMetrics(cfg, 0, Inputs{MSRP: &msrp})
	assert.Equal(t, 0.0, m.ExpectedROI)
	assert.Nil(t, m.RealizedROI)
	// Margin of safety is maximal when the price is zero
	assert.InDelta(t, 100, m.MarginOfSafety, 1e-9)
}

func TestRateMarginOfSafety_ThresholdTable(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		margin   float64
		expected string
	}{
		{55, "Exceptional Value"},
		{40, "Exceptional Value"},
		{30, "Strong Value"},
		{12, "Fair Value"},
		{3, "Fully Priced"},
		{0, "Fully Priced"},
		{-10, "Overvalued"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, RateMarginOfSafety(cfg, tt.margin).Label, "margin %v", tt.margin)
	}
}

func TestTimeHorizon(t *testing.T) {
	assert.Equal(t, "1-3 years", timeHorizon(Inputs{RetirementStatus: domain.RetirementRetired}))
	assert.Equal(t, "2-5 years", timeHorizon(Inputs{RetirementStatus: domain.RetirementRetiringSoon}))
	assert.Contains(t, timeHorizon(Inputs{RetirementStatus: domain.RetirementActive}), "5+")
}
