package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickfolio/brickfolio/internal/domain"
)

func TestSelectBaseValue_Priority(t *testing.T) {
	cfg := DefaultConfig()

	msrp := domain.Cents(9999)
	retail := domain.Cents(8999)
	avg := domain.Cents(15000)
	max := domain.Cents(20000)

	// MSRP wins over everything
	base := selectBaseValue(cfg, Inputs{MSRP: &msrp, CurrentRetailPrice: &retail, MarketAvgPrice: &avg})
	assert.Equal(t, msrp, base)

	// Retail price next
	base = selectBaseValue(cfg, Inputs{CurrentRetailPrice: &retail, MarketAvgPrice: &avg})
	assert.Equal(t, retail, base)

	// Market blend of last resort: (0.7*15000 + 0.3*20000) * 0.65 = 10725
	base = selectBaseValue(cfg, Inputs{MarketAvgPrice: &avg, MarketMaxPrice: &max})
	assert.Equal(t, domain.Cents(10725), base)

	// Max-only carries the deeper haircut: 20000 * 0.6 = 12000
	base = selectBaseValue(cfg, Inputs{MarketMaxPrice: &max})
	assert.Equal(t, domain.Cents(12000), base)

	// No price at all -> no base
	assert.Equal(t, domain.Cents(0), selectBaseValue(cfg, Inputs{}))
}

func TestRetirementMultiplier_JCurve(t *testing.T) {
	cfg := DefaultConfig()
	demand := 70.0

	tests := []struct {
		name     string
		status   domain.RetirementStatus
		years    float64
		expected float64
	}{
		{"active", domain.RetirementActive, 0, 1.00},
		{"retiring soon", domain.RetirementRetiringSoon, 0, 1.08},
		{"retired dip", domain.RetirementRetired, 0.5, 0.95},
		{"retired year one", domain.RetirementRetired, 1.5, 1.00},
		{"retired appreciating", domain.RetirementRetired, 3, 1.15},
		{"retired mature", domain.RetirementRetired, 7, 1.40},
		{"retired vintage", domain.RetirementRetired, 15, 2.00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Inputs{RetirementStatus: tt.status, YearsPostRetirement: &tt.years, DemandScore: &demand}
			assert.InDelta(t, tt.expected, retirementMultiplier(cfg, in), 1e-9)
		})
	}
}

func TestRetirementMultiplier_DemandGate(t *testing.T) {
	cfg := DefaultConfig()
	lowDemand := 30.0
	years := 10.0

	in := Inputs{
		RetirementStatus:    domain.RetirementRetired,
		YearsPostRetirement: &years,
		DemandScore:         &lowDemand,
	}
	// A decade-old set with weak demand gets the capped premium, not 2.00.
	assert.InDelta(t, 1.02, retirementMultiplier(cfg, in), 1e-9)

	// The gate only caps premiums; the first-year dip still applies.
	dip := 0.5
	in.YearsPostRetirement = &dip
	assert.InDelta(t, 0.95, retirementMultiplier(cfg, in), 1e-9)
}

func TestThemeMultiplier(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 1.35, themeMultiplier(cfg, "Star Wars"), 1e-9)
	assert.InDelta(t, 0.75, themeMultiplier(cfg, "  friends "), 1e-9)
	assert.InDelta(t, 1.00, themeMultiplier(cfg, "Some Unknown Theme"), 1e-9)
	assert.InDelta(t, 1.00, themeMultiplier(cfg, ""), 1e-9)
}

func TestScoreMultiplier_LinearMapping(t *testing.T) {
	zero, mid, hundred := 0.0, 50.0, 100.0

	assert.InDelta(t, 0.90, scoreMultiplier(&zero, 50, 0.90, 1.10), 1e-9)
	assert.InDelta(t, 1.00, scoreMultiplier(&mid, 50, 0.90, 1.10), 1e-9)
	assert.InDelta(t, 1.10, scoreMultiplier(&hundred, 50, 0.90, 1.10), 1e-9)

	// Missing score falls back to the default (neutral)
	assert.InDelta(t, 1.00, scoreMultiplier(nil, 50, 0.85, 1.15), 1e-9)
}

func TestLiquidityMultiplier(t *testing.T) {
	cfg := DefaultConfig()

	fast, slow, dead := 0.8, 0.05, 0.001
	assert.InDelta(t, 1.10, liquidityMultiplier(cfg, Inputs{SalesVelocity: &fast}), 1e-9)
	assert.InDelta(t, 0.80, liquidityMultiplier(cfg, Inputs{SalesVelocity: &slow}), 1e-9)
	assert.InDelta(t, 0.60, liquidityMultiplier(cfg, Inputs{SalesVelocity: &dead}), 1e-9)

	// Days-between-sales used when velocity is absent
	days := 90.0
	assert.InDelta(t, 0.60, liquidityMultiplier(cfg, Inputs{AvgDaysBetweenSales: &days}), 1e-9)

	// No signal at all stays neutral
	assert.InDelta(t, 1.00, liquidityMultiplier(cfg, Inputs{}), 1e-9)
}

func TestVolatilityMultiplier(t *testing.T) {
	cfg := DefaultConfig()

	calm, wild := 0.1, 1.5
	assert.InDelta(t, 1.00, volatilityMultiplier(cfg, Inputs{PriceVolatility: &calm}), 1e-9)
	assert.InDelta(t, 0.88, volatilityMultiplier(cfg, Inputs{PriceVolatility: &wild}), 1e-9)

	// Midpoint of [0.30, 1.00] takes half the max discount
	mid := 0.65
	assert.InDelta(t, 0.94, volatilityMultiplier(cfg, Inputs{PriceVolatility: &mid}), 1e-9)
}

func TestVolatilityMultiplier_DerivedFromHistory(t *testing.T) {
	cfg := DefaultConfig()

	// Flat price history -> CV ~0 -> no discount
	flat := Inputs{HistoricalPrices: []domain.Cents{10000, 10000, 10000, 10000}}
	assert.InDelta(t, 1.00, volatilityMultiplier(cfg, flat), 1e-9)

	// Wildly erratic history -> full discount
	erratic := Inputs{HistoricalPrices: []domain.Cents{1000, 30000, 2000, 45000, 500}}
	assert.InDelta(t, 0.88, volatilityMultiplier(cfg, erratic), 1e-9)

	// Too few samples -> neutral
	short := Inputs{HistoricalPrices: []domain.Cents{1000, 30000}}
	assert.InDelta(t, 1.00, volatilityMultiplier(cfg, short), 1e-9)
}

func TestSaturationMultiplier(t *testing.T) {
	cfg := DefaultConfig()

	velocity := 0.1 // 3 sales/month
	glut := 1000    // ~333 months of supply
	in := Inputs{SalesVelocity: &velocity, AvailableQty: &glut}
	assert.InDelta(t, 0.55, saturationMultiplier(cfg, in), 1e-9)

	scarce := 5
	in = Inputs{SalesVelocity: &velocity, AvailableQty: &scarce}
	assert.InDelta(t, 1.00, saturationMultiplier(cfg, in), 1e-9)

	// Fragmented supply compounds (0.55*0.90 = 0.495) but the floor holds
	lots := 500
	in = Inputs{SalesVelocity: &velocity, AvailableQty: &glut, AvailableLots: &lots}
	assert.InDelta(t, cfg.SaturationFloor, saturationMultiplier(cfg, in), 1e-9)
}

func TestZeroSalesPenalty(t *testing.T) {
	cfg := DefaultConfig()

	zero, ten := 0, 10
	window := 90

	in := Inputs{TimesSold: &zero, ObservationDays: &window}
	assert.InDelta(t, 0.50, zeroSalesMultiplier(cfg, in), 1e-9)

	// Compounds with weak demand: 0.50 * 0.60 = 0.30
	weak := 20.0
	in.DemandScore = &weak
	assert.InDelta(t, 0.30, zeroSalesMultiplier(cfg, in), 1e-9)

	// Grace period: young listings are not penalized
	young := 10
	in = Inputs{TimesSold: &zero, ObservationDays: &young}
	assert.InDelta(t, 1.00, zeroSalesMultiplier(cfg, in), 1e-9)

	// Sales happened -> neutral
	in = Inputs{TimesSold: &ten, ObservationDays: &window}
	assert.InDelta(t, 1.00, zeroSalesMultiplier(cfg, in), 1e-9)
}

func TestZeroSalesPenalty_HalvesIntrinsicValue(t *testing.T) {
	cfg := DefaultConfig()
	msrp := domain.Cents(10000)
	window := 90
	zero, ten := 0, 10

	dead := Inputs{MSRP: &msrp, TimesSold: &zero, ObservationDays: &window}
	alive := Inputs{MSRP: &msrp, TimesSold: &ten, ObservationDays: &window}

	deadValue := ComputeIntrinsicValue(cfg, dead)
	aliveValue := ComputeIntrinsicValue(cfg, alive)

	require.Greater(t, aliveValue, domain.Cents(0))
	// All else equal, zero sales must cost at least half the value.
	assert.LessOrEqual(t, float64(deadValue), float64(aliveValue)*0.5+1)
}

func TestPPDMultiplier(t *testing.T) {
	cfg := DefaultConfig()
	msrp := domain.Cents(10000) // 100.00

	rich, poor, mid := 1500, 400, 800
	assert.InDelta(t, 1.10, ppdMultiplier(cfg, Inputs{MSRP: &msrp, PartsCount: &rich}), 1e-9)
	assert.InDelta(t, 0.95, ppdMultiplier(cfg, Inputs{MSRP: &msrp, PartsCount: &poor}), 1e-9)
	// 8 ppd sits halfway between 6 and 10 -> halfway between 0.95 and 1.10
	assert.InDelta(t, 1.025, ppdMultiplier(cfg, Inputs{MSRP: &msrp, PartsCount: &mid}), 1e-9)
	// Missing parts count or MSRP -> neutral
	assert.InDelta(t, 1.00, ppdMultiplier(cfg, Inputs{MSRP: &msrp}), 1e-9)
	assert.InDelta(t, 1.00, ppdMultiplier(cfg, Inputs{PartsCount: &rich}), 1e-9)
}

func TestBubbleFlag(t *testing.T) {
	cfg := DefaultConfig()
	msrp := domain.Cents(10000)

	inflated := domain.Cents(25000) // 2.5x retail
	v := ComputeValuation(cfg, Inputs{MSRP: &msrp, MarketAvgPrice: &inflated})
	assert.True(t, v.Bubble)

	sane := domain.Cents(15000)
	v = ComputeValuation(cfg, Inputs{MSRP: &msrp, MarketAvgPrice: &sane})
	assert.False(t, v.Bubble)
}

func TestComputeValuation_SanityClamp(t *testing.T) {
	cfg := DefaultConfig()
	msrp := domain.Cents(10000)
	window := 90
	zero := 0
	weak := 5.0
	glut := 100000
	velocity := 0.001
	lots := 1000
	wild := 2.0
	days := 500.0

	// Stack every penalty: raw product of multipliers would undershoot 0.30x.
	in := Inputs{
		MSRP:                &msrp,
		Theme:               "duplo",
		TimesSold:           &zero,
		ObservationDays:     &window,
		DemandScore:         &weak,
		QualityScore:        &weak,
		AvailableQty:        &glut,
		AvailableLots:       &lots,
		SalesVelocity:       &velocity,
		AvgDaysBetweenSales: &days,
		PriceVolatility:     &wild,
	}
	v := ComputeValuation(cfg, in)
	assert.True(t, v.Clamped)
	assert.Equal(t, msrp.MulRatio(cfg.ClampMin), v.Value)
}

func TestComputeValuation_OutputWithinClampBounds(t *testing.T) {
	cfg := DefaultConfig()
	msrp := domain.Cents(14999)
	years := 15.0
	strong := 95.0
	fast := 1.0

	cases := []Inputs{
		{MSRP: &msrp},
		{MSRP: &msrp, Theme: "modular buildings", RetirementStatus: domain.RetirementRetired,
			YearsPostRetirement: &years, DemandScore: &strong, QualityScore: &strong, SalesVelocity: &fast},
		{MSRP: &msrp, Theme: "duplo"},
	}
	for _, in := range cases {
		v := ComputeValuation(cfg, in)
		require.Greater(t, v.BaseValue, domain.Cents(0))
		assert.GreaterOrEqual(t, v.Value, v.BaseValue.MulRatio(cfg.ClampMin))
		assert.LessOrEqual(t, v.Value, v.BaseValue.MulRatio(cfg.ClampMax))
	}
}

func TestComputeValuation_NoBaseValue(t *testing.T) {
	v := ComputeValuation(DefaultConfig(), Inputs{})
	assert.Equal(t, domain.Cents(0), v.Value)
	assert.Equal(t, domain.Cents(0), v.BaseValue)
}

func TestInputsValidate(t *testing.T) {
	neg := domain.Cents(-100)
	bad := 150.0
	negVol := -0.5

	assert.Error(t, (&Inputs{MSRP: &neg}).Validate())
	assert.Error(t, (&Inputs{DemandScore: &bad}).Validate())
	assert.Error(t, (&Inputs{PriceVolatility: &negVol}).Validate())
	assert.Error(t, (&Inputs{RetirementStatus: "melted"}).Validate())
	assert.Error(t, (&Inputs{HistoricalPrices: []domain.Cents{100, -1}}).Validate())
	assert.NoError(t, (&Inputs{}).Validate())
}

func TestDataConfidence(t *testing.T) {
	msrp := domain.Cents(10000)
	avg := domain.Cents(12000)
	demand := 70.0
	sold := 12

	assert.InDelta(t, 0, dataConfidence(Inputs{}), 1e-9)

	partial := dataConfidence(Inputs{MSRP: &msrp, MarketAvgPrice: &avg})
	assert.InDelta(t, 30, partial, 1e-9)

	richer := dataConfidence(Inputs{MSRP: &msrp, MarketAvgPrice: &avg, DemandScore: &demand, TimesSold: &sold})
	assert.Greater(t, richer, partial)
	assert.LessOrEqual(t, richer, 100.0)
}
