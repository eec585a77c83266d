// Package valuation derives intrinsic values and buy metrics for collectible
// sets from noisy, partial market signals.
//
// Every function in this package is pure and total: missing inputs degrade to
// documented defaults, and all tunings come from an immutable Config value so
// alternate tunings can be tested without code changes.
package valuation

// =============================================================================
// TUNING CONFIGURATION
// =============================================================================
// All multiplier ranges, thresholds and fee rates used by the calculators.
// A Config is immutable once constructed; calculators receive it by value.

// RetirementBand maps a years-post-retirement range to a premium multiplier.
type RetirementBand struct {
	MaxYears   float64 // band applies while yearsPostRetirement < MaxYears
	Multiplier float64
}

// RatingTier is one row of an ordered descending-threshold rating table.
// The first tier whose threshold the value meets or exceeds wins.
type RatingTier struct {
	Threshold   float64 // minimum margin of safety (percent) for this tier
	Label       string
	Color       string
	Description string
}

// Recommendation labels produced by the voucher-enhanced rating table.
const (
	RecommendStrongBuy = "strong_buy"
	RecommendBuy       = "buy"
	RecommendHold      = "hold"
	RecommendPass      = "pass"
)

// Config holds every tuning constant of the valuation engine.
type Config struct {
	// Base value selection
	MarketBlendAvgWeight  float64 // weight of avg market price in the fallback blend
	MarketBlendMaxWeight  float64 // weight of max market price in the fallback blend
	MarketFallbackDiscount float64 // discount applied to the market blend (last-resort base)
	MaxOnlyDiscount       float64 // discount when only the max market price is known

	// Retirement J-curve
	RetiringSoonMultiplier float64
	RetiredBands           []RetirementBand // ascending MaxYears, last band is open-ended
	RetiredTailMultiplier  float64          // applies past the last band
	DemandGateScore        float64          // retirement premium requires demand >= this
	GatedPremiumCap        float64          // premium cap when the demand gate fails

	// Theme performance lookup (lowercased theme -> multiplier)
	ThemeMultipliers map[string]float64
	ThemeDefault     float64

	// Quality / demand score mapping (score 0-100 -> linear multiplier range)
	QualityMultiplierMin float64
	QualityMultiplierMax float64
	DemandMultiplierMin  float64
	DemandMultiplierMax  float64
	DefaultScore         float64 // substituted when a score is absent

	// Liquidity (sales velocity in transactions/day)
	VelocityFast       float64
	VelocityMedium     float64
	VelocitySlow       float64
	DaysBetweenFast    float64
	DaysBetweenMedium  float64
	DaysBetweenSlow    float64
	LiquidityFast      float64
	LiquidityMedium    float64
	LiquiditySlow      float64
	LiquidityDead      float64

	// Volatility discount (coefficient of variation)
	VolatilityFloorCV    float64 // below this CV no discount applies
	VolatilityCeilingCV  float64 // at or above this CV the full discount applies
	VolatilityMaxDiscount float64 // e.g. 0.12 => multiplier bottoms out at 0.88

	// Market saturation (months of supply = availableQty / monthly sales)
	SaturationMonthsSevere   float64
	SaturationMonthsHeavy    float64
	SaturationMonthsElevated float64
	SaturationSevere         float64
	SaturationHeavy          float64
	SaturationElevated       float64
	SaturationLotsThreshold  int     // very fragmented supply
	SaturationLotsPenalty    float64 // extra multiplier past the lots threshold
	SaturationFloor          float64

	// Zero-sales penalty
	ZeroSalesGraceDays      int
	ZeroSalesMultiplier     float64
	ZeroSalesLowDemandScore float64
	ZeroSalesLowDemandExtra float64

	// Parts-per-dollar quality proxy
	PPDHigh           float64 // parts per major unit at/above which the bonus applies
	PPDLow            float64 // parts per major unit at/below which the malus applies
	PPDHighMultiplier float64
	PPDLowMultiplier  float64

	// Bubble detection and sanity clamp
	BubblePriceToRetail float64 // market avg / MSRP above this flags a bubble
	ClampMin            float64 // final value >= ClampMin * base value
	ClampMax            float64 // final value <= ClampMax * base value

	// Margin of safety (confidence-aware margin fractions)
	MarginHighConfidence   float64
	MarginMediumConfidence float64
	MarginLowConfidence    float64
	ConfidenceHigh         float64 // data-quality score for the high band
	ConfidenceMedium       float64

	// Realized value (transaction + shipping costs)
	SellingFeeRate  float64
	ShippingBase    int64 // minor units
	ShippingPerUnit int64 // minor units per weight unit (pound)
	PackagingCost   int64 // minor units

	// Holding costs (annualized fractions of value)
	StorageRate     float64
	CapitalRate     float64
	DegradationRate float64

	// Rating tables (ordered by descending threshold)
	ValueRatings   []RatingTier
	VoucherRatings []VoucherRatingTier

	// Voucher composer
	WorthItMarginThreshold float64 // margin-of-safety percent a voucher must push past
}

// VoucherRatingTier maps enhanced margin / ROI improvement floors to a
// recommendation. Ordered descending; first match wins.
type VoucherRatingTier struct {
	MinMargin         float64
	MinROIImprovement float64
	Recommendation    string
}

// DefaultConfig returns the hand-tuned production configuration.
func DefaultConfig() Config {
	return Config{
		MarketBlendAvgWeight:   0.70,
		MarketBlendMaxWeight:   0.30,
		MarketFallbackDiscount: 0.65,
		MaxOnlyDiscount:        0.60,

		RetiringSoonMultiplier: 1.08,
		RetiredBands: []RetirementBand{
			{MaxYears: 1, Multiplier: 0.95},  // post-retirement dip
			{MaxYears: 2, Multiplier: 1.00},
			{MaxYears: 5, Multiplier: 1.15},
			{MaxYears: 10, Multiplier: 1.40},
		},
		RetiredTailMultiplier: 2.00,
		DemandGateScore:       40,
		GatedPremiumCap:       1.02,

		ThemeMultipliers: map[string]float64{
			"modular buildings": 1.40,
			"star wars":         1.35,
			"harry potter":      1.30,
			"icons":             1.30,
			"creator expert":    1.30,
			"ideas":             1.25,
			"technic":           1.20,
			"architecture":      1.10,
			"city":              0.90,
			"ninjago":           0.85,
			"friends":           0.75,
			"duplo":             0.70,
		},
		ThemeDefault: 1.00,

		QualityMultiplierMin: 0.90,
		QualityMultiplierMax: 1.10,
		DemandMultiplierMin:  0.85,
		DemandMultiplierMax:  1.15,
		DefaultScore:         50,

		VelocityFast:      0.50,
		VelocityMedium:    0.10,
		VelocitySlow:      0.02,
		DaysBetweenFast:   2,
		DaysBetweenMedium: 10,
		DaysBetweenSlow:   50,
		LiquidityFast:     1.10,
		LiquidityMedium:   1.00,
		LiquiditySlow:     0.80,
		LiquidityDead:     0.60,

		VolatilityFloorCV:     0.30,
		VolatilityCeilingCV:   1.00,
		VolatilityMaxDiscount: 0.12,

		SaturationMonthsSevere:   60,
		SaturationMonthsHeavy:    24,
		SaturationMonthsElevated: 12,
		SaturationSevere:         0.55,
		SaturationHeavy:          0.70,
		SaturationElevated:       0.85,
		SaturationLotsThreshold:  200,
		SaturationLotsPenalty:    0.90,
		SaturationFloor:          0.50,

		ZeroSalesGraceDays:      30,
		ZeroSalesMultiplier:     0.50,
		ZeroSalesLowDemandScore: 30,
		ZeroSalesLowDemandExtra: 0.60,

		PPDHigh:           10,
		PPDLow:            6,
		PPDHighMultiplier: 1.10,
		PPDLowMultiplier:  0.95,

		BubblePriceToRetail: 2.00,
		ClampMin:            0.30,
		ClampMax:            3.50,

		MarginHighConfidence:   0.20,
		MarginMediumConfidence: 0.30,
		MarginLowConfidence:    0.40,
		ConfidenceHigh:         80,
		ConfidenceMedium:       50,

		SellingFeeRate:  0.15,
		ShippingBase:    599,  // 5.99 flat
		ShippingPerUnit: 125,  // 1.25 per pound
		PackagingCost:   250,  // 2.50 box + filler

		StorageRate:     0.02,
		CapitalRate:     0.05,
		DegradationRate: 0.01,

		ValueRatings: []RatingTier{
			{Threshold: 40, Label: "Exceptional Value", Color: "emerald", Description: "Deep discount to intrinsic value; rare entry point"},
			{Threshold: 25, Label: "Strong Value", Color: "green", Description: "Comfortably below target buy price"},
			{Threshold: 10, Label: "Fair Value", Color: "yellow", Description: "Near target; acceptable with conviction"},
			{Threshold: 0, Label: "Fully Priced", Color: "orange", Description: "No margin of safety at current price"},
			// Anything below 0 falls through to Overvalued.
		},
		VoucherRatings: []VoucherRatingTier{
			{MinMargin: 25, MinROIImprovement: 5, Recommendation: RecommendStrongBuy},
			{MinMargin: 15, MinROIImprovement: 2, Recommendation: RecommendBuy},
			{MinMargin: 5, MinROIImprovement: 0, Recommendation: RecommendHold},
		},

		WorthItMarginThreshold: 15,
	}
}

// OvervaluedRating is returned when no ValueRatings threshold is met.
var OvervaluedRating = RatingTier{
	Threshold:   0,
	Label:       "Overvalued",
	Color:       "red",
	Description: "Current price exceeds the target buy price",
}
