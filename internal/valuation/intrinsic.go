package valuation

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/brickfolio/brickfolio/internal/domain"
)

// =============================================================================
// INTRINSIC VALUE CALCULATOR
// =============================================================================
// Derives a fair value from a base value (never directly from market price)
// and a chain of bounded multiplicative adjustments. The final value is always
// clamped to [ClampMin, ClampMax] of the base value - the single most
// important invariant here, since nine multipliers compound.

// Valuation is the full result of an intrinsic value calculation.
type Valuation struct {
	Value      domain.Cents       `json:"value"`
	BaseValue  domain.Cents       `json:"base_value"`
	Components map[string]float64 `json:"components"` // individual multipliers
	Confidence float64            `json:"confidence"` // data-quality score (0-100)
	Bubble     bool               `json:"bubble"`     // price-to-retail exceeds the bubble threshold
	Clamped    bool               `json:"clamped"`    // sanity clamp engaged
}

// ComputeIntrinsicValue derives the intrinsic value for the given inputs.
// Deterministic and total: it never fails, missing inputs fall back to
// documented defaults. Returns 0 when no base value can be established.
func ComputeIntrinsicValue(cfg Config, in Inputs) domain.Cents {
	return ComputeValuation(cfg, in).Value
}

// ComputeValuation is ComputeIntrinsicValue plus the per-factor breakdown,
// the bubble flag and the data-confidence score.
func ComputeValuation(cfg Config, in Inputs) Valuation {
	base := selectBaseValue(cfg, in)
	if base <= 0 {
		return Valuation{Components: map[string]float64{}}
	}

	components := map[string]float64{
		"retirement": retirementMultiplier(cfg, in),
		"theme":      themeMultiplier(cfg, in.Theme),
		"quality":    scoreMultiplier(in.QualityScore, cfg.DefaultScore, cfg.QualityMultiplierMin, cfg.QualityMultiplierMax),
		"demand":     scoreMultiplier(in.DemandScore, cfg.DefaultScore, cfg.DemandMultiplierMin, cfg.DemandMultiplierMax),
		"liquidity":  liquidityMultiplier(cfg, in),
		"volatility": volatilityMultiplier(cfg, in),
		"saturation": saturationMultiplier(cfg, in),
		"zero_sales": zeroSalesMultiplier(cfg, in),
		"ppd":        ppdMultiplier(cfg, in),
	}

	combined := 1.0
	for _, m := range components {
		combined *= m
	}

	value := base.MulRatio(combined)

	// Sanity clamp: the multiplier chain must never compound past these bounds.
	lo := base.MulRatio(cfg.ClampMin)
	hi := base.MulRatio(cfg.ClampMax)
	clamped := value < lo || value > hi
	value = value.Clamp(lo, hi)

	return Valuation{
		Value:      value,
		BaseValue:  base,
		Components: components,
		Confidence: dataConfidence(in),
		Bubble:     isBubblePriced(cfg, in),
		Clamped:    clamped,
	}
}

// selectBaseValue picks the fundamental anchor for the valuation.
// Priority: MSRP, then current retail price, then a discounted blend of
// market prices as a fallback of last resort. Market prices are speculative,
// so the fallback carries a substantial haircut.
func selectBaseValue(cfg Config, in Inputs) domain.Cents {
	if in.MSRP != nil && *in.MSRP > 0 {
		return *in.MSRP
	}
	if in.CurrentRetailPrice != nil && *in.CurrentRetailPrice > 0 {
		return *in.CurrentRetailPrice
	}

	hasAvg := in.MarketAvgPrice != nil && *in.MarketAvgPrice > 0
	hasMax := in.MarketMaxPrice != nil && *in.MarketMaxPrice > 0
	switch {
	case hasAvg && hasMax:
		blend := float64(*in.MarketAvgPrice)*cfg.MarketBlendAvgWeight +
			float64(*in.MarketMaxPrice)*cfg.MarketBlendMaxWeight
		return domain.Cents(math.Round(blend * cfg.MarketFallbackDiscount))
	case hasAvg:
		return in.MarketAvgPrice.MulRatio(cfg.MarketFallbackDiscount)
	case hasMax:
		return in.MarketMaxPrice.MulRatio(cfg.MaxOnlyDiscount)
	}
	return 0
}

// retirementMultiplier implements the post-retirement J-curve: a small dip in
// the first year, then appreciation that grows with age. The premium is gated
// by demand - an old set nobody wants does not appreciate.
func retirementMultiplier(cfg Config, in Inputs) float64 {
	var m float64
	switch in.RetirementStatus {
	case domain.RetirementRetiringSoon:
		m = cfg.RetiringSoonMultiplier
	case domain.RetirementRetired:
		years := 0.0
		if in.YearsPostRetirement != nil {
			years = *in.YearsPostRetirement
		}
		m = cfg.RetiredTailMultiplier
		for _, band := range cfg.RetiredBands {
			if years < band.MaxYears {
				m = band.Multiplier
				break
			}
		}
	default: // active or unknown
		return 1.00
	}

	demand := cfg.DefaultScore
	if in.DemandScore != nil {
		demand = *in.DemandScore
	}
	if demand < cfg.DemandGateScore && m > cfg.GatedPremiumCap {
		return cfg.GatedPremiumCap
	}
	return m
}

func themeMultiplier(cfg Config, theme string) float64 {
	if m, ok := cfg.ThemeMultipliers[normalizeTheme(theme)]; ok {
		return m
	}
	return cfg.ThemeDefault
}

func normalizeTheme(theme string) string {
	return strings.ToLower(strings.TrimSpace(theme))
}

// scoreMultiplier linearly maps a 0-100 score onto [min, max].
func scoreMultiplier(score *float64, defaultScore, min, max float64) float64 {
	s := defaultScore
	if score != nil {
		s = *score
	}
	return min + (max-min)*s/100
}

// liquidityMultiplier discounts illiquid sets. Sales velocity is preferred;
// average days between sales is the inverse signal used when velocity is
// absent. No signal at all stays neutral - the zero-sales penalty covers the
// confirmed-dead case.
func liquidityMultiplier(cfg Config, in Inputs) float64 {
	if in.SalesVelocity != nil {
		v := *in.SalesVelocity
		switch {
		case v >= cfg.VelocityFast:
			return cfg.LiquidityFast
		case v >= cfg.VelocityMedium:
			return cfg.LiquidityMedium
		case v >= cfg.VelocitySlow:
			return cfg.LiquiditySlow
		default:
			return cfg.LiquidityDead
		}
	}
	if in.AvgDaysBetweenSales != nil {
		d := *in.AvgDaysBetweenSales
		switch {
		case d <= cfg.DaysBetweenFast:
			return cfg.LiquidityFast
		case d <= cfg.DaysBetweenMedium:
			return cfg.LiquidityMedium
		case d <= cfg.DaysBetweenSlow:
			return cfg.LiquiditySlow
		default:
			return cfg.LiquidityDead
		}
	}
	return 1.00
}

// volatilityMultiplier applies up to VolatilityMaxDiscount for erratic
// pricing, interpolating linearly between the CV floor and ceiling. When no
// coefficient of variation was scraped it is derived from the historical
// price series.
func volatilityMultiplier(cfg Config, in Inputs) float64 {
	cv := in.PriceVolatility
	if cv == nil {
		cv = coefficientOfVariation(in.HistoricalPrices)
	}
	if cv == nil || *cv <= cfg.VolatilityFloorCV {
		return 1.00
	}
	if *cv >= cfg.VolatilityCeilingCV {
		return 1.00 - cfg.VolatilityMaxDiscount
	}
	frac := (*cv - cfg.VolatilityFloorCV) / (cfg.VolatilityCeilingCV - cfg.VolatilityFloorCV)
	return 1.00 - cfg.VolatilityMaxDiscount*frac
}

// coefficientOfVariation returns stddev/mean of the price series, or nil when
// the series is too short to be meaningful.
func coefficientOfVariation(prices []domain.Cents) *float64 {
	if len(prices) < 3 {
		return nil
	}
	xs := make([]float64, len(prices))
	for i, p := range prices {
		xs[i] = float64(p)
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if mean <= 0 {
		return nil
	}
	cv := std / mean
	return &cv
}

// saturationMultiplier penalizes oversupplied markets based on months of
// supply (available quantity against the monthly sales rate) and supply
// fragmentation (lot count). Bounded below by SaturationFloor.
func saturationMultiplier(cfg Config, in Inputs) float64 {
	m := 1.00

	if in.AvailableQty != nil && *in.AvailableQty > 0 {
		qty := float64(*in.AvailableQty)
		if in.SalesVelocity != nil && *in.SalesVelocity > 0 {
			monthsOfSupply := qty / (*in.SalesVelocity * 30)
			switch {
			case monthsOfSupply >= cfg.SaturationMonthsSevere:
				m = cfg.SaturationSevere
			case monthsOfSupply >= cfg.SaturationMonthsHeavy:
				m = cfg.SaturationHeavy
			case monthsOfSupply >= cfg.SaturationMonthsElevated:
				m = cfg.SaturationElevated
			}
		}
	}

	if in.AvailableLots != nil && *in.AvailableLots > cfg.SaturationLotsThreshold {
		m *= cfg.SaturationLotsPenalty
	}

	return math.Max(cfg.SaturationFloor, m)
}

// zeroSalesMultiplier halves the value of sets with a confirmed zero sale
// count, compounding a further discount when demand is also weak. A listing
// younger than the grace window is not penalized.
func zeroSalesMultiplier(cfg Config, in Inputs) float64 {
	if in.TimesSold == nil || *in.TimesSold > 0 {
		return 1.00
	}
	if in.ObservationDays != nil && *in.ObservationDays < cfg.ZeroSalesGraceDays {
		return 1.00
	}

	m := cfg.ZeroSalesMultiplier
	if in.DemandScore != nil && *in.DemandScore < cfg.ZeroSalesLowDemandScore {
		m *= cfg.ZeroSalesLowDemandExtra
	}
	return m
}

// ppdMultiplier rewards high parts-per-dollar builds, interpolating linearly
// between the low and high thresholds.
func ppdMultiplier(cfg Config, in Inputs) float64 {
	if in.PartsCount == nil || in.MSRP == nil || *in.MSRP <= 0 {
		return 1.00
	}
	ppd := float64(*in.PartsCount) / in.MSRP.Major()
	switch {
	case ppd >= cfg.PPDHigh:
		return cfg.PPDHighMultiplier
	case ppd <= cfg.PPDLow:
		return cfg.PPDLowMultiplier
	default:
		frac := (ppd - cfg.PPDLow) / (cfg.PPDHigh - cfg.PPDLow)
		return cfg.PPDLowMultiplier + (cfg.PPDHighMultiplier-cfg.PPDLowMultiplier)*frac
	}
}

// isBubblePriced flags a price-to-retail ratio above the bubble threshold.
// Callers treat this as an exclusion signal, never as another multiplier.
func isBubblePriced(cfg Config, in Inputs) bool {
	if in.MarketAvgPrice == nil || in.MSRP == nil || *in.MSRP <= 0 {
		return false
	}
	return float64(*in.MarketAvgPrice)/float64(*in.MSRP) > cfg.BubblePriceToRetail
}

// dataConfidence scores how much of the optional signal set was supplied.
// Drives the confidence-aware margin fraction in the metrics calculator.
func dataConfidence(in Inputs) float64 {
	score := 0.0
	if in.MSRP != nil {
		score += 15
	}
	if in.CurrentRetailPrice != nil {
		score += 10
	}
	if in.MarketAvgPrice != nil {
		score += 15
	}
	if in.MarketMaxPrice != nil {
		score += 5
	}
	if len(in.HistoricalPrices) >= 3 || in.PriceVolatility != nil {
		score += 10
	}
	if in.DemandScore != nil {
		score += 10
	}
	if in.QualityScore != nil {
		score += 5
	}
	if in.SalesVelocity != nil || in.AvgDaysBetweenSales != nil {
		score += 10
	}
	if in.TimesSold != nil {
		score += 10
	}
	if in.AvailableQty != nil || in.AvailableLots != nil {
		score += 5
	}
	if in.PartsCount != nil {
		score += 5
	}
	return score
}
