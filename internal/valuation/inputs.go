package valuation

import (
	"fmt"

	"github.com/brickfolio/brickfolio/internal/domain"
)

// Inputs carries the market signals a valuation is derived from.
// Every field except the prices is optional; nil means "not observed" and the
// calculators substitute documented defaults rather than silent zeros.
type Inputs struct {
	MSRP               *domain.Cents
	CurrentRetailPrice *domain.Cents
	MarketAvgPrice     *domain.Cents // e.g. Bricklink 6-month average
	MarketMaxPrice     *domain.Cents
	HistoricalPrices   []domain.Cents

	RetirementStatus    domain.RetirementStatus
	YearsPostRetirement *float64
	YearReleased        *int

	DemandScore  *float64 // 0-100
	QualityScore *float64 // 0-100

	SalesVelocity       *float64 // transactions/day
	AvgDaysBetweenSales *float64
	TimesSold           *int
	ObservationDays     *int

	PriceVolatility *float64 // coefficient of variation, >= 0

	AvailableQty  *int
	AvailableLots *int

	Theme      string
	PartsCount *int
}

// Validate rejects inputs that violate basic invariants. Calculators assume
// validated inputs and never re-check deep inside the multiplier chain.
func (in *Inputs) Validate() error {
	for name, p := range map[string]*domain.Cents{
		"msrp":                 in.MSRP,
		"current_retail_price": in.CurrentRetailPrice,
		"market_avg_price":     in.MarketAvgPrice,
		"market_max_price":     in.MarketMaxPrice,
	} {
		if p != nil && *p < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, *p)
		}
	}
	for i, p := range in.HistoricalPrices {
		if p < 0 {
			return fmt.Errorf("historical_prices[%d] must not be negative, got %d", i, p)
		}
	}
	if in.RetirementStatus != "" && !in.RetirementStatus.Valid() {
		return fmt.Errorf("unknown retirement status %q", in.RetirementStatus)
	}
	for name, s := range map[string]*float64{
		"demand_score":  in.DemandScore,
		"quality_score": in.QualityScore,
	} {
		if s != nil && (*s < 0 || *s > 100) {
			return fmt.Errorf("%s must be within [0,100], got %v", name, *s)
		}
	}
	if in.PriceVolatility != nil && *in.PriceVolatility < 0 {
		return fmt.Errorf("price_volatility must not be negative, got %v", *in.PriceVolatility)
	}
	if in.SalesVelocity != nil && *in.SalesVelocity < 0 {
		return fmt.Errorf("sales_velocity must not be negative, got %v", *in.SalesVelocity)
	}
	if in.TimesSold != nil && *in.TimesSold < 0 {
		return fmt.Errorf("times_sold must not be negative, got %d", *in.TimesSold)
	}
	return nil
}

// InputsFromSnapshot builds valuation inputs from a stored product and its
// latest market snapshot. Zero-valued snapshot fields are treated as absent.
func InputsFromSnapshot(p domain.Product, snap domain.MarketSnapshot) Inputs {
	in := Inputs{
		RetirementStatus: p.Status,
		Theme:            p.Theme,
	}
	if p.MSRP > 0 {
		in.MSRP = centsPtr(p.MSRP)
	}
	if p.PartsCount > 0 {
		in.PartsCount = intPtr(p.PartsCount)
	}
	if p.YearReleased > 0 {
		in.YearReleased = intPtr(p.YearReleased)
	}
	if snap.CurrentRetailPrice > 0 {
		in.CurrentRetailPrice = centsPtr(snap.CurrentRetailPrice)
	}
	if snap.MarketAvgPrice > 0 {
		in.MarketAvgPrice = centsPtr(snap.MarketAvgPrice)
	}
	if snap.MarketMaxPrice > 0 {
		in.MarketMaxPrice = centsPtr(snap.MarketMaxPrice)
	}
	if snap.YearsPostRetirement > 0 {
		in.YearsPostRetirement = floatPtr(snap.YearsPostRetirement)
	}
	if snap.DemandScore > 0 {
		in.DemandScore = floatPtr(snap.DemandScore)
	}
	if snap.QualityScore > 0 {
		in.QualityScore = floatPtr(snap.QualityScore)
	}
	if snap.SalesVelocity > 0 {
		in.SalesVelocity = floatPtr(snap.SalesVelocity)
	}
	if snap.AvgDaysBetweenSales > 0 {
		in.AvgDaysBetweenSales = floatPtr(snap.AvgDaysBetweenSales)
	}
	if snap.ObservationDays > 0 {
		in.ObservationDays = intPtr(snap.ObservationDays)
		// TimesSold is only meaningful relative to an observation window;
		// without one, zero sales would be indistinguishable from "not tracked".
		in.TimesSold = intPtr(snap.TimesSold)
	}
	if snap.PriceVolatility > 0 {
		in.PriceVolatility = floatPtr(snap.PriceVolatility)
	}
	if snap.AvailableQty > 0 {
		in.AvailableQty = intPtr(snap.AvailableQty)
	}
	if snap.AvailableLots > 0 {
		in.AvailableLots = intPtr(snap.AvailableLots)
	}
	return in
}

func centsPtr(c domain.Cents) *domain.Cents { return &c }
func floatPtr(f float64) *float64           { return &f }
func intPtr(i int) *int                     { return &i }
