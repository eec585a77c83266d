package domain

import "time"

// RetirementStatus describes where a set sits in its production lifecycle.
type RetirementStatus string

const (
	RetirementActive       RetirementStatus = "active"
	RetirementRetiringSoon RetirementStatus = "retiring_soon"
	RetirementRetired      RetirementStatus = "retired"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s RetirementStatus) Valid() bool {
	switch s {
	case RetirementActive, RetirementRetiringSoon, RetirementRetired:
		return true
	}
	return false
}

// Product is a tracked collectible set.
type Product struct {
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	ID           string           `json:"id"`
	SetNumber    string           `json:"set_number"` // e.g. "31113-1"
	Name         string           `json:"name"`
	Theme        string           `json:"theme"`
	Status       RetirementStatus `json:"status"`
	PartsCount   int              `json:"parts_count"`
	YearReleased int              `json:"year_released"`
	MSRP         Cents            `json:"msrp"`
}

// MarketSnapshot is one scraped observation of a product's market state.
// Scrapers populate it; the valuation engine only reads it.
type MarketSnapshot struct {
	ObservedAt          time.Time `json:"observed_at"`
	ProductID           string    `json:"product_id"`
	CurrentRetailPrice  Cents     `json:"current_retail_price"`
	MarketAvgPrice      Cents     `json:"market_avg_price"`
	MarketMaxPrice      Cents     `json:"market_max_price"`
	CurrentPrice        Cents     `json:"current_price"`
	YearsPostRetirement float64   `json:"years_post_retirement"`
	DemandScore         float64   `json:"demand_score"`   // 0-100
	QualityScore        float64   `json:"quality_score"`  // 0-100
	SalesVelocity       float64   `json:"sales_velocity"` // transactions/day
	AvgDaysBetweenSales float64   `json:"avg_days_between_sales"`
	TimesSold           int       `json:"times_sold"`
	PriceVolatility     float64   `json:"price_volatility"` // coefficient of variation
	AvailableQty        int       `json:"available_qty"`
	AvailableLots       int       `json:"available_lots"`
	ObservationDays     int       `json:"observation_days"`
}
