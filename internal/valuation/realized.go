package valuation

import (
	"math"

	"github.com/brickfolio/brickfolio/internal/domain"
)

// =============================================================================
// REALIZED VALUE & HOLDING COSTS
// =============================================================================
// Independent pure functions. No clamping beyond non-negativity.

// RealizedValue is the net proceeds of selling at saleValue after marketplace
// fees, shipping and packaging: saleValue * (1 - fee) - shipping - packaging.
// weightUnits is the shipped weight in pounds.
func RealizedValue(cfg Config, saleValue domain.Cents, weightUnits float64) domain.Cents {
	net := saleValue.MulRatio(1 - cfg.SellingFeeRate)
	net -= domain.Cents(cfg.ShippingBase)
	net -= domain.Cents(math.Round(float64(cfg.ShippingPerUnit) * weightUnits))
	net -= domain.Cents(cfg.PackagingCost)
	if net < 0 {
		return 0
	}
	return net
}

// HoldingCosts is the cumulative cost of holding value for the given number
// of years: storage, cost of capital and degradation, all annualized.
func HoldingCosts(cfg Config, value domain.Cents, years float64) domain.Cents {
	if years <= 0 || value <= 0 {
		return 0
	}
	rate := cfg.StorageRate + cfg.CapitalRate + cfg.DegradationRate
	return value.MulRatio(rate * years)
}
