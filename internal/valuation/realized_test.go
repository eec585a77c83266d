package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brickfolio/brickfolio/internal/domain"
)

func TestRealizedValue(t *testing.T) {
	cfg := DefaultConfig()

	// 200.00 sale, 2 lb: 20000*0.85 - 599 - 250 - 250 = 15901
	got := RealizedValue(cfg, 20000, 2)
	assert.Equal(t, domain.Cents(15901), got)
}

func TestRealizedValue_NeverNegative(t *testing.T) {
	cfg := DefaultConfig()

	// A 5.00 sale cannot cover fixed costs; result floors at zero.
	assert.Equal(t, domain.Cents(0), RealizedValue(cfg, 500, 1))
}

func TestHoldingCosts(t *testing.T) {
	cfg := DefaultConfig()

	// 8% annualized on 100.00 over 2 years = 16.00
	assert.Equal(t, domain.Cents(1600), HoldingCosts(cfg, 10000, 2))

	assert.Equal(t, domain.Cents(0), HoldingCosts(cfg, 10000, 0))
	assert.Equal(t, domain.Cents(0), HoldingCosts(cfg, 0, 3))
}
