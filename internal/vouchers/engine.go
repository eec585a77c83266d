package vouchers

import (
	"fmt"

	"github.com/brickfolio/brickfolio/internal/domain"
)

// =============================================================================
// VOUCHER DISCOUNT ENGINE
// =============================================================================
// Evaluates a single voucher against a cart at a point in an application
// sequence. Invalid conditions are reported as data (IsValid=false plus a
// human-readable message), never as errors, so callers can render the reason.

// Evaluate applies one voucher to the cart given the running subtotal
// (the cart subtotal minus discounts already applied by earlier vouchers).
func Evaluate(items []CartItem, voucher Template, currentSubtotal domain.Cents) Evaluation {
	eligible := eligibleSubtotal(items, voucher)

	// Tag eligibility before anything else: an item_tag voucher with no
	// matching item can never apply, regardless of spend.
	if voucher.Type == TypeItemTag && eligible == 0 {
		return Evaluation{
			IsValid: false,
			Message: fmt.Sprintf("no cart item carries any of the required tags %v", voucher.Conditions.RequiredTags),
		}
	}

	// Earlier vouchers shrink the spend this one is computed against. This is
	// what makes application order matter: a percentage voucher applied second
	// discounts a smaller base, and a tiered voucher may drop a tier.
	if eligible > currentSubtotal {
		eligible = currentSubtotal
	}

	if min := voucher.Conditions.MinPurchase; min != nil && eligible < *min {
		return Evaluation{
			IsValid: false,
			Message: fmt.Sprintf("minimum purchase %s not met, eligible subtotal is %s (short by %s)",
				*min, eligible, *min-eligible),
		}
	}

	discount := rawDiscount(voucher, eligible)

	ev := Evaluation{IsValid: true}
	if maxDiscount := voucher.Conditions.MaxDiscount; maxDiscount != nil && discount > *maxDiscount {
		original := discount
		ev.OriginalDiscount = &original
		ev.IsCapped = true
		discount = *maxDiscount
	}

	// A voucher can never discount past zero.
	if discount > currentSubtotal {
		discount = currentSubtotal
	}
	if discount < 0 {
		discount = 0
	}
	ev.Discount = discount
	return ev
}

// eligibleSubtotal sums the cart portion this voucher's discount is computed
// against: tag-matching items for item_tag vouchers, the whole cart otherwise.
func eligibleSubtotal(items []CartItem, voucher Template) domain.Cents {
	if voucher.Type != TypeItemTag {
		return Subtotal(items)
	}
	var total domain.Cents
	for _, item := range items {
		if hasAnyTag(item.Tags, voucher.Conditions.RequiredTags) {
			total += item.UnitPrice * domain.Cents(item.Quantity)
		}
	}
	return total
}

// rawDiscount computes the pre-cap discount amount.
func rawDiscount(voucher Template, eligible domain.Cents) domain.Cents {
	if len(voucher.Tiers) > 0 {
		return bestTierDiscount(voucher.Tiers, eligible)
	}
	switch voucher.DiscountType {
	case DiscountPercentage:
		return eligible.Percent(float64(voucher.DiscountValue))
	case DiscountFixed:
		return voucher.DiscountValue
	}
	return 0
}

// bestTierDiscount picks, among tiers whose MinSpend the eligible subtotal
// reaches, the one with the highest MinSpend; ties break to the higher
// discount.
func bestTierDiscount(tiers []Tier, eligible domain.Cents) domain.Cents {
	best := domain.Cents(0)
	var bestMinSpend domain.Cents = -1
	for _, tier := range tiers {
		if tier.MinSpend > eligible {
			continue
		}
		if tier.MinSpend > bestMinSpend || (tier.MinSpend == bestMinSpend && tier.Discount > best) {
			best = tier.Discount
			bestMinSpend = tier.MinSpend
		}
	}
	return best
}

func hasAnyTag(itemTags, required []string) bool {
	for _, tag := range itemTags {
		for _, want := range required {
			if tag == want {
				return true
			}
		}
	}
	return false
}
