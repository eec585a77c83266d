// Package vouchers evaluates shop vouchers against carts and searches for the
// application order that maximizes total discount.
//
// Vouchers apply sequentially: each one reduces the running subtotal the next
// one sees, so order changes total savings. All functions here are pure.
package vouchers

import (
	"fmt"
	"sort"

	"github.com/brickfolio/brickfolio/internal/domain"
)

// Type scopes which part of a cart a voucher can discount.
type Type string

const (
	TypePlatform Type = "platform"
	TypeShop     Type = "shop"
	TypeItemTag  Type = "item_tag"
)

// DiscountType selects between percentage and fixed-amount discounts.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Tier is one step of a tiered discount: spend at least MinSpend, get Discount.
type Tier struct {
	MinSpend domain.Cents `json:"min_spend"`
	Discount domain.Cents `json:"discount"`
}

// Conditions restrict when a voucher applies.
type Conditions struct {
	MinPurchase  *domain.Cents `json:"min_purchase,omitempty"`
	RequiredTags []string      `json:"required_tags,omitempty"`
	MaxDiscount  *domain.Cents `json:"max_discount,omitempty"`
}

// Template describes a voucher as offered by a platform or shop.
type Template struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Type          Type         `json:"type"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue domain.Cents `json:"discount_value"` // percent points for percentage type
	Tiers         []Tier       `json:"tiered_discounts,omitempty"`
	Conditions    Conditions   `json:"conditions"`
}

// Validate rejects malformed templates: unknown types, out-of-range
// percentages, non-monotonic tier tables.
func (t *Template) Validate() error {
	switch t.Type {
	case TypePlatform, TypeShop, TypeItemTag:
	default:
		return fmt.Errorf("unknown voucher type %q", t.Type)
	}
	switch t.DiscountType {
	case DiscountPercentage:
		if t.DiscountValue < 0 || t.DiscountValue > 100 {
			return fmt.Errorf("percentage discount must be within [0,100], got %d", t.DiscountValue)
		}
	case DiscountFixed:
		if t.DiscountValue < 0 {
			return fmt.Errorf("fixed discount must not be negative, got %d", t.DiscountValue)
		}
	default:
		return fmt.Errorf("unknown discount type %q", t.DiscountType)
	}
	for i, tier := range t.Tiers {
		if tier.MinSpend < 0 || tier.Discount < 0 {
			return fmt.Errorf("tier %d must not be negative", i)
		}
		if i > 0 {
			prev := t.Tiers[i-1]
			if tier.MinSpend <= prev.MinSpend {
				return fmt.Errorf("tier min_spend must be strictly ascending, tier %d violates", i)
			}
			if tier.Discount <= prev.Discount {
				return fmt.Errorf("tier discounts must be strictly increasing, tier %d violates", i)
			}
		}
	}
	if t.Type == TypeItemTag && len(t.Conditions.RequiredTags) == 0 {
		return fmt.Errorf("item_tag voucher requires at least one required tag")
	}
	return nil
}

// CartItem is a priced, tagged line item.
type CartItem struct {
	ID        string       `json:"id"`
	UnitPrice domain.Cents `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	Tags      []string     `json:"tags,omitempty"`
}

// Validate rejects malformed cart items.
func (c *CartItem) Validate() error {
	if c.UnitPrice < 0 {
		return fmt.Errorf("unit price must not be negative, got %d", c.UnitPrice)
	}
	if c.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", c.Quantity)
	}
	return nil
}

// Subtotal returns the cart total before any discount.
func Subtotal(items []CartItem) domain.Cents {
	var total domain.Cents
	for _, item := range items {
		total += item.UnitPrice * domain.Cents(item.Quantity)
	}
	return total
}

// Evaluation is the outcome of applying one voucher at a point in a sequence.
type Evaluation struct {
	Discount         domain.Cents  `json:"discount"`
	OriginalDiscount *domain.Cents `json:"original_discount,omitempty"` // pre-cap value when capped
	IsCapped         bool          `json:"is_capped"`
	IsValid          bool          `json:"is_valid"`
	Message          string        `json:"message,omitempty"`
}

// Applied pairs a template with its evaluation in an application sequence.
type Applied struct {
	Template Template `json:"voucher"`
	Evaluation
}

// ApplicationResult is the outcome of applying a voucher sequence to a cart.
type ApplicationResult struct {
	AppliedVouchers []Applied    `json:"applied_vouchers"` // in evaluation order
	Subtotal        domain.Cents `json:"subtotal"`
	TotalDiscount   domain.Cents `json:"total_discount"`
	FinalTotal      domain.Cents `json:"final_total"`
	// OptimalOrder is true when the search was exhaustive; false when the
	// voucher count exceeded the permutation ceiling and a heuristic was used.
	OptimalOrder bool `json:"optimal_order"`
}

// sortByID orders templates lexicographically by ID. The optimizer relies on
// this for a deterministic tie-break across permutations.
func sortByID(ts []Template) []Template {
	out := make([]Template, len(ts))
	copy(out, ts)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
