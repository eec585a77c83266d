package vouchers

import (
	"sort"

	"github.com/brickfolio/brickfolio/internal/domain"
)

// =============================================================================
// VOUCHER ORDER OPTIMIZER
// =============================================================================
// Applying vouchers in a different order changes the total discount: a cap
// may bind earlier or later, and a tiered voucher may drop a tier once a
// previous discount has reduced the subtotal. For the small voucher counts
// the UI allows, exhaustive permutation search is exact and cheap.

// MaxOptimizableVouchers caps the permutation search. Factorial growth makes
// this a load-bearing precondition, not an implementation detail: 5! = 120
// sequences, but 10! would be 3.6M. Above the ceiling FindOptimalOrder falls
// back to a greedy heuristic and reports OptimalOrder=false.
const MaxOptimizableVouchers = 5

// FindOptimalOrder searches voucher application orders and returns the result
// of the best one.
//
// Determinism: candidates are sorted by ID before permutations are generated
// and only a strictly better total replaces the incumbent, so ties resolve to
// the lexicographically smallest ID order.
func FindOptimalOrder(items []CartItem, templates []Template) ApplicationResult {
	subtotal := Subtotal(items)

	switch len(templates) {
	case 0:
		return ApplicationResult{
			AppliedVouchers: []Applied{},
			Subtotal:        subtotal,
			FinalTotal:      subtotal,
			OptimalOrder:    true,
		}
	case 1:
		result := applySequence(items, templates, subtotal)
		result.OptimalOrder = true
		return result
	}

	if len(templates) > MaxOptimizableVouchers {
		result := applySequence(items, greedyOrder(items, templates, subtotal), subtotal)
		result.OptimalOrder = false
		return result
	}

	candidates := sortByID(templates)

	var best ApplicationResult
	first := true
	permute(candidates, func(sequence []Template) {
		result := applySequence(items, sequence, subtotal)
		if first || result.TotalDiscount > best.TotalDiscount {
			best = result
			first = false
		}
	})
	best.OptimalOrder = true
	return best
}

// applySequence evaluates the vouchers in the given order, each against the
// subtotal remaining after its predecessors.
func applySequence(items []CartItem, sequence []Template, subtotal domain.Cents) ApplicationResult {
	applied := make([]Applied, 0, len(sequence))
	remaining := subtotal

	for _, voucher := range sequence {
		ev := Evaluate(items, voucher, remaining)
		applied = append(applied, Applied{Template: voucher, Evaluation: ev})
		if ev.IsValid {
			remaining -= ev.Discount
		}
	}

	return ApplicationResult{
		AppliedVouchers: applied,
		Subtotal:        subtotal,
		TotalDiscount:   subtotal - remaining,
		FinalTotal:      remaining,
	}
}

// permute calls fn with every permutation of ts, generated in lexicographic
// index order (Heap's algorithm would not preserve the tie-break guarantee).
func permute(ts []Template, fn func([]Template)) {
	n := len(ts)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	sequence := make([]Template, n)
	for {
		for i, idx := range indices {
			sequence[i] = ts[idx]
		}
		fn(sequence)

		// Next lexicographic permutation of indices.
		i := n - 2
		for i >= 0 && indices[i] >= indices[i+1] {
			i--
		}
		if i < 0 {
			return
		}
		j := n - 1
		for indices[j] <= indices[i] {
			j--
		}
		indices[i], indices[j] = indices[j], indices[i]
		for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
			indices[l], indices[r] = indices[r], indices[l]
		}
	}
}

// greedyOrder is the fallback past the permutation ceiling: vouchers sorted
// by their standalone discount against the full subtotal, largest first.
// Not guaranteed optimal; callers see OptimalOrder=false.
func greedyOrder(items []CartItem, templates []Template, subtotal domain.Cents) []Template {
	ordered := sortByID(templates)
	standalone := make(map[string]domain.Cents, len(ordered))
	for _, t := range ordered {
		standalone[t.ID] = Evaluate(items, t, subtotal).Discount
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return standalone[ordered[i].ID] > standalone[ordered[j].ID]
	})
	return ordered
}
