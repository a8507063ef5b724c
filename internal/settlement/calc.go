package settlement

import "math"

// CommissionMode selects how the commission rate of an invoice is resolved.
type CommissionMode string

const (
	// ModeOrderRate uses the order override when set, falling back to the
	// catalog rate of the first line item's material.
	ModeOrderRate CommissionMode = "order-rate"
	// ModePerItem sums each line item's subtotal times its material's
	// catalog rate.
	ModePerItem CommissionMode = "per-item"
)

// RemainderPolicy selects how cent remainders of an even split are handled.
type RemainderPolicy string

const (
	// RemainderRedistribute makes the last installment absorb the
	// difference so the slices sum back to the total.
	RemainderRedistribute RemainderPolicy = "redistribute"
	// RemainderNaive keeps every slice at the rounded per-installment
	// amount; the sum may drift from the total by a few cents.
	RemainderNaive RemainderPolicy = "naive"
)

// round2 rounds monetary values half-up to two decimals. Amounts handled
// here are never negative.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// splitEven divides total into n slices of round2(total/n) each. Under the
// redistribute policy the last slice absorbs the rounding remainder.
func splitEven(total float64, n int, policy RemainderPolicy) []float64 {
	per := round2(total / float64(n))
	out := make([]float64, n)
	for i := range out {
		out[i] = per
	}
	if policy == RemainderRedistribute {
		out[n-1] = round2(total - per*float64(n-1))
	}
	return out
}
