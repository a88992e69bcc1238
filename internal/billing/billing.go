// Package billing computes reservation charges. All functions are pure:
// the same inputs always produce the same total, so a bill can be
// recomputed at any point in the lifecycle. Money is integer cents.
package billing

import (
	"time"

	"github.com/veralda/slotbook/internal/domain"
)

// ChargePolicy decides what an Active reservation owes when it is
// cancelled before completion.
type ChargePolicy string

const (
	// ChargeFull bills the quoted base, same as a normal completion.
	ChargeFull ChargePolicy = "full"
	// ChargeProRated bills only the units elapsed at cancellation time,
	// capped at the quoted base.
	ChargeProRated ChargePolicy = "pro_rated"
)

// RefundPolicy decides how a negative total (deposit exceeding charges)
// is reported.
type RefundPolicy string

const (
	// RefundAllowed surfaces negative totals; the caller owes a refund.
	RefundAllowed RefundPolicy = "allowed"
	// RefundClamped floors the total at zero.
	RefundClamped RefundPolicy = "clamped"
)

// Units is the billable unit count for a range at the given granularity.
// Partial units charge as whole units, so any non-empty range is at
// least one unit.
func Units(unit domain.RateUnit, r domain.TimeRange) int64 {
	span := unit.Span()
	d := r.Duration()
	if d <= 0 {
		return 0
	}
	units := int64(d / span)
	if d%span != 0 {
		units++
	}
	return units
}

// Quote is the base charge for holding the resource over the range:
// unit count times the resource rate.
func Quote(res domain.Resource, r domain.TimeRange) int64 {
	return Units(res.RateUnit, r) * res.RateCents
}

// ProRatedBase is the base charge for the portion of the range elapsed
// at the given instant, capped at the full quote. Before the range
// starts it is zero.
func ProRatedBase(res domain.Resource, r domain.TimeRange, at time.Time) int64 {
	if !at.After(r.Start) {
		return 0
	}
	end := at
	if end.After(r.End) {
		end = r.End
	}
	used := domain.TimeRange{Start: r.Start, End: end}
	base := Units(res.RateUnit, used) * res.RateCents
	if full := Quote(res, r); base > full {
		return full
	}
	return base
}

// Finalize settles a reservation: base charge plus line items minus
// deposit. Under RefundAllowed a negative result is returned as-is and
// means the requester is owed money.
func Finalize(baseCents int64, items []domain.LineItem, depositCents int64, policy RefundPolicy) int64 {
	total := baseCents
	for _, it := range items {
		total += it.TotalCents()
	}
	total -= depositCents
	if policy == RefundClamped && total < 0 {
		return 0
	}
	return total
}
