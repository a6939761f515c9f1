// Package pricing is the single source of truth for quotation money math.
// Every surface that shows totals (quotation save, public view, PDF export,
// payment roll-up) goes through Compute so stored and displayed figures can
// never drift apart.
package pricing

import "math"

type Item struct {
	UnitPrice float64
	Quantity  float64
}

type Inputs struct {
	DiscountPercentage float64
	TaxPercentage      float64
	ServiceCharges     float64
	ExternalCharges    float64
	AdvancePaid        float64
}

type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	TaxableBase    float64
	TaxAmount      float64
	GrandTotal     float64
	BalanceDue     float64
}

const (
	StatusPending = "pending"
	StatusPartial = "partial"
	StatusPaid    = "paid"
)

// Round2 rounds half away from zero to two decimals. All derived figures are
// rounded here so repeated re-derivation from stored inputs is stable.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func LineTotal(unitPrice, quantity float64) float64 {
	return Round2(unitPrice * quantity)
}

// Compute derives all monetary fields from line items and scalar inputs:
//
//	subtotal     = Σ unit_price × quantity
//	discount     = subtotal × discount% / 100
//	taxable base = subtotal − discount + service charges + external charges
//	tax          = taxable base × tax% / 100
//	grand total  = taxable base + tax
//	balance due  = grand total − advance paid
//
// BalanceDue goes negative on overpayment; it is deliberately not clamped.
func Compute(items []Item, in Inputs) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += LineTotal(it.UnitPrice, it.Quantity)
	}
	t.Subtotal = Round2(t.Subtotal)
	t.DiscountAmount = Round2(t.Subtotal * in.DiscountPercentage / 100)
	t.TaxableBase = Round2(t.Subtotal - t.DiscountAmount + in.ServiceCharges + in.ExternalCharges)
	t.TaxAmount = Round2(t.TaxableBase * in.TaxPercentage / 100)
	t.GrandTotal = Round2(t.TaxableBase + t.TaxAmount)
	t.BalanceDue = Round2(t.GrandTotal - in.AdvancePaid)
	return t
}

// PaymentStatus is "paid" whenever advance_paid covers grand_total, including
// a zero grand total, "partial" on any smaller nonzero advance, else "pending".
func PaymentStatus(advancePaid, grandTotal float64) string {
	switch {
	case advancePaid >= grandTotal:
		return StatusPaid
	case advancePaid > 0:
		return StatusPartial
	default:
		return StatusPending
	}
}
