package pricing

import "testing"

func TestComputeFullChain(t *testing.T) {
	items := []Item{
		{UnitPrice: 10000, Quantity: 1},
		{UnitPrice: 500, Quantity: 100},
	}
	in := Inputs{
		DiscountPercentage: 10,
		TaxPercentage:      18,
		ServiceCharges:     2000,
		AdvancePaid:        20000,
	}

	got := Compute(items, in)

	if got.Subtotal != 60000 {
		t.Fatalf("subtotal: expected 60000 got %v", got.Subtotal)
	}
	if got.DiscountAmount != 6000 {
		t.Fatalf("discount: expected 6000 got %v", got.DiscountAmount)
	}
	if got.TaxableBase != 56000 {
		t.Fatalf("taxable base: expected 56000 got %v", got.TaxableBase)
	}
	if got.TaxAmount != 10080 {
		t.Fatalf("tax: expected 10080 got %v", got.TaxAmount)
	}
	if got.GrandTotal != 66080 {
		t.Fatalf("grand total: expected 66080 got %v", got.GrandTotal)
	}
	if got.BalanceDue != 46080 {
		t.Fatalf("balance due: expected 46080 got %v", got.BalanceDue)
	}
}

func TestComputeItemOrderIrrelevant(t *testing.T) {
	a := []Item{{UnitPrice: 123.45, Quantity: 3}, {UnitPrice: 999.99, Quantity: 7}, {UnitPrice: 0.01, Quantity: 1000}}
	b := []Item{a[2], a[0], a[1]}
	in := Inputs{DiscountPercentage: 7.5, TaxPercentage: 18, ServiceCharges: 150.5, ExternalCharges: 42.42}

	if Compute(a, in) != Compute(b, in) {
		t.Fatal("reordering items changed the totals")
	}
}

func TestComputeEmptyItems(t *testing.T) {
	got := Compute(nil, Inputs{TaxPercentage: 18, ServiceCharges: 500})
	if got.Subtotal != 0 {
		t.Fatalf("expected zero subtotal, got %v", got.Subtotal)
	}
	// Service charges are still taxed even with no line items.
	if got.TaxableBase != 500 || got.TaxAmount != 90 || got.GrandTotal != 590 {
		t.Fatalf("unexpected totals: %+v", got)
	}
}

func TestComputeZeroDiscountZeroTax(t *testing.T) {
	got := Compute([]Item{{UnitPrice: 250, Quantity: 4}}, Inputs{})
	if got.GrandTotal != 1000 || got.BalanceDue != 1000 {
		t.Fatalf("unexpected totals: %+v", got)
	}
}

func TestComputeOverpaymentGoesNegative(t *testing.T) {
	got := Compute([]Item{{UnitPrice: 100, Quantity: 1}}, Inputs{AdvancePaid: 150})
	if got.BalanceDue != -50 {
		t.Fatalf("expected balance -50 got %v", got.BalanceDue)
	}
}

func TestComputeRounding(t *testing.T) {
	// 33.335 * 3 = 100.005 per line, rounded at the line level first.
	got := Compute([]Item{{UnitPrice: 33.335, Quantity: 3}}, Inputs{TaxPercentage: 18})
	if got.Subtotal != LineTotal(33.335, 3) {
		t.Fatalf("subtotal %v does not match line total %v", got.Subtotal, LineTotal(33.335, 3))
	}
	if got.TaxAmount != Round2(got.TaxableBase*18/100) {
		t.Fatalf("tax %v not rounded from base %v", got.TaxAmount, got.TaxableBase)
	}
}

func TestPaymentStatus(t *testing.T) {
	cases := []struct {
		name    string
		advance float64
		grand   float64
		want    string
	}{
		{"no payment", 0, 1000, StatusPending},
		{"partial", 400, 1000, StatusPartial},
		{"exact", 1000, 1000, StatusPaid},
		{"overpaid", 1200, 1000, StatusPaid},
	}
	for _, tc := range cases {
		if got := PaymentStatus(tc.advance, tc.grand); got != tc.want {
			t.Errorf("%s: expected %q got %q", tc.name, tc.want, got)
		}
	}
}

func TestPaymentStatusZeroGrandTotal(t *testing.T) {
	// A zero grand total is reachable with zero-priced items; the advance
	// covers it by definition, so the status is paid either way.
	if got := PaymentStatus(0, 0); got != StatusPaid {
		t.Fatalf("PaymentStatus(0, 0): expected %q got %q", StatusPaid, got)
	}
	if got := PaymentStatus(100, 0); got != StatusPaid {
		t.Fatalf("PaymentStatus(100, 0): expected %q got %q", StatusPaid, got)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{12.344, 12.34},
		{12.346, 12.35},
		{-3.456, -3.46},
		{0, 0},
		{100.5, 100.5},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v): expected %v got %v", tc.in, tc.want, got)
		}
	}
}
