package quotation

import (
	"fmt"

	"catering-backend/internal/models"
	"catering-backend/internal/pricing"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func money(symbol string, v float64) string {
	return fmt.Sprintf("%s%.2f", symbol, v)
}

// BuildPDF renders a quotation document. Totals are re-derived from the
// stored inputs through the pricing package, never read back from the client.
func BuildPDF(q *models.Quotation, company *models.CompanySettings) ([]byte, error) {
	symbol := "₹"
	companyName := "Catering"
	if company != nil {
		if company.CurrencySymbol != "" {
			symbol = company.CurrencySymbol
		}
		if company.Name != "" {
			companyName = company.Name
		}
	}

	items := make([]pricing.Item, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, pricing.Item{UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}
	t := pricing.Compute(items, pricing.Inputs{
		DiscountPercentage: q.DiscountPercentage,
		TaxPercentage:      q.TaxPercentage,
		ServiceCharges:     q.ServiceCharges,
		ExternalCharges:    q.ExternalCharges,
		AdvancePaid:        q.AdvancePaid,
	})

	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRow(10, text.NewCol(12, companyName, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}))
	if company != nil {
		contact := company.Address
		if company.Phone != "" {
			contact += "  |  " + company.Phone
		}
		if company.Email != "" {
			contact += "  |  " + company.Email
		}
		m.AddRow(5, text.NewCol(12, contact, props.Text{Size: 8, Align: align.Center}))
		if company.TaxID != "" {
			m.AddRow(4, text.NewCol(12, "Tax ID: "+company.TaxID, props.Text{Size: 8, Align: align.Center}))
		}
	}
	m.AddRow(3, line.NewCol(12))

	m.AddRow(8, text.NewCol(12, "QUOTATION "+q.QuotationNumber, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Center}))

	m.AddRow(6,
		text.NewCol(6, "Client: "+q.ClientName, props.Text{Size: 9}),
		text.NewCol(6, "Event date: "+q.EventDate.Format("2006-01-02"), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(6, "Phone: "+q.ClientPhone, props.Text{Size: 9}),
		text.NewCol(6, fmt.Sprintf("Guests: %d", q.GuestCount), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(6, "Event: "+q.EventType, props.Text{Size: 9}),
		text.NewCol(6, "Venue: "+q.Venue, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(3, line.NewCol(12))

	m.AddRow(6,
		text.NewCol(6, "Item", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, "Price", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, it := range q.Items {
		m.AddRow(5,
			text.NewCol(6, it.Name, props.Text{Size: 9}),
			text.NewCol(2, money(symbol, it.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%g", it.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(symbol, it.Total), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(3, line.NewCol(12))

	totalRows := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Subtotal", t.Subtotal, false},
		{fmt.Sprintf("Discount (%.2f%%)", q.DiscountPercentage), -t.DiscountAmount, false},
		{"Service charges", q.ServiceCharges, false},
		{"External charges", q.ExternalCharges, false},
		{fmt.Sprintf("Tax (%.2f%%)", q.TaxPercentage), t.TaxAmount, false},
		{"Grand total", t.GrandTotal, true},
		{"Advance paid", q.AdvancePaid, false},
		{"Balance due", t.BalanceDue, true},
	}
	for _, tr := range totalRows {
		style := fontstyle.Normal
		if tr.bold {
			style = fontstyle.Bold
		}
		m.AddRow(5,
			text.NewCol(8, tr.label, props.Text{Size: 9, Style: style, Align: align.Right}),
			text.NewCol(4, money(symbol, tr.value), props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}

	if q.Notes != "" {
		m.AddRow(3, line.NewCol(12))
		m.AddRow(6, text.NewCol(12, "Notes: "+q.Notes, props.Text{Size: 8}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
