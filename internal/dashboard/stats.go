package dashboard

import (
	"time"

	"catering-backend/internal/database"
	"catering-backend/internal/models"
	"catering-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
)

type MonthlyRevenuePoint struct {
	Month   string  `json:"month"` // "2026-03"
	Revenue float64 `json:"revenue"`
	Events  int     `json:"events"`
}

type StatsResponse struct {
	TotalClients       int64   `json:"total_clients"`
	TotalQuotations    int64   `json:"total_quotations"`
	DraftQuotations    int64   `json:"draft_quotations"`
	SentQuotations     int64   `json:"sent_quotations"`
	AcceptedQuotations int64   `json:"accepted_quotations"`
	RejectedQuotations int64   `json:"rejected_quotations"`
	UpcomingEvents     int64   `json:"upcoming_events"`
	AcceptedRevenue    float64 `json:"accepted_revenue"`
	OutstandingBalance float64 `json:"outstanding_balance"`

	MonthlyRevenue []MonthlyRevenuePoint `json:"monthly_revenue"`
}

// GET /api/dashboard/stats
func StatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var resp StatsResponse

		database.DB.Model(&models.Client{}).Count(&resp.TotalClients)
		database.DB.Model(&models.Quotation{}).Count(&resp.TotalQuotations)
		database.DB.Model(&models.Quotation{}).Where("status = ?", models.QuotationDraft).Count(&resp.DraftQuotations)
		database.DB.Model(&models.Quotation{}).Where("status = ?", models.QuotationSent).Count(&resp.SentQuotations)
		database.DB.Model(&models.Quotation{}).Where("status = ?", models.QuotationAccepted).Count(&resp.AcceptedQuotations)
		database.DB.Model(&models.Quotation{}).Where("status = ?", models.QuotationRejected).Count(&resp.RejectedQuotations)

		now := time.Now()
		database.DB.Model(&models.CalendarEvent{}).Where("event_date >= ?", now).Count(&resp.UpcomingEvents)

		var accepted []models.Quotation
		if err := database.DB.
			Where("status = ?", models.QuotationAccepted).
			Find(&accepted).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute stats")
		}

		for _, q := range accepted {
			resp.AcceptedRevenue = pricing.Round2(resp.AcceptedRevenue + q.GrandTotal)
			resp.OutstandingBalance = pricing.Round2(resp.OutstandingBalance + q.BalanceDue)
		}

		// Last 12 calendar months of accepted event revenue, oldest first.
		// Bucketed in Go so the query stays portable across drivers.
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)

		var events []models.CalendarEvent
		if err := database.DB.
			Where("event_date >= ?", start).
			Find(&events).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute monthly revenue")
		}

		buckets := make(map[string]*MonthlyRevenuePoint, 12)
		resp.MonthlyRevenue = make([]MonthlyRevenuePoint, 0, 12)
		for i := 0; i < 12; i++ {
			m := start.AddDate(0, i, 0)
			key := m.Format("2006-01")
			resp.MonthlyRevenue = append(resp.MonthlyRevenue, MonthlyRevenuePoint{Month: key})
			buckets[key] = &resp.MonthlyRevenue[i]
		}

		for _, ev := range events {
			key := ev.EventDate.Format("2006-01")
			if pt, ok := buckets[key]; ok {
				pt.Revenue = pricing.Round2(pt.Revenue + ev.Revenue)
				pt.Events++
			}
		}

		return c.JSON(resp)
	}
}
