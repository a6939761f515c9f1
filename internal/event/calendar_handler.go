package event

import (
	"time"

	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CalendarEventResponse struct {
	ID          uint    `json:"id"`
	QuotationID uint    `json:"quotation_id"`
	ClientName  string  `json:"client_name"`
	ClientPhone string  `json:"client_phone"`
	EventDate   string  `json:"event_date"`
	EventType   string  `json:"event_type"`
	Venue       string  `json:"venue"`
	GuestCount  int     `json:"guest_count"`
	Revenue     float64 `json:"revenue"`
	Notes       string  `json:"notes"`
}

func toResponse(ev *models.CalendarEvent) CalendarEventResponse {
	return CalendarEventResponse{
		ID:          ev.ID,
		QuotationID: ev.QuotationID,
		ClientName:  ev.ClientName,
		ClientPhone: ev.ClientPhone,
		EventDate:   ev.EventDate.Format("2006-01-02"),
		EventType:   ev.EventType,
		Venue:       ev.Venue,
		GuestCount:  ev.GuestCount,
		Revenue:     ev.Revenue,
		Notes:       ev.Notes,
	}
}

// GET /api/calendar-events?from=...&to=...&all=1
//
// By default only events whose quotation has been approved internally are
// returned. Pass all=1 to include the rest.
func ListCalendarEventsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.CalendarEvent{})

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from is invalid")
			}
			dbq = dbq.Where("event_date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to is invalid")
			}
			dbq = dbq.Where("event_date <= ?", to)
		}

		if c.Query("all") != "1" {
			dbq = dbq.Where("quotation_id IN (?)",
				database.DB.Model(&models.Quotation{}).
					Select("id").
					Where("approval_status = ?", models.ApprovalApproved))
		}

		var rows []models.CalendarEvent
		if err := dbq.Order("event_date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list calendar events")
		}

		resp := make([]CalendarEventResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/calendar-events/:id
func GetCalendarEventHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ev models.CalendarEvent
		if err := database.DB.First(&ev, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Calendar event not found")
		}
		return c.JSON(toResponse(&ev))
	}
}
