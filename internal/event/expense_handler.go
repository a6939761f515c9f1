package event

import (
	"strings"

	"catering-backend/internal/database"
	"catering-backend/internal/models"
	"catering-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ExpenseItemPayload struct {
	Vendor   string  `json:"vendor"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Notes    string  `json:"notes"`
}

type ExpenseItemView struct {
	ID       uint    `json:"id"`
	Vendor   string  `json:"vendor"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Notes    string  `json:"notes"`
}

type EventExpenseResponse struct {
	ID               uint              `json:"id"`
	CalendarEventID  uint              `json:"calendar_event_id"`
	Revenue          float64           `json:"revenue"`
	TotalExpenses    float64           `json:"total_expenses"`
	Profit           float64           `json:"profit"`
	ProfitPercentage float64           `json:"profit_percentage"`
	Items            []ExpenseItemView `json:"items"`
}

func expenseResponse(ee *models.EventExpense) EventExpenseResponse {
	resp := EventExpenseResponse{
		ID:               ee.ID,
		CalendarEventID:  ee.CalendarEventID,
		Revenue:          ee.Revenue,
		TotalExpenses:    ee.TotalExpenses,
		Profit:           ee.Profit,
		ProfitPercentage: ee.ProfitPercentage,
		Items:            make([]ExpenseItemView, 0, len(ee.Items)),
	}
	for _, it := range ee.Items {
		resp.Items = append(resp.Items, ExpenseItemView{
			ID:       it.ID,
			Vendor:   it.Vendor,
			Category: it.Category,
			Amount:   it.Amount,
			Notes:    it.Notes,
		})
	}
	return resp
}

// recompute refreshes the denormalized totals from the item rows. Must run in
// the same transaction as the item mutation.
func recompute(tx *gorm.DB, expenseID uint) error {
	var ee models.EventExpense
	if err := tx.First(&ee, "id = ?", expenseID).Error; err != nil {
		return err
	}

	var total float64
	if err := tx.Model(&models.EventExpenseItem{}).
		Where("event_expense_id = ?", expenseID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return err
	}

	total = pricing.Round2(total)
	profit := pricing.Round2(ee.Revenue - total)
	pct := 0.0
	if ee.Revenue > 0 {
		pct = pricing.Round2(profit / ee.Revenue * 100)
	}

	return tx.Model(&ee).Updates(map[string]interface{}{
		"total_expenses":    total,
		"profit":            profit,
		"profit_percentage": pct,
	}).Error
}

// GET /api/event-expenses/:id
func GetEventExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ee models.EventExpense
		if err := database.DB.Preload("Items").First(&ee, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Event expense not found")
		}
		return c.JSON(expenseResponse(&ee))
	}
}

// GET /api/calendar-events/:id/expense
func GetExpenseByEventHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ee models.EventExpense
		if err := database.DB.Preload("Items").First(&ee, "calendar_event_id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Event expense not found")
		}
		return c.JSON(expenseResponse(&ee))
	}
}

// POST /api/event-expenses/:id/items
func AddExpenseItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ee models.EventExpense
		if err := database.DB.First(&ee, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Event expense not found")
		}

		var body ExpenseItemPayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Vendor = strings.TrimSpace(body.Vendor)
		if body.Vendor == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Vendor is required")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be > 0")
		}

		item := models.EventExpenseItem{
			EventExpenseID: ee.ID,
			Vendor:         body.Vendor,
			Category:       body.Category,
			Amount:         body.Amount,
			Notes:          body.Notes,
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			return recompute(tx, ee.ID)
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not add expense item")
		}

		if err := database.DB.Preload("Items").First(&ee, "id = ?", ee.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reload event expense")
		}
		return c.Status(fiber.StatusCreated).JSON(expenseResponse(&ee))
	}
}

// DELETE /api/event-expenses/:id/items/:itemId
func DeleteExpenseItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		itemID := c.Params("itemId")

		var ee models.EventExpense
		if err := database.DB.First(&ee, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Event expense not found")
		}

		var item models.EventExpenseItem
		if err := database.DB.First(&item, "id = ? AND event_expense_id = ?", itemID, ee.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Expense item not found")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&item).Error; err != nil {
				return err
			}
			return recompute(tx, ee.ID)
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete expense item")
		}

		if err := database.DB.Preload("Items").First(&ee, "id = ?", ee.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reload event expense")
		}
		return c.JSON(expenseResponse(&ee))
	}
}
