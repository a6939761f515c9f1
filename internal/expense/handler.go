package expense

import (
	"fmt"
	"log"
	"strings"
	"time"

	"catering-backend/internal/audit"
	"catering-backend/internal/auth"
	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ExpenseCategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CreateExpenseCategoryRequest struct {
	Name string `json:"name"`
}

type UpdateExpenseCategoryRequest struct {
	Name *string `json:"name"`
}

type CreateExpenseRequest struct {
	Date        string  `json:"date"` // "2026-03-14"
	CategoryID  uint    `json:"category_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type ExpenseResponse struct {
	ID          uint    `json:"id"`
	CategoryID  uint    `json:"category_id"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type MonthlyExpenseSummaryItem struct {
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        float64 `json:"total"`
}

type MonthlyExpenseSummaryResponse struct {
	Year       int                         `json:"year"`
	Month      int                         `json:"month"`
	Items      []MonthlyExpenseSummaryItem `json:"items"`
	GrandTotal float64                     `json:"grand_total"`
}

func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Could not resolve user")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "User not found")
	}

	return userID, user.Name, nil
}

// -------------------------
// Expense Category CRUD
// -------------------------

// GET /api/expense-categories
func ListExpenseCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cats []models.ExpenseCategory
		if err := database.DB.Order("name asc").Find(&cats).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list categories")
		}

		res := make([]ExpenseCategoryResponse, 0, len(cats))
		for _, cat := range cats {
			res = append(res, ExpenseCategoryResponse{
				ID:   cat.ID,
				Name: cat.Name,
			})
		}
		return c.JSON(res)
	}
}

// POST /api/admin/expense-categories (admin)
func CreateExpenseCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		cat := models.ExpenseCategory{Name: body.Name}
		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create category")
		}

		return c.Status(fiber.StatusCreated).JSON(ExpenseCategoryResponse{
			ID:   cat.ID,
			Name: cat.Name,
		})
	}
}

// PUT /api/admin/expense-categories/:id
func UpdateExpenseCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cat models.ExpenseCategory
		if err := database.DB.First(&cat, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}

		var body UpdateExpenseCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			cat.Name = name
		}

		if err := database.DB.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update category")
		}

		return c.JSON(ExpenseCategoryResponse{
			ID:   cat.ID,
			Name: cat.Name,
		})
	}
}

// DELETE /api/admin/expense-categories/:id
func DeleteExpenseCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		if err := database.DB.Delete(&models.ExpenseCategory{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete category")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Expense CRUD
// -------------------------

// POST /api/expenses
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.CategoryID == 0 || body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "category_id and amount are required, amount must be > 0")
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Date format must be 'YYYY-MM-DD'")
		}

		var cat models.ExpenseCategory
		if err := database.DB.First(&cat, "id = ?", body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Category not found")
		}

		exp := models.Expense{
			CategoryID:  body.CategoryID,
			Date:        d,
			Amount:      body.Amount,
			Description: body.Description,
		}

		if err := database.DB.Create(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save expense")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			afterData := map[string]interface{}{
				"id":          exp.ID,
				"category_id": exp.CategoryID,
				"date":        exp.Date.Format("2006-01-02"),
				"amount":      exp.Amount,
				"description": exp.Description,
			}
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Expense added: %s - %.2f", cat.Name, exp.Amount),
				Before:      nil,
				After:       afterData,
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(ExpenseResponse{
			ID:          exp.ID,
			CategoryID:  exp.CategoryID,
			Category:    cat.Name,
			Date:        exp.Date.Format("2006-01-02"),
			Amount:      exp.Amount,
			Description: exp.Description,
		})
	}
}

// GET /api/expenses?from=...&to=...&category_id=...
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fromStr := c.Query("from")
		toStr := c.Query("to")
		catStr := c.Query("category_id")

		dbq := database.DB.Model(&models.Expense{}).Preload("Category")

		if fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from is invalid")
			}
			dbq = dbq.Where("date >= ?", from)
		}

		if toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to is invalid")
			}
			dbq = dbq.Where("date <= ?", to)
		}

		if catStr != "" {
			var cid uint
			if _, err := fmt.Sscan(catStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "category_id is invalid")
			}
			dbq = dbq.Where("category_id = ?", cid)
		}

		var rows []models.Expense
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list expenses")
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, ExpenseResponse{
				ID:          r.ID,
				CategoryID:  r.CategoryID,
				Category:    r.Category.Name,
				Date:        r.Date.Format("2006-01-02"),
				Amount:      r.Amount,
				Description: r.Description,
			})
		}

		return c.JSON(resp)
	}
}

// -------------------------
// Monthly expense summary
// GET /api/expenses/summary/monthly?year=2026&month=3
// -------------------------
func MonthlyExpenseSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		yearStr := c.Query("year")
		monthStr := c.Query("month")
		if yearStr == "" || monthStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "year and month are required")
		}

		var year, month int
		if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year is invalid")
		}
		if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month is invalid")
		}

		loc := time.Now().Location()
		firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		lastDay := firstDay.AddDate(0, 1, -1)

		type row struct {
			CategoryID uint    `gorm:"column:category_id"`
			Total      float64 `gorm:"column:total"`
		}
		var rows []row

		if err := database.DB.
			Model(&models.Expense{}).
			Select("category_id, SUM(amount) as total").
			Where("date >= ? AND date <= ?", firstDay, lastDay).
			Group("category_id").
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute summary")
		}

		ids := make([]uint, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.CategoryID)
		}

		var cats []models.ExpenseCategory
		if len(ids) > 0 {
			if err := database.DB.Where("id IN ?", ids).Find(&cats).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not load categories")
			}
		}

		catMap := make(map[uint]string)
		for _, ccat := range cats {
			catMap[ccat.ID] = ccat.Name
		}

		resp := MonthlyExpenseSummaryResponse{
			Year:       year,
			Month:      month,
			Items:      make([]MonthlyExpenseSummaryItem, 0, len(rows)),
			GrandTotal: 0,
		}

		for _, r := range rows {
			name := catMap[r.CategoryID]
			item := MonthlyExpenseSummaryItem{
				CategoryID:   r.CategoryID,
				CategoryName: name,
				Total:        r.Total,
			}
			resp.Items = append(resp.Items, item)
			resp.GrandTotal += r.Total
		}

		return c.JSON(resp)
	}
}
