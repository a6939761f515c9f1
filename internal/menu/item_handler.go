package menu

import (
	"fmt"
	"log"
	"strings"

	"catering-backend/internal/audit"
	"catering-backend/internal/auth"
	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MenuItemResponse struct {
	ID          uint    `json:"id"`
	CategoryID  uint    `json:"category_id"`
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	UnitPrice   float64 `json:"unit_price"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
	IsActive    bool    `json:"is_active"`
}

type SaveMenuItemRequest struct {
	CategoryID  uint    `json:"category_id"`
	Name        string  `json:"name"`
	UnitPrice   float64 `json:"unit_price"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func itemResponse(it *models.MenuItem, categoryName string) MenuItemResponse {
	return MenuItemResponse{
		ID:          it.ID,
		CategoryID:  it.CategoryID,
		Category:    categoryName,
		Name:        it.Name,
		UnitPrice:   it.UnitPrice,
		Unit:        it.Unit,
		Description: it.Description,
		IsActive:    it.IsActive,
	}
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

// GET /api/menu-items?category_id=...&active=1
func ListMenuItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.MenuItem{}).Preload("Category")

		if catStr := c.Query("category_id"); catStr != "" {
			var cid uint
			if _, err := fmt.Sscan(catStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "category_id is invalid")
			}
			dbq = dbq.Where("category_id = ?", cid)
		}
		if c.Query("active") == "1" {
			dbq = dbq.Where("is_active = ?", true)
		}

		var rows []models.MenuItem
		if err := dbq.Order("name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list menu items")
		}

		resp := make([]MenuItemResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, itemResponse(&rows[i], rows[i].Category.Name))
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/menu-items (admin)
func CreateMenuItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaveMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.CategoryID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Name and category_id are required")
		}
		if body.UnitPrice < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "unit_price must be >= 0")
		}

		var cat models.MenuCategory
		if err := database.DB.First(&cat, "id = ?", body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Category not found")
		}

		item := models.MenuItem{
			CategoryID:  body.CategoryID,
			Name:        body.Name,
			UnitPrice:   body.UnitPrice,
			Unit:        body.Unit,
			Description: body.Description,
			IsActive:    true,
		}
		if body.IsActive != nil {
			item.IsActive = *body.IsActive
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create menu item")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "menu_item",
				EntityID:    item.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Menu item added: %s (%.2f)", item.Name, item.UnitPrice),
				Before:      nil,
				After:       item,
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(itemResponse(&item, cat.Name))
	}
}

// PUT /api/admin/menu-items/:id
func UpdateMenuItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.MenuItem
		if err := database.DB.Preload("Category").First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Menu item not found")
		}

		var body SaveMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.CategoryID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Name and category_id are required")
		}
		if body.UnitPrice < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "unit_price must be >= 0")
		}

		var cat models.MenuCategory
		if err := database.DB.First(&cat, "id = ?", body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Category not found")
		}

		before := item

		item.CategoryID = body.CategoryID
		item.Name = body.Name
		item.UnitPrice = body.UnitPrice
		item.Unit = body.Unit
		item.Description = body.Description
		if body.IsActive != nil {
			item.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update menu item")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "menu_item",
				EntityID:    item.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Menu item updated: %s", item.Name),
				Before:      before,
				After:       item,
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		return c.JSON(itemResponse(&item, cat.Name))
	}
}

// DELETE /api/admin/menu-items/:id
func DeleteMenuItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.MenuItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Menu item not found")
		}

		if err := database.DB.Delete(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete menu item")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "menu_item",
				EntityID:    item.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Menu item deleted: %s", item.Name),
				Before:      nil,
				After:       item,
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
