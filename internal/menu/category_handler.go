package menu

import (
	"strings"

	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CategoryResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type SaveCategoryRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// GET /api/menu-categories
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cats []models.MenuCategory
		if err := database.DB.Order("sort_order asc, name asc").Find(&cats).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list categories")
		}

		resp := make([]CategoryResponse, 0, len(cats))
		for _, cat := range cats {
			resp = append(resp, CategoryResponse{ID: cat.ID, Name: cat.Name, SortOrder: cat.SortOrder})
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/menu-categories (admin)
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaveCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		cat := models.MenuCategory{Name: body.Name, SortOrder: body.SortOrder}
		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create category")
		}

		return c.Status(fiber.StatusCreated).JSON(CategoryResponse{ID: cat.ID, Name: cat.Name, SortOrder: cat.SortOrder})
	}
}

// PUT /api/admin/menu-categories/:id
func UpdateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cat models.MenuCategory
		if err := database.DB.First(&cat, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}

		var body SaveCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		cat.Name = body.Name
		cat.SortOrder = body.SortOrder

		if err := database.DB.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update category")
		}

		return c.JSON(CategoryResponse{ID: cat.ID, Name: cat.Name, SortOrder: cat.SortOrder})
	}
}

// DELETE /api/admin/menu-categories/:id
func DeleteCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var count int64
		database.DB.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Category still has menu items")
		}

		if err := database.DB.Delete(&models.MenuCategory{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete category")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
