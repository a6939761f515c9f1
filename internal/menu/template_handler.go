package menu

import (
	"fmt"
	"strings"

	"catering-backend/internal/database"
	"catering-backend/internal/models"
	"catering-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TemplateItemPayload struct {
	ItemType  string  `json:"item_type"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  float64 `json:"quantity"`
}

type SaveTemplateRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Items       []TemplateItemPayload `json:"items"`
}

type TemplateItemView struct {
	ID        uint    `json:"id"`
	ItemType  string  `json:"item_type"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  float64 `json:"quantity"`
	Total     float64 `json:"total"`
}

type TemplateView struct {
	ID          uint               `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Total       float64            `json:"total"`
	Items       []TemplateItemView `json:"items"`
}

func templateView(t *models.MenuTemplate) TemplateView {
	v := TemplateView{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Total:       t.Total,
		Items:       make([]TemplateItemView, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		v.Items = append(v.Items, TemplateItemView{
			ID:        it.ID,
			ItemType:  string(it.ItemType),
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Total:     it.Total,
		})
	}
	return v
}

func buildTemplateItems(payloads []TemplateItemPayload) ([]models.MenuTemplateItem, float64, error) {
	items := make([]models.MenuTemplateItem, 0, len(payloads))
	var total float64
	for i, p := range payloads {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, 0, fmt.Errorf("item %d: name is required", i+1)
		}
		if p.UnitPrice < 0 || p.Quantity < 0 {
			return nil, 0, fmt.Errorf("item %d: unit_price and quantity must be >= 0", i+1)
		}
		itemType := models.ItemType(p.ItemType)
		if itemType == "" {
			itemType = models.ItemTypeMenu
		}
		if itemType != models.ItemTypeMenu && itemType != models.ItemTypeService {
			return nil, 0, fmt.Errorf("item %d: item_type is invalid", i+1)
		}
		lineTotal := pricing.LineTotal(p.UnitPrice, p.Quantity)
		items = append(items, models.MenuTemplateItem{
			ItemType:  itemType,
			Name:      name,
			UnitPrice: p.UnitPrice,
			Quantity:  p.Quantity,
			Total:     lineTotal,
		})
		total = pricing.Round2(total + lineTotal)
	}
	return items, total, nil
}

// GET /api/menu-templates
func ListTemplatesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.MenuTemplate
		if err := database.DB.Preload("Items").Order("name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list templates")
		}

		resp := make([]TemplateView, 0, len(rows))
		for i := range rows {
			resp = append(resp, templateView(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/menu-templates/:id
func GetTemplateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var t models.MenuTemplate
		if err := database.DB.Preload("Items").First(&t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Template not found")
		}
		return c.JSON(templateView(&t))
	}
}

// POST /api/menu-templates
func CreateTemplateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaveTemplateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		items, total, err := buildTemplateItems(body.Items)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		t := models.MenuTemplate{
			Name:        body.Name,
			Description: body.Description,
			Total:       total,
			Items:       items,
		}
		if err := database.DB.Create(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create template")
		}

		return c.Status(fiber.StatusCreated).JSON(templateView(&t))
	}
}

// PUT /api/menu-templates/:id
// Items are replaced wholesale with the submitted set.
func UpdateTemplateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var t models.MenuTemplate
		if err := database.DB.First(&t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Template not found")
		}

		var body SaveTemplateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		items, total, err := buildTemplateItems(body.Items)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("menu_template_id = ?", t.ID).Delete(&models.MenuTemplateItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].MenuTemplateID = t.ID
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			return tx.Model(&t).Updates(map[string]interface{}{
				"name":        body.Name,
				"description": body.Description,
				"total":       total,
			}).Error
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update template")
		}

		if err := database.DB.Preload("Items").First(&t, "id = ?", t.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reload template")
		}
		return c.JSON(templateView(&t))
	}
}

// DELETE /api/menu-templates/:id (admin)
func DeleteTemplateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var t models.MenuTemplate
		if err := database.DB.First(&t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Template not found")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("menu_template_id = ?", t.ID).Delete(&models.MenuTemplateItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&t).Error
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete template")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
