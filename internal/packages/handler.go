package packages

import (
	"fmt"
	"strings"

	"catering-backend/internal/database"
	"catering-backend/internal/models"
	"catering-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ItemPayload struct {
	ItemType  string  `json:"item_type"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  float64 `json:"quantity"`
}

type SavePackageRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Items       []ItemPayload `json:"items"`
}

type ItemView struct {
	ID        uint    `json:"id"`
	ItemType  string  `json:"item_type"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  float64 `json:"quantity"`
	Total     float64 `json:"total"`
}

type PackageView struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Total       float64    `json:"total"`
	Items       []ItemView `json:"items"`
}

func viewOf(p *models.Package) PackageView {
	v := PackageView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Total:       p.Total,
		Items:       make([]ItemView, 0, len(p.Items)),
	}
	for _, it := range p.Items {
		v.Items = append(v.Items, ItemView{
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

func buildItems(payloads []ItemPayload) ([]models.PackageItem, float64, error) {
	items := make([]models.PackageItem, 0, len(payloads))
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
		items = append(items, models.PackageItem{
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

// GET /api/packages
func ListPackagesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Package
		if err := database.DB.Preload("Items").Order("name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list packages")
		}

		resp := make([]PackageView, 0, len(rows))
		for i := range rows {
			resp = append(resp, viewOf(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/packages/:id
func GetPackageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Package
		if err := database.DB.Preload("Items").First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Package not found")
		}
		return c.JSON(viewOf(&p))
	}
}

// POST /api/packages
func CreatePackageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SavePackageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		items, total, err := buildItems(body.Items)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		p := models.Package{
			Name:        body.Name,
			Description: body.Description,
			Total:       total,
			Items:       items,
		}
		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create package")
		}

		return c.Status(fiber.StatusCreated).JSON(viewOf(&p))
	}
}

// PUT /api/packages/:id
// Items are replaced wholesale with the submitted set.
func UpdatePackageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Package
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Package not found")
		}

		var body SavePackageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		items, total, err := buildItems(body.Items)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("package_id = ?", p.ID).Delete(&models.PackageItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].PackageID = p.ID
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			return tx.Model(&p).Updates(map[string]interface{}{
				"name":        body.Name,
				"description": body.Description,
				"total":       total,
			}).Error
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update package")
		}

		if err := database.DB.Preload("Items").First(&p, "id = ?", p.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reload package")
		}
		return c.JSON(viewOf(&p))
	}
}

// DELETE /api/packages/:id (admin)
func DeletePackageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Package
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Package not found")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("package_id = ?", p.ID).Delete(&models.PackageItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&p).Error
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete package")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
