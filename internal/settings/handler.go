package settings

import (
	"strings"

	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SaveSettingsRequest struct {
	Name                 string  `json:"name"`
	Phone                string  `json:"phone"`
	Email                string  `json:"email"`
	Address              string  `json:"address"`
	TaxID                string  `json:"tax_id"`
	DefaultTaxPercentage float64 `json:"default_tax_percentage"`
	CurrencySymbol       string  `json:"currency_symbol"`
}

type SettingsResponse struct {
	ID                   uint    `json:"id"`
	Name                 string  `json:"name"`
	Phone                string  `json:"phone"`
	Email                string  `json:"email"`
	Address              string  `json:"address"`
	TaxID                string  `json:"tax_id"`
	DefaultTaxPercentage float64 `json:"default_tax_percentage"`
	CurrencySymbol       string  `json:"currency_symbol"`
}

func toResponse(cs *models.CompanySettings) SettingsResponse {
	return SettingsResponse{
		ID:                   cs.ID,
		Name:                 cs.Name,
		Phone:                cs.Phone,
		Email:                cs.Email,
		Address:              cs.Address,
		TaxID:                cs.TaxID,
		DefaultTaxPercentage: cs.DefaultTaxPercentage,
		CurrencySymbol:       cs.CurrencySymbol,
	}
}

// GET /api/settings
func GetSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cs models.CompanySettings
		if err := database.DB.First(&cs).Error; err != nil {
			// single-row table; create the default row lazily
			cs = models.CompanySettings{Name: "My Catering", CurrencySymbol: "₹"}
			if err := database.DB.Create(&cs).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not load settings")
			}
		}
		return c.JSON(toResponse(&cs))
	}
}

// PUT /api/settings (admin)
func UpdateSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaveSettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}
		if body.DefaultTaxPercentage < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "default_tax_percentage must be >= 0")
		}

		var cs models.CompanySettings
		if err := database.DB.First(&cs).Error; err != nil {
			cs = models.CompanySettings{}
		}

		cs.Name = body.Name
		cs.Phone = body.Phone
		cs.Email = body.Email
		cs.Address = body.Address
		cs.TaxID = body.TaxID
		cs.DefaultTaxPercentage = body.DefaultTaxPercentage
		if body.CurrencySymbol != "" {
			cs.CurrencySymbol = body.CurrencySymbol
		}

		if err := database.DB.Save(&cs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save settings")
		}

		return c.JSON(toResponse(&cs))
	}
}
