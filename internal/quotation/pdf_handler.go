package quotation

import (
	"fmt"

	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func servePDF(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var q models.Quotation
	if err := database.DB.Preload("Items").First(&q, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
	}

	var company *models.CompanySettings
	var cs models.CompanySettings
	if err := database.DB.First(&cs).Error; err == nil {
		company = &cs
	}

	pdf, err := BuildPDF(&q, company)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not render PDF")
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", q.QuotationNumber))
	return c.Send(pdf)
}

// GET /api/quotations/:id/pdf
func QuotationPDFHandler() fiber.Handler {
	return servePDF
}

// GET /api/public/quotations/:id/pdf
func PublicQuotationPDFHandler() fiber.Handler {
	return servePDF
}
