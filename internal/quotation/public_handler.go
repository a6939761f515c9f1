package quotation

import (
	"errors"
	"strings"
	"time"

	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// The public surface is unauthenticated; the quotation id in the shared link
// acts as the capability token.

type ClientResponseRequest struct {
	Action  string `json:"action"` // "accept" | "reject"
	Message string `json:"message"`
}

// GET /api/public/quotations/:id
func PublicGetQuotationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var q models.Quotation
		if err := database.DB.Preload("Items").First(&q, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
		}

		view := viewOf(&q, latestResponseFor(q.ID))

		var company models.CompanySettings
		if err := database.DB.First(&company).Error; err == nil {
			return c.JSON(fiber.Map{
				"quotation": view,
				"company": fiber.Map{
					"name":    company.Name,
					"phone":   company.Phone,
					"email":   company.Email,
					"address": company.Address,
				},
			})
		}

		return c.JSON(fiber.Map{"quotation": view})
	}
}

// POST /api/public/quotations/:id/respond
// Appends an immutable response row and flips the quotation status in the
// same transaction. Accepting triggers the same derived-record side effects
// as an admin accept. Terminal quotations take no further responses.
func PublicRespondHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var q models.Quotation
		if err := database.DB.Preload("Items").First(&q, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
		}

		var body ClientResponseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		action := strings.TrimSpace(strings.ToLower(body.Action))
		if action != "accept" && action != "reject" {
			return fiber.NewError(fiber.StatusBadRequest, "action must be 'accept' or 'reject'")
		}

		if q.Status == models.QuotationAccepted || q.Status == models.QuotationRejected {
			return fiber.NewError(fiber.StatusConflict, "This quotation has already been responded to")
		}

		response := models.QuotationResponse{
			QuotationID: q.ID,
			Action:      action,
			Message:     body.Message,
			RespondedAt: time.Now(),
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&response).Error; err != nil {
				return err
			}
			if action == "accept" {
				return applyAccept(tx, &q)
			}
			return applyReject(tx, &q)
		})
		if errors.Is(err, ErrAlreadyResolved) {
			return fiber.NewError(fiber.StatusConflict, "This quotation has already been responded to")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record response")
		}

		return c.Status(fiber.StatusCreated).JSON(viewOf(&q, &response))
	}
}
