package payment

import (
	"fmt"
	"log"
	"time"

	"catering-backend/internal/audit"
	"catering-backend/internal/auth"
	"catering-backend/internal/database"
	"catering-backend/internal/models"
	"catering-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreatePaymentRequest struct {
	QuotationID uint    `json:"quotation_id"`
	Amount      float64 `json:"amount"`
	Method      string  `json:"method"`
	Date        string  `json:"date"` // "2026-03-14"
	Notes       string  `json:"notes"`
}

type PaymentResponse struct {
	ID          uint    `json:"id"`
	QuotationID uint    `json:"quotation_id"`
	Amount      float64 `json:"amount"`
	Method      string  `json:"method"`
	Date        string  `json:"date"`
	Notes       string  `json:"notes"`
}

func toResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		QuotationID: p.QuotationID,
		Amount:      p.Amount,
		Method:      p.Method,
		Date:        p.Date.Format("2006-01-02"),
		Notes:       p.Notes,
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

// rollUp recomputes the quotation's advance, balance and payment status from
// the sum of its recorded payments. Must run inside the same transaction as
// the payment mutation.
func rollUp(tx *gorm.DB, quotationID uint) error {
	var q models.Quotation
	if err := tx.First(&q, "id = ?", quotationID).Error; err != nil {
		return err
	}

	var paid float64
	if err := tx.Model(&models.Payment{}).
		Where("quotation_id = ?", quotationID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error; err != nil {
		return err
	}

	advance := pricing.Round2(paid)
	balance := pricing.Round2(q.GrandTotal - advance)

	return tx.Model(&q).Updates(map[string]interface{}{
		"advance_paid":   advance,
		"balance_due":    balance,
		"payment_status": pricing.PaymentStatus(advance, q.GrandTotal),
	}).Error
}

// POST /api/payments
func CreatePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.QuotationID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quotation_id is required")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be > 0")
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Date format must be 'YYYY-MM-DD'")
		}

		var q models.Quotation
		if err := database.DB.First(&q, "id = ?", body.QuotationID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
		}

		p := models.Payment{
			QuotationID: body.QuotationID,
			Amount:      body.Amount,
			Method:      body.Method,
			Date:        d,
			Notes:       body.Notes,
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			return rollUp(tx, body.QuotationID)
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save payment")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "payment",
				EntityID:    p.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Payment recorded: %.2f for %s", p.Amount, q.QuotationNumber),
				Before:      nil,
				After:       p,
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&p))
	}
}

// GET /api/payments?quotation_id=...
func ListPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Payment{})

		if qStr := c.Query("quotation_id"); qStr != "" {
			var qid uint
			if _, err := fmt.Sscan(qStr, &qid); err != nil || qid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "quotation_id is invalid")
			}
			dbq = dbq.Where("quotation_id = ?", qid)
		}

		var rows []models.Payment
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list payments")
		}

		resp := make([]PaymentResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/payments/:id (admin)
func DeletePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Payment
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&p).Error; err != nil {
				return err
			}
			return rollUp(tx, p.QuotationID)
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete payment")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "payment",
				EntityID:    p.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Payment deleted: %.2f", p.Amount),
				Before:      nil,
				After:       p,
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
