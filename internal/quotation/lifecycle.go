package quotation

import (
	"errors"
	"fmt"
	"log"

	"catering-backend/internal/audit"
	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrAlreadyResolved guards the terminal states: once a quotation is accepted
// or rejected, no further transition is allowed.
var ErrAlreadyResolved = errors.New("quotation has already been accepted or rejected")

// applyAccept flips the status and creates the derived calendar event and
// expense tracker. It must run inside the caller's transaction so a failure
// in any step leaves no partial state behind.
func applyAccept(tx *gorm.DB, q *models.Quotation) error {
	if q.Status == models.QuotationAccepted || q.Status == models.QuotationRejected {
		return ErrAlreadyResolved
	}

	if err := tx.Model(&models.Quotation{}).Where("id = ?", q.ID).
		Update("status", models.QuotationAccepted).Error; err != nil {
		return err
	}
	q.Status = models.QuotationAccepted

	event := models.CalendarEvent{
		QuotationID: q.ID,
		ClientName:  q.ClientName,
		ClientPhone: q.ClientPhone,
		EventDate:   q.EventDate,
		EventType:   q.EventType,
		Venue:       q.Venue,
		GuestCount:  q.GuestCount,
		Revenue:     q.GrandTotal,
		Notes:       q.Notes,
	}
	if err := tx.Create(&event).Error; err != nil {
		return err
	}

	tracker := models.EventExpense{
		CalendarEventID:  event.ID,
		Revenue:          q.GrandTotal,
		TotalExpenses:    0,
		Profit:           q.GrandTotal,
		ProfitPercentage: 100,
	}
	return tx.Create(&tracker).Error
}

func applyReject(tx *gorm.DB, q *models.Quotation) error {
	if q.Status == models.QuotationAccepted || q.Status == models.QuotationRejected {
		return ErrAlreadyResolved
	}

	if err := tx.Model(&models.Quotation{}).Where("id = ?", q.ID).
		Update("status", models.QuotationRejected).Error; err != nil {
		return err
	}
	q.Status = models.QuotationRejected
	return nil
}

func writeTransitionLog(c *fiber.Ctx, q *models.Quotation, before models.QuotationStatus, desc string) {
	userID, userName, err := getUserInfo(c)
	if err != nil {
		return
	}
	if logErr := audit.WriteLog(audit.LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  "quotation",
		EntityID:    q.ID,
		Action:      models.AuditActionUpdate,
		Description: desc,
		Before:      fiber.Map{"status": before},
		After:       fiber.Map{"status": q.Status},
	}); logErr != nil {
		log.Printf("Could not write audit log: %v", logErr)
	}
}

// POST /api/quotations/:id/send
func SendQuotationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var q models.Quotation
		if err := database.DB.Preload("Items").First(&q, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
		}

		if q.Status != models.QuotationDraft {
			return fiber.NewError(fiber.StatusConflict, "Only a draft quotation can be sent")
		}

		before := q.Status
		if err := database.DB.Model(&models.Quotation{}).Where("id = ?", q.ID).
			Update("status", models.QuotationSent).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update quotation")
		}
		q.Status = models.QuotationSent

		writeTransitionLog(c, &q, before, fmt.Sprintf("Quotation sent: %s", q.QuotationNumber))
		return c.JSON(viewOf(&q, nil))
	}
}

// POST /api/quotations/:id/accept
func AcceptQuotationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var q models.Quotation
		if err := database.DB.Preload("Items").First(&q, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
		}

		before := q.Status
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			return applyAccept(tx, &q)
		})
		if errors.Is(err, ErrAlreadyResolved) {
			return fiber.NewError(fiber.StatusConflict, ErrAlreadyResolved.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not accept quotation")
		}

		writeTransitionLog(c, &q, before, fmt.Sprintf("Quotation accepted: %s (%.2f)", q.QuotationNumber, q.GrandTotal))
		return c.JSON(viewOf(&q, latestResponseFor(q.ID)))
	}
}

// POST /api/quotations/:id/reject
func RejectQuotationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var q models.Quotation
		if err := database.DB.Preload("Items").First(&q, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
		}

		before := q.Status
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			return applyReject(tx, &q)
		})
		if errors.Is(err, ErrAlreadyResolved) {
			return fiber.NewError(fiber.StatusConflict, ErrAlreadyResolved.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reject quotation")
		}

		writeTransitionLog(c, &q, before, fmt.Sprintf("Quotation rejected: %s", q.QuotationNumber))
		return c.JSON(viewOf(&q, latestResponseFor(q.ID)))
	}
}

type SetApprovalRequest struct {
	ApprovalStatus string `json:"approval_status"`
}

// PUT /api/quotations/:id/approval (admin)
// Moves the internal review axis: draft -> pending -> approved/revised.
func SetApprovalStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var q models.Quotation
		if err := database.DB.Preload("Items").First(&q, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
		}

		var body SetApprovalRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		next := models.ApprovalStatus(body.ApprovalStatus)
		switch next {
		case models.ApprovalDraft, models.ApprovalPending, models.ApprovalApproved, models.ApprovalRevised:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "approval_status is invalid")
		}

		if err := database.DB.Model(&models.Quotation{}).Where("id = ?", q.ID).
			Update("approval_status", next).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update quotation")
		}
		q.ApprovalStatus = next

		return c.JSON(viewOf(&q, nil))
	}
}
