package quotation

import (
	"fmt"
	"log"
	"strings"
	"time"

	"catering-backend/internal/audit"
	"catering-backend/internal/auth"
	"catering-backend/internal/database"
	"catering-backend/internal/models"
	"catering-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ItemPayload struct {
	ItemType  string  `json:"item_type"` // "menu_item" | "service"
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  float64 `json:"quantity"`
}

type SaveQuotationRequest struct {
	ClientID           *uint         `json:"client_id"`
	ClientName         string        `json:"client_name"`
	ClientPhone        string        `json:"client_phone"`
	ClientEmail        string        `json:"client_email"`
	EventDate          string        `json:"event_date"` // "2026-03-14"
	EventType          string        `json:"event_type"`
	Venue              string        `json:"venue"`
	GuestCount         int           `json:"guest_count"`
	DiscountPercentage float64       `json:"discount_percentage"`
	TaxPercentage      float64       `json:"tax_percentage"`
	ServiceCharges     float64       `json:"service_charges"`
	ExternalCharges    float64       `json:"external_charges"`
	AdvancePaid        float64       `json:"advance_paid"`
	Notes              string        `json:"notes"`
	Items              []ItemPayload `json:"items"`
}

type ItemView struct {
	ID        uint    `json:"id"`
	ItemType  string  `json:"item_type"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  float64 `json:"quantity"`
	Total     float64 `json:"total"`
}

type ResponseView struct {
	ID          uint   `json:"id"`
	Action      string `json:"action"`
	Message     string `json:"message"`
	RespondedAt string `json:"responded_at"`
}

type QuotationView struct {
	ID                 uint          `json:"id"`
	QuotationNumber    string        `json:"quotation_number"`
	ClientID           *uint         `json:"client_id"`
	ClientName         string        `json:"client_name"`
	ClientPhone        string        `json:"client_phone"`
	ClientEmail        string        `json:"client_email"`
	EventDate          string        `json:"event_date"`
	EventType          string        `json:"event_type"`
	Venue              string        `json:"venue"`
	GuestCount         int           `json:"guest_count"`
	Status             string        `json:"status"`
	ApprovalStatus     string        `json:"approval_status"`
	DiscountPercentage float64       `json:"discount_percentage"`
	TaxPercentage      float64       `json:"tax_percentage"`
	ServiceCharges     float64       `json:"service_charges"`
	ExternalCharges    float64       `json:"external_charges"`
	Subtotal           float64       `json:"subtotal"`
	DiscountAmount     float64       `json:"discount_amount"`
	TaxAmount          float64       `json:"tax_amount"`
	GrandTotal         float64       `json:"grand_total"`
	AdvancePaid        float64       `json:"advance_paid"`
	BalanceDue         float64       `json:"balance_due"`
	PaymentStatus      string        `json:"payment_status"`
	Notes              string        `json:"notes"`
	Items              []ItemView    `json:"items"`
	LatestResponse     *ResponseView `json:"latest_response,omitempty"`
	CreatedAt          string        `json:"created_at"`
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

func parseIDParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id is invalid")
	}
	return id, nil
}

// buildItems validates the payload and returns item rows with computed totals.
func buildItems(payload []ItemPayload) ([]models.QuotationItem, error) {
	if len(payload) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "At least one line item is required")
	}

	items := make([]models.QuotationItem, 0, len(payload))
	for i, p := range payload {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Item %d: name is required", i+1))
		}
		if p.UnitPrice < 0 || p.Quantity < 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Item %d: unit_price and quantity must be >= 0", i+1))
		}
		itemType := models.ItemType(p.ItemType)
		if itemType == "" {
			itemType = models.ItemTypeMenu
		}
		if itemType != models.ItemTypeMenu && itemType != models.ItemTypeService {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Item %d: item_type must be 'menu_item' or 'service'", i+1))
		}
		items = append(items, models.QuotationItem{
			ItemType:  itemType,
			Name:      name,
			UnitPrice: p.UnitPrice,
			Quantity:  p.Quantity,
			Total:     pricing.LineTotal(p.UnitPrice, p.Quantity),
		})
	}
	return items, nil
}

// applyPricing recomputes every derived monetary field from the quotation's
// items and scalar inputs. Client-sent totals are never trusted.
func applyPricing(q *models.Quotation) {
	items := make([]pricing.Item, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, pricing.Item{UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}
	t := pricing.Compute(items, pricing.Inputs{
		DiscountPercentage: q.DiscountPercentage,
		TaxPercentage:      q.TaxPercentage,
		ServiceCharges:     q.ServiceCharges,
		ExternalCharges:    q.ExternalCharges,
		AdvancePaid:        q.AdvancePaid,
	})
	q.Subtotal = t.Subtotal
	q.DiscountAmount = t.DiscountAmount
	q.TaxAmount = t.TaxAmount
	q.GrandTotal = t.GrandTotal
	q.BalanceDue = t.BalanceDue
	q.PaymentStatus = pricing.PaymentStatus(q.AdvancePaid, q.GrandTotal)
}

func viewOf(q *models.Quotation, latest *models.QuotationResponse) QuotationView {
	v := QuotationView{
		ID:                 q.ID,
		QuotationNumber:    q.QuotationNumber,
		ClientID:           q.ClientID,
		ClientName:         q.ClientName,
		ClientPhone:        q.ClientPhone,
		ClientEmail:        q.ClientEmail,
		EventDate:          q.EventDate.Format("2006-01-02"),
		EventType:          q.EventType,
		Venue:              q.Venue,
		GuestCount:         q.GuestCount,
		Status:             string(q.Status),
		ApprovalStatus:     string(q.ApprovalStatus),
		DiscountPercentage: q.DiscountPercentage,
		TaxPercentage:      q.TaxPercentage,
		ServiceCharges:     q.ServiceCharges,
		ExternalCharges:    q.ExternalCharges,
		Subtotal:           q.Subtotal,
		DiscountAmount:     q.DiscountAmount,
		TaxAmount:          q.TaxAmount,
		GrandTotal:         q.GrandTotal,
		AdvancePaid:        q.AdvancePaid,
		BalanceDue:         q.BalanceDue,
		PaymentStatus:      q.PaymentStatus,
		Notes:              q.Notes,
		Items:              make([]ItemView, 0, len(q.Items)),
		CreatedAt:          q.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for _, it := range q.Items {
		v.Items = append(v.Items, ItemView{
			ID:        it.ID,
			ItemType:  string(it.ItemType),
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Total:     it.Total,
		})
	}
	if latest != nil {
		v.LatestResponse = &ResponseView{
			ID:          latest.ID,
			Action:      latest.Action,
			Message:     latest.Message,
			RespondedAt: latest.RespondedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return v
}

func latestResponseFor(quotationID uint) *models.QuotationResponse {
	var resp models.QuotationResponse
	err := database.DB.
		Where("quotation_id = ?", quotationID).
		Order("created_at desc, id desc").
		First(&resp).Error
	if err != nil {
		return nil
	}
	return &resp
}

// POST /api/quotations
func CreateQuotationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaveQuotationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.ClientName = strings.TrimSpace(body.ClientName)
		if body.ClientName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "client_name is required")
		}
		if body.DiscountPercentage < 0 || body.TaxPercentage < 0 || body.ServiceCharges < 0 ||
			body.ExternalCharges < 0 || body.AdvancePaid < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Pricing inputs must be >= 0")
		}

		eventDate, err := time.Parse("2006-01-02", body.EventDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "event_date must be 'YYYY-MM-DD'")
		}

		items, err := buildItems(body.Items)
		if err != nil {
			return err
		}

		if body.ClientID != nil {
			var client models.Client
			if err := database.DB.First(&client, "id = ?", *body.ClientID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Client not found")
			}
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		q := models.Quotation{
			ClientID:           body.ClientID,
			ClientName:         body.ClientName,
			ClientPhone:        body.ClientPhone,
			ClientEmail:        body.ClientEmail,
			EventDate:          eventDate,
			EventType:          body.EventType,
			Venue:              body.Venue,
			GuestCount:         body.GuestCount,
			Status:             models.QuotationDraft,
			ApprovalStatus:     models.ApprovalDraft,
			DiscountPercentage: body.DiscountPercentage,
			TaxPercentage:      body.TaxPercentage,
			ServiceCharges:     body.ServiceCharges,
			ExternalCharges:    body.ExternalCharges,
			AdvancePaid:        body.AdvancePaid,
			Notes:              body.Notes,
			Items:              items,
			CreatedBy:          userID,
		}
		applyPricing(&q)

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&q).Error; err != nil {
				return err
			}
			q.QuotationNumber = fmt.Sprintf("QT-%d-%05d", time.Now().Year(), q.ID)
			return tx.Model(&models.Quotation{}).Where("id = ?", q.ID).
				Update("quotation_number", q.QuotationNumber).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create quotation")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "quotation",
			EntityID:    q.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Quotation created: %s for %s (%.2f)", q.QuotationNumber, q.ClientName, q.GrandTotal),
			Before:      nil,
			After:       fiber.Map{"id": q.ID, "grand_total": q.GrandTotal, "status": q.Status},
		}); logErr != nil {
			log.Printf("Could not write audit log: %v", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(viewOf(&q, nil))
	}
}

// PUT /api/quotations/:id
// Line items are replaced wholesale; all derived totals are recomputed.
func UpdateQuotationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var q models.Quotation
		if err := database.DB.Preload("Items").First(&q, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
		}

		var body SaveQuotationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.ClientName = strings.TrimSpace(body.ClientName)
		if body.ClientName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "client_name is required")
		}
		if body.DiscountPercentage < 0 || body.TaxPercentage < 0 || body.ServiceCharges < 0 ||
			body.ExternalCharges < 0 || body.AdvancePaid < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Pricing inputs must be >= 0")
		}

		eventDate, err := time.Parse("2006-01-02", body.EventDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "event_date must be 'YYYY-MM-DD'")
		}

		items, err := buildItems(body.Items)
		if err != nil {
			return err
		}

		before := fiber.Map{"grand_total": q.GrandTotal, "status": q.Status, "client_name": q.ClientName}

		q.ClientID = body.ClientID
		q.ClientName = body.ClientName
		q.ClientPhone = body.ClientPhone
		q.ClientEmail = body.ClientEmail
		q.EventDate = eventDate
		q.EventType = body.EventType
		q.Venue = body.Venue
		q.GuestCount = body.GuestCount
		q.DiscountPercentage = body.DiscountPercentage
		q.TaxPercentage = body.TaxPercentage
		q.ServiceCharges = body.ServiceCharges
		q.ExternalCharges = body.ExternalCharges
		q.AdvancePaid = body.AdvancePaid
		q.Notes = body.Notes
		q.Items = items
		applyPricing(&q)

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("quotation_id = ?", q.ID).Delete(&models.QuotationItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].QuotationID = q.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			return tx.Model(&models.Quotation{}).Where("id = ?", q.ID).Updates(map[string]interface{}{
				"client_id":           q.ClientID,
				"client_name":         q.ClientName,
				"client_phone":        q.ClientPhone,
				"client_email":        q.ClientEmail,
				"event_date":          q.EventDate,
				"event_type":          q.EventType,
				"venue":               q.Venue,
				"guest_count":         q.GuestCount,
				"discount_percentage": q.DiscountPercentage,
				"tax_percentage":      q.TaxPercentage,
				"service_charges":     q.ServiceCharges,
				"external_charges":    q.ExternalCharges,
				"advance_paid":        q.AdvancePaid,
				"subtotal":            q.Subtotal,
				"discount_amount":     q.DiscountAmount,
				"tax_amount":          q.TaxAmount,
				"grand_total":         q.GrandTotal,
				"balance_due":         q.BalanceDue,
				"payment_status":      q.PaymentStatus,
				"notes":               q.Notes,
			}).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update quotation")
		}

		userID, userName, uerr := getUserInfo(c)
		if uerr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "quotation",
				EntityID:    q.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Quotation updated: %s (%.2f)", q.QuotationNumber, q.GrandTotal),
				Before:      before,
				After:       fiber.Map{"grand_total": q.GrandTotal, "status": q.Status, "client_name": q.ClientName},
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		q.Items = items
		return c.JSON(viewOf(&q, latestResponseFor(q.ID)))
	}
}

// GET /api/quotations?status=...&from=...&to=...
func ListQuotationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Quotation{}).Preload("Items")

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from is invalid")
			}
			dbq = dbq.Where("event_date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to is invalid")
			}
			dbq = dbq.Where("event_date <= ?", to)
		}

		var rows []models.Quotation
		if err := dbq.Order("event_date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list quotations")
		}

		resp := make([]QuotationView, 0, len(rows))
		for i := range rows {
			resp = append(resp, viewOf(&rows[i], nil))
		}
		return c.JSON(resp)
	}
}

// GET /api/quotations/:id
func GetQuotationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var q models.Quotation
		if err := database.DB.Preload("Items").First(&q, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
		}

		return c.JSON(viewOf(&q, latestResponseFor(q.ID)))
	}
}

// DELETE /api/quotations/:id (admin)
// Explicit delete only; removes owned items, responses and derived records.
func DeleteQuotationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var q models.Quotation
		if err := database.DB.First(&q, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Quotation not found")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var ev models.CalendarEvent
			if err := tx.First(&ev, "quotation_id = ?", q.ID).Error; err == nil {
				var ee models.EventExpense
				if err := tx.First(&ee, "calendar_event_id = ?", ev.ID).Error; err == nil {
					if err := tx.Where("event_expense_id = ?", ee.ID).Delete(&models.EventExpenseItem{}).Error; err != nil {
						return err
					}
					if err := tx.Delete(&ee).Error; err != nil {
						return err
					}
				}
				if err := tx.Delete(&ev).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("quotation_id = ?", q.ID).Delete(&models.Payment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quotation_id = ?", q.ID).Delete(&models.QuotationResponse{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quotation_id = ?", q.ID).Delete(&models.QuotationItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&q).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete quotation")
		}

		userID, userName, uerr := getUserInfo(c)
		if uerr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "quotation",
				EntityID:    q.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Quotation deleted: %s (%s)", q.QuotationNumber, q.ClientName),
				Before:      fiber.Map{"grand_total": q.GrandTotal, "status": q.Status},
				After:       nil,
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
