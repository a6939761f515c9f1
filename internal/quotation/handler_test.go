package quotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"catering-backend/internal/auth"
	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp opens a unique in-memory database, points the package-level handle
// at it, seeds an admin user and wires the quotation routes behind a stub
// auth middleware.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db

	user := models.User{Name: "Test Admin", Email: "admin@test", PasswordHash: "x", Role: models.RoleAdmin}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	api := app.Group("/api")
	api.Get("/public/quotations/:id", PublicGetQuotationHandler())
	api.Post("/public/quotations/:id/respond", PublicRespondHandler())

	api.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		return c.Next()
	})
	api.Get("/quotations", ListQuotationsHandler())
	api.Get("/quotations/:id", GetQuotationHandler())
	api.Post("/quotations", CreateQuotationHandler())
	api.Put("/quotations/:id", UpdateQuotationHandler())
	api.Delete("/quotations/:id", DeleteQuotationHandler())
	api.Post("/quotations/:id/send", SendQuotationHandler())
	api.Post("/quotations/:id/accept", AcceptQuotationHandler())
	api.Post("/quotations/:id/reject", RejectQuotationHandler())
	api.Put("/quotations/:id/approval", SetApprovalStatusHandler())

	return app
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeView(t *testing.T, resp *http.Response) QuotationView {
	t.Helper()
	var v QuotationView
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func sampleRequest() SaveQuotationRequest {
	return SaveQuotationRequest{
		ClientName:         "Asha Nair",
		ClientPhone:        "9876500000",
		EventDate:          "2026-11-20",
		EventType:          "Wedding",
		Venue:              "Lakeside Hall",
		GuestCount:         100,
		DiscountPercentage: 10,
		TaxPercentage:      18,
		ServiceCharges:     2000,
		AdvancePaid:        20000,
		Items: []ItemPayload{
			{ItemType: "service", Name: "Venue decoration", UnitPrice: 10000, Quantity: 1},
			{ItemType: "menu_item", Name: "Dinner plate", UnitPrice: 500, Quantity: 100},
		},
	}
}

func TestCreateQuotationComputesTotals(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/quotations", sampleRequest()), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.StatusCode)
	}

	v := decodeView(t, resp)
	if v.Subtotal != 60000 {
		t.Fatalf("subtotal: expected 60000 got %v", v.Subtotal)
	}
	if v.DiscountAmount != 6000 {
		t.Fatalf("discount: expected 6000 got %v", v.DiscountAmount)
	}
	if v.TaxAmount != 10080 {
		t.Fatalf("tax: expected 10080 got %v", v.TaxAmount)
	}
	if v.GrandTotal != 66080 {
		t.Fatalf("grand total: expected 66080 got %v", v.GrandTotal)
	}
	if v.BalanceDue != 46080 {
		t.Fatalf("balance: expected 46080 got %v", v.BalanceDue)
	}
	if v.PaymentStatus != "partial" {
		t.Fatalf("payment status: expected partial got %s", v.PaymentStatus)
	}
	if v.Status != "draft" {
		t.Fatalf("status: expected draft got %s", v.Status)
	}
	if v.QuotationNumber == "" {
		t.Fatal("expected a quotation number")
	}
	if len(v.Items) != 2 {
		t.Fatalf("expected 2 items got %d", len(v.Items))
	}
}

func TestQuotationTotalsSurviveReload(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/quotations", sampleRequest()), -1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	saved := decodeView(t, resp)

	// The stored row, re-read through the API, must reproduce the figures
	// returned at save time.
	resp, err = app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/quotations/%d", saved.ID), nil), -1)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	reloaded := decodeView(t, resp)
	if reloaded.Subtotal != saved.Subtotal {
		t.Errorf("subtotal drifted: saved %v reloaded %v", saved.Subtotal, reloaded.Subtotal)
	}
	if reloaded.DiscountAmount != saved.DiscountAmount {
		t.Errorf("discount drifted: saved %v reloaded %v", saved.DiscountAmount, reloaded.DiscountAmount)
	}
	if reloaded.TaxAmount != saved.TaxAmount {
		t.Errorf("tax drifted: saved %v reloaded %v", saved.TaxAmount, reloaded.TaxAmount)
	}
	if reloaded.GrandTotal != saved.GrandTotal {
		t.Errorf("grand total drifted: saved %v reloaded %v", saved.GrandTotal, reloaded.GrandTotal)
	}
	if reloaded.BalanceDue != saved.BalanceDue {
		t.Errorf("balance drifted: saved %v reloaded %v", saved.BalanceDue, reloaded.BalanceDue)
	}
	if reloaded.PaymentStatus != saved.PaymentStatus {
		t.Errorf("payment status drifted: saved %s reloaded %s", saved.PaymentStatus, reloaded.PaymentStatus)
	}
	if len(reloaded.Items) != len(saved.Items) {
		t.Fatalf("item count drifted: saved %d reloaded %d", len(saved.Items), len(reloaded.Items))
	}
	for i := range reloaded.Items {
		if reloaded.Items[i].Total != saved.Items[i].Total {
			t.Errorf("item %d total drifted: saved %v reloaded %v", i, saved.Items[i].Total, reloaded.Items[i].Total)
		}
	}
}

func TestCreateQuotationRejectsEmptyItems(t *testing.T) {
	app := setupApp(t)

	body := sampleRequest()
	body.Items = nil
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/quotations", body), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.StatusCode)
	}
}

func TestCreateQuotationRejectsNegativeInputs(t *testing.T) {
	app := setupApp(t)

	body := sampleRequest()
	body.DiscountPercentage = -5
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/quotations", body), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.StatusCode)
	}
}

func TestUpdateQuotationReplacesItems(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/quotations", sampleRequest()), -1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created := decodeView(t, resp)

	update := sampleRequest()
	update.Items = []ItemPayload{
		{ItemType: "menu_item", Name: "Lunch plate", UnitPrice: 300, Quantity: 50},
	}
	update.DiscountPercentage = 0
	update.TaxPercentage = 0
	update.ServiceCharges = 0
	update.AdvancePaid = 0

	resp, err = app.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/api/quotations/%d", created.ID), update), -1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	v := decodeView(t, resp)
	if len(v.Items) != 1 {
		t.Fatalf("expected 1 item after replace, got %d", len(v.Items))
	}
	if v.GrandTotal != 15000 {
		t.Fatalf("expected grand total 15000 got %v", v.GrandTotal)
	}
	if v.PaymentStatus != "pending" {
		t.Fatalf("expected pending got %s", v.PaymentStatus)
	}

	// Old item rows must be gone from the table, not just the response.
	var count int64
	database.DB.Model(&models.QuotationItem{}).Where("quotation_id = ?", created.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 stored item row got %d", count)
	}
}

func TestQuotationListStatusFilter(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/quotations", sampleRequest()), -1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created := decodeView(t, resp)

	if _, err := app.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/api/quotations/%d/send", created.ID), nil), -1); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := app.Test(jsonRequest(http.MethodPost, "/api/quotations", sampleRequest()), -1); err != nil {
		t.Fatalf("second create: %v", err)
	}

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/quotations?status=sent", nil), -1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list []QuotationView
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("expected only the sent quotation, got %d rows", len(list))
	}
}

func TestDeleteQuotationRemovesDerivedRecords(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/quotations", sampleRequest()), -1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created := decodeView(t, resp)

	if _, err := app.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/api/quotations/%d/accept", created.ID), nil), -1); err != nil {
		t.Fatalf("accept: %v", err)
	}

	resp, err = app.Test(jsonRequest(http.MethodDelete, fmt.Sprintf("/api/quotations/%d", created.ID), nil), -1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.StatusCode)
	}

	var events, expenses, items int64
	database.DB.Model(&models.CalendarEvent{}).Where("quotation_id = ?", created.ID).Count(&events)
	database.DB.Model(&models.EventExpense{}).Count(&expenses)
	database.DB.Model(&models.QuotationItem{}).Where("quotation_id = ?", created.ID).Count(&items)
	if events != 0 || expenses != 0 || items != 0 {
		t.Fatalf("expected derived records gone, got events=%d expenses=%d items=%d", events, expenses, items)
	}
}
