package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

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

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/api/calendar-events", ListCalendarEventsHandler())
	app.Get("/api/calendar-events/:id", GetCalendarEventHandler())
	app.Get("/api/calendar-events/:id/expense", GetExpenseByEventHandler())
	app.Get("/api/event-expenses/:id", GetEventExpenseHandler())
	app.Post("/api/event-expenses/:id/items", AddExpenseItemHandler())
	app.Delete("/api/event-expenses/:id/items/:itemId", DeleteExpenseItemHandler())

	return app
}

var seedSeq int

func seedEvent(t *testing.T, revenue float64, approval models.ApprovalStatus, date time.Time) (models.CalendarEvent, models.EventExpense) {
	t.Helper()

	seedSeq++
	q := models.Quotation{
		QuotationNumber: fmt.Sprintf("QT-2026-%05d", seedSeq),
		ClientName:      "Asha Nair",
		EventDate:       date,
		Status:          models.QuotationAccepted,
		ApprovalStatus:  approval,
		GrandTotal:      revenue,
	}
	if err := database.DB.Create(&q).Error; err != nil {
		t.Fatalf("seed quotation: %v", err)
	}

	ev := models.CalendarEvent{
		QuotationID: q.ID,
		ClientName:  q.ClientName,
		EventDate:   date,
		Revenue:     revenue,
	}
	if err := database.DB.Create(&ev).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}

	ee := models.EventExpense{
		CalendarEventID:  ev.ID,
		Revenue:          revenue,
		Profit:           revenue,
		ProfitPercentage: 100,
	}
	if err := database.DB.Create(&ee).Error; err != nil {
		t.Fatalf("seed tracker: %v", err)
	}
	return ev, ee
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

func decodeExpense(t *testing.T, resp *http.Response) EventExpenseResponse {
	t.Helper()
	var v EventExpenseResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestAddExpenseItemRecomputesProfit(t *testing.T) {
	app := setupApp(t)
	_, ee := seedEvent(t, 66080, models.ApprovalApproved, time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC))

	resp, err := app.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/api/event-expenses/%d/items", ee.ID),
		ExpenseItemPayload{Vendor: "Fresh Farms", Category: "groceries", Amount: 16080}), -1)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.StatusCode)
	}

	v := decodeExpense(t, resp)
	if v.TotalExpenses != 16080 {
		t.Fatalf("total: expected 16080 got %v", v.TotalExpenses)
	}
	if v.Profit != 50000 {
		t.Fatalf("profit: expected 50000 got %v", v.Profit)
	}
	// 50000 / 66080 * 100 = 75.67 after rounding.
	if v.ProfitPercentage != 75.67 {
		t.Fatalf("pct: expected 75.67 got %v", v.ProfitPercentage)
	}
}

func TestDeleteExpenseItemRestoresProfit(t *testing.T) {
	app := setupApp(t)
	_, ee := seedEvent(t, 50000, models.ApprovalApproved, time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC))

	resp, err := app.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/api/event-expenses/%d/items", ee.ID),
		ExpenseItemPayload{Vendor: "Decor Co", Amount: 10000}), -1)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	v := decodeExpense(t, resp)
	if len(v.Items) != 1 {
		t.Fatalf("expected 1 item got %d", len(v.Items))
	}

	resp, err = app.Test(jsonRequest(http.MethodDelete,
		fmt.Sprintf("/api/event-expenses/%d/items/%d", ee.ID, v.Items[0].ID), nil), -1)
	if err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	v = decodeExpense(t, resp)
	if v.TotalExpenses != 0 || v.Profit != 50000 || v.ProfitPercentage != 100 {
		t.Fatalf("expected tracker restored, got %+v", v)
	}
}

func TestCalendarListApprovalGate(t *testing.T) {
	app := setupApp(t)
	date := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	approved, _ := seedEvent(t, 10000, models.ApprovalApproved, date)
	seedEvent(t, 20000, models.ApprovalDraft, date)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/calendar-events", nil), -1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var rows []CalendarEventResponse
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != approved.ID {
		t.Fatalf("expected only the approved event, got %d rows", len(rows))
	}

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/calendar-events?all=1", nil), -1)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	rows = nil
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 events with all=1, got %d", len(rows))
	}
}

func TestGetExpenseByEvent(t *testing.T) {
	app := setupApp(t)
	ev, ee := seedEvent(t, 30000, models.ApprovalApproved, time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC))

	resp, err := app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/calendar-events/%d/expense", ev.ID), nil), -1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	if v := decodeExpense(t, resp); v.ID != ee.ID || v.Revenue != 30000 {
		t.Fatalf("unexpected tracker: %+v", v)
	}
}
