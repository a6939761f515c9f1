package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catering-backend/internal/auth"
	"catering-backend/internal/database"
	"catering-backend/internal/models"
	"catering-backend/internal/pricing"

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
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		return c.Next()
	})
	app.Post("/api/payments", CreatePaymentHandler())
	app.Get("/api/payments", ListPaymentsHandler())
	app.Delete("/api/payments/:id", DeletePaymentHandler())

	return app
}

var seedSeq int

func seedQuotation(t *testing.T, grandTotal float64) models.Quotation {
	t.Helper()
	seedSeq++
	q := models.Quotation{
		QuotationNumber: fmt.Sprintf("QT-2026-%05d", seedSeq),
		ClientName:      "Asha Nair",
		EventDate:       time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		Status:          models.QuotationSent,
		GrandTotal:      grandTotal,
		BalanceDue:      grandTotal,
		PaymentStatus:   pricing.StatusPending,
	}
	if err := database.DB.Create(&q).Error; err != nil {
		t.Fatalf("seed quotation: %v", err)
	}
	return q
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

func reload(t *testing.T, id uint) models.Quotation {
	t.Helper()
	var q models.Quotation
	if err := database.DB.First(&q, "id = ?", id).Error; err != nil {
		t.Fatalf("reload quotation: %v", err)
	}
	return q
}

func TestCreatePaymentRollsUpQuotation(t *testing.T) {
	app := setupApp(t)
	q := seedQuotation(t, 66080)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/payments",
		CreatePaymentRequest{QuotationID: q.ID, Amount: 20000, Method: "upi", Date: "2026-10-01"}), -1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.StatusCode)
	}

	got := reload(t, q.ID)
	if got.AdvancePaid != 20000 {
		t.Fatalf("advance: expected 20000 got %v", got.AdvancePaid)
	}
	if got.BalanceDue != 46080 {
		t.Fatalf("balance: expected 46080 got %v", got.BalanceDue)
	}
	if got.PaymentStatus != pricing.StatusPartial {
		t.Fatalf("expected partial got %s", got.PaymentStatus)
	}
}

func TestPaymentsAccumulateToPaid(t *testing.T) {
	app := setupApp(t)
	q := seedQuotation(t, 50000)

	for _, amount := range []float64{20000, 30000} {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/payments",
			CreatePaymentRequest{QuotationID: q.ID, Amount: amount, Method: "cash", Date: "2026-10-01"}), -1)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201 got %d", resp.StatusCode)
		}
	}

	got := reload(t, q.ID)
	if got.AdvancePaid != 50000 || got.BalanceDue != 0 {
		t.Fatalf("expected fully paid, got advance=%v balance=%v", got.AdvancePaid, got.BalanceDue)
	}
	if got.PaymentStatus != pricing.StatusPaid {
		t.Fatalf("expected paid got %s", got.PaymentStatus)
	}
}

func TestDeletePaymentRecomputes(t *testing.T) {
	app := setupApp(t)
	q := seedQuotation(t, 50000)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/payments",
		CreatePaymentRequest{QuotationID: q.ID, Amount: 50000, Method: "bank_transfer", Date: "2026-10-01"}), -1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var created PaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got := reload(t, q.ID); got.PaymentStatus != pricing.StatusPaid {
		t.Fatalf("expected paid before delete, got %s", got.PaymentStatus)
	}

	resp, err = app.Test(jsonRequest(http.MethodDelete, fmt.Sprintf("/api/payments/%d", created.ID), nil), -1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.StatusCode)
	}

	got := reload(t, q.ID)
	if got.AdvancePaid != 0 || got.BalanceDue != 50000 {
		t.Fatalf("expected roll-back, got advance=%v balance=%v", got.AdvancePaid, got.BalanceDue)
	}
	if got.PaymentStatus != pricing.StatusPending {
		t.Fatalf("expected pending got %s", got.PaymentStatus)
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	app := setupApp(t)
	q := seedQuotation(t, 1000)

	cases := []struct {
		name string
		body CreatePaymentRequest
		want int
	}{
		{"zero amount", CreatePaymentRequest{QuotationID: q.ID, Amount: 0, Date: "2026-10-01"}, http.StatusBadRequest},
		{"missing quotation", CreatePaymentRequest{QuotationID: 9999, Amount: 100, Date: "2026-10-01"}, http.StatusNotFound},
		{"bad date", CreatePaymentRequest{QuotationID: q.ID, Amount: 100, Date: "01/10/2026"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/payments", tc.body), -1)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("%s: expected %d got %d", tc.name, tc.want, resp.StatusCode)
		}
	}
}

func TestListPaymentsFilterByQuotation(t *testing.T) {
	app := setupApp(t)
	q1 := seedQuotation(t, 1000)
	q2 := seedQuotation(t, 2000)

	for _, qid := range []uint{q1.ID, q1.ID, q2.ID} {
		if _, err := app.Test(jsonRequest(http.MethodPost, "/api/payments",
			CreatePaymentRequest{QuotationID: qid, Amount: 100, Date: "2026-10-01"}), -1); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	resp, err := app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/payments?quotation_id=%d", q1.ID), nil), -1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var rows []PaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 payments got %d", len(rows))
	}
}
