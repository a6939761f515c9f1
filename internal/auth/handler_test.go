package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"catering-backend/internal/config"
	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef"}
}

func setupApp(t *testing.T) (*fiber.App, *config.Config) {
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

	cfg := testConfig()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	api := app.Group("/api")
	api.Post("/auth/register-admin", RegisterAdminHandler(cfg))
	api.Post("/auth/login", LoginHandler(cfg))

	protected := api.Group("")
	protected.Use(JWTMiddleware(cfg))
	protected.Get("/auth/me", MeHandler())

	adminOnly := protected.Group("/admin")
	adminOnly.Use(RequireRole(models.RoleAdmin))
	adminOnly.Post("/staff", CreateStaffHandler())

	return app, cfg
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

func registerAdmin(t *testing.T, app *fiber.App) {
	t.Helper()
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register-admin",
		RegisterAdminRequest{Name: "Owner", Email: "owner@test", Password: "secret123"}), -1)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d", resp.StatusCode)
	}
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login",
		LoginRequest{Email: email, Password: password}), -1)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200 got %d", resp.StatusCode)
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("expected a token")
	}
	return payload.Token
}

func TestRegisterAdminOnlyOnce(t *testing.T) {
	app, _ := setupApp(t)
	registerAdmin(t, app)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register-admin",
		RegisterAdminRequest{Name: "Second", Email: "second@test", Password: "secret123"}), -1)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.StatusCode)
	}
}

func TestLoginAndMe(t *testing.T) {
	app, _ := setupApp(t)
	registerAdmin(t, app)
	token := login(t, app, "owner@test", "secret123")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	var payload struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Email != "owner@test" || payload.Role != string(models.RoleAdmin) {
		t.Fatalf("unexpected identity: %+v", payload)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app, _ := setupApp(t)
	registerAdmin(t, app)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login",
		LoginRequest{Email: "owner@test", Password: "wrong"}), -1)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.StatusCode)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), -1)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.StatusCode)
	}
}

func TestStaffCannotCreateStaff(t *testing.T) {
	app, _ := setupApp(t)
	registerAdmin(t, app)
	adminToken := login(t, app, "owner@test", "secret123")

	req := jsonRequest(http.MethodPost, "/api/admin/staff",
		CreateStaffRequest{Name: "Staff One", Email: "staff@test", Password: "secret123"})
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.StatusCode)
	}

	staffToken := login(t, app, "staff@test", "secret123")
	req = jsonRequest(http.MethodPost, "/api/admin/staff",
		CreateStaffRequest{Name: "Staff Two", Email: "staff2@test", Password: "secret123"})
	req.Header.Set("Authorization", "Bearer "+staffToken)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("staff create staff: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.StatusCode)
	}
}
