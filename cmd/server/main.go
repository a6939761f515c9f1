package main

import (
	"log"
	"strings"

	"catering-backend/internal/audit"
	"catering-backend/internal/auth"
	"catering-backend/internal/client"
	"catering-backend/internal/config"
	"catering-backend/internal/dashboard"
	"catering-backend/internal/database"
	"catering-backend/internal/event"
	"catering-backend/internal/expense"
	"catering-backend/internal/menu"
	"catering-backend/internal/models"
	"catering-backend/internal/packages"
	"catering-backend/internal/payment"
	"catering-backend/internal/quotation"
	"catering-backend/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Public client-facing quotation view. The quotation id in the link acts
	// as the access token; no auth is required.
	api.Get("/public/quotations/:id", quotation.PublicGetQuotationHandler())
	api.Get("/public/quotations/:id/pdf", quotation.PublicQuotationPDFHandler())
	api.Post("/public/quotations/:id/respond", quotation.PublicRespondHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Post("/staff", auth.CreateStaffHandler())

	adminRoutes.Post("/menu-categories", menu.CreateCategoryHandler())
	adminRoutes.Put("/menu-categories/:id", menu.UpdateCategoryHandler())
	adminRoutes.Delete("/menu-categories/:id", menu.DeleteCategoryHandler())

	adminRoutes.Post("/menu-items", menu.CreateMenuItemHandler())
	adminRoutes.Put("/menu-items/:id", menu.UpdateMenuItemHandler())
	adminRoutes.Delete("/menu-items/:id", menu.DeleteMenuItemHandler())
	adminRoutes.Post("/menu-items/import", menu.ImportMenuItemsHandler())

	adminRoutes.Post("/expense-categories", expense.CreateExpenseCategoryHandler())
	adminRoutes.Put("/expense-categories/:id", expense.UpdateExpenseCategoryHandler())
	adminRoutes.Delete("/expense-categories/:id", expense.DeleteExpenseCategoryHandler())

	// Clients
	protected.Get("/clients", client.ListClientsHandler())
	protected.Get("/clients/:id", client.GetClientHandler())
	protected.Post("/clients", client.CreateClientHandler())
	protected.Put("/clients/:id", client.UpdateClientHandler())
	protected.Delete("/clients/:id", auth.RequireRole(models.RoleAdmin), client.DeleteClientHandler())

	// Menu catalog
	protected.Get("/menu-categories", menu.ListCategoriesHandler())
	protected.Get("/menu-items", menu.ListMenuItemsHandler())

	// Menu templates
	protected.Get("/menu-templates", menu.ListTemplatesHandler())
	protected.Get("/menu-templates/:id", menu.GetTemplateHandler())
	protected.Post("/menu-templates", menu.CreateTemplateHandler())
	protected.Put("/menu-templates/:id", menu.UpdateTemplateHandler())
	protected.Delete("/menu-templates/:id", auth.RequireRole(models.RoleAdmin), menu.DeleteTemplateHandler())

	// Packages
	protected.Get("/packages", packages.ListPackagesHandler())
	protected.Get("/packages/:id", packages.GetPackageHandler())
	protected.Post("/packages", packages.CreatePackageHandler())
	protected.Put("/packages/:id", packages.UpdatePackageHandler())
	protected.Delete("/packages/:id", auth.RequireRole(models.RoleAdmin), packages.DeletePackageHandler())

	// Quotations
	protected.Get("/quotations", quotation.ListQuotationsHandler())
	protected.Get("/quotations/:id", quotation.GetQuotationHandler())
	protected.Post("/quotations", quotation.CreateQuotationHandler())
	protected.Put("/quotations/:id", quotation.UpdateQuotationHandler())
	protected.Delete("/quotations/:id", auth.RequireRole(models.RoleAdmin), quotation.DeleteQuotationHandler())
	protected.Post("/quotations/:id/send", quotation.SendQuotationHandler())
	protected.Post("/quotations/:id/accept", quotation.AcceptQuotationHandler())
	protected.Post("/quotations/:id/reject", quotation.RejectQuotationHandler())
	protected.Put("/quotations/:id/approval", quotation.SetApprovalStatusHandler())
	protected.Get("/quotations/:id/pdf", quotation.QuotationPDFHandler())

	// Payments
	protected.Post("/payments", payment.CreatePaymentHandler())
	protected.Get("/payments", payment.ListPaymentsHandler())
	protected.Delete("/payments/:id", auth.RequireRole(models.RoleAdmin), payment.DeletePaymentHandler())

	// Calendar & event expenses
	protected.Get("/calendar-events", event.ListCalendarEventsHandler())
	protected.Get("/calendar-events/:id", event.GetCalendarEventHandler())
	protected.Get("/calendar-events/:id/expense", event.GetExpenseByEventHandler())
	protected.Get("/event-expenses/:id", event.GetEventExpenseHandler())
	protected.Post("/event-expenses/:id/items", event.AddExpenseItemHandler())
	protected.Delete("/event-expenses/:id/items/:itemId", event.DeleteExpenseItemHandler())

	// Operational expenses
	protected.Get("/expense-categories", expense.ListExpenseCategoriesHandler())
	protected.Post("/expenses", expense.CreateExpenseHandler())
	protected.Get("/expenses", expense.ListExpensesHandler())
	protected.Get("/expenses/summary/monthly", expense.MonthlyExpenseSummaryHandler())

	// Settings
	protected.Get("/settings", settings.GetSettingsHandler())
	protected.Put("/settings", auth.RequireRole(models.RoleAdmin), settings.UpdateSettingsHandler())

	// Dashboard
	protected.Get("/dashboard/stats", dashboard.StatsHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", auth.RequireRole(models.RoleAdmin), audit.UndoAuditLogHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
