package database

import (
	"log"

	"catering-backend/internal/config"
	"catering-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("Database connected. Migration complete.")
}

// Migrate runs AutoMigrate for every table; tests reuse it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.MenuTemplate{},
		&models.MenuTemplateItem{},
		&models.Package{},
		&models.PackageItem{},
		&models.Quotation{},
		&models.QuotationItem{},
		&models.QuotationResponse{},
		&models.CalendarEvent{},
		&models.EventExpense{},
		&models.EventExpenseItem{},
		&models.Payment{},
		&models.ExpenseCategory{},
		&models.Expense{},
		&models.CompanySettings{},
		&models.AuditLog{},
	)
}
