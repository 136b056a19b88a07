package database

import (
	"fmt"
	"log"

	"referral-rewards/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Config returns the gorm settings shared by every connection.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey,
// which the referral ledger relies on for its dedup rule.
func Config() *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}
}

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// Migrate creates or updates the ledger tables on db
func Migrate(db *gorm.DB) error {
	ledgerModels := []interface{}{
		&models.User{},
		&models.Referral{},
	}

	for _, model := range ledgerModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}

	if err := Migrate(DB); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
