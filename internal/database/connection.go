package database

import (
	"fmt"
	"log"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	// Configure GORM
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto migrate all models
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database connected and migrated successfully")
	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Medicine{},
		&models.Prescription{},
		&models.PrescriptionFile{},
		&models.ExtractedMedicine{},
		&models.PrescriptionCartItem{},
		&models.PrescriptionOrder{},
		&models.PrescriptionOrderItem{},
		&models.OrderWorkflowStep{},
		&models.PrescriptionVerification{},
		&models.PricingSettings{},
	)
}
