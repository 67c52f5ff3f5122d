package migrations

import (
	"log"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/repository"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/services"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations and creates default data
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
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
	if err != nil {
		return err
	}

	// Create default data
	if err := createDefaultData(db); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData creates default users and pricing settings
func createDefaultData(db *gorm.DB) error {
	log.Println("Creating default data...")

	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)
	settingsRepo := repository.NewSettingsRepository(db)

	// Check if admin already exists
	existingUser, err := userService.GetUserByUsername("admin")
	if err == nil && existingUser != nil {
		log.Println("Admin user already exists")
		return nil
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@onemedi.example",
		Role:     string(models.RoleAdmin),
		IsActive: true,
	}
	if err := userService.CreateUser(admin, "admin123"); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	}

	pharmacist := &models.User{
		Username: "pharmacist",
		Email:    "pharmacist@onemedi.example",
		Role:     string(models.RolePharmacist),
		IsActive: true,
	}
	if err := userService.CreateUser(pharmacist, "pharmacist123"); err != nil {
		log.Printf("Warning: Failed to create pharmacist user: %v", err)
	}

	log.Println("Creating default pricing settings...")

	settings := []models.PricingSettings{
		{SettingName: "prescription_discount_pct", Value: 5.0, IsActive: true, CreatedBy: 1},
		{SettingName: "delivery_fee", Value: 40.0, IsActive: true, CreatedBy: 1},
		{SettingName: "free_delivery_threshold", Value: 200.0, IsActive: true, CreatedBy: 1},
	}
	for i := range settings {
		if err := settingsRepo.CreateSetting(&settings[i]); err != nil {
			log.Printf("Warning: Failed to create setting %s: %v", settings[i].SettingName, err)
		}
	}

	log.Println("Default data created successfully!")
	return nil
}
