package main

import (
	"fmt"
	"log"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/config"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/database"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/migrations"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/repository"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("Seeding sample catalog...")
	medicineRepo := repository.NewMedicineRepository(db)

	medicines := []models.Medicine{
		{Name: "Paracetamol 500mg", Brand: "Calpol", GenericName: "Paracetamol", MRP: 25, SalePrice: 20, StockQty: 120, TherapeuticClass: "Analgesic", Category: "Pain Relief", Featured: true},
		{Name: "Dolo 650", Brand: "Micro Labs", GenericName: "Paracetamol", MRP: 34, SalePrice: 30, StockQty: 80, TherapeuticClass: "Analgesic", Category: "Pain Relief"},
		{Name: "Ibuprofen 400mg", Brand: "Brufen", GenericName: "Ibuprofen", MRP: 40, SalePrice: 35, StockQty: 60, TherapeuticClass: "NSAID", Category: "Pain Relief"},
		{Name: "Amoxicillin 500mg", Brand: "Mox", GenericName: "Amoxicillin", MRP: 110, SalePrice: 95, StockQty: 45, PrescriptionRequired: true, TherapeuticClass: "Antibiotic", Category: "Antibiotics"},
		{Name: "Azithromycin 250mg", Brand: "Azee", GenericName: "Azithromycin", MRP: 95, SalePrice: 82, StockQty: 30, PrescriptionRequired: true, TherapeuticClass: "Antibiotic", Category: "Antibiotics"},
		{Name: "Cetirizine 10mg", Brand: "Zyrtec", GenericName: "Cetirizine", MRP: 30, SalePrice: 24, StockQty: 200, TherapeuticClass: "Antihistamine", Category: "Allergy"},
		{Name: "Metformin 500mg", Brand: "Glycomet", GenericName: "Metformin", MRP: 45, SalePrice: 38, StockQty: 150, PrescriptionRequired: true, TherapeuticClass: "Antidiabetic", Category: "Diabetes"},
		{Name: "Insulin Glargine 100IU", Brand: "Lantus", GenericName: "Insulin Glargine", MRP: 750, SalePrice: 690, StockQty: 12, PrescriptionRequired: true, TherapeuticClass: "Antidiabetic", Category: "Diabetes"},
		{Name: "Pantoprazole 40mg", Brand: "Pan", GenericName: "Pantoprazole", MRP: 85, SalePrice: 70, StockQty: 0, PrescriptionRequired: false, TherapeuticClass: "PPI", Category: "Gastro"},
		{Name: "Omeprazole 20mg", Brand: "Omez", GenericName: "Omeprazole", MRP: 60, SalePrice: 48, StockQty: 95, TherapeuticClass: "PPI", Category: "Gastro"},
	}

	for i := range medicines {
		if err := medicineRepo.Create(&medicines[i]); err != nil {
			log.Printf("Warning: failed to seed %s: %v", medicines[i].Name, err)
		}
	}

	fmt.Printf("Seeded %d medicines\n", len(medicines))
	fmt.Println("Done.")
}
