package services

import (
	"log"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/realtime"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/repository"
)

// ChangePublisher pushes change events onto a table's notification channel.
type ChangePublisher interface {
	Publish(channel string, payload interface{}) error
}

// CatalogService is the admin write side of the medicine catalog. Every
// mutation announces itself on the medicines change channel so the match
// cache gets invalidated; the publish is a hint and never fails the mutation.
type CatalogService interface {
	CreateMedicine(medicine *models.Medicine) error
	GetMedicine(id uint) (*models.Medicine, error)
	ListMedicines() ([]models.Medicine, error)
	UpdateMedicine(medicine *models.Medicine) error
	DeleteMedicine(id uint) error
}

type catalogService struct {
	medicineRepo repository.MedicineRepository
	publisher    ChangePublisher
}

func NewCatalogService(medicineRepo repository.MedicineRepository, publisher ChangePublisher) CatalogService {
	return &catalogService{medicineRepo: medicineRepo, publisher: publisher}
}

func (s *catalogService) CreateMedicine(medicine *models.Medicine) error {
	if err := s.medicineRepo.Create(medicine); err != nil {
		return err
	}
	s.publishChange("insert", medicine.ID)
	return nil
}

func (s *catalogService) GetMedicine(id uint) (*models.Medicine, error) {
	return s.medicineRepo.GetByID(id)
}

func (s *catalogService) ListMedicines() ([]models.Medicine, error) {
	return s.medicineRepo.GetAll()
}

func (s *catalogService) UpdateMedicine(medicine *models.Medicine) error {
	if err := s.medicineRepo.Update(medicine); err != nil {
		return err
	}
	s.publishChange("update", medicine.ID)
	return nil
}

func (s *catalogService) DeleteMedicine(id uint) error {
	if err := s.medicineRepo.Delete(id); err != nil {
		return err
	}
	s.publishChange("delete", id)
	return nil
}

func (s *catalogService) publishChange(action string, id uint) {
	if s.publisher == nil {
		return
	}
	event := realtime.ChangeEvent{Table: "medicines", Action: action, ID: id}
	if err := s.publisher.Publish("changes:medicines", event); err != nil {
		log.Printf("catalog: failed to publish %s event for medicine %d: %v", action, id, err)
	}
}
