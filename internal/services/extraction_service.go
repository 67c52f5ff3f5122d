package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/repository"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/pkg/ocr"
)

// ExtractionService turns a prescription document into ExtractedMedicine rows.
// The OCR call itself is opaque; the regex fallback handles raw text the OCR
// service returns without structured entities.
type ExtractionService interface {
	ExtractFromDocument(prescriptionID uint, documentURL string) ([]models.ExtractedMedicine, error)
	ParsePrescriptionText(prescriptionID uint, rawText string, confidence float64) []models.ExtractedMedicine
}

type extractionService struct {
	client           *ocr.Client
	prescriptionRepo repository.PrescriptionRepository
}

func NewExtractionService(client *ocr.Client, prescriptionRepo repository.PrescriptionRepository) ExtractionService {
	return &extractionService{client: client, prescriptionRepo: prescriptionRepo}
}

// Matches lines like "Paracetamol 500mg 1-0-1 x 5 days" or "Tab. Azithromycin 250 mg qty 6".
var (
	medicineLineRegex = regexp.MustCompile(`(?i)^(?:tab\.?|cap\.?|syp\.?|inj\.?)?\s*([a-zA-Z][a-zA-Z\s\-]+?)\s+(\d+\s?(?:mg|mcg|g|ml))\b(.*)$`)
	quantityRegex     = regexp.MustCompile(`(?i)(?:qty|quantity|x)\s*(\d+)`)
	frequencyRegex    = regexp.MustCompile(`(?i)(\d-\d-\d|once daily|twice daily|thrice daily|od|bd|tds|qid)`)
	durationRegex     = regexp.MustCompile(`(?i)(?:for\s+)?(\d+\s*(?:days?|weeks?|months?))`)
)

func (s *extractionService) ExtractFromDocument(prescriptionID uint, documentURL string) ([]models.ExtractedMedicine, error) {
	resp, err := s.client.Extract(documentURL)
	if err != nil {
		return nil, fmt.Errorf("ocr extraction failed for prescription %d: %w", prescriptionID, err)
	}

	var extracted []models.ExtractedMedicine
	if len(resp.Medicines) > 0 {
		for _, entity := range resp.Medicines {
			quantity := entity.Quantity
			if quantity < 1 {
				quantity = 1
			}
			extracted = append(extracted, models.ExtractedMedicine{
				PrescriptionID: prescriptionID,
				Name:           strings.TrimSpace(entity.Name),
				Dosage:         entity.Dosage,
				Frequency:      entity.Frequency,
				Duration:       entity.Duration,
				Quantity:       quantity,
				Confidence:     entity.Confidence,
			})
		}
	} else {
		extracted = s.ParsePrescriptionText(prescriptionID, resp.RawText, resp.Confidence)
	}

	if err := s.prescriptionRepo.CreateExtractedMedicines(extracted); err != nil {
		return nil, fmt.Errorf("failed to store extracted medicines for prescription %d: %w", prescriptionID, err)
	}
	return extracted, nil
}

func (s *extractionService) ParsePrescriptionText(prescriptionID uint, rawText string, confidence float64) []models.ExtractedMedicine {
	var extracted []models.ExtractedMedicine

	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matches := medicineLineRegex.FindStringSubmatch(line)
		if len(matches) < 3 {
			continue
		}

		item := models.ExtractedMedicine{
			PrescriptionID: prescriptionID,
			Name:           strings.TrimSpace(matches[1]),
			Dosage:         strings.ReplaceAll(matches[2], " ", ""),
			Quantity:       1,
			Confidence:     confidence,
		}

		rest := matches[3]
		if m := quantityRegex.FindStringSubmatch(rest); len(m) > 1 {
			if qty, err := strconv.Atoi(m[1]); err == nil && qty >= 1 {
				item.Quantity = qty
			}
		}
		if m := frequencyRegex.FindStringSubmatch(rest); len(m) > 1 {
			item.Frequency = m[1]
		}
		if m := durationRegex.FindStringSubmatch(rest); len(m) > 1 {
			item.Duration = m[1]
		}

		extracted = append(extracted, item)
	}

	return extracted
}
