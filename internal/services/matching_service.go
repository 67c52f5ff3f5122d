package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/redis"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/repository"
)

// Medicines whose names hit this list are treated as prescription-only even
// when the catalog rows disagree.
var prescriptionKeywords = []string{
	"antibiotic", "insulin", "steroid", "controlled", "narcotic",
	"amoxicillin", "azithromycin", "ciprofloxacin", "doxycycline",
}

const (
	exactNameBoost  = 0.3
	dosageBoost     = 0.1
	inStockBoost    = 0.1
	featuredBoost   = 0.05
	maxAlternatives = 5
	maxGenericAlts  = 3
)

type MatchingService interface {
	// FindMedicineMatches resolves one extracted medicine against the catalog.
	// Store failures degrade to a not_available result instead of an error so
	// one bad lookup never sinks a batch.
	FindMedicineMatches(extracted models.ExtractedMedicine) models.MedicineAvailabilityResult
	// MatchExtractedMedicines returns exactly one result per input, in input
	// order, regardless of completion order or individual failures.
	MatchExtractedMedicines(extracted []models.ExtractedMedicine) []models.MedicineAvailabilityResult
	Summarize(results []models.MedicineAvailabilityResult) models.PrescriptionAvailabilitySummary
}

type matchingService struct {
	medicineRepo repository.MedicineRepository
	cache        *redis.Client
	cacheTTL     time.Duration
}

func NewMatchingService(medicineRepo repository.MedicineRepository, cache *redis.Client, cacheTTL time.Duration) MatchingService {
	return &matchingService{medicineRepo: medicineRepo, cache: cache, cacheTTL: cacheTTL}
}

func (s *matchingService) FindMedicineMatches(extracted models.ExtractedMedicine) models.MedicineAvailabilityResult {
	if s.cache != nil {
		var cached models.MedicineAvailabilityResult
		if err := s.cache.GetMatchResult(extracted.Name, extracted.Dosage, &cached); err == nil {
			cached.ExtractedMedicine = extracted
			return cached
		}
	}

	result := s.matchAgainstCatalog(extracted)

	if s.cache != nil {
		if err := s.cache.SetMatchResult(extracted.Name, extracted.Dosage, result, s.cacheTTL); err != nil {
			log.Printf("matching: failed to cache result for %q: %v", extracted.Name, err)
		}
	}
	return result
}

func (s *matchingService) matchAgainstCatalog(extracted models.ExtractedMedicine) models.MedicineAvailabilityResult {
	token := extractActiveToken(extracted.Name)

	type lookup struct {
		matchType models.MatchType
		run       func() ([]models.Medicine, error)
	}
	lookups := []lookup{
		{models.MatchExact, func() ([]models.Medicine, error) { return s.medicineRepo.FindExact(extracted.Name) }},
		{models.MatchGeneric, func() ([]models.Medicine, error) { return s.medicineRepo.FindByGeneric(token) }},
		{models.MatchBrand, func() ([]models.Medicine, error) { return s.medicineRepo.FindByBrand(extracted.Name) }},
		{models.MatchSimilar, func() ([]models.Medicine, error) { return s.medicineRepo.SearchSimilar(extracted.Name) }},
	}

	seen := make(map[uint]bool)
	var matches []models.MedicineMatch
	for _, l := range lookups {
		medicines, err := l.run()
		if err != nil {
			log.Printf("matching: %s lookup failed for %q: %v", l.matchType, extracted.Name, err)
			return notAvailableResult(extracted)
		}
		for i := range medicines {
			if seen[medicines[i].ID] {
				continue
			}
			seen[medicines[i].ID] = true
			matches = append(matches, buildMatch(&medicines[i], extracted, l.matchType))
		}
	}

	if len(matches) == 0 {
		return notAvailableResult(extracted)
	}

	rankMatches(matches)

	primary := matches[0]
	pool := matches[1:]
	if len(pool) > maxAlternatives {
		pool = pool[:maxAlternatives]
	}

	var alternatives []models.AlternativeMedicine
	altSeen := map[uint]bool{primary.ID: true}

	// Brand-name primaries get cheaper generic suggestions first.
	if primary.MatchType == models.MatchBrand {
		generics, err := s.medicineRepo.FindGenericAlternatives(token, primary.SalePrice, maxGenericAlts)
		if err != nil {
			log.Printf("matching: generic alternative lookup failed for %q: %v", extracted.Name, err)
		} else {
			for i := range generics {
				if altSeen[generics[i].ID] {
					continue
				}
				altSeen[generics[i].ID] = true
				alt := buildAlternative(buildMatch(&generics[i], extracted, models.MatchGeneric), &primary)
				alt.Type = models.AlternativeGeneric
				alt.Reason = fmt.Sprintf("Generic alternative - Save ₹%.0f", primary.SalePrice-generics[i].SalePrice)
				alternatives = append(alternatives, alt)
			}
		}
	}

	for i := range pool {
		if altSeen[pool[i].ID] {
			continue
		}
		altSeen[pool[i].ID] = true
		alternatives = append(alternatives, buildAlternative(pool[i], &primary))
	}
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	requiresPrescription := primary.PrescriptionRequired || matchesPrescriptionKeyword(extracted.Name)
	for _, alt := range alternatives {
		if alt.PrescriptionRequired {
			requiresPrescription = true
		}
	}

	status := deriveAvailabilityStatus(&primary, alternatives)
	estimated := 0.0
	if status == models.AvailabilityAvailable {
		estimated = primary.SalePrice
	}

	return models.MedicineAvailabilityResult{
		ExtractedMedicine:    extracted,
		PrimaryMatch:         &primary,
		Alternatives:         alternatives,
		TotalMatches:         len(matches),
		AvailabilityStatus:   status,
		EstimatedPrice:       estimated,
		RequiresPrescription: requiresPrescription,
		AddToCart:            status == models.AvailabilityAvailable,
	}
}

func (s *matchingService) MatchExtractedMedicines(extracted []models.ExtractedMedicine) []models.MedicineAvailabilityResult {
	results := make([]models.MedicineAvailabilityResult, len(extracted))

	var wg sync.WaitGroup
	for i := range extracted {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = s.FindMedicineMatches(extracted[idx])
		}(i)
	}
	wg.Wait()

	return results
}

func (s *matchingService) Summarize(results []models.MedicineAvailabilityResult) models.PrescriptionAvailabilitySummary {
	summary := models.PrescriptionAvailabilitySummary{TotalMedicines: len(results)}
	for _, r := range results {
		switch r.AvailabilityStatus {
		case models.AvailabilityAvailable:
			summary.Available++
		case models.AvailabilityAlternativeOnly:
			summary.AlternativesOnly++
		default:
			summary.NotAvailable++
		}
		if r.AddToCart {
			summary.EstimatedTotal += r.EstimatedPrice
		}
		if r.RequiresPrescription {
			summary.RequiresPrescription = true
		}
	}
	return summary
}

func buildMatch(m *models.Medicine, extracted models.ExtractedMedicine, matchType models.MatchType) models.MedicineMatch {
	dosageMatch := extracted.Dosage != "" &&
		strings.Contains(strings.ToLower(m.Name), strings.ToLower(extracted.Dosage))

	confidence := matchType.BaseConfidence()
	if strings.EqualFold(strings.TrimSpace(m.Name), strings.TrimSpace(extracted.Name)) {
		confidence += exactNameBoost
	}
	if dosageMatch {
		confidence += dosageBoost
	}
	if m.Available() {
		confidence += inStockBoost
	}
	if m.Featured {
		confidence += featuredBoost
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	return models.MedicineMatch{
		ID:                   m.ID,
		Name:                 m.Name,
		Brand:                m.Brand,
		GenericName:          m.GenericName,
		MRP:                  m.MRP,
		SalePrice:            m.SalePrice,
		StockQty:             m.StockQty,
		Available:            m.Available(),
		PrescriptionRequired: m.PrescriptionRequired,
		MatchConfidence:      confidence,
		MatchType:            matchType,
		DosageMatch:          dosageMatch,
		Category:             m.Category,
	}
}

// rankMatches orders candidates: available first, then confidence descending,
// then dosage matches, then cheapest.
func rankMatches(matches []models.MedicineMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Available != b.Available {
			return a.Available
		}
		if a.MatchConfidence != b.MatchConfidence {
			return a.MatchConfidence > b.MatchConfidence
		}
		if a.DosageMatch != b.DosageMatch {
			return a.DosageMatch
		}
		return a.SalePrice < b.SalePrice
	})
}

func buildAlternative(match models.MedicineMatch, primary *models.MedicineMatch) models.AlternativeMedicine {
	alt := models.AlternativeMedicine{
		ID:                   match.ID,
		Name:                 match.Name,
		Brand:                match.Brand,
		Availability:         models.StockBucket(match.StockQty),
		StockQty:             match.StockQty,
		PrescriptionRequired: match.PrescriptionRequired,
	}

	switch match.MatchType {
	case models.MatchGeneric:
		alt.Type = models.AlternativeGeneric
	case models.MatchBrand:
		alt.Type = models.AlternativeBrand
	default:
		alt.Type = models.AlternativeTherapeutic
	}

	if primary != nil && primary.SalePrice > 0 {
		alt.PriceDifference = match.SalePrice - primary.SalePrice
		alt.PricePercentage = alt.PriceDifference / primary.SalePrice * 100
	}

	switch {
	case primary != nil && alt.PriceDifference < 0:
		alt.Reason = fmt.Sprintf("Save ₹%.0f (%.0f%% cheaper)", -alt.PriceDifference, -alt.PricePercentage)
	case primary != nil && match.StockQty > primary.StockQty:
		alt.Reason = "Better availability"
	case primary != nil && match.MatchConfidence > primary.MatchConfidence:
		alt.Reason = "Better match for your prescription"
	default:
		alt.Reason = "Alternative option"
	}

	return alt
}

func notAvailableResult(extracted models.ExtractedMedicine) models.MedicineAvailabilityResult {
	return models.MedicineAvailabilityResult{
		ExtractedMedicine:    extracted,
		Alternatives:         []models.AlternativeMedicine{},
		AvailabilityStatus:   models.AvailabilityNotAvailable,
		RequiresPrescription: matchesPrescriptionKeyword(extracted.Name),
	}
}

// deriveAvailabilityStatus: available iff the primary match is in stock;
// alternatives_available iff not, but at least one alternative is in stock;
// not_available otherwise.
func deriveAvailabilityStatus(primary *models.MedicineMatch, alternatives []models.AlternativeMedicine) models.AvailabilityStatus {
	switch {
	case primary != nil && primary.Available:
		return models.AvailabilityAvailable
	case hasInStockAlternative(alternatives):
		return models.AvailabilityAlternativeOnly
	default:
		return models.AvailabilityNotAvailable
	}
}

func hasInStockAlternative(alternatives []models.AlternativeMedicine) bool {
	for _, alt := range alternatives {
		if alt.Availability == models.StockInStock {
			return true
		}
	}
	return false
}

func matchesPrescriptionKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range prescriptionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// extractActiveToken pulls the likely active-ingredient token out of a raw
// medicine mention: the first alphabetic token of 4+ characters, falling back
// to the last alphabetic token.
func extractActiveToken(name string) string {
	tokens := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	last := ""
	for _, t := range tokens {
		if len(t) >= 4 {
			return strings.ToLower(t)
		}
		last = t
	}
	return strings.ToLower(last)
}
