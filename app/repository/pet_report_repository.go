package repository

import (
	"strings"
	"time"

	"petalert/app/models"
	"petalert/internal/pkg/matching"

	"gorm.io/gorm"
)

// petReportRepository implements the PetReportRepository interface
type petReportRepository struct {
	db *gorm.DB
}

// NewPetReportRepository creates a new pet report repository instance
func NewPetReportRepository(db *gorm.DB) PetReportRepository {
	return &petReportRepository{db: db}
}

// Create creates a new pet report in the database
func (r *petReportRepository) Create(report *models.PetReport) error {
	return r.db.Create(report).Error
}

// GetByID retrieves a pet report with its photos by its ID
func (r *petReportRepository) GetByID(id uint) (*models.PetReport, error) {
	var report models.PetReport
	err := r.db.Preload("Photos").First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Update updates an existing pet report in the database
func (r *petReportRepository) Update(report *models.PetReport) error {
	return r.db.Save(report).Error
}

// Delete removes a pet report and its photos by its ID
func (r *petReportRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pet_report_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PetReport{}, id).Error
	})
}

// Search retrieves pet reports matching the given filters with pagination
func (r *petReportRepository) Search(filters ReportFilters, offset, limit int) ([]models.PetReport, error) {
	var reports []models.PetReport
	err := r.applyFilters(filters).Preload("Photos").
		Order("registered_on DESC, id DESC").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, err
}

// Count returns the number of pet reports matching the given filters
func (r *petReportRepository) Count(filters ReportFilters) (int64, error) {
	var count int64
	err := r.applyFilters(filters).Model(&models.PetReport{}).Count(&count).Error
	return count, err
}

// ExistsDuplicate checks whether another report with the same identity key
// already exists. The identity covers owner email, kind, name, locality,
// postal code, species, color, size and registration date.
func (r *petReportRepository) ExistsDuplicate(report *models.PetReport, excludeID uint) (bool, error) {
	q := r.db.Model(&models.PetReport{}).
		Where("owner_email = ?", report.OwnerEmail).
		Where("kind = ?", report.Kind).
		Where("name = ?", report.Name).
		Where("locality = ?", report.Locality).
		Where("postal_code = ?", report.PostalCode).
		Where("species = ?", report.Species).
		Where("color = ?", report.Color).
		Where("size = ?", report.Size).
		Where("registered_on = ?", report.RegisteredOn.Format("2006-01-02"))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UnresolvedMissingBefore returns the owners of missing reports that were
// registered on or before the given date and have not been resolved yet.
// Reports without an owner email are skipped.
func (r *petReportRepository) UnresolvedMissingBefore(date time.Time) ([]matching.Candidate, error) {
	var reports []models.PetReport
	err := r.db.Model(&models.PetReport{}).
		Select("owner_email", "postal_code", "locality", "registered_on").
		Where("kind = ?", models.ReportKindMissing).
		Where("registered_on <= ?", date.Format("2006-01-02")).
		Where("resolved_on IS NULL").
		Where("resolution_status IS NULL").
		Where("owner_email <> ''").
		Order("id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]matching.Candidate, 0, len(reports))
	for _, rep := range reports {
		candidates = append(candidates, matching.Candidate{
			OwnerEmail:   rep.OwnerEmail,
			PostalCode:   rep.PostalCode,
			Locality:     rep.Locality,
			RegisteredOn: rep.RegisteredOn,
		})
	}
	return candidates, nil
}

// FoundCandidatesFor returns found reports of the same species registered on
// or after the missing report's date, oldest first. Only reports that carry
// at least one photo are returned, since they feed photo comparison.
func (r *petReportRepository) FoundCandidatesFor(missing *models.PetReport) ([]models.PetReport, error) {
	var reports []models.PetReport
	err := r.db.Preload("Photos").
		Where("kind = ?", models.ReportKindFound).
		Where("species = ?", strings.ToLower(strings.TrimSpace(missing.Species))).
		Where("registered_on >= ?", missing.RegisteredOn.Format("2006-01-02")).
		Order("registered_on ASC, id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	withPhotos := reports[:0]
	for _, rep := range reports {
		if len(rep.Photos) > 0 {
			withPhotos = append(withPhotos, rep)
		}
	}
	return withPhotos, nil
}

// Resolve marks a missing report as resolved with the given date and status.
func (r *petReportRepository) Resolve(id uint, on time.Time, status string) error {
	report, err := r.GetByID(id)
	if err != nil {
		return err
	}
	s := models.ResolutionStatus(status)
	report.ResolvedOn = &on
	report.ResolutionStatus = &s
	return r.db.Save(report).Error
}

// applyFilters builds a query from the non-zero filter fields
func (r *petReportRepository) applyFilters(filters ReportFilters) *gorm.DB {
	q := r.db.Model(&models.PetReport{})
	if filters.Kind != "" {
		q = q.Where("kind = ?", strings.ToLower(filters.Kind))
	}
	if filters.Name != "" {
		q = q.Where("name LIKE ?", "%"+strings.ToLower(filters.Name)+"%")
	}
	if filters.Species != "" {
		q = q.Where("species LIKE ?", "%"+strings.ToLower(filters.Species)+"%")
	}
	if filters.Breed != "" {
		q = q.Where("breed LIKE ?", "%"+strings.ToLower(filters.Breed)+"%")
	}
	if filters.Color != "" {
		q = q.Where("color LIKE ?", "%"+strings.ToLower(filters.Color)+"%")
	}
	if filters.Sex != "" {
		q = q.Where("sex = ?", strings.ToLower(filters.Sex))
	}
	if filters.Size != "" {
		q = q.Where("size = ?", strings.ToLower(filters.Size))
	}
	if filters.Locality != "" {
		q = q.Where("locality LIKE ?", "%"+strings.ToLower(filters.Locality)+"%")
	}
	if filters.PostalCode != "" {
		q = q.Where("postal_code = ?", filters.PostalCode)
	}
	if filters.OwnerEmail != "" {
		q = q.Where("owner_email = ?", strings.ToLower(filters.OwnerEmail))
	}
	if filters.Resolved != nil {
		if *filters.Resolved {
			q = q.Where("resolved_on IS NOT NULL")
		} else {
			q = q.Where("resolved_on IS NULL")
		}
	}
	if filters.RegisteredFrom != nil {
		q = q.Where("registered_on >= ?", filters.RegisteredFrom.Format("2006-01-02"))
	}
	if filters.RegisteredTo != nil {
		q = q.Where("registered_on <= ?", filters.RegisteredTo.Format("2006-01-02"))
	}
	return q
}
