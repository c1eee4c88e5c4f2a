package repository

import (
	"time"

	"petalert/app/models"
	"petalert/internal/pkg/matching"

	"gorm.io/gorm"
)

// ReportFilters describes the optional criteria for searching pet reports.
// Zero values mean "no filter" for the respective field.
type ReportFilters struct {
	Kind           string
	Name           string
	Species        string
	Breed          string
	Color          string
	Sex            string
	Size           string
	Locality       string
	PostalCode     string
	OwnerEmail     string
	Resolved       *bool
	RegisteredFrom *time.Time
	RegisteredTo   *time.Time
}

// PetReportRepository defines the interface for pet report database operations
type PetReportRepository interface {
	Create(report *models.PetReport) error
	GetByID(id uint) (*models.PetReport, error)
	Update(report *models.PetReport) error
	Delete(id uint) error
	Search(filters ReportFilters, offset, limit int) ([]models.PetReport, error)
	Count(filters ReportFilters) (int64, error)
	ExistsDuplicate(report *models.PetReport, excludeID uint) (bool, error)
	UnresolvedMissingBefore(date time.Time) ([]matching.Candidate, error)
	FoundCandidatesFor(missing *models.PetReport) ([]models.PetReport, error)
	Resolve(id uint, on time.Time, status string) error
}

// PhotoRepository defines the interface for pet photo database operations
type PhotoRepository interface {
	Create(photo *models.Photo) error
	GetByID(id uint) (*models.Photo, error)
	GetByReportID(reportID uint) ([]models.Photo, error)
	GetByReportAndRole(reportID uint, role string) (*models.Photo, error)
	Delete(id uint) error
	DeleteByReportID(reportID uint) error
}

// Repositories holds all repository instances
type Repositories struct {
	PetReport PetReportRepository
	Photo     PhotoRepository
}

// NewRepositories creates all repositories with the given database connection
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		PetReport: NewPetReportRepository(db),
		Photo:     NewPhotoRepository(db),
	}
}
