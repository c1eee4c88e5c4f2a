package repository

import (
	"petalert/app/models"

	"gorm.io/gorm"
)

// photoRepository implements the PhotoRepository interface
type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new photo repository instance
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

// Create stores a new photo in the database
func (r *photoRepository) Create(photo *models.Photo) error {
	return r.db.Create(photo).Error
}

// GetByID retrieves a photo by its ID
func (r *photoRepository) GetByID(id uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.First(&photo, id).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// GetByReportID retrieves all photos belonging to a report
func (r *photoRepository) GetByReportID(reportID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.Where("pet_report_id = ?", reportID).Order("id ASC").Find(&photos).Error
	return photos, err
}

// GetByReportAndRole retrieves the photo of a report with the given role
func (r *photoRepository) GetByReportAndRole(reportID uint, role string) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.Where("pet_report_id = ? AND role = ?", reportID, role).First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// Delete removes a photo by its ID
func (r *photoRepository) Delete(id uint) error {
	return r.db.Delete(&models.Photo{}, id).Error
}

// DeleteByReportID removes all photos belonging to a report
func (r *photoRepository) DeleteByReportID(reportID uint) error {
	return r.db.Where("pet_report_id = ?", reportID).Delete(&models.Photo{}).Error
}
