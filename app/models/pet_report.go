package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ReportKind distinguishes missing-pet submissions from found-pet submissions.
type ReportKind string

const (
	ReportKindMissing ReportKind = "missing"
	ReportKindFound   ReportKind = "found"
)

type PetSex string

const (
	PetSexMale    PetSex = "male"
	PetSexFemale  PetSex = "female"
	PetSexUnknown PetSex = "unknown"
)

type PetSize string

const (
	PetSizeSmall  PetSize = "small"
	PetSizeMedium PetSize = "medium"
	PetSizeLarge  PetSize = "large"
)

// ResolutionStatus records the outcome of a resolved missing report.
type ResolutionStatus string

const (
	ResolutionAlive    ResolutionStatus = "alive"
	ResolutionDeceased ResolutionStatus = "deceased"
)

var (
	ErrResolutionFieldsMismatch = errors.New("resolution date and resolution status must both be set or both be empty")
	ErrInvalidEnumValue         = errors.New("invalid enumeration value")
)

// PetReport is one missing/found submission. The composite unique index
// mirrors the duplicate-submission rule: the same owner cannot file the same
// animal (kind, name, locality, postal code, species, color, size) twice on
// the same day.
type PetReport struct {
	ID   uint       `gorm:"primaryKey" json:"id"`
	Kind ReportKind `gorm:"type:varchar(12);not null;uniqueIndex:uix_report_identity,priority:2" json:"kind" validate:"oneof=missing found"`

	Name    string  `gorm:"type:varchar(50);not null;uniqueIndex:uix_report_identity,priority:3" json:"name" validate:"required,max=50"`
	Species string  `gorm:"type:varchar(50);not null;uniqueIndex:uix_report_identity,priority:6" json:"species" validate:"required,max=50"`
	Breed   *string `gorm:"type:varchar(50)" json:"breed,omitempty" validate:"omitempty,max=50"`
	Age     *int    `gorm:"type:int" json:"age,omitempty" validate:"omitempty,gte=0,lte=100"`

	OwnerEmail string `gorm:"type:varchar(120);not null;uniqueIndex:uix_report_identity,priority:1" json:"owner_email" validate:"required,email,max=120"`
	OwnerPhone string `gorm:"type:varchar(20);not null" json:"owner_phone" validate:"required,max=20"`

	Locality   string `gorm:"type:varchar(50);not null;uniqueIndex:uix_report_identity,priority:4" json:"locality" validate:"required,max=50"`
	PostalCode string `gorm:"type:char(5);not null;uniqueIndex:uix_report_identity,priority:5" json:"postal_code" validate:"required,len=5,numeric"`

	Color       string   `gorm:"type:varchar(30);not null;uniqueIndex:uix_report_identity,priority:7" json:"color" validate:"required,max=30"`
	Sex         PetSex   `gorm:"type:varchar(8);not null" json:"sex" validate:"oneof=male female unknown"`
	MicrochipID *string  `gorm:"type:varchar(20)" json:"microchip_id,omitempty" validate:"omitempty,max=20"`
	Weight      *float64 `gorm:"type:decimal(6,2)" json:"weight,omitempty" validate:"omitempty,gt=0,lte=500"`
	Size        PetSize  `gorm:"type:varchar(12);not null;uniqueIndex:uix_report_identity,priority:8" json:"size" validate:"oneof=small medium large"`
	Description *string  `gorm:"type:text" json:"description,omitempty" validate:"omitempty,max=2000"`

	RegisteredOn time.Time `gorm:"type:date;not null;uniqueIndex:uix_report_identity,priority:9" json:"registered_on"`

	// Resolution of a missing report: both set or both unset.
	ResolvedOn       *time.Time        `gorm:"type:date" json:"resolved_on,omitempty"`
	ResolutionStatus *ResolutionStatus `gorm:"type:varchar(10)" json:"resolution_status,omitempty"`

	Photos []Photo `gorm:"foreignKey:PetReportID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PetReport) TableName() string {
	return "pet_reports"
}

// BeforeSave normalizes identity fields and enforces the enum and
// resolution-pairing invariants before any insert or update.
func (r *PetReport) BeforeSave(tx *gorm.DB) error {
	r.Normalize()

	if !r.Kind.Valid() || !r.Sex.Valid() || !r.Size.Valid() {
		return ErrInvalidEnumValue
	}
	if r.ResolutionStatus != nil && !r.ResolutionStatus.Valid() {
		return ErrInvalidEnumValue
	}
	if (r.ResolvedOn == nil) != (r.ResolutionStatus == nil) {
		return ErrResolutionFieldsMismatch
	}
	return nil
}

// Normalize lower-cases and trims the fields that participate in the
// uniqueness key, and collapses empty optionals to NULL, the same way the
// data used to be normalized at the storage boundary.
func (r *PetReport) Normalize() {
	r.Kind = ReportKind(lowerTrim(string(r.Kind)))
	r.Name = lowerTrim(r.Name)
	r.Species = lowerTrim(r.Species)
	r.OwnerEmail = lowerTrim(r.OwnerEmail)
	r.OwnerPhone = strings.TrimSpace(r.OwnerPhone)
	r.Locality = lowerTrim(r.Locality)
	r.PostalCode = strings.TrimSpace(r.PostalCode)
	r.Color = lowerTrim(r.Color)
	r.Sex = PetSex(lowerTrim(string(r.Sex)))
	r.Size = PetSize(lowerTrim(string(r.Size)))

	r.Breed = optionalString(r.Breed)
	r.MicrochipID = optionalString(r.MicrochipID)
	r.Description = optionalString(r.Description)
	if r.ResolutionStatus != nil {
		s := ResolutionStatus(lowerTrim(string(*r.ResolutionStatus)))
		if s == "" {
			r.ResolutionStatus = nil
		} else {
			r.ResolutionStatus = &s
		}
	}
}

// Validate checks the struct tags after normalization.
func (r *PetReport) Validate() error {
	r.Normalize()

	v := validator.New()

	return v.Struct(r)
}

// IsResolved reports whether the resolution fields are set.
func (r *PetReport) IsResolved() bool {
	return r.ResolvedOn != nil && r.ResolutionStatus != nil
}

func (k ReportKind) Valid() bool {
	return k == ReportKindMissing || k == ReportKindFound
}

func (s PetSex) Valid() bool {
	return s == PetSexMale || s == PetSexFemale || s == PetSexUnknown
}

func (s PetSize) Valid() bool {
	return s == PetSizeSmall || s == PetSizeMedium || s == PetSizeLarge
}

func (s ResolutionStatus) Valid() bool {
	return s == ResolutionAlive || s == ResolutionDeceased
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
