package models

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Photo is a binary image owned by exactly one PetReport. The composite
// unique index keeps at most one photo per (report, role); a same-role upload
// replaces the previous row.
type Photo struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	PetReportID uint   `gorm:"not null;index;uniqueIndex:uix_photo_report_role,priority:1" json:"pet_report_id"`
	Role        string `gorm:"type:varchar(30);not null;uniqueIndex:uix_photo_report_role,priority:2" json:"role"`

	Data      []byte `gorm:"type:mediumblob;not null" json:"-"`
	ThumbData []byte `gorm:"type:blob" json:"-"`
	MimeType  string `gorm:"type:varchar(50)" json:"mime_type"`
	FileName  string `gorm:"type:varchar(120)" json:"file_name"`
	SizeBytes int64  `gorm:"type:bigint" json:"size_bytes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Photo) TableName() string {
	return "photos"
}

// BeforeSave keeps the role tag in its canonical lower-case form.
func (p *Photo) BeforeSave(tx *gorm.DB) error {
	p.Role = strings.ToLower(strings.TrimSpace(p.Role))
	if p.Role == "" {
		p.Role = "unknown"
	}
	return nil
}

// URL returns the route that serves this photo's bytes.
func (p *Photo) URL() string {
	return "/photos/" + strconv.FormatUint(uint64(p.ID), 10)
}

// ThumbURL returns the route that serves the small preview.
func (p *Photo) ThumbURL() string {
	return p.URL() + "/thumb"
}
