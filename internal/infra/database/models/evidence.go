package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Evidence binds a criterion to a document fragment and/or an extracted
// image. The owning tender is deliberately not stored here; it is
// recovered via criteria.tender_id. Source references are cleared, not
// the row, when a document or image is deleted.
//
// "At least one source" is enforced at write time, not by check
// constraint: a check would forbid clearing the last surviving source
// reference on document deletion.
type Evidence struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CriteriaID       uuid.UUID      `json:"criteriaID" gorm:"type:uuid;not null;index"`
	Criteria         Criterion      `json:"-" gorm:"foreignKey:CriteriaID;constraint:OnDelete:CASCADE;"`
	DocumentID       *uuid.UUID     `json:"documentID" gorm:"type:uuid;index"`
	Document         *Document      `json:"-" gorm:"foreignKey:DocumentID;constraint:OnDelete:SET NULL;"`
	ImageID          *uuid.UUID     `json:"imageID" gorm:"type:uuid;index"`
	Image            *DocumentImage `json:"-" gorm:"foreignKey:ImageID;constraint:OnDelete:SET NULL;"`
	Extract          string         `json:"extract" gorm:"type:text"`
	ExtractHash      string         `json:"extractHash" gorm:"type:text;index"`
	PageNumber       *int           `json:"pageNumber" gorm:"type:integer"`
	SectionReference string         `json:"sectionReference" gorm:"type:text"`
	CreatedAt        time.Time      `json:"createdAt" gorm:"not null"`
}

func (Evidence) TableName() string { return "evidence" }

func (e *Evidence) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
