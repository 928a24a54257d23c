package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Criterion is one evaluation requirement extracted from a tender's
// documents. TenderID never changes after insert; the update path in the
// repository excludes it.
type Criterion struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenderID            uuid.UUID      `json:"tenderID" gorm:"type:uuid;not null;index"`
	Tender              Tender         `json:"-" gorm:"foreignKey:TenderID;constraint:OnDelete:CASCADE;"`
	Title               string         `json:"title" gorm:"type:text;not null"`
	Description         string         `json:"description" gorm:"type:text"`
	Category            string         `json:"category" gorm:"type:text;index"`
	Explicitness        string         `json:"explicitness" gorm:"type:text;not null;default:'explicit'"`
	Reasoning           string         `json:"reasoning" gorm:"type:text"`
	ValidationCondition datatypes.JSON `json:"validationCondition" gorm:"type:jsonb"`
	VerificationMethod  string         `json:"verificationMethod" gorm:"type:text"`
	Weight              float64        `json:"weight" gorm:"type:numeric(5,2);not null;default:1.00"`
	IsBinary            bool           `json:"isBinary" gorm:"not null;default:false"`
	Metadata            datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	CreatedAt           time.Time      `json:"createdAt" gorm:"not null"`
	UpdatedAt           time.Time      `json:"updatedAt" gorm:"not null"`
}

func (Criterion) TableName() string { return "criteria" }

func (c *Criterion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
