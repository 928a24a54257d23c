package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tender is the root owner of criteria and documents. The ingestion
// pipeline populates these rows before any criterion exists.
type Tender struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Reference string    `json:"reference" gorm:"type:text;index"`
	Status    string    `json:"status" gorm:"type:text;not null;default:'open'"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

type Document struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TenderID  uuid.UUID `json:"tenderID" gorm:"type:uuid;not null;index"`
	Tender    Tender    `json:"-" gorm:"foreignKey:TenderID;constraint:OnDelete:CASCADE;"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Status    string    `json:"status" gorm:"type:text;not null;default:'pending'"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

// DocumentImage is an extracted image, always scoped to exactly one
// document. Its tender is reachable only via the document.
type DocumentImage struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DocumentID uuid.UUID `json:"documentID" gorm:"type:uuid;not null;index"`
	Document   Document  `json:"-" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE;"`
	Path       string    `json:"path" gorm:"type:text;not null"`
	ImageType  string    `json:"imageType" gorm:"type:text"`
	PageNumber *int      `json:"pageNumber" gorm:"type:integer"`
	CreatedAt  time.Time `json:"createdAt" gorm:"not null"`
}

// DocumentType is one row of the filename classification rule table.
type DocumentType struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name    string    `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Pattern string    `json:"pattern" gorm:"type:text;not null"`
}

func (t *Tender) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (i *DocumentImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (t *DocumentType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
