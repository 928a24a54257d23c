package domain

import (
	"time"

	"github.com/google/uuid"
)

// Evidence links a criterion to the document fragment and/or extracted
// image that justifies it. At least one of DocumentID/ImageID is present
// at creation; either may later become nil if its source is deleted, the
// extract text survives. Rows are immutable once written.
type Evidence struct {
	ID               uuid.UUID  `json:"id"`
	CriteriaID       uuid.UUID  `json:"criteriaID"`
	DocumentID       *uuid.UUID `json:"documentID,omitempty"`
	ImageID          *uuid.UUID `json:"imageID,omitempty"`
	Extract          string     `json:"extract"`
	ExtractHash      string     `json:"extractHash,omitempty"`
	PageNumber       *int       `json:"pageNumber,omitempty"`
	SectionReference string     `json:"sectionReference,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`

	// DocumentName is resolved by join at read time and absent when the
	// source document has been removed.
	DocumentName *string `json:"documentName,omitempty"`
}

// TenderImage is one entry of the image -> document -> tender recovery
// query.
type TenderImage struct {
	ImageID      uuid.UUID `json:"imageID"`
	Path         string    `json:"path"`
	ImageType    string    `json:"imageType"`
	DocumentName string    `json:"documentName"`
	PageNumber   *int      `json:"pageNumber,omitempty"`
}
