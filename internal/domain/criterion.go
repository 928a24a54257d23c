package domain

import (
	"time"

	"github.com/google/uuid"
)

// Criterion is one evaluation requirement belonging to exactly one tender.
// TenderID is immutable after creation.
type Criterion struct {
	ID                  uuid.UUID      `json:"id"`
	TenderID            uuid.UUID      `json:"tenderID"`
	Title               string         `json:"title"`
	Description         string         `json:"description,omitempty"`
	Category            string         `json:"category,omitempty"`
	Explicitness        string         `json:"explicitness"`
	Reasoning           string         `json:"reasoning,omitempty"`
	ValidationCondition map[string]any `json:"validationCondition,omitempty"`
	VerificationMethod  string         `json:"verificationMethod,omitempty"`
	Weight              float64        `json:"weight"`
	IsBinary            bool           `json:"isBinary"`
	Metadata            map[string]any `json:"metadata,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// CriterionPatch carries the mutable fields of a criterion. There is no
// tender field: a criterion cannot be moved to another tender.
type CriterionPatch struct {
	Title               *string         `json:"title,omitempty"`
	Description         *string         `json:"description,omitempty"`
	Category            *string         `json:"category,omitempty"`
	Explicitness        *string         `json:"explicitness,omitempty"`
	Reasoning           *string         `json:"reasoning,omitempty"`
	ValidationCondition *map[string]any `json:"validationCondition,omitempty"`
	VerificationMethod  *string         `json:"verificationMethod,omitempty"`
	Weight              *float64        `json:"weight,omitempty"`
	IsBinary            *bool           `json:"isBinary,omitempty"`
	Metadata            *map[string]any `json:"metadata,omitempty"`
}
