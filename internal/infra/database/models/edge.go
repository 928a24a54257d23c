package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DependencyEdge is one directed edge of the criteria graph. Uniqueness
// keys on the ordered endpoint pair only; edge type is not part of the
// key. Self-loops are rejected by check constraint and again at the
// usecase layer.
type DependencyEdge struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CriteriaID   uuid.UUID `json:"criteriaID" gorm:"type:uuid;not null;uniqueIndex:idx_dependency_pair,priority:1"`
	Criteria     Criterion `json:"-" gorm:"foreignKey:CriteriaID;constraint:OnDelete:CASCADE;"`
	DependencyID uuid.UUID `json:"dependencyID" gorm:"type:uuid;not null;uniqueIndex:idx_dependency_pair,priority:2;check:chk_no_self_loop,criteria_id <> dependency_id"`
	Dependency   Criterion `json:"-" gorm:"foreignKey:DependencyID;constraint:OnDelete:CASCADE;"`
	EdgeType     string    `json:"edgeType" gorm:"type:text;not null;default:'requires'"`
	Description  string    `json:"description" gorm:"type:text"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"not null"`
}

func (DependencyEdge) TableName() string { return "dependency_edges" }

func (e *DependencyEdge) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
