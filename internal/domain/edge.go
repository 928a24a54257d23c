package domain

import (
	"time"

	"github.com/google/uuid"
)

// DependencyEdge is a directed, typed relationship between two criteria.
// Endpoints are never re-pointed; an edge is deactivated and re-created.
type DependencyEdge struct {
	ID           uuid.UUID `json:"id"`
	CriteriaID   uuid.UUID `json:"criteriaID"`
	DependencyID uuid.UUID `json:"dependencyID"`
	EdgeType     string    `json:"edgeType"`
	Description  string    `json:"description,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Dependency is one entry of a dependenciesOf traversal: the dependency
// criterion with the edge type that binds it.
type Dependency struct {
	DependencyID uuid.UUID `json:"dependencyID"`
	Title        string    `json:"title"`
	EdgeType     string    `json:"edgeType"`
}
