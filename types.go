package tendergraph

import (
	"encoding/json"
	"time"
)

const (
	EventCriterionCreated = "criterion.created"
	EventCriterionUpdated = "criterion.updated"
	EventCriterionDeleted = "criterion.deleted"
	EventEdgeCreated      = "edge.created"
	EventEdgeDeactivated  = "edge.deactivated"
	EventEvidenceAttached = "evidence.attached"

	EventChannelCriteria = "tendergraph:criteria"
)

// Event is the envelope published on the criteria channel and forwarded
// to websocket subscribers.
type Event struct {
	Type       string          `json:"type"`
	ResourceID string          `json:"resourceID"`
	TenderID   string          `json:"tenderID,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ServiceInfo is the well-known descriptor for this node.
type ServiceInfo struct {
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Endpoints map[string]string `json:"endpoints"`
}
