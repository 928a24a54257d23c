package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/openprocure/tendergraph"
	"github.com/openprocure/tendergraph/internal/domain"
	"github.com/openprocure/tendergraph/internal/infra/repository"
	"github.com/openprocure/tendergraph/internal/service"
	"github.com/openprocure/tendergraph/internal/usecase"
)

// EventSubscriber feeds the websocket stream. Nil when no broker is
// configured; the endpoint then reports unavailable.
type EventSubscriber interface {
	Subscribe(ctx context.Context, channel string) <-chan []byte
}

type Handler struct {
	criterion  *usecase.CriterionUsecase
	graph      *usecase.GraphUsecase
	evidence   *usecase.EvidenceUsecase
	tenders    *repository.TenderRepository
	suggester  *service.DocTypeSuggester
	subscriber EventSubscriber
	upgrader   websocket.Upgrader
}

func NewHandler(
	criterion *usecase.CriterionUsecase,
	graph *usecase.GraphUsecase,
	evidence *usecase.EvidenceUsecase,
	tenders *repository.TenderRepository,
	suggester *service.DocTypeSuggester,
	subscriber EventSubscriber,
) *Handler {
	return &Handler{
		criterion:  criterion,
		graph:      graph,
		evidence:   evidence,
		tenders:    tenders,
		suggester:  suggester,
		subscriber: subscriber,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/.well-known/tendergraph", h.handleWellKnown)

	e.POST("/api/v1/tenders", h.handleCreateTender)
	e.DELETE("/api/v1/tenders/:id", h.handleDeleteTender)
	e.POST("/api/v1/documents", h.handleCreateDocument)
	e.DELETE("/api/v1/documents/:id", h.handleDeleteDocument)
	e.POST("/api/v1/images", h.handleCreateImage)

	e.POST("/api/v1/criteria", h.handleCreateCriterion)
	e.GET("/api/v1/criteria", h.handleListCriteria)
	e.PUT("/api/v1/criteria/:id", h.handleUpdateCriterion)
	e.DELETE("/api/v1/criteria/:id", h.handleDeleteCriterion)

	e.POST("/api/v1/edges", h.handleAddEdge)
	e.DELETE("/api/v1/edges/:id", h.handleDeactivateEdge)
	e.GET("/api/v1/criteria/:id/dependencies", h.handleDependencies)
	e.GET("/api/v1/graph/path", h.handleHasPath)

	e.POST("/api/v1/evidence", h.handleAttachEvidence)
	e.GET("/api/v1/criteria/:id/evidence", h.handleEvidenceFor)
	e.GET("/api/v1/evidence/:id/tender", h.handleTenderForEvidence)
	e.GET("/api/v1/tenders/:id/images", h.handleImagesForTender)

	e.GET("/api/v1/doctype/suggest", h.handleSuggestDocType)
	e.GET("/api/v1/events", h.handleEvents)
}

func (h *Handler) handleWellKnown(c echo.Context) error {
	info := tendergraph.ServiceInfo{
		Version: "1.0",
		Service: "tendergraph",
		Endpoints: map[string]string{
			"criteria":     "/api/v1/criteria",
			"edges":        "/api/v1/edges",
			"evidence":     "/api/v1/evidence",
			"dependencies": "/api/v1/criteria/{id}/dependencies",
			"events":       "/api/v1/events",
		},
	}
	return c.JSON(http.StatusOK, info)
}

// writeError maps the domain taxonomy onto status codes. Validation and
// graph shape problems are the caller's fault; missing foreign keys are
// unprocessable; everything else is ours.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrSelfLoop), errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateEdge):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrReference):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}

func pathID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func decodePatch(raw map[string]any) (domain.CriterionPatch, error) {
	var patch domain.CriterionPatch
	encoded, err := json.Marshal(raw)
	if err != nil {
		return patch, err
	}
	if err := json.Unmarshal(encoded, &patch); err != nil {
		return patch, err
	}
	return patch, nil
}

// --- external stores ---

func (h *Handler) handleCreateTender(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name      string `json:"name"`
		Reference string `json:"reference"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	tender, err := h.tenders.CreateTender(ctx, req.Name, req.Reference)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, tender)
}

func (h *Handler) handleDeleteTender(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.tenders.DeleteTender(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handler) handleCreateDocument(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		TenderID uuid.UUID `json:"tenderID"`
		Name     string    `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	document, err := h.tenders.CreateDocument(ctx, req.TenderID, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, document)
}

func (h *Handler) handleDeleteDocument(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.tenders.DeleteDocument(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handler) handleCreateImage(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		DocumentID uuid.UUID `json:"documentID"`
		Path       string    `json:"path"`
		ImageType  string    `json:"imageType"`
		PageNumber *int      `json:"pageNumber"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	image, err := h.tenders.CreateImage(ctx, req.DocumentID, req.Path, req.ImageType, req.PageNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, image)
}

// --- criteria ---

func (h *Handler) handleCreateCriterion(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		TenderID            uuid.UUID      `json:"tenderID"`
		Title               string         `json:"title"`
		Description         string         `json:"description"`
		Category            string         `json:"category"`
		Explicitness        string         `json:"explicitness"`
		Reasoning           string         `json:"reasoning"`
		ValidationCondition map[string]any `json:"validationCondition"`
		VerificationMethod  string         `json:"verificationMethod"`
		Weight              *float64       `json:"weight"`
		IsBinary            bool           `json:"isBinary"`
		Metadata            map[string]any `json:"metadata"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	created, err := h.criterion.Create(ctx, usecase.CreateCriterionInput{
		TenderID:            req.TenderID,
		Title:               req.Title,
		Description:         req.Description,
		Category:            req.Category,
		Explicitness:        req.Explicitness,
		Reasoning:           req.Reasoning,
		ValidationCondition: req.ValidationCondition,
		VerificationMethod:  req.VerificationMethod,
		Weight:              req.Weight,
		IsBinary:            req.IsBinary,
		Metadata:            req.Metadata,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) handleListCriteria(c echo.Context) error {
	ctx := c.Request().Context()

	tenderID, err := uuid.Parse(c.QueryParam("tender"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tender query parameter is required"})
	}

	criteria, err := h.criterion.ListByTenderAndCategory(ctx, tenderID, c.QueryParam("category"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, criteria)
}

func (h *Handler) handleUpdateCriterion(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	// Raw map first: a tenderID key is rejected outright rather than
	// silently dropped, criteria never move between tenders.
	var raw map[string]any
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if _, found := raw["tenderID"]; found {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenderID is immutable"})
	}
	if _, found := raw["tender_id"]; found {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenderID is immutable"})
	}

	patch, err := decodePatch(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	updated, err := h.criterion.Update(ctx, id, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) handleDeleteCriterion(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.criterion.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// --- graph ---

func (h *Handler) handleAddEdge(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		CriteriaID   uuid.UUID `json:"criteriaID"`
		DependencyID uuid.UUID `json:"dependencyID"`
		EdgeType     string    `json:"edgeType"`
		Description  string    `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	edge, err := h.graph.AddEdge(ctx, usecase.AddEdgeInput{
		CriteriaID:   req.CriteriaID,
		DependencyID: req.DependencyID,
		EdgeType:     req.EdgeType,
		Description:  req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, edge)
}

func (h *Handler) handleDeactivateEdge(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.graph.Deactivate(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handler) handleDependencies(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	deps, err := h.graph.DependenciesOf(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, deps)
}

func (h *Handler) handleHasPath(c echo.Context) error {
	from, err := uuid.Parse(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from parameter"})
	}
	to, err := uuid.Parse(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to parameter"})
	}

	found, err := h.graph.HasPath(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hasPath": found})
}

// --- evidence ---

func (h *Handler) handleAttachEvidence(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		CriteriaID       uuid.UUID  `json:"criteriaID"`
		DocumentID       *uuid.UUID `json:"documentID"`
		ImageID          *uuid.UUID `json:"imageID"`
		Extract          string     `json:"extract"`
		PageNumber       *int       `json:"pageNumber"`
		SectionReference string     `json:"sectionReference"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ev, err := h.evidence.Attach(ctx, usecase.AttachEvidenceInput{
		CriteriaID:       req.CriteriaID,
		DocumentID:       req.DocumentID,
		ImageID:          req.ImageID,
		Extract:          req.Extract,
		PageNumber:       req.PageNumber,
		SectionReference: req.SectionReference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ev)
}

func (h *Handler) handleEvidenceFor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	trail, err := h.evidence.EvidenceFor(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, trail)
}

func (h *Handler) handleTenderForEvidence(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	tenderID, err := h.evidence.TenderIDFor(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tenderID": tenderID})
}

func (h *Handler) handleImagesForTender(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	images, err := h.evidence.ImagesForTender(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, images)
}

// --- collaborators ---

func (h *Handler) handleSuggestDocType(c echo.Context) error {
	filename := c.QueryParam("filename")
	if filename == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "filename query parameter is required"})
	}

	docType, matched := h.suggester.Suggest(filename)
	return c.JSON(http.StatusOK, echo.Map{"type": docType, "matched": matched})
}

func (h *Handler) handleEvents(c echo.Context) error {
	if h.subscriber == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "event stream not configured"})
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()
	events := h.subscriber.Subscribe(ctx, tendergraph.EventChannelCriteria)

	for payload := range events {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return nil
		}
	}
	return nil
}
