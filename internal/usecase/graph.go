package usecase

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"

	"github.com/openprocure/tendergraph"
	"github.com/openprocure/tendergraph/internal/domain"
)

// GraphRepository defines persistence for the criteria dependency graph.
type GraphRepository interface {
	AddEdge(ctx context.Context, edge domain.DependencyEdge) (domain.DependencyEdge, error)
	Deactivate(ctx context.Context, edgeID uuid.UUID) error
	Get(ctx context.Context, edgeID uuid.UUID) (domain.DependencyEdge, error)
	DependenciesOf(ctx context.Context, criterionID uuid.UUID) ([]domain.Dependency, error)
	ActiveNeighbors(ctx context.Context, from []uuid.UUID) ([]uuid.UUID, error)
}

// AddEdgeInput is the validated input for a new dependency edge.
type AddEdgeInput struct {
	CriteriaID   uuid.UUID
	DependencyID uuid.UUID
	EdgeType     string
	Description  string
}

type GraphUsecase struct {
	repo   GraphRepository
	signal EventPublisher
}

func NewGraphUsecase(repo GraphRepository, signal EventPublisher) *GraphUsecase {
	return &GraphUsecase{repo: repo, signal: signal}
}

// AddEdge links two existing criteria. It does not check reachability:
// callers that require a cycle-free graph run HasPath(to, from) and
// AddEdge inside one storage transaction.
func (uc *GraphUsecase) AddEdge(ctx context.Context, input AddEdgeInput) (domain.DependencyEdge, error) {
	ctx, span := tracer.Start(ctx, "Graph.Usecase.AddEdge")
	defer span.End()

	if input.CriteriaID == input.DependencyID {
		return domain.DependencyEdge{}, domain.SelfLoopError{CriterionID: input.CriteriaID.String()}
	}

	edgeType := input.EdgeType
	if edgeType == "" {
		edgeType = domain.EdgeTypeRequires
	}
	if !domain.EdgeTypeValid(edgeType) {
		return domain.DependencyEdge{}, domain.ValidationError{Message: "edge type must be requires, conflicts or enhances"}
	}

	edge, err := uc.repo.AddEdge(ctx, domain.DependencyEdge{
		CriteriaID:   input.CriteriaID,
		DependencyID: input.DependencyID,
		EdgeType:     edgeType,
		Description:  input.Description,
	})
	if err != nil {
		span.RecordError(err)
		return domain.DependencyEdge{}, err
	}

	uc.emit(ctx, tendergraph.EventEdgeCreated, edge.ID.String())

	return edge, nil
}

// Deactivate retires an edge from traversal. The row stays for audit;
// endpoints are never re-pointed.
func (uc *GraphUsecase) Deactivate(ctx context.Context, edgeID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "Graph.Usecase.Deactivate")
	defer span.End()

	err := uc.repo.Deactivate(ctx, edgeID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	uc.emit(ctx, tendergraph.EventEdgeDeactivated, edgeID.String())

	return nil
}

func (uc *GraphUsecase) DependenciesOf(ctx context.Context, criterionID uuid.UUID) ([]domain.Dependency, error) {
	return uc.repo.DependenciesOf(ctx, criterionID)
}

// HasPath reports whether b is reachable from a over active edges. The
// visited set guarantees termination even when a cycle is already stored.
func (uc *GraphUsecase) HasPath(ctx context.Context, a, b uuid.UUID) (bool, error) {
	ctx, span := tracer.Start(ctx, "Graph.Usecase.HasPath")
	defer span.End()

	if a == b {
		return true, nil
	}

	visited := mapset.NewSet[uuid.UUID]()
	visited.Add(a)
	frontier := []uuid.UUID{a}

	for len(frontier) > 0 {
		neighbors, err := uc.repo.ActiveNeighbors(ctx, frontier)
		if err != nil {
			span.RecordError(err)
			return false, err
		}

		frontier = frontier[:0]
		for _, id := range neighbors {
			if id == b {
				return true, nil
			}
			if visited.Add(id) {
				frontier = append(frontier, id)
			}
		}
	}

	return false, nil
}

func (uc *GraphUsecase) emit(ctx context.Context, eventType, resourceID string) {
	if uc.signal == nil {
		return
	}
	err := uc.signal.Publish(ctx, tendergraph.EventChannelCriteria, tendergraph.Event{
		Type:       eventType,
		ResourceID: resourceID,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		// Events are best-effort; the committed write stands.
		trace.SpanFromContext(ctx).RecordError(errors.Wrap(err, "event publish failed"))
	}
}
