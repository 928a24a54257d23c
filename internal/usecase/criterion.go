package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/openprocure/tendergraph"
	"github.com/openprocure/tendergraph/internal/domain"
)

var tracer = otel.Tracer("usecase")

// CriterionRepository defines persistence for criteria.
type CriterionRepository interface {
	Create(ctx context.Context, c domain.Criterion) (domain.Criterion, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Criterion, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.CriterionPatch) (domain.Criterion, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTenderAndCategory(ctx context.Context, tenderID uuid.UUID, category string) ([]domain.Criterion, error)
}

// EventPublisher fans out change events. Publish failures never fail the
// write they follow.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event tendergraph.Event) error
}

// CreateCriterionInput is the validated input for criterion creation.
type CreateCriterionInput struct {
	TenderID            uuid.UUID
	Title               string
	Description         string
	Category            string
	Explicitness        string
	Reasoning           string
	ValidationCondition map[string]any
	VerificationMethod  string
	Weight              *float64
	IsBinary            bool
	Metadata            map[string]any
}

type CriterionUsecase struct {
	repo   CriterionRepository
	signal EventPublisher
}

func NewCriterionUsecase(repo CriterionRepository, signal EventPublisher) *CriterionUsecase {
	return &CriterionUsecase{repo: repo, signal: signal}
}

func (uc *CriterionUsecase) Create(ctx context.Context, input CreateCriterionInput) (domain.Criterion, error) {
	ctx, span := tracer.Start(ctx, "Criterion.Usecase.Create")
	defer span.End()

	if input.Title == "" {
		return domain.Criterion{}, domain.ValidationError{Message: "title must not be empty"}
	}

	explicitness := input.Explicitness
	if explicitness == "" {
		explicitness = domain.ExplicitnessExplicit
	}
	if !domain.ExplicitnessValid(explicitness) {
		return domain.Criterion{}, domain.ValidationError{Message: "explicitness must be explicit or implicit"}
	}
	// The storage layer leaves this unconstrained; the write path does not.
	if explicitness == domain.ExplicitnessImplicit && input.Reasoning == "" {
		return domain.Criterion{}, domain.ValidationError{Message: "implicit criteria require reasoning"}
	}

	weight := domain.DefaultWeight
	if input.Weight != nil {
		if *input.Weight < 0 {
			return domain.Criterion{}, domain.ValidationError{Message: "weight must not be negative"}
		}
		weight = *input.Weight
	}

	created, err := uc.repo.Create(ctx, domain.Criterion{
		TenderID:            input.TenderID,
		Title:               input.Title,
		Description:         input.Description,
		Category:            input.Category,
		Explicitness:        explicitness,
		Reasoning:           input.Reasoning,
		ValidationCondition: input.ValidationCondition,
		VerificationMethod:  input.VerificationMethod,
		Weight:              weight,
		IsBinary:            input.IsBinary,
		Metadata:            input.Metadata,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Criterion{}, err
	}

	uc.emit(ctx, tendergraph.EventCriterionCreated, created.ID.String(), created.TenderID.String(), created)

	return created, nil
}

func (uc *CriterionUsecase) Get(ctx context.Context, id uuid.UUID) (domain.Criterion, error) {
	return uc.repo.Get(ctx, id)
}

func (uc *CriterionUsecase) Update(ctx context.Context, id uuid.UUID, patch domain.CriterionPatch) (domain.Criterion, error) {
	ctx, span := tracer.Start(ctx, "Criterion.Usecase.Update")
	defer span.End()

	if patch.Title != nil && *patch.Title == "" {
		return domain.Criterion{}, domain.ValidationError{Message: "title must not be empty"}
	}
	if patch.Explicitness != nil && !domain.ExplicitnessValid(*patch.Explicitness) {
		return domain.Criterion{}, domain.ValidationError{Message: "explicitness must be explicit or implicit"}
	}
	if patch.Weight != nil && *patch.Weight < 0 {
		return domain.Criterion{}, domain.ValidationError{Message: "weight must not be negative"}
	}

	// The implicit/reasoning pair is validated on the effective state
	// after the patch: switching to implicit without reasoning and
	// clearing the reasoning of an implicit criterion are both rejected.
	checkImplicit := (patch.Explicitness != nil && *patch.Explicitness == domain.ExplicitnessImplicit) ||
		(patch.Reasoning != nil && *patch.Reasoning == "")
	if checkImplicit {
		explicitness, reasoning := "", ""
		if patch.Explicitness != nil {
			explicitness = *patch.Explicitness
		}
		if patch.Reasoning != nil {
			reasoning = *patch.Reasoning
		}
		if patch.Explicitness == nil || patch.Reasoning == nil {
			current, err := uc.repo.Get(ctx, id)
			if err != nil {
				return domain.Criterion{}, err
			}
			if patch.Explicitness == nil {
				explicitness = current.Explicitness
			}
			if patch.Reasoning == nil {
				reasoning = current.Reasoning
			}
		}
		if explicitness == domain.ExplicitnessImplicit && reasoning == "" {
			return domain.Criterion{}, domain.ValidationError{Message: "implicit criteria require reasoning"}
		}
	}

	updated, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		span.RecordError(err)
		return domain.Criterion{}, err
	}

	uc.emit(ctx, tendergraph.EventCriterionUpdated, updated.ID.String(), updated.TenderID.String(), updated)

	return updated, nil
}

// Delete removes the criterion and, silently, every dependency edge and
// evidence record attached to it. Callers own that blast radius.
func (uc *CriterionUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "Criterion.Usecase.Delete")
	defer span.End()

	err := uc.repo.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return err
	}

	uc.emit(ctx, tendergraph.EventCriterionDeleted, id.String(), "", nil)

	return nil
}

func (uc *CriterionUsecase) ListByTenderAndCategory(ctx context.Context, tenderID uuid.UUID, category string) ([]domain.Criterion, error) {
	return uc.repo.ListByTenderAndCategory(ctx, tenderID, category)
}

func (uc *CriterionUsecase) emit(ctx context.Context, eventType, resourceID, tenderID string, body any) {
	if uc.signal == nil {
		return
	}

	var raw json.RawMessage
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return
		}
		raw = encoded
	}

	err := uc.signal.Publish(ctx, tendergraph.EventChannelCriteria, tendergraph.Event{
		Type:       eventType,
		ResourceID: resourceID,
		TenderID:   tenderID,
		Body:       raw,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		// Events are best-effort; the committed write stands.
		trace.SpanFromContext(ctx).RecordError(errors.Wrap(err, "event publish failed"))
	}
}
