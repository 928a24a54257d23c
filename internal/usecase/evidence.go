package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel/trace"

	"github.com/openprocure/tendergraph"
	"github.com/openprocure/tendergraph/internal/domain"
)

// EvidenceRepository defines persistence for the provenance trail.
type EvidenceRepository interface {
	Attach(ctx context.Context, ev domain.Evidence) (domain.Evidence, error)
	EvidenceFor(ctx context.Context, criterionID uuid.UUID) ([]domain.Evidence, error)
	TenderIDFor(ctx context.Context, evidenceID uuid.UUID) (uuid.UUID, error)
	ImagesForTender(ctx context.Context, tenderID uuid.UUID) ([]domain.TenderImage, error)
}

// AttachEvidenceInput is the validated input for one evidence record.
type AttachEvidenceInput struct {
	CriteriaID       uuid.UUID
	DocumentID       *uuid.UUID
	ImageID          *uuid.UUID
	Extract          string
	PageNumber       *int
	SectionReference string
}

type EvidenceUsecase struct {
	repo   EvidenceRepository
	signal EventPublisher
}

func NewEvidenceUsecase(repo EvidenceRepository, signal EventPublisher) *EvidenceUsecase {
	return &EvidenceUsecase{repo: repo, signal: signal}
}

// Attach writes one immutable evidence record. At least one of document
// and image must be supplied; both at once is legitimate (a diagram cited
// alongside its surrounding paragraph).
func (uc *EvidenceUsecase) Attach(ctx context.Context, input AttachEvidenceInput) (domain.Evidence, error) {
	ctx, span := tracer.Start(ctx, "Evidence.Usecase.Attach")
	defer span.End()

	if input.DocumentID == nil && input.ImageID == nil {
		return domain.Evidence{}, domain.ValidationError{Message: "evidence requires a document or an image source"}
	}
	if input.PageNumber != nil && *input.PageNumber < 0 {
		return domain.Evidence{}, domain.ValidationError{Message: "page number must not be negative"}
	}

	ev := domain.Evidence{
		CriteriaID:       input.CriteriaID,
		DocumentID:       input.DocumentID,
		ImageID:          input.ImageID,
		Extract:          input.Extract,
		PageNumber:       input.PageNumber,
		SectionReference: input.SectionReference,
	}
	if input.Extract != "" {
		ev.ExtractHash = fmt.Sprintf("%016x", xxh3.HashString(input.Extract))
	}

	attached, err := uc.repo.Attach(ctx, ev)
	if err != nil {
		span.RecordError(err)
		return domain.Evidence{}, err
	}

	if uc.signal != nil {
		err := uc.signal.Publish(ctx, tendergraph.EventChannelCriteria, tendergraph.Event{
			Type:       tendergraph.EventEvidenceAttached,
			ResourceID: attached.ID.String(),
			Timestamp:  time.Now().UTC(),
		})
		if err != nil {
			// Events are best-effort; the committed write stands.
			trace.SpanFromContext(ctx).RecordError(errors.Wrap(err, "event publish failed"))
		}
	}

	return attached, nil
}

func (uc *EvidenceUsecase) EvidenceFor(ctx context.Context, criterionID uuid.UUID) ([]domain.Evidence, error) {
	return uc.repo.EvidenceFor(ctx, criterionID)
}

// TenderIDFor is the canonical recovery of the tender scope that is
// deliberately not stored on evidence rows.
func (uc *EvidenceUsecase) TenderIDFor(ctx context.Context, evidenceID uuid.UUID) (uuid.UUID, error) {
	return uc.repo.TenderIDFor(ctx, evidenceID)
}

func (uc *EvidenceUsecase) ImagesForTender(ctx context.Context, tenderID uuid.UUID) ([]domain.TenderImage, error) {
	return uc.repo.ImagesForTender(ctx, tenderID)
}
