package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/openprocure/tendergraph/internal/domain"
)

type mockEvidenceRepo struct {
	attached []domain.Evidence
	tenderID uuid.UUID
}

func (m *mockEvidenceRepo) Attach(ctx context.Context, ev domain.Evidence) (domain.Evidence, error) {
	ev.ID = uuid.New()
	m.attached = append(m.attached, ev)
	return ev, nil
}

func (m *mockEvidenceRepo) EvidenceFor(ctx context.Context, criterionID uuid.UUID) ([]domain.Evidence, error) {
	return m.attached, nil
}

func (m *mockEvidenceRepo) TenderIDFor(ctx context.Context, evidenceID uuid.UUID) (uuid.UUID, error) {
	return m.tenderID, nil
}

func (m *mockEvidenceRepo) ImagesForTender(ctx context.Context, tenderID uuid.UUID) ([]domain.TenderImage, error) {
	return nil, nil
}

func TestAttachRequiresASource(t *testing.T) {
	repo := &mockEvidenceRepo{}
	uc := NewEvidenceUsecase(repo, nil)

	_, err := uc.Attach(context.Background(), AttachEvidenceInput{
		CriteriaID: uuid.New(),
		Extract:    "orphan evidence",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(repo.attached) != 0 {
		t.Fatalf("nothing may be persisted on validation failure")
	}
}

func TestAttachComputesFingerprint(t *testing.T) {
	repo := &mockEvidenceRepo{}
	uc := NewEvidenceUsecase(repo, nil)

	docID := uuid.New()
	first, err := uc.Attach(context.Background(), AttachEvidenceInput{
		CriteriaID: uuid.New(),
		DocumentID: &docID,
		Extract:    "Section 4.2 states delivery must be transparent",
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if first.ExtractHash == "" {
		t.Fatalf("expected extract fingerprint")
	}

	second, err := uc.Attach(context.Background(), AttachEvidenceInput{
		CriteriaID: uuid.New(),
		DocumentID: &docID,
		Extract:    "Section 4.2 states delivery must be transparent",
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if second.ExtractHash != first.ExtractHash {
		t.Fatalf("same extract must fingerprint identically")
	}
}

func TestAttachSurvivesPublishFailure(t *testing.T) {
	repo := &mockEvidenceRepo{}
	uc := NewEvidenceUsecase(repo, &failingPublisher{})

	docID := uuid.New()
	ev, err := uc.Attach(context.Background(), AttachEvidenceInput{
		CriteriaID: uuid.New(),
		DocumentID: &docID,
		Extract:    "clause 7.1",
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the write: %v", err)
	}
	if ev.ID == uuid.Nil || len(repo.attached) != 1 {
		t.Fatalf("evidence was not persisted: %+v", ev)
	}
}

func TestAttachBothSourcesAllowed(t *testing.T) {
	repo := &mockEvidenceRepo{}
	uc := NewEvidenceUsecase(repo, nil)

	docID, imgID := uuid.New(), uuid.New()
	ev, err := uc.Attach(context.Background(), AttachEvidenceInput{
		CriteriaID: uuid.New(),
		DocumentID: &docID,
		ImageID:    &imgID,
		Extract:    "diagram with surrounding paragraph",
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if ev.DocumentID == nil || ev.ImageID == nil {
		t.Fatalf("both sources should be kept: %+v", ev)
	}
}
