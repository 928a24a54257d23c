package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/openprocure/tendergraph"
	"github.com/openprocure/tendergraph/internal/domain"
)

type mockCriterionRepo struct {
	created domain.Criterion
	updated *domain.CriterionPatch
	deleted uuid.UUID
	stored  domain.Criterion
}

func (m *mockCriterionRepo) Create(ctx context.Context, c domain.Criterion) (domain.Criterion, error) {
	c.ID = uuid.New()
	m.created = c
	return c, nil
}

func (m *mockCriterionRepo) Get(ctx context.Context, id uuid.UUID) (domain.Criterion, error) {
	return m.stored, nil
}

func (m *mockCriterionRepo) Update(ctx context.Context, id uuid.UUID, patch domain.CriterionPatch) (domain.Criterion, error) {
	m.updated = &patch
	return m.stored, nil
}

func (m *mockCriterionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleted = id
	return nil
}

func (m *mockCriterionRepo) ListByTenderAndCategory(ctx context.Context, tenderID uuid.UUID, category string) ([]domain.Criterion, error) {
	return nil, nil
}

type mockPublisher struct {
	events []tendergraph.Event
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event tendergraph.Event) error {
	m.events = append(m.events, event)
	return nil
}

type failingPublisher struct{}

func (f *failingPublisher) Publish(ctx context.Context, channel string, event tendergraph.Event) error {
	return errors.New("broker unavailable")
}

func TestCriterionCreateDefaults(t *testing.T) {
	repo := &mockCriterionRepo{}
	signal := &mockPublisher{}
	uc := NewCriterionUsecase(repo, signal)

	created, err := uc.Create(context.Background(), CreateCriterionInput{
		TenderID: uuid.New(),
		Title:    "Price transparency",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if created.Explicitness != domain.ExplicitnessExplicit {
		t.Fatalf("expected explicit default, got %s", created.Explicitness)
	}
	if created.Weight != domain.DefaultWeight {
		t.Fatalf("expected default weight, got %f", created.Weight)
	}
	if len(signal.events) != 1 || signal.events[0].Type != tendergraph.EventCriterionCreated {
		t.Fatalf("expected created event, got %+v", signal.events)
	}
}

func TestCriterionCreateValidation(t *testing.T) {
	uc := NewCriterionUsecase(&mockCriterionRepo{}, nil)
	ctx := context.Background()

	_, err := uc.Create(ctx, CreateCriterionInput{TenderID: uuid.New()})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty title: expected ValidationError, got %v", err)
	}

	_, err = uc.Create(ctx, CreateCriterionInput{
		TenderID:     uuid.New(),
		Title:        "Implied financial stability",
		Explicitness: domain.ExplicitnessImplicit,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("implicit without reasoning: expected ValidationError, got %v", err)
	}

	_, err = uc.Create(ctx, CreateCriterionInput{
		TenderID:     uuid.New(),
		Title:        "Implied financial stability",
		Explicitness: domain.ExplicitnessImplicit,
		Reasoning:    "inferred from the bank guarantee requirement",
	})
	if err != nil {
		t.Fatalf("implicit with reasoning should pass: %v", err)
	}
}

func TestCriterionUpdateImplicitNeedsReasoning(t *testing.T) {
	repo := &mockCriterionRepo{stored: domain.Criterion{
		ID:           uuid.New(),
		Explicitness: domain.ExplicitnessExplicit,
	}}
	uc := NewCriterionUsecase(repo, nil)

	implicit := domain.ExplicitnessImplicit
	_, err := uc.Update(context.Background(), repo.stored.ID, domain.CriterionPatch{
		Explicitness: &implicit,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.updated != nil {
		t.Fatalf("repository must not be touched on validation failure")
	}

	reasoning := "inferred from scoring table"
	_, err = uc.Update(context.Background(), repo.stored.ID, domain.CriterionPatch{
		Explicitness: &implicit,
		Reasoning:    &reasoning,
	})
	if err != nil {
		t.Fatalf("update with reasoning should pass: %v", err)
	}
}

func TestCriterionUpdateCannotClearImplicitReasoning(t *testing.T) {
	repo := &mockCriterionRepo{stored: domain.Criterion{
		ID:           uuid.New(),
		Explicitness: domain.ExplicitnessImplicit,
		Reasoning:    "inferred from the scoring table",
	}}
	uc := NewCriterionUsecase(repo, nil)

	empty := ""
	_, err := uc.Update(context.Background(), repo.stored.ID, domain.CriterionPatch{
		Reasoning: &empty,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("clearing reasoning on implicit criterion: expected ValidationError, got %v", err)
	}
	if repo.updated != nil {
		t.Fatalf("repository must not be touched on validation failure")
	}

	// Clearing reasoning on an explicit criterion is fine.
	repo = &mockCriterionRepo{stored: domain.Criterion{
		ID:           uuid.New(),
		Explicitness: domain.ExplicitnessExplicit,
		Reasoning:    "leftover note",
	}}
	uc = NewCriterionUsecase(repo, nil)

	_, err = uc.Update(context.Background(), repo.stored.ID, domain.CriterionPatch{
		Reasoning: &empty,
	})
	if err != nil {
		t.Fatalf("clearing reasoning on explicit criterion should pass: %v", err)
	}
}

func TestCriterionDeleteEmitsEvent(t *testing.T) {
	repo := &mockCriterionRepo{}
	signal := &mockPublisher{}
	uc := NewCriterionUsecase(repo, signal)

	id := uuid.New()
	if err := uc.Delete(context.Background(), id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if repo.deleted != id {
		t.Fatalf("expected delete of %s, got %s", id, repo.deleted)
	}
	if len(signal.events) != 1 || signal.events[0].Type != tendergraph.EventCriterionDeleted {
		t.Fatalf("expected deleted event, got %+v", signal.events)
	}
}
