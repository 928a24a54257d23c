package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openprocure/tendergraph/internal/domain"
	"github.com/openprocure/tendergraph/internal/infra/database/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.Tender{},
		&models.Document{},
		&models.DocumentImage{},
		&models.DocumentType{},
		&models.Criterion{},
		&models.DependencyEdge{},
		&models.Evidence{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func seedTender(t *testing.T, db *gorm.DB) models.Tender {
	t.Helper()
	tender, err := NewTenderRepository(db).CreateTender(context.Background(), "Road maintenance 2026", "T-2026-001")
	if err != nil {
		t.Fatalf("seed tender: %v", err)
	}
	return tender
}

func seedCriterion(t *testing.T, db *gorm.DB, tenderID uuid.UUID, title string, weight float64) domain.Criterion {
	t.Helper()
	c, err := NewCriterionRepository(db).Create(context.Background(), domain.Criterion{
		TenderID:     tenderID,
		Title:        title,
		Explicitness: domain.ExplicitnessExplicit,
		Weight:       weight,
	})
	if err != nil {
		t.Fatalf("seed criterion %q: %v", title, err)
	}
	return c
}
