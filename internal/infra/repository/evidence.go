package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/openprocure/tendergraph/internal/domain"
	"github.com/openprocure/tendergraph/internal/infra/database/models"
)

type EvidenceRepository struct {
	db *gorm.DB
}

func NewEvidenceRepository(db *gorm.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// Attach inserts one immutable evidence record after verifying every
// supplied reference inside the same transaction.
func (r *EvidenceRepository) Attach(ctx context.Context, ev domain.Evidence) (domain.Evidence, error) {

	record := models.Evidence{
		ID:               ev.ID,
		CriteriaID:       ev.CriteriaID,
		DocumentID:       ev.DocumentID,
		ImageID:          ev.ImageID,
		Extract:          ev.Extract,
		ExtractHash:      ev.ExtractHash,
		PageNumber:       ev.PageNumber,
		SectionReference: ev.SectionReference,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Criterion{}).Where("id = ?", ev.CriteriaID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "criterion lookup failed")
		}
		if count == 0 {
			return domain.ReferenceError{Resource: "criterion", ID: ev.CriteriaID.String()}
		}

		if ev.DocumentID != nil {
			if err := tx.Model(&models.Document{}).Where("id = ?", *ev.DocumentID).Count(&count).Error; err != nil {
				return errors.Wrap(err, "document lookup failed")
			}
			if count == 0 {
				return domain.ReferenceError{Resource: "document", ID: ev.DocumentID.String()}
			}
		}

		if ev.ImageID != nil {
			if err := tx.Model(&models.DocumentImage{}).Where("id = ?", *ev.ImageID).Count(&count).Error; err != nil {
				return errors.Wrap(err, "image lookup failed")
			}
			if count == 0 {
				return domain.ReferenceError{Resource: "image", ID: ev.ImageID.String()}
			}
		}

		return tx.Create(&record).Error
	})
	if err != nil {
		return domain.Evidence{}, err
	}

	return evidenceToDomain(record, nil), nil
}

// EvidenceFor returns the provenance trail of a criterion, earliest
// first. Document names resolve through a left join so evidence whose
// source was deleted still appears, with the document fields absent.
func (r *EvidenceRepository) EvidenceFor(ctx context.Context, criterionID uuid.UUID) ([]domain.Evidence, error) {

	var rows []struct {
		ID               uuid.UUID
		CriteriaID       uuid.UUID
		DocumentID       *uuid.UUID
		ImageID          *uuid.UUID
		Extract          string
		ExtractHash      string
		PageNumber       *int
		SectionReference string
		CreatedAt        time.Time
		DocumentName     *string
	}

	err := r.db.WithContext(ctx).
		Table("evidence").
		Select("evidence.id, evidence.criteria_id, evidence.document_id, evidence.image_id, evidence.extract, evidence.extract_hash, evidence.page_number, evidence.section_reference, evidence.created_at, documents.name AS document_name").
		Joins("LEFT JOIN documents ON documents.id = evidence.document_id").
		Where("evidence.criteria_id = ?", criterionID).
		Order("evidence.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]domain.Evidence, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.Evidence{
			ID:               row.ID,
			CriteriaID:       row.CriteriaID,
			DocumentID:       row.DocumentID,
			ImageID:          row.ImageID,
			Extract:          row.Extract,
			ExtractHash:      row.ExtractHash,
			PageNumber:       row.PageNumber,
			SectionReference: row.SectionReference,
			CreatedAt:        row.CreatedAt,
			DocumentName:     row.DocumentName,
		})
	}
	return results, nil
}

// TenderIDFor recovers the owning tender of an evidence record via its
// criterion. The tender id is never stored on evidence; this join is the
// canonical way back.
func (r *EvidenceRepository) TenderIDFor(ctx context.Context, evidenceID uuid.UUID) (uuid.UUID, error) {

	var row struct {
		TenderID uuid.UUID
	}

	result := r.db.WithContext(ctx).
		Table("evidence").
		Select("criteria.tender_id").
		Joins("JOIN criteria ON criteria.id = evidence.criteria_id").
		Where("evidence.id = ?", evidenceID).
		Scan(&row)
	if result.Error != nil {
		return uuid.Nil, result.Error
	}
	if result.RowsAffected == 0 {
		return uuid.Nil, domain.NotFoundError{Resource: "evidence"}
	}

	return row.TenderID, nil
}

// ImagesForTender recovers every extracted image of a tender via
// image -> document -> tender, ordered by document name then page number
// with unknown pages last.
func (r *EvidenceRepository) ImagesForTender(ctx context.Context, tenderID uuid.UUID) ([]domain.TenderImage, error) {

	var rows []struct {
		ImageID      uuid.UUID
		Path         string
		ImageType    string
		DocumentName string
		PageNumber   *int
	}

	err := r.db.WithContext(ctx).
		Table("document_images").
		Select("document_images.id AS image_id, document_images.path, document_images.image_type, documents.name AS document_name, document_images.page_number").
		Joins("JOIN documents ON documents.id = document_images.document_id").
		Where("documents.tender_id = ?", tenderID).
		Order("documents.name ASC").
		Order("document_images.page_number ASC NULLS LAST").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]domain.TenderImage, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.TenderImage{
			ImageID:      row.ImageID,
			Path:         row.Path,
			ImageType:    row.ImageType,
			DocumentName: row.DocumentName,
			PageNumber:   row.PageNumber,
		})
	}
	return results, nil
}

func evidenceToDomain(record models.Evidence, documentName *string) domain.Evidence {
	ev := domain.Evidence{
		ID:               record.ID,
		CriteriaID:       record.CriteriaID,
		DocumentID:       record.DocumentID,
		ImageID:          record.ImageID,
		Extract:          record.Extract,
		ExtractHash:      record.ExtractHash,
		PageNumber:       record.PageNumber,
		SectionReference: record.SectionReference,
		CreatedAt:        record.CreatedAt,
		DocumentName:     documentName,
	}
	return ev
}
