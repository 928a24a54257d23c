package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/openprocure/tendergraph/internal/domain"
	"github.com/openprocure/tendergraph/internal/infra/database/models"
)

// TenderRepository fronts the ingestion-side tables: tenders, documents
// and extracted images. These are plain rows the criteria graph holds
// foreign keys into.
type TenderRepository struct {
	db *gorm.DB
}

func NewTenderRepository(db *gorm.DB) *TenderRepository {
	return &TenderRepository{db: db}
}

func (r *TenderRepository) CreateTender(ctx context.Context, name, reference string) (models.Tender, error) {
	record := models.Tender{Name: name, Reference: reference, Status: "open"}
	err := r.db.WithContext(ctx).Create(&record).Error
	return record, err
}

func (r *TenderRepository) CreateDocument(ctx context.Context, tenderID uuid.UUID, name string) (models.Document, error) {
	record := models.Document{TenderID: tenderID, Name: name, Status: "pending"}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tender{}).Where("id = ?", tenderID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ReferenceError{Resource: "tender", ID: tenderID.String()}
		}
		return tx.Create(&record).Error
	})
	return record, err
}

func (r *TenderRepository) CreateImage(ctx context.Context, documentID uuid.UUID, path, imageType string, pageNumber *int) (models.DocumentImage, error) {
	record := models.DocumentImage{DocumentID: documentID, Path: path, ImageType: imageType, PageNumber: pageNumber}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Document{}).Where("id = ?", documentID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ReferenceError{Resource: "document", ID: documentID.String()}
		}
		return tx.Create(&record).Error
	})
	return record, err
}

// DeleteDocument removes a document and its extracted images. Evidence
// citing either keeps its row; only the source references are cleared.
func (r *TenderRepository) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Document{}).Where("id = ?", documentID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.NotFoundError{Resource: "document"}
		}

		var imageIDs []uuid.UUID
		if err := tx.Model(&models.DocumentImage{}).
			Where("document_id = ?", documentID).
			Pluck("id", &imageIDs).Error; err != nil {
			return err
		}

		if len(imageIDs) > 0 {
			if err := tx.Model(&models.Evidence{}).
				Where("image_id IN ?", imageIDs).
				Update("image_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("document_id = ?", documentID).
				Delete(&models.DocumentImage{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Evidence{}).
			Where("document_id = ?", documentID).
			Update("document_id", nil).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", documentID).Delete(&models.Document{}).Error
	})
}

// DeleteTender removes the tender and everything subordinate to it:
// criteria with their edges and evidence, documents and images.
func (r *TenderRepository) DeleteTender(ctx context.Context, tenderID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tender{}).Where("id = ?", tenderID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.NotFoundError{Resource: "tender"}
		}

		var criterionIDs []uuid.UUID
		if err := tx.Model(&models.Criterion{}).
			Where("tender_id = ?", tenderID).
			Pluck("id", &criterionIDs).Error; err != nil {
			return err
		}

		if len(criterionIDs) > 0 {
			if err := tx.Where("criteria_id IN ? OR dependency_id IN ?", criterionIDs, criterionIDs).
				Delete(&models.DependencyEdge{}).Error; err != nil {
				return err
			}
			if err := tx.Where("criteria_id IN ?", criterionIDs).
				Delete(&models.Evidence{}).Error; err != nil {
				return err
			}
			if err := tx.Where("tender_id = ?", tenderID).
				Delete(&models.Criterion{}).Error; err != nil {
				return err
			}
		}

		var documentIDs []uuid.UUID
		if err := tx.Model(&models.Document{}).
			Where("tender_id = ?", tenderID).
			Pluck("id", &documentIDs).Error; err != nil {
			return err
		}
		if len(documentIDs) > 0 {
			if err := tx.Where("document_id IN ?", documentIDs).
				Delete(&models.DocumentImage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("tender_id = ?", tenderID).
				Delete(&models.Document{}).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", tenderID).Delete(&models.Tender{}).Error
	})
}

func (r *TenderRepository) TenderExists(ctx context.Context, tenderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tender{}).Where("id = ?", tenderID).Count(&count).Error
	return count > 0, err
}

// DocumentTypes loads the filename classification rule table.
func (r *TenderRepository) DocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	var rows []models.DocumentType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "document type load failed")
	}
	return rows, nil
}
