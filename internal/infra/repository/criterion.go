package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openprocure/tendergraph/internal/domain"
	"github.com/openprocure/tendergraph/internal/infra/database/models"
)

type CriterionRepository struct {
	db *gorm.DB
}

func NewCriterionRepository(db *gorm.DB) *CriterionRepository {
	return &CriterionRepository{db: db}
}

func (r *CriterionRepository) Create(ctx context.Context, c domain.Criterion) (domain.Criterion, error) {

	record, err := criterionToModel(c)
	if err != nil {
		return domain.Criterion{}, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tender{}).Where("id = ?", c.TenderID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "tender lookup failed")
		}
		if count == 0 {
			return domain.ReferenceError{Resource: "tender", ID: c.TenderID.String()}
		}

		return tx.Create(&record).Error
	})
	if err != nil {
		return domain.Criterion{}, err
	}

	return criterionToDomain(record)
}

func (r *CriterionRepository) Get(ctx context.Context, id uuid.UUID) (domain.Criterion, error) {
	var record models.Criterion
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Criterion{}, domain.NotFoundError{Resource: "criterion"}
		}
		return domain.Criterion{}, err
	}
	return criterionToDomain(record)
}

// Update applies the patch to every mutable column. tender_id is not in
// the update set under any input.
func (r *CriterionRepository) Update(ctx context.Context, id uuid.UUID, patch domain.CriterionPatch) (domain.Criterion, error) {

	var record models.Criterion

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).Take(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "criterion"}
			}
			return err
		}

		updates := map[string]any{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.Category != nil {
			updates["category"] = *patch.Category
		}
		if patch.Explicitness != nil {
			updates["explicitness"] = *patch.Explicitness
		}
		if patch.Reasoning != nil {
			updates["reasoning"] = *patch.Reasoning
		}
		if patch.ValidationCondition != nil {
			raw, err := json.Marshal(*patch.ValidationCondition)
			if err != nil {
				return errors.Wrap(err, "invalid validation condition")
			}
			updates["validation_condition"] = datatypes.JSON(raw)
		}
		if patch.VerificationMethod != nil {
			updates["verification_method"] = *patch.VerificationMethod
		}
		if patch.Weight != nil {
			updates["weight"] = *patch.Weight
		}
		if patch.IsBinary != nil {
			updates["is_binary"] = *patch.IsBinary
		}
		if patch.Metadata != nil {
			raw, err := json.Marshal(*patch.Metadata)
			if err != nil {
				return errors.Wrap(err, "invalid metadata")
			}
			updates["metadata"] = datatypes.JSON(raw)
		}
		updates["updated_at"] = time.Now().UTC()

		if err := tx.Model(&record).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Take(&record).Error
	})
	if err != nil {
		return domain.Criterion{}, err
	}

	return criterionToDomain(record)
}

// Delete removes the criterion together with its dependency edges (both
// directions) and evidence records in one transaction.
func (r *CriterionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Criterion{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.NotFoundError{Resource: "criterion"}
		}

		if err := tx.Where("criteria_id = ? OR dependency_id = ?", id, id).
			Delete(&models.DependencyEdge{}).Error; err != nil {
			return err
		}
		if err := tx.Where("criteria_id = ?", id).Delete(&models.Evidence{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Criterion{}).Error
	})
}

// ListByTenderAndCategory returns a point-in-time snapshot ordered by
// weight descending, then title ascending. Category is optional.
func (r *CriterionRepository) ListByTenderAndCategory(ctx context.Context, tenderID uuid.UUID, category string) ([]domain.Criterion, error) {

	query := r.db.WithContext(ctx).Where("tender_id = ?", tenderID)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var records []models.Criterion
	err := query.Order("weight DESC").Order("title ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}

	results := make([]domain.Criterion, 0, len(records))
	for _, record := range records {
		c, err := criterionToDomain(record)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, nil
}

func criterionToModel(c domain.Criterion) (models.Criterion, error) {
	record := models.Criterion{
		ID:                 c.ID,
		TenderID:           c.TenderID,
		Title:              c.Title,
		Description:        c.Description,
		Category:           c.Category,
		Explicitness:       c.Explicitness,
		Reasoning:          c.Reasoning,
		VerificationMethod: c.VerificationMethod,
		Weight:             c.Weight,
		IsBinary:           c.IsBinary,
	}

	if c.ValidationCondition != nil {
		raw, err := json.Marshal(c.ValidationCondition)
		if err != nil {
			return models.Criterion{}, errors.Wrap(err, "invalid validation condition")
		}
		record.ValidationCondition = datatypes.JSON(raw)
	}
	if c.Metadata != nil {
		raw, err := json.Marshal(c.Metadata)
		if err != nil {
			return models.Criterion{}, errors.Wrap(err, "invalid metadata")
		}
		record.Metadata = datatypes.JSON(raw)
	}

	return record, nil
}

func criterionToDomain(record models.Criterion) (domain.Criterion, error) {
	c := domain.Criterion{
		ID:                 record.ID,
		TenderID:           record.TenderID,
		Title:              record.Title,
		Description:        record.Description,
		Category:           record.Category,
		Explicitness:       record.Explicitness,
		Reasoning:          record.Reasoning,
		VerificationMethod: record.VerificationMethod,
		Weight:             record.Weight,
		IsBinary:           record.IsBinary,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}

	if len(record.ValidationCondition) > 0 {
		if err := json.Unmarshal(record.ValidationCondition, &c.ValidationCondition); err != nil {
			return domain.Criterion{}, errors.Wrap(err, "corrupt validation condition")
		}
	}
	if len(record.Metadata) > 0 {
		if err := json.Unmarshal(record.Metadata, &c.Metadata); err != nil {
			return domain.Criterion{}, errors.Wrap(err, "corrupt metadata")
		}
	}

	return c, nil
}
