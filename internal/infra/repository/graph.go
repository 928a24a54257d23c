package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/openprocure/tendergraph/internal/domain"
	"github.com/openprocure/tendergraph/internal/infra/database/models"
)

type GraphRepository struct {
	db *gorm.DB
}

func NewGraphRepository(db *gorm.DB) *GraphRepository {
	return &GraphRepository{db: db}
}

// AddEdge inserts a directed edge. The duplicate pre-check and the insert
// run in one transaction; the unique index on the ordered pair backstops
// concurrent inserts.
func (r *GraphRepository) AddEdge(ctx context.Context, edge domain.DependencyEdge) (domain.DependencyEdge, error) {

	record := models.DependencyEdge{
		ID:           edge.ID,
		CriteriaID:   edge.CriteriaID,
		DependencyID: edge.DependencyID,
		EdgeType:     edge.EdgeType,
		Description:  edge.Description,
		IsActive:     true,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Criterion{}).
			Where("id IN ?", []uuid.UUID{edge.CriteriaID, edge.DependencyID}).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "endpoint lookup failed")
		}
		if count != 2 {
			return domain.ReferenceError{Resource: "criterion"}
		}

		var existing models.DependencyEdge
		err := tx.Where("criteria_id = ? AND dependency_id = ?", edge.CriteriaID, edge.DependencyID).
			Take(&existing).Error
		if err == nil {
			return domain.DuplicateEdgeError{
				FromID:       edge.CriteriaID.String(),
				ToID:         edge.DependencyID.String(),
				ExistingType: existing.EdgeType,
			}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Create(&record).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.DuplicateEdgeError{
				FromID: edge.CriteriaID.String(),
				ToID:   edge.DependencyID.String(),
			}
		}
		return err
	})
	if err != nil {
		return domain.DependencyEdge{}, err
	}

	return edgeToDomain(record), nil
}

// Deactivate soft-removes an edge from traversal while keeping the row
// for audit.
func (r *GraphRepository) Deactivate(ctx context.Context, edgeID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.DependencyEdge{}).
		Where("id = ?", edgeID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "edge"}
	}
	return nil
}

func (r *GraphRepository) Get(ctx context.Context, edgeID uuid.UUID) (domain.DependencyEdge, error) {
	var record models.DependencyEdge
	err := r.db.WithContext(ctx).Where("id = ?", edgeID).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DependencyEdge{}, domain.NotFoundError{Resource: "edge"}
		}
		return domain.DependencyEdge{}, err
	}
	return edgeToDomain(record), nil
}

// DependenciesOf resolves the active outgoing edges of a criterion with
// the dependency titles, ordered by edge type then title.
func (r *GraphRepository) DependenciesOf(ctx context.Context, criterionID uuid.UUID) ([]domain.Dependency, error) {

	var rows []struct {
		DependencyID uuid.UUID
		Title        string
		EdgeType     string
	}

	err := r.db.WithContext(ctx).
		Table("dependency_edges").
		Select("dependency_edges.dependency_id, criteria.title, dependency_edges.edge_type").
		Joins("JOIN criteria ON criteria.id = dependency_edges.dependency_id").
		Where("dependency_edges.criteria_id = ? AND dependency_edges.is_active = ?", criterionID, true).
		Order("dependency_edges.edge_type ASC").
		Order("criteria.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]domain.Dependency, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.Dependency{
			DependencyID: row.DependencyID,
			Title:        row.Title,
			EdgeType:     row.EdgeType,
		})
	}
	return results, nil
}

// ActiveNeighbors returns the dependency ids reachable in one hop from
// any of the given criteria over active edges. Used by the reachability
// traversal.
func (r *GraphRepository) ActiveNeighbors(ctx context.Context, from []uuid.UUID) ([]uuid.UUID, error) {
	if len(from) == 0 {
		return nil, nil
	}

	var neighbors []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.DependencyEdge{}).
		Where("criteria_id IN ? AND is_active = ?", from, true).
		Distinct().
		Pluck("dependency_id", &neighbors).Error
	if err != nil {
		return nil, err
	}
	return neighbors, nil
}

func edgeToDomain(record models.DependencyEdge) domain.DependencyEdge {
	return domain.DependencyEdge{
		ID:           record.ID,
		CriteriaID:   record.CriteriaID,
		DependencyID: record.DependencyID,
		EdgeType:     record.EdgeType,
		Description:  record.Description,
		IsActive:     record.IsActive,
		CreatedAt:    record.CreatedAt,
	}
}
