package repository

import (
	"context"

	"vecinu/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NeighborhoodRepository defines persistence operations for neighborhoods.
type NeighborhoodRepository interface {
	WithTx(tx *gorm.DB) NeighborhoodRepository
	ListActive(ctx context.Context) ([]models.Neighborhood, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Neighborhood, error)
	GetBySlug(ctx context.Context, slug string) (*models.Neighborhood, error)
	AdjustMemberCount(ctx context.Context, id uuid.UUID, delta int) error
	Upsert(ctx context.Context, n *models.Neighborhood) error
}

type neighborhoodRepository struct {
	db *gorm.DB
}

// NewNeighborhoodRepository returns a GORM-backed NeighborhoodRepository.
func NewNeighborhoodRepository(db *gorm.DB) NeighborhoodRepository {
	return &neighborhoodRepository{db: db}
}

func (r *neighborhoodRepository) WithTx(tx *gorm.DB) NeighborhoodRepository {
	return &neighborhoodRepository{db: tx}
}

func (r *neighborhoodRepository) ListActive(ctx context.Context) ([]models.Neighborhood, error) {
	var out []models.Neighborhood
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&out).Error
	return out, err
}

func (r *neighborhoodRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Neighborhood, error) {
	var n models.Neighborhood
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Neighborhood", id)
	}
	return &n, nil
}

func (r *neighborhoodRepository) GetBySlug(ctx context.Context, slug string) (*models.Neighborhood, error) {
	var n models.Neighborhood
	if err := r.db.WithContext(ctx).First(&n, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err, "Neighborhood", slug)
	}
	return &n, nil
}

// AdjustMemberCount adds delta to member_count without letting it drop below zero.
func (r *neighborhoodRepository) AdjustMemberCount(ctx context.Context, id uuid.UUID, delta int) error {
	q := r.db.WithContext(ctx).Model(&models.Neighborhood{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("member_count >= ?", -delta)
	}
	return q.UpdateColumn("member_count", gorm.Expr("member_count + ?", delta)).Error
}

// Upsert inserts n or refreshes the descriptive columns of the row with the same slug.
func (r *neighborhoodRepository) Upsert(ctx context.Context, n *models.Neighborhood) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "city", "description", "is_active", "updated_at"}),
	}).Create(n).Error
	if err != nil || n.IsActive {
		return err
	}
	// GORM skips zero values for columns with a default, so the insert above
	// always writes is_active = true.
	return db.Model(&models.Neighborhood{}).Where("slug = ?", n.Slug).
		UpdateColumn("is_active", false).Error
}
