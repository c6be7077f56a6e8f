package categories

import (
	"context"

	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/pkg/db/models"
)

// Repository manages persistence for categories.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindActiveByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context, includeInactive bool) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	CountActiveProducts(ctx context.Context, categoryID int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a categories repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) FindActiveByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		First(&category, "LOWER(name) = LOWER(?) AND is_active", name).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})
	if !includeInactive {
		query = query.Where("is_active")
	}

	var categories []models.Category
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *repository) CountActiveProducts(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ? AND is_active", categoryID).
		Count(&count).Error
	return count, err
}
