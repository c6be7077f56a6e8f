package employees

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
)

// Summary mirrors the roster aggregate row.
type Summary struct {
	TotalEmployees  int64
	ActiveEmployees int64
	BossCount       int64
	TodaySales      int64
}

// Repository manages persistence for staff accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	List(ctx context.Context, includeInactive bool) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	HardDelete(ctx context.Context, id int64) error
	Summary(ctx context.Context, now time.Time) (*Summary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an employees repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if !includeInactive {
		query = query.Where("is_active")
	}

	var users []models.User
	if err := query.Order("first_name ASC, last_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repository) HardDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

func (r *repository) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	summary := &Summary{}

	users := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{})
	}

	if err := users().Count(&summary.TotalEmployees).Error; err != nil {
		return nil, err
	}
	if err := users().Where("is_active").Count(&summary.ActiveEmployees).Error; err != nil {
		return nil, err
	}
	if err := users().Where("role = ?", enums.RoleBoss).Count(&summary.BossCount).Error; err != nil {
		return nil, err
	}

	today := now.Format("2006-01-02")
	if err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("sale_date = ? AND NOT canceled", today).
		Count(&summary.TodaySales).Error; err != nil {
		return nil, err
	}

	return summary, nil
}
