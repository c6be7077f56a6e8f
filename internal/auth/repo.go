package auth

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/azulretail/pos-backend/pkg/db/models"
)

// Repository manages persistence for credentials and durable sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string, mustChange bool) error
	UpsertSession(ctx context.Context, session *models.Session) error
	DeleteSessionByUserID(ctx context.Context, userID int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an auth repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		First(&user, "username = ? AND is_active", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdatePassword(ctx context.Context, id int64, hash string, mustChange bool) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":        hash,
			"must_change_password": mustChange,
		}).Error
}

// UpsertSession keeps a single session row per user, replacing any previous
// login.
func (r *repository) UpsertSession(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "ip_address", "user_agent", "last_activity"}),
		}).
		Create(session).Error
}

func (r *repository) DeleteSessionByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Delete(&models.Session{}, "user_id = ?", userID).Error
}
