package history

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
)

// ListFilters narrows the action log read side.
type ListFilters struct {
	DateFrom *time.Time
	DateTo   *time.Time
	UserID   *int64
	Action   *enums.AuditAction
	Search   string
	Limit    int
}

// TodayStats mirrors the same-day aggregate row.
type TodayStats struct {
	TotalActions int64
	SalesCount   int64
	ChangesSaved int64
	ActiveUsers  int64
}

// Repository manages persistence for the append-only action log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, filters ListFilters) ([]models.AuditEntry, error)
	TodayStats(ctx context.Context, now time.Time) (*TodayStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a history repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.AuditEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AuditEntry{}).
		Preload("User")

	if filters.DateFrom != nil {
		query = query.Where("audit_entries.created_at >= ?", filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("audit_entries.created_at < ?", filters.DateTo.AddDate(0, 0, 1))
	}
	if filters.UserID != nil {
		query = query.Where("audit_entries.user_id = ?", *filters.UserID)
	}
	if filters.Action != nil {
		query = query.Where("audit_entries.action = ?", *filters.Action)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.
			Joins("JOIN users ON users.id = audit_entries.user_id").
			Where(
				"audit_entries.description LIKE ? OR users.first_name LIKE ? OR users.last_name LIKE ? OR users.username LIKE ?",
				pattern, pattern, pattern, pattern,
			)
	}

	query = query.Order("audit_entries.created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var entries []models.AuditEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) TodayStats(ctx context.Context, now time.Time) (*TodayStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.AuditEntry{}).
			Where("created_at >= ? AND created_at < ?", dayStart, dayEnd)
	}

	stats := &TodayStats{}

	if err := base().Count(&stats.TotalActions).Error; err != nil {
		return nil, err
	}
	if err := base().Where("action = ?", enums.AuditActionSale).Count(&stats.SalesCount).Error; err != nil {
		return nil, err
	}
	if err := base().Where("action IN ?", enums.ChangeSavedActions).Count(&stats.ChangesSaved).Error; err != nil {
		return nil, err
	}
	if err := base().Distinct("user_id").Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
