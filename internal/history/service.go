package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/types"
)

// RecordInput captures one audited action.
type RecordInput struct {
	UserID      int64
	Action      enums.AuditAction
	Description string
	Meta        types.RequestMeta
}

// Service exposes the action log.
type Service interface {
	Record(ctx context.Context, input RecordInput) error
	RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) error
	List(ctx context.Context, filters ListFilters) ([]EntryDTO, error)
	TodayStats(ctx context.Context) (*TodayStatsDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a history service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("history repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) error {
	return s.record(ctx, s.repo, input)
}

// RecordTx appends the entry inside the caller's transaction so the log row
// commits or rolls back together with the mutation it describes.
func (s *service) RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) error {
	return s.record(ctx, s.repo.WithTx(tx), input)
}

func (s *service) record(ctx context.Context, repo Repository, input RecordInput) error {
	if input.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}
	if !input.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid action %q", input.Action))
	}
	if input.Description == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}

	entry := &models.AuditEntry{
		UserID:      input.UserID,
		Action:      input.Action,
		Description: input.Description,
		IPAddress:   input.Meta.IPAddress,
		UserAgent:   input.Meta.UserAgent,
	}
	if err := repo.Create(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
	}
	return nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]EntryDTO, error) {
	entries, err := s.repo.List(ctx, filters)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []EntryDTO{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}

	result := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, toEntryDTO(entry))
	}
	return result, nil
}

func (s *service) TodayStats(ctx context.Context) (*TodayStatsDTO, error) {
	stats, err := s.repo.TodayStats(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate today stats")
	}
	return &TodayStatsDTO{
		TotalActions: stats.TotalActions,
		SalesCount:   stats.SalesCount,
		ChangesSaved: stats.ChangesSaved,
		ActiveUsers:  stats.ActiveUsers,
	}, nil
}
