package history

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/types"
)

type stubRepo struct {
	entries []models.AuditEntry
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) Create(ctx context.Context, entry *models.AuditEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubRepo) List(ctx context.Context, filters ListFilters) ([]models.AuditEntry, error) {
	return r.entries, nil
}

func (r *stubRepo) TodayStats(ctx context.Context, now time.Time) (*TodayStats, error) {
	return &TodayStats{}, nil
}

func TestRecordAppendsEntryWithMeta(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.Record(context.Background(), RecordInput{
		UserID:      7,
		Action:      enums.AuditActionSale,
		Description: "Registered sale #1",
		Meta:        types.RequestMeta{IPAddress: "10.0.0.1", UserAgent: "pos-terminal"},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IPAddress != "10.0.0.1" || repo.entries[0].UserAgent != "pos-terminal" {
		t.Fatalf("expected request meta persisted, got %+v", repo.entries[0])
	}
}

func TestRecordRejectsMissingActor(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	gotErr := svc.Record(context.Background(), RecordInput{
		Action:      enums.AuditActionSale,
		Description: "orphan entry",
	})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", gotErr)
	}
}

func TestRecordRejectsUnknownAction(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	gotErr := svc.Record(context.Background(), RecordInput{
		UserID:      7,
		Action:      enums.AuditAction("made_coffee"),
		Description: "not a real action",
	})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", gotErr)
	}
}

func TestRecordRejectsEmptyDescription(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	gotErr := svc.Record(context.Background(), RecordInput{
		UserID: 7,
		Action: enums.AuditActionLogin,
	})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", gotErr)
	}
}
