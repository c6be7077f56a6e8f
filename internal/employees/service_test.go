package employees

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/internal/history"
	"github.com/azulretail/pos-backend/pkg/config"
	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/security"
	"github.com/azulretail/pos-backend/pkg/types"
)

type stubRepo struct {
	byUsername map[string]*models.User
	byPhone    map[string]*models.User
	user       *models.User
	created    *models.User
	deletedID  int64
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = 9
	r.created = user
	r.user = user
	return nil
}

func (r *stubRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if r.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.user, nil
}

func (r *stubRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := r.byUsername[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	if user, ok := r.byPhone[phone]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) List(ctx context.Context, includeInactive bool) ([]models.User, error) {
	return nil, nil
}

func (r *stubRepo) Update(ctx context.Context, user *models.User) error {
	r.user = user
	return nil
}

func (r *stubRepo) HardDelete(ctx context.Context, id int64) error {
	r.deletedID = id
	return nil
}

func (r *stubRepo) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	return &Summary{}, nil
}

type stubSalesCounter struct {
	count int64
}

func (c stubSalesCounter) CountByEmployee(ctx context.Context, employeeID int64) (int64, error) {
	return c.count, nil
}

type stubRecorder struct {
	entries []history.RecordInput
}

func (r *stubRecorder) Record(ctx context.Context, input history.RecordInput) error {
	r.entries = append(r.entries, input)
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{MinLength: 6}
}

func newTestService(t *testing.T, repo *stubRepo, counter stubSalesCounter, recorder *stubRecorder) Service {
	t.Helper()
	svc, err := NewService(repo, counter, recorder, testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validInput() CreateEmployeeInput {
	return CreateEmployeeInput{
		FirstName:    "Maria",
		LastName:     "Lopez",
		Phone:        "555-0101",
		Role:         enums.RoleEmployee,
		TempPassword: "changeme",
	}
}

func TestCreateGeneratesUsernameAndForcesPasswordChange(t *testing.T) {
	repo := &stubRepo{}
	recorder := &stubRecorder{}
	svc := newTestService(t, repo, stubSalesCounter{}, recorder)

	employee, err := svc.Create(context.Background(), 1, validInput(), types.RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if employee.Username != "maria_lopez.emp" {
		t.Fatalf("expected username maria_lopez.emp got %s", employee.Username)
	}
	if !repo.created.MustChangePassword {
		t.Fatal("expected new employee flagged for password change")
	}
	ok, err := security.VerifyPassword("changeme", repo.created.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != enums.AuditActionUserCreate {
		t.Fatalf("expected user_create audit entry, got %+v", recorder.entries)
	}
}

func TestCreateUsesAdmSuffixForBoss(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo, stubSalesCounter{}, &stubRecorder{})

	input := validInput()
	input.Role = enums.RoleBoss
	employee, err := svc.Create(context.Background(), 1, input, types.RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if employee.Username != "maria_lopez.adm" {
		t.Fatalf("expected username maria_lopez.adm got %s", employee.Username)
	}
}

func TestCreateRejectsUsernameCollision(t *testing.T) {
	repo := &stubRepo{byUsername: map[string]*models.User{
		"maria_lopez.emp": {ID: 2, Username: "maria_lopez.emp"},
	}}
	svc := newTestService(t, repo, stubSalesCounter{}, &stubRecorder{})

	_, err := svc.Create(context.Background(), 1, validInput(), types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateRejectsDuplicatePhone(t *testing.T) {
	repo := &stubRepo{byPhone: map[string]*models.User{
		"555-0101": {ID: 2, Phone: "555-0101"},
	}}
	svc := newTestService(t, repo, stubSalesCounter{}, &stubRecorder{})

	_, err := svc.Create(context.Background(), 1, validInput(), types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateRejectsShortTempPassword(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, stubSalesCounter{}, &stubRecorder{})

	input := validInput()
	input.TempPassword = "abc"
	_, err := svc.Create(context.Background(), 1, input, types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteBlockedWhenEmployeeHasSales(t *testing.T) {
	repo := &stubRepo{user: &models.User{ID: 9, Username: "maria_lopez.emp"}}
	svc := newTestService(t, repo, stubSalesCounter{count: 3}, &stubRecorder{})

	err := svc.Delete(context.Background(), 1, 9, types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.deletedID != 0 {
		t.Fatal("employee should not have been deleted")
	}
}

func TestDeleteRemovesEmployeeWithoutSales(t *testing.T) {
	repo := &stubRepo{user: &models.User{ID: 9, Username: "maria_lopez.emp"}}
	recorder := &stubRecorder{}
	svc := newTestService(t, repo, stubSalesCounter{}, recorder)

	if err := svc.Delete(context.Background(), 1, 9, types.RequestMeta{}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.deletedID != 9 {
		t.Fatalf("expected hard delete of id 9, got %d", repo.deletedID)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != enums.AuditActionUserDelete {
		t.Fatalf("expected user_delete audit entry, got %+v", recorder.entries)
	}
}

func TestResetPasswordIssuesTemporaryCredential(t *testing.T) {
	repo := &stubRepo{user: &models.User{ID: 9, Username: "maria_lopez.emp", PasswordHash: "old"}}
	recorder := &stubRecorder{}
	svc := newTestService(t, repo, stubSalesCounter{}, recorder)

	temp, err := svc.ResetPassword(context.Background(), 1, 9, types.RequestMeta{})
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if len(temp) != tempPasswordLength {
		t.Fatalf("expected %d character temp password, got %q", tempPasswordLength, temp)
	}
	if !repo.user.MustChangePassword {
		t.Fatal("expected password change forced after reset")
	}
	ok, err := security.VerifyPassword(temp, repo.user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected new hash to verify, ok=%v err=%v", ok, err)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != enums.AuditActionPasswordReset {
		t.Fatalf("expected password_reset audit entry, got %+v", recorder.entries)
	}
}

func TestBuildUsernameUsesFirstWordOfEachName(t *testing.T) {
	if got := buildUsername("Maria Jose", "Lopez Garcia", enums.RoleEmployee); got != "maria_lopez.emp" {
		t.Fatalf("expected maria_lopez.emp got %s", got)
	}
	if got := buildUsername("Juan", "Perez", enums.RoleBoss); got != "juan_perez.adm" {
		t.Fatalf("expected juan_perez.adm got %s", got)
	}
}
