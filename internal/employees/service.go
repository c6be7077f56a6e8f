package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

const tempPasswordLength = 10

type auditRecorder interface {
	Record(ctx context.Context, input history.RecordInput) error
}

type salesCounter interface {
	CountByEmployee(ctx context.Context, employeeID int64) (int64, error)
}

// CreateEmployeeInput captures the fields accepted at creation.
type CreateEmployeeInput struct {
	FirstName    string
	LastName     string
	Phone        string
	Role         enums.Role
	TempPassword string
}

// UpdateEmployeeInput captures the allowed partial update.
type UpdateEmployeeInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Role      *enums.Role
	IsActive  *bool
}

// Service exposes staff account management.
type Service interface {
	Create(ctx context.Context, actorID int64, input CreateEmployeeInput, meta types.RequestMeta) (*EmployeeDTO, error)
	List(ctx context.Context, includeInactive bool) ([]EmployeeDTO, error)
	GetByID(ctx context.Context, id int64) (*EmployeeDTO, error)
	Update(ctx context.Context, actorID, id int64, input UpdateEmployeeInput, meta types.RequestMeta) (*EmployeeDTO, error)
	Delete(ctx context.Context, actorID, id int64, meta types.RequestMeta) error
	UpdatePhoto(ctx context.Context, actorID, id int64, photoURL string, meta types.RequestMeta) (*EmployeeDTO, error)
	ResetPassword(ctx context.Context, actorID, id int64, meta types.RequestMeta) (string, error)
	Summary(ctx context.Context) (*SummaryDTO, error)
}

type service struct {
	repo        Repository
	sales       salesCounter
	history     auditRecorder
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService builds an employees service with the provided dependencies.
func NewService(repo Repository, sales salesCounter, recorder auditRecorder, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employees repository required")
	}
	if sales == nil {
		return nil, fmt.Errorf("sales counter required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		repo:        repo,
		sales:       sales,
		history:     recorder,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actorID int64, input CreateEmployeeInput, meta types.RequestMeta) (*EmployeeDTO, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	phone := strings.TrimSpace(input.Phone)

	if firstName == "" || lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}
	if len(input.TempPassword) < s.passwordCfg.MinLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("temporary password must be at least %d characters", s.passwordCfg.MinLength))
	}

	if err := s.ensurePhoneAvailable(ctx, phone, 0); err != nil {
		return nil, err
	}

	username := buildUsername(firstName, lastName, input.Role)
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("username %q is already taken", username))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
	}

	hash, err := security.HashPassword(input.TempPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Username:           username,
		PasswordHash:       hash,
		FirstName:          firstName,
		LastName:           lastName,
		Phone:              phone,
		Role:               input.Role,
		MustChangePassword: true,
		IsActive:           true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create employee")
	}

	if err := s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionUserCreate,
		Description: fmt.Sprintf("Created employee %s %s (%s)", firstName, lastName, username),
		Meta:        meta,
	}); err != nil {
		return nil, err
	}

	dto := toEmployeeDTO(*user)
	return &dto, nil
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]EmployeeDTO, error) {
	users, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
	}

	result := make([]EmployeeDTO, 0, len(users))
	for _, user := range users {
		result = append(result, toEmployeeDTO(user))
	}
	return result, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*EmployeeDTO, error) {
	user, err := s.findEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toEmployeeDTO(*user)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actorID, id int64, input UpdateEmployeeInput, meta types.RequestMeta) (*EmployeeDTO, error) {
	user, err := s.findEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name is required")
		}
		user.FirstName = name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "last name is required")
		}
		user.LastName = name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
		}
		if err := s.ensurePhoneAvailable(ctx, phone, user.ID); err != nil {
			return nil, err
		}
		user.Phone = phone
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", *input.Role))
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee")
	}

	if err := s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionUserUpdate,
		Description: fmt.Sprintf("Updated employee %s %s (%s)", user.FirstName, user.LastName, user.Username),
		Meta:        meta,
	}); err != nil {
		return nil, err
	}

	dto := toEmployeeDTO(*user)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actorID, id int64, meta types.RequestMeta) error {
	user, err := s.findEmployee(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.sales.CountByEmployee(ctx, user.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count employee sales")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			"employee has registered sales and cannot be deleted; deactivate instead")
	}

	if err := s.repo.HardDelete(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete employee")
	}

	return s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionUserDelete,
		Description: fmt.Sprintf("Deleted employee %s %s (%s)", user.FirstName, user.LastName, user.Username),
		Meta:        meta,
	})
}

func (s *service) UpdatePhoto(ctx context.Context, actorID, id int64, photoURL string, meta types.RequestMeta) (*EmployeeDTO, error) {
	photoURL = strings.TrimSpace(photoURL)
	if photoURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo url is required")
	}

	user, err := s.findEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	user.PhotoURL = &photoURL
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee photo")
	}

	if err := s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionUserUpdate,
		Description: fmt.Sprintf("Updated photo for employee %s", user.Username),
		Meta:        meta,
	}); err != nil {
		return nil, err
	}

	dto := toEmployeeDTO(*user)
	return &dto, nil
}

func (s *service) ResetPassword(ctx context.Context, actorID, id int64, meta types.RequestMeta) (string, error) {
	user, err := s.findEmployee(ctx, id)
	if err != nil {
		return "", err
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user.PasswordHash = hash
	user.MustChangePassword = true
	if err := s.repo.Update(ctx, user); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset employee password")
	}

	if err := s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionPasswordReset,
		Description: fmt.Sprintf("Reset password for employee %s", user.Username),
		Meta:        meta,
	}); err != nil {
		return "", err
	}

	return tempPassword, nil
}

func (s *service) Summary(ctx context.Context) (*SummaryDTO, error) {
	summary, err := s.repo.Summary(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate roster")
	}
	return &SummaryDTO{
		TotalEmployees:  summary.TotalEmployees,
		ActiveEmployees: summary.ActiveEmployees,
		BossCount:       summary.BossCount,
		TodaySales:      summary.TodaySales,
	}, nil
}

func (s *service) findEmployee(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find employee")
	}
	return user, nil
}

func (s *service) ensurePhoneAvailable(ctx context.Context, phone string, excludeID int64) error {
	existing, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check phone")
	}
	if existing.ID != excludeID {
		return pkgerrors.New(pkgerrors.CodeConflict, "an employee with this phone already exists")
	}
	return nil
}

// buildUsername derives first_last plus a role suffix, lowercased. Collisions
// fail the creation rather than retrying with a counter.
func buildUsername(firstName, lastName string, role enums.Role) string {
	first := strings.ToLower(strings.Fields(firstName)[0])
	last := strings.ToLower(strings.Fields(lastName)[0])

	suffix := ".emp"
	if role == enums.RoleBoss {
		suffix = ".adm"
	}
	return first + "_" + last + suffix
}
