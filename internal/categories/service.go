package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/internal/history"
	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/types"
)

type auditRecorder interface {
	Record(ctx context.Context, input history.RecordInput) error
}

// CreateCategoryInput captures the fields accepted at creation.
type CreateCategoryInput struct {
	Name  string
	Emoji *string
}

// UpdateCategoryInput captures the allowed partial update.
type UpdateCategoryInput struct {
	Name     *string
	Emoji    *string
	IsActive *bool
}

// Service exposes category operations.
type Service interface {
	Create(ctx context.Context, actorID int64, input CreateCategoryInput, meta types.RequestMeta) (*CategoryDTO, error)
	List(ctx context.Context, includeInactive bool) ([]CategoryDTO, error)
	GetByID(ctx context.Context, id int64) (*CategoryDTO, error)
	Update(ctx context.Context, actorID, id int64, input UpdateCategoryInput, meta types.RequestMeta) (*CategoryDTO, error)
	Delete(ctx context.Context, actorID, id int64, meta types.RequestMeta) error
}

type service struct {
	repo    Repository
	history auditRecorder
}

// NewService builds a category service with the provided dependencies.
func NewService(repo Repository, recorder auditRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, history: recorder}, nil
}

func (s *service) Create(ctx context.Context, actorID int64, input CreateCategoryInput, meta types.RequestMeta) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	if err := s.ensureNameAvailable(ctx, name, 0); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:     name,
		Emoji:    input.Emoji,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}

	if err := s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionCategoryCreate,
		Description: fmt.Sprintf("Created category %q", category.Name),
		Meta:        meta,
	}); err != nil {
		return nil, err
	}

	dto := toCategoryDTO(*category)
	return &dto, nil
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]CategoryDTO, error) {
	categories, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	result := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		result = append(result, toCategoryDTO(category))
	}
	return result, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*CategoryDTO, error) {
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toCategoryDTO(*category)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actorID, id int64, input UpdateCategoryInput, meta types.RequestMeta) (*CategoryDTO, error) {
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
		}
		if err := s.ensureNameAvailable(ctx, name, category.ID); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if input.Emoji != nil {
		category.Emoji = input.Emoji
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}

	if err := s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionCategoryUpdate,
		Description: fmt.Sprintf("Updated category %q", category.Name),
		Meta:        meta,
	}); err != nil {
		return nil, err
	}

	dto := toCategoryDTO(*category)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actorID, id int64, meta types.RequestMeta) error {
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return err
	}
	if !category.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is already inactive")
	}

	count, err := s.repo.CountActiveProducts(ctx, category.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cannot delete category with %d active products", count))
	}

	category.IsActive = false
	if err := s.repo.Update(ctx, category); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate category")
	}

	return s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionCategoryDelete,
		Description: fmt.Sprintf("Deleted category %q", category.Name),
		Meta:        meta,
	})
}

func (s *service) findCategory(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find category")
	}
	return category, nil
}

func (s *service) ensureNameAvailable(ctx context.Context, name string, excludeID int64) error {
	existing, err := s.repo.FindActiveByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category name")
	}
	if existing.ID != excludeID {
		return pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
	}
	return nil
}
