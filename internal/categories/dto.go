package categories

import (
	"time"

	"github.com/azulretail/pos-backend/pkg/db/models"
)

// CategoryDTO is the API shape of a category.
type CategoryDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Emoji     *string   `json:"emoji,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCategoryDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		Emoji:     category.Emoji,
		IsActive:  category.IsActive,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}
