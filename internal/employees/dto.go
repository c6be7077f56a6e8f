package employees

import (
	"time"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
)

// EmployeeDTO is the API shape of a staff account.
type EmployeeDTO struct {
	ID                 int64      `json:"id"`
	Username           string     `json:"username"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Phone              string     `json:"phone"`
	Role               enums.Role `json:"role"`
	PhotoURL           *string    `json:"photo_url,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
}

// SummaryDTO aggregates the staff roster.
type SummaryDTO struct {
	TotalEmployees  int64 `json:"total_employees"`
	ActiveEmployees int64 `json:"active_employees"`
	BossCount       int64 `json:"boss_count"`
	TodaySales      int64 `json:"today_sales"`
}

func toEmployeeDTO(user models.User) EmployeeDTO {
	return EmployeeDTO{
		ID:                 user.ID,
		Username:           user.Username,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Phone:              user.Phone,
		Role:               user.Role,
		PhotoURL:           user.PhotoURL,
		MustChangePassword: user.MustChangePassword,
		IsActive:           user.IsActive,
		CreatedAt:          user.CreatedAt,
	}
}
