package history

import (
	"time"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
)

// EntryDTO is the API shape of one action log row.
type EntryDTO struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	UserName    string            `json:"user_name,omitempty"`
	Username    string            `json:"username,omitempty"`
	Action      enums.AuditAction `json:"action"`
	Description string            `json:"description"`
	IPAddress   string            `json:"ip_address"`
	UserAgent   string            `json:"user_agent"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TodayStatsDTO aggregates the current calendar day of the action log.
type TodayStatsDTO struct {
	TotalActions int64 `json:"total_actions"`
	SalesCount   int64 `json:"sales_count"`
	ChangesSaved int64 `json:"changes_saved"`
	ActiveUsers  int64 `json:"active_users"`
}

func toEntryDTO(entry models.AuditEntry) EntryDTO {
	dto := EntryDTO{
		ID:          entry.ID,
		UserID:      entry.UserID,
		Action:      entry.Action,
		Description: entry.Description,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		CreatedAt:   entry.CreatedAt,
	}
	if entry.User != nil {
		dto.UserName = entry.User.FirstName + " " + entry.User.LastName
		dto.Username = entry.User.Username
	}
	return dto
}
