package enums

import "fmt"

// AuditAction tags an entry in the append-only action log.
type AuditAction string

const (
	AuditActionLogin          AuditAction = "login"
	AuditActionSale           AuditAction = "sale"
	AuditActionSaleCanceled   AuditAction = "sale_canceled"
	AuditActionProductCreate  AuditAction = "product_create"
	AuditActionProductUpdate  AuditAction = "product_update"
	AuditActionProductDelete  AuditAction = "product_delete"
	AuditActionCategoryCreate AuditAction = "category_create"
	AuditActionCategoryUpdate AuditAction = "category_update"
	AuditActionCategoryDelete AuditAction = "category_delete"
	AuditActionUserCreate     AuditAction = "user_create"
	AuditActionUserUpdate     AuditAction = "user_update"
	AuditActionUserDelete     AuditAction = "user_delete"
	AuditActionPasswordReset  AuditAction = "password_reset"
)

var validAuditActions = []AuditAction{
	AuditActionLogin,
	AuditActionSale,
	AuditActionSaleCanceled,
	AuditActionProductCreate,
	AuditActionProductUpdate,
	AuditActionProductDelete,
	AuditActionCategoryCreate,
	AuditActionCategoryUpdate,
	AuditActionCategoryDelete,
	AuditActionUserCreate,
	AuditActionUserUpdate,
	AuditActionUserDelete,
	AuditActionPasswordReset,
}

// ChangeSavedActions is the fixed sub-list counted as "changes saved" in
// the same-day aggregate.
var ChangeSavedActions = []AuditAction{
	AuditActionProductCreate,
	AuditActionProductUpdate,
	AuditActionCategoryCreate,
	AuditActionCategoryUpdate,
	AuditActionUserCreate,
	AuditActionUserUpdate,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
