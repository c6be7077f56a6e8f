package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
)

func setupHistoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  photo_url TEXT,
  role TEXT NOT NULL,
  must_change_password INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	entries := `
CREATE TABLE IF NOT EXISTS audit_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  action TEXT NOT NULL,
  description TEXT NOT NULL,
  ip_address TEXT NOT NULL DEFAULT '',
  user_agent TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(entries).Error)
	require.NoError(t, db.Exec("DELETE FROM audit_entries").Error)
	require.NoError(t, db.Exec("DELETE FROM users").Error)

	return db
}

func seedAuditUser(t *testing.T, db *gorm.DB, username, firstName, lastName string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		PasswordHash: "x",
		FirstName:    firstName,
		LastName:     lastName,
		Role:         enums.RoleEmployee,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedEntry(t *testing.T, db *gorm.DB, userID int64, action enums.AuditAction, description string) {
	t.Helper()
	require.NoError(t, db.Create(&models.AuditEntry{
		UserID:      userID,
		Action:      action,
		Description: description,
	}).Error)
}

func TestListSearchMatchesDescriptionAndActor(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	maria := seedAuditUser(t, db, "maria_lopez.emp", "Maria", "Lopez")
	juan := seedAuditUser(t, db, "juan_perez.emp", "Juan", "Perez")
	seedEntry(t, db, maria.ID, enums.AuditActionSale, "Registered sale #1")
	seedEntry(t, db, juan.ID, enums.AuditActionLogin, "User juan_perez.emp logged in")

	rows, err := repo.List(ctx, ListFilters{Search: "Maria"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, maria.ID, rows[0].UserID)

	rows, err = repo.List(ctx, ListFilters{Search: "Registered"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.AuditActionSale, rows[0].Action)
}

func TestListFiltersByAction(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	maria := seedAuditUser(t, db, "maria_lopez.emp", "Maria", "Lopez")
	seedEntry(t, db, maria.ID, enums.AuditActionSale, "Registered sale #1")
	seedEntry(t, db, maria.ID, enums.AuditActionLogin, "User maria_lopez.emp logged in")

	action := enums.AuditActionLogin
	rows, err := repo.List(ctx, ListFilters{Action: &action})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.AuditActionLogin, rows[0].Action)
}

func TestListHonorsLimit(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	maria := seedAuditUser(t, db, "maria_lopez.emp", "Maria", "Lopez")
	seedEntry(t, db, maria.ID, enums.AuditActionSale, "Registered sale #1")
	seedEntry(t, db, maria.ID, enums.AuditActionSale, "Registered sale #2")
	seedEntry(t, db, maria.ID, enums.AuditActionSale, "Registered sale #3")

	rows, err := repo.List(ctx, ListFilters{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestTodayStatsCountsDistinctUsersAndChanges(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	maria := seedAuditUser(t, db, "maria_lopez.emp", "Maria", "Lopez")
	juan := seedAuditUser(t, db, "juan_perez.emp", "Juan", "Perez")

	seedEntry(t, db, maria.ID, enums.AuditActionSale, "Registered sale #1")
	seedEntry(t, db, maria.ID, enums.AuditActionProductCreate, "Created product J0001")
	seedEntry(t, db, juan.ID, enums.AuditActionCategoryUpdate, "Updated category")
	seedEntry(t, db, juan.ID, enums.AuditActionLogin, "User juan_perez.emp logged in")

	stats, err := repo.TodayStats(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalActions)
	assert.Equal(t, int64(1), stats.SalesCount)
	assert.Equal(t, int64(2), stats.ChangesSaved)
	assert.Equal(t, int64(2), stats.ActiveUsers)
}
