package store

import (
	"strings"

	"gorm.io/gorm"

	"go-user-service/internal/core/database"
	"go-user-service/internal/domain"
)

// Migrate creates the users schema. On backends with partial indexes the
// live-email uniqueness invariant is enforced at the storage layer; soft
// deleted rows stay out of the index so their email can be reused. MySQL
// has no partial indexes, there the application pre-check plus IsDupKey
// sniffing in the service is the arbiter.
func Migrate(db *gorm.DB, driver string) error {
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return err
	}
	switch driver {
	case database.DriverPostgres, database.DriverSQLite, database.DriverMemory:
		return db.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_live_email ON users(email) WHERE deleted_at IS NULL`,
		).Error
	}
	return nil
}

// IsDupKey recognizes unique-constraint violations across backends without
// depending on driver error types.
func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "unique index")
}
