// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	rfpdomain "rfp-backend/internal/rfp/domain"
	vendordomain "rfp-backend/internal/vendors/domain"
	"rfp-backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database closed at test end.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, database.DriverSQLite, Models()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{&vendordomain.Vendor{}, &rfpdomain.RFP{}, &rfpdomain.Item{}, &rfpdomain.Proposal{}}
}
