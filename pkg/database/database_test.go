package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestSQLiteMigrate(t *testing.T) {
	db, err := NewConnection(DriverSQLite, ":memory:")
	require.NoError(t, err)

	require.NoError(t, Migrate(db, DriverSQLite, &widget{}))
	assert.True(t, db.Migrator().HasTable(&widget{}))

	require.NoError(t, db.Create(&widget{Name: "bolt"}).Error)
	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := NewConnection("oracle", "dsn")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_create_rfp_tables.sql", entries[0].Name())
}
