package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/catalog/internal/entities"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewQuietDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase(t *testing.T) {
	db := setupTestDB(t)

	assert.True(t, db.IsSQLite())
	assert.NoError(t, db.Ping())
	assert.True(t, db.DB.Migrator().HasTable(&entities.Author{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.Book{}))
}

func TestNewDatabase_EnforcesForeignKeys(t *testing.T) {
	db := setupTestDB(t)

	book := &entities.Book{Title: "Orphan", PublicationYear: 2001, AuthorID: 4242}
	err := db.DB.Create(book).Error

	assert.Error(t, err, "a book must not reference a missing author")
}

func TestWithForeignKeys(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"./library.db", "./library.db?_foreign_keys=on"},
		{"file:library.db?cache=shared", "file:library.db?cache=shared&_foreign_keys=on"},
		{"./library.db?_foreign_keys=off", "./library.db?_foreign_keys=off"},
		{"./library.db?_fk=1", "./library.db?_fk=1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, withForeignKeys(tt.input))
		})
	}
}
