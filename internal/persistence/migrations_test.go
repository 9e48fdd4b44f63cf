package persistence

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreGooseAnnotated(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		body, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+entry.Name())
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", entry.Name())
		assert.Contains(t, string(body), "-- +goose Down", entry.Name())
	}
}

func TestInitialSchemaEnforcesEmailUniqueness(t *testing.T) {
	body, err := fs.ReadFile(migrationsFS, migrationsDir+"/00001_init.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "UNIQUE (email)"))
}

func TestForeignKeysGuardOrphanedRows(t *testing.T) {
	body, err := fs.ReadFile(migrationsFS, migrationsDir+"/00002_foreign_keys.sql")
	require.NoError(t, err)
	schema := string(body)
	assert.Contains(t, schema, "FOREIGN KEY (creator_id) REFERENCES users (id)")
	assert.Contains(t, schema, "FOREIGN KEY (feedback_id) REFERENCES feedback (id)")
}
