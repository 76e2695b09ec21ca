package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryMigrationHasUpAndDown(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		body, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestModuleSubscriptionsAreUniquePerOrganization(t *testing.T) {
	body, err := fs.ReadFile(FS, "00002_tenancy.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "PRIMARY KEY (org_id, module)"))
}
