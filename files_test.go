package signup_test

import (
	"testing"

	"github.com/goliatone/go-signup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrationsFS(t *testing.T) {
	entries, err := signup.GetMigrationsFS().ReadDir("data/sql/migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "20250301000000_create_users.up.sql")
	assert.Contains(t, names, "20250301000001_create_redemptions.up.sql")
}
