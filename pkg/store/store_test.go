package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrationsParsesEmbeddedSteps(t *testing.T) {
	steps, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, steps)

	prev := 0
	for _, step := range steps {
		assert.Greater(t, step.version, prev, "versions must be strictly increasing")
		assert.NotEmpty(t, step.sql)
		prev = step.version
	}
	assert.Equal(t, 1, steps[0].version)
	assert.Equal(t, "001_create_rosters.sql", steps[0].name)
}
