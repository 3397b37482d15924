package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

func TestApplyPatch(t *testing.T) {
	record := sampleRecord("patch00001", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	t.Run("empty patch leaves record unchanged", func(t *testing.T) {
		merged, err := ApplyPatch(record, skilltypes.Patch{})
		require.NoError(t, err)
		assert.Equal(t, record, merged)
	})

	t.Run("merges known fields", func(t *testing.T) {
		merged, err := ApplyPatch(record, skilltypes.Patch{
			"category":  "Security",
			"createdAt": "2025-02-03T04:05:06Z",
			"unknown":   "ignored",
		})
		require.NoError(t, err)
		assert.Equal(t, skilltypes.CategorySecurity, merged.Category)
		assert.Equal(t, time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC), merged.CreatedAt.UTC())
		assert.Equal(t, record.Name, merged.Name)
	})

	t.Run("id is immutable", func(t *testing.T) {
		merged, err := ApplyPatch(record, skilltypes.Patch{"id": "other"})
		require.NoError(t, err)
		assert.Equal(t, record.ID, merged.ID)
	})

	t.Run("wrong type is a validation error", func(t *testing.T) {
		_, err := ApplyPatch(record, skilltypes.Patch{"published": "yes"})
		assert.Equal(t, skilltypes.KindValidation, skilltypes.KindOf(err))
	})
}
