package utils

import (
	"testing"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomSubset(t *testing.T) {
	arr := []string{"a", "b", "c", "d"}
	for i := 0; i < 50; i++ {
		subset := GenerateRandomSubset(arr)
		assert.NotEmpty(t, subset)
		assert.LessOrEqual(t, len(subset), len(arr))
		assert.Len(t, DedupeIDs(subset), len(subset))
		for _, v := range subset {
			assert.Contains(t, arr, v)
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, arr, "input must not be modified")
	assert.Empty(t, GenerateRandomSubset(nil))
}

func TestGenerateRandomMenuItemIsValid(t *testing.T) {
	category := &domain.Category{ID: "c1", Name: "Starters"}
	for i := 0; i < 20; i++ {
		item := GenerateRandomMenuItem(category, "Paneer Tikka")
		assert.NoError(t, ValidateMenuItem(item))
		assert.Equal(t, "c1", item.Category.ID)
	}
}

func TestGenerateRandomID(t *testing.T) {
	id := GenerateRandomID(3, 4)
	assert.Len(t, id, 7)
	assert.Regexp(t, `^[A-Za-z]{3}[0-9]{4}$`, id)
}
