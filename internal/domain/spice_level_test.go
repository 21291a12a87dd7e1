package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpiceLevel(t *testing.T) {
	tests := []struct {
		in   string
		want SpiceLevel
	}{
		{"MILD", SpiceMild},
		{"low", SpiceMild},
		{"Medium", SpiceMedium},
		{"HOT", SpiceHot},
		{"SPICY", SpiceHot},
		{" high ", SpiceHot},
	}
	for _, tt := range tests {
		got, err := ParseSpiceLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseSpiceLevel("volcanic")
	assert.Error(t, err)
}

func TestSpiceLevelValidOnlyCanonical(t *testing.T) {
	assert.True(t, SpiceHot.Valid())
	assert.False(t, SpiceLevel("SPICY").Valid())
	assert.False(t, SpiceLevel("").Valid())
}

func TestSpiceLevelUnmarshalNormalizes(t *testing.T) {
	var item MenuItem
	require.NoError(t, json.Unmarshal([]byte(`{"spiceLevel":"SPICY"}`), &item))
	assert.Equal(t, SpiceHot, item.SpiceLevel)

	assert.Error(t, json.Unmarshal([]byte(`{"spiceLevel":"nuclear"}`), &item))
}
