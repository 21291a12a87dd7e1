package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Paneer Tikka", "paneer-tikka"},
		{"  Chef's  Special!! ", "chef-s-special"},
		{"宫保鸡丁", "gong-bao-ji-ding"},
		{"Mango 布丁", "mango-bu-ding"},
		{"***", "item"},
		{"", "item"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := "a very long dish name that keeps going and going well beyond any sane limit"
	got := Slugify(long)
	assert.LessOrEqual(t, len(got), 48)
	assert.NotEqual(t, '-', rune(got[len(got)-1]))
}
