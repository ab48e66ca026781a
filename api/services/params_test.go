package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationToSlides(t *testing.T) {
	assert.Equal(t, 8, DurationToSlides["30 minutes"])
	assert.Equal(t, 50, DurationToSlides["1 day"])
	assert.Equal(t, 720, DurationToSlides["1 month"])
}

func TestRecommendedModules(t *testing.T) {
	tests := []struct {
		slides  int
		modules int
	}{
		{0, 5},
		{50, 5},
		{51, 6},
		{120, 6},
		{121, 8},
		{200, 8},
		{201, 10},
		{360, 10},
		{361, 12},
		{720, 12},
		{721, 15},
		{9999, 15},
		{50000, 8}, // outside every band
	}
	for _, tc := range tests {
		assert.Equal(t, tc.modules, RecommendedModules(tc.slides), "slides=%d", tc.slides)
	}
}

func TestValidateAPIKey(t *testing.T) {
	assert.True(t, ValidateAPIKey("sk-"+strings.Repeat("a", 30)))
	assert.False(t, ValidateAPIKey(""))
	assert.False(t, ValidateAPIKey("sk-short"))
	assert.False(t, ValidateAPIKey("pk-"+strings.Repeat("a", 30)))
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 1, ReadingTime(0))
	assert.Equal(t, 1, ReadingTime(249))
	assert.Equal(t, 1, ReadingTime(250))
	assert.Equal(t, 4, ReadingTime(1000))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45m", FormatDuration(45))
	assert.Equal(t, "2h", FormatDuration(120))
	assert.Equal(t, "1h 30m", FormatDuration(90))
	assert.Equal(t, "0m", FormatDuration(0))
}

func TestFileHash(t *testing.T) {
	a := FileHash([]byte("content"))
	b := FileHash([]byte("content"))
	c := FileHash([]byte("different"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
