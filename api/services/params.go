package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// DurationToSlides maps a training duration label to a recommended total
// slide count.
var DurationToSlides = map[string]int{
	"30 minutes": 8,
	"1 hour":     12,
	"2 hours":    20,
	"half day":   30,
	"1 day":      50,
	"2 days":     80,
	"3 days":     120,
	"1 week":     200,
	"2 weeks":    360,
	"1 month":    720,
}

// TemplateOptions are the supported outline template styles.
var TemplateOptions = []string{
	"Corporate - Professional",
	"Technical - Detailed",
	"Compliance - Regulatory",
	"Sales - Persuasive",
	"Academic - Educational",
	"Workshop - Interactive",
}

type moduleBand struct {
	minSlides int
	maxSlides int
	modules   int
}

var moduleRecommendations = []moduleBand{
	{0, 50, 5},
	{51, 120, 6},
	{121, 200, 8},
	{201, 360, 10},
	{361, 720, 12},
	{721, 9999, 15},
}

// RecommendedModules returns the suggested module count for a slide count.
func RecommendedModules(slideCount int) int {
	for _, band := range moduleRecommendations {
		if slideCount >= band.minSlides && slideCount <= band.maxSlides {
			return band.modules
		}
	}
	return 8
}

// ValidateAPIKey checks the credential format: non-empty, prefixed,
// minimum length. It does not verify the key against the provider.
func ValidateAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}
	return strings.HasPrefix(apiKey, "sk-") && len(apiKey) > 20
}

// ReadingTime estimates reading time in minutes at 250 words per minute.
func ReadingTime(wordCount int) int {
	minutes := wordCount / 250
	if minutes < 1 {
		return 1
	}
	return minutes
}

// FormatDuration renders minutes as a compact human-readable label.
func FormatDuration(minutes int) string {
	hours := minutes / 60
	mins := minutes % 60

	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
}

// FileHash returns a content digest used as an upload cache key.
func FileHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
