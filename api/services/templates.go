package services

import (
	"strings"
)

// SlideTemplate describes the layout chosen for one exported slide.
type SlideTemplate struct {
	Layout           string
	Theme            string
	ContentAlignment string // "left", "center"
}

// GetSlideTemplate selects a layout based on the slide's type and content.
func GetSlideTemplate(slide SlideContent) SlideTemplate {
	if slide.SlideType == "title" {
		return SlideTemplate{
			Layout:           "title",
			Theme:            "gradient",
			ContentAlignment: "center",
		}
	}

	content := strings.Join(slide.Content, "\n")
	contentLower := strings.ToLower(content)
	titleLower := strings.ToLower(slide.Title)

	if slide.SlideType == "summary" ||
		strings.Contains(titleLower, "summary") ||
		strings.Contains(titleLower, "conclusion") ||
		strings.Contains(titleLower, "recap") {
		return SlideTemplate{
			Layout:           "summary",
			Theme:            "purple",
			ContentAlignment: "left",
		}
	}

	// Comparison slides
	if strings.Contains(contentLower, " vs ") ||
		strings.Contains(contentLower, "versus") ||
		strings.Contains(contentLower, "compared to") ||
		strings.Contains(contentLower, "difference between") {
		return SlideTemplate{
			Layout:           "comparison",
			Theme:            "orange",
			ContentAlignment: "left",
		}
	}

	// Data/statistics slides
	if strings.Contains(contentLower, "%") ||
		strings.Contains(contentLower, "data") ||
		strings.Contains(contentLower, "statistics") ||
		strings.Contains(contentLower, "research shows") {
		return SlideTemplate{
			Layout:           "data",
			Theme:            "green",
			ContentAlignment: "left",
		}
	}

	// Longer explanatory slides
	if len(content) > 300 {
		return SlideTemplate{
			Layout:           "concept",
			Theme:            "blue",
			ContentAlignment: "left",
		}
	}

	themes := []string{"blue", "green", "purple", "orange"}
	return SlideTemplate{
		Layout:           "standard",
		Theme:            themes[slide.SlideNumber%len(themes)],
		ContentAlignment: "left",
	}
}
