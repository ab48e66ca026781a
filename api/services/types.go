package services

// TopicInfo is one subject area identified in the source material.
type TopicInfo struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	KeyConcepts     []string `json:"key_concepts"`
	Importance      string   `json:"importance"` // high, medium, low
	DurationMinutes int      `json:"estimated_duration_minutes"`
}

// ModuleOutline is one unit of the course within an outline.
type ModuleOutline struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Duration        string   `json:"duration"`
	Objectives      []string `json:"objectives"`
	Topics          []string `json:"topics"`
	KeyPoints       []string `json:"key_points"`
	EstimatedSlides int      `json:"estimated_slides"`
}

// CourseOutline is the whole course structure produced by the outline stage.
type CourseOutline struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Duration        string          `json:"duration"`
	TotalModules    int             `json:"total_modules"`
	EstimatedSlides int             `json:"estimated_slides"`
	Objectives      []string        `json:"objectives"`
	Modules         []ModuleOutline `json:"modules"`
}

// SlideContent is one generated slide.
type SlideContent struct {
	SlideNumber int      `json:"slide_number"`
	Title       string   `json:"title"`
	Content     []string `json:"content"`
	Notes       string   `json:"notes"`
	SlideType   string   `json:"slide_type"` // title, content, summary
}

// AssessmentQuestion is one quiz item. Multiple choice questions carry
// Options/CorrectAnswer/Explanation; short answer questions carry
// GradingPoints/SampleAnswer.
type AssessmentQuestion struct {
	Type          string   `json:"type"` // multiple_choice, short_answer
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	GradingPoints []string `json:"grading_points,omitempty"`
	SampleAnswer  string   `json:"sample_answer,omitempty"`
}

// ProgressFunc reports generation progress to the caller. It has no effect
// on control flow and may be nil.
type ProgressFunc func(status string, percent int)
