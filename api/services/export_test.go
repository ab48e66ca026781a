package services

import (
	"archive/zip"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture() (*CourseOutline, []SlideContent, map[int][]AssessmentQuestion) {
	outline := &CourseOutline{
		Title:        "Workplace Safety",
		Description:  "A safety program.",
		Duration:     "1 day",
		TotalModules: 2,
		Objectives:   []string{"Stay safe"},
		Modules: []ModuleOutline{
			{ID: 1, Title: "Basics", Duration: "2h", Objectives: []string{"o1"}, KeyPoints: []string{"k1"}, EstimatedSlides: 2},
			{ID: 2, Title: "Advanced", Duration: "2h", Objectives: []string{"o2"}, KeyPoints: []string{"k2"}, EstimatedSlides: 1},
		},
	}
	slides := []SlideContent{
		{SlideNumber: 1, Title: "Welcome", Content: []string{"hello"}, Notes: "open strong", SlideType: "title"},
		{SlideNumber: 2, Title: "Hazards", Content: []string{"watch out"}, Notes: "list them", SlideType: "content"},
		{SlideNumber: 3, Title: "Wrap Up", Content: []string{"done"}, Notes: "close", SlideType: "summary"},
	}
	questions := map[int][]AssessmentQuestion{
		1: {
			{Type: "multiple_choice", Question: "Pick one", Options: []string{"A. x", "B. y"}, CorrectAnswer: "B", Explanation: "because"},
		},
		2: {
			{Type: "short_answer", Question: "Explain", GradingPoints: []string{"p1"}, SampleAnswer: "sample"},
		},
	}
	return outline, slides, questions
}

func TestBuildTrainerGuide(t *testing.T) {
	outline, slides, _ := exportFixture()
	guide := BuildTrainerGuide(outline, slides)

	assert.Contains(t, guide, "# Workplace Safety")
	assert.Contains(t, guide, "## Module 1: Basics")
	assert.Contains(t, guide, "## Module 2: Advanced")
	assert.Contains(t, guide, "#### Slide 1: Welcome")
	assert.Contains(t, guide, "#### Slide 2: Hazards")
	// Module 2 picks up where module 1's slide allocation ends.
	assert.Contains(t, guide, "#### Slide 3: Wrap Up")
	assert.Contains(t, guide, "**Trainer Notes:** open strong")
}

func TestBuildAssessmentDoc(t *testing.T) {
	outline, _, questions := exportFixture()
	doc := BuildAssessmentDoc(outline, questions)

	assert.Contains(t, doc, "# Workplace Safety - Assessment")
	assert.Contains(t, doc, "### Question 1")
	assert.Contains(t, doc, "**Correct Answer:** B")
	assert.Contains(t, doc, "### Question 2")
	assert.Contains(t, doc, "**Sample Answer:** sample")
	// Only multiple choice lands in the answer key.
	assert.Contains(t, doc, "## Answer Key Summary")
	assert.Contains(t, doc, "- Q1: B")
	assert.NotContains(t, doc, "Q2:")
}

func TestBuildDeckJSON(t *testing.T) {
	outline, slides, _ := exportFixture()
	data, err := BuildDeckJSON(outline, slides)
	require.NoError(t, err)

	var deck struct {
		Title      string `json:"title"`
		SlideCount int    `json:"slide_count"`
		Slides     []struct {
			Title  string `json:"title"`
			Layout string `json:"layout"`
			Theme  string `json:"theme"`
		} `json:"slides"`
	}
	require.NoError(t, json.Unmarshal(data, &deck))

	assert.Equal(t, "Workplace Safety", deck.Title)
	assert.Equal(t, 3, deck.SlideCount)
	require.Len(t, deck.Slides, 3)
	assert.Equal(t, "title", deck.Slides[0].Layout)
	assert.Equal(t, "summary", deck.Slides[2].Layout)
}

func TestExportBundle(t *testing.T) {
	outline, slides, questions := exportFixture()
	dir := t.TempDir()

	path, err := ExportBundle(outline, slides, questions, dir, "course-123")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "course-123_training_package.zip"), path)

	reader, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer reader.Close()

	names := make(map[string]bool)
	for _, f := range reader.File {
		names[f.Name] = true
	}
	assert.True(t, names["presentation.json"])
	assert.True(t, names["trainer_guide.md"])
	assert.True(t, names["assessment.md"])
}

func TestGetSlideTemplate(t *testing.T) {
	tests := []struct {
		name   string
		slide  SlideContent
		layout string
		theme  string
	}{
		{"title slide", SlideContent{SlideType: "title"}, "title", "gradient"},
		{"summary type", SlideContent{SlideType: "summary"}, "summary", "purple"},
		{"summary title", SlideContent{SlideType: "content", Title: "Module Summary"}, "summary", "purple"},
		{"comparison", SlideContent{SlideType: "content", Content: []string{"TCP vs UDP"}}, "comparison", "orange"},
		{"data", SlideContent{SlideType: "content", Content: []string{"Sales grew 40%"}}, "data", "green"},
		{"standard", SlideContent{SlideType: "content", SlideNumber: 4, Content: []string{"short"}}, "standard", "blue"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			template := GetSlideTemplate(tc.slide)
			assert.Equal(t, tc.layout, template.Layout)
			assert.Equal(t, tc.theme, template.Theme)
		})
	}
}

func TestGetSlideTemplateConceptForLongContent(t *testing.T) {
	long := make([]string, 10)
	for i := range long {
		long[i] = "this bullet line pads out the slide body with more prose"
	}
	template := GetSlideTemplate(SlideContent{SlideType: "content", Content: long})
	assert.Equal(t, "concept", template.Layout)
	assert.Equal(t, "blue", template.Theme)
}
