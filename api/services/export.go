package services

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// The exporters are pure serializations of pipeline entities: a trainer
// guide and an assessment document in markdown, the deck as JSON, and a zip
// archive bundling all three.

// BuildTrainerGuide renders the outline and slides as a markdown guide.
func BuildTrainerGuide(outline *CourseOutline, slides []SlideContent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n_Trainer Guide_\n\n", outline.Title)

	b.WriteString("## Table of Contents\n\n")
	for i, module := range outline.Modules {
		fmt.Fprintf(&b, "%d. Module %d: %s\n", i+1, i+1, module.Title)
	}

	b.WriteString("\n## Program Overview\n\n")
	b.WriteString(outline.Description + "\n\n")
	fmt.Fprintf(&b, "**Duration:** %s\n\n", outline.Duration)

	b.WriteString("### Learning Objectives\n\n")
	for _, obj := range outline.Objectives {
		fmt.Fprintf(&b, "- %s\n", obj)
	}

	slideIndex := 0
	for moduleNum, module := range outline.Modules {
		fmt.Fprintf(&b, "\n## Module %d: %s\n\n", moduleNum+1, module.Title)
		fmt.Fprintf(&b, "**Duration:** %s  \n**Estimated Slides:** %d\n\n", module.Duration, module.EstimatedSlides)

		b.WriteString("### Module Objectives\n\n")
		for _, obj := range module.Objectives {
			fmt.Fprintf(&b, "- %s\n", obj)
		}

		b.WriteString("\n### Key Points\n\n")
		for _, kp := range module.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", kp)
		}

		b.WriteString("\n### Slide-by-Slide Guide\n\n")
		for i := 0; i < module.EstimatedSlides && slideIndex < len(slides); i++ {
			slide := slides[slideIndex]
			fmt.Fprintf(&b, "#### Slide %d: %s\n\n", slideIndex+1, slide.Title)
			for _, bullet := range slide.Content {
				fmt.Fprintf(&b, "- %s\n", bullet)
			}
			fmt.Fprintf(&b, "\n**Trainer Notes:** %s\n\n", slide.Notes)
			slideIndex++
		}
	}

	return b.String()
}

// BuildAssessmentDoc renders per-module questions with an answer key.
func BuildAssessmentDoc(outline *CourseOutline, questionsByModule map[int][]AssessmentQuestion) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s - Assessment\n\n", outline.Title)
	fmt.Fprintf(&b, "**Duration:** %s  \n**Total Modules:** %d\n\n", outline.Duration, outline.TotalModules)

	b.WriteString("## Instructions\n\n")
	b.WriteString("Please answer all questions to the best of your ability.\n")
	b.WriteString("For multiple choice questions, select the best answer.\n")
	b.WriteString("For short answer questions, provide detailed responses.\n")

	questionNum := 1
	var answerKey []string

	for _, module := range outline.Modules {
		fmt.Fprintf(&b, "\n## Module: %s\n", module.Title)

		for _, q := range questionsByModule[module.ID] {
			fmt.Fprintf(&b, "\n### Question %d\n\n%s\n\n", questionNum, q.Question)

			switch q.Type {
			case "multiple_choice":
				for _, option := range q.Options {
					fmt.Fprintf(&b, "- %s\n", option)
				}
				fmt.Fprintf(&b, "\n**Correct Answer:** %s  \n**Explanation:** %s\n", q.CorrectAnswer, q.Explanation)
				answerKey = append(answerKey, fmt.Sprintf("Q%d: %s", questionNum, q.CorrectAnswer))
			case "short_answer":
				b.WriteString("**Grading Points:**\n\n")
				for _, point := range q.GradingPoints {
					fmt.Fprintf(&b, "- %s\n", point)
				}
				fmt.Fprintf(&b, "\n**Sample Answer:** %s\n", q.SampleAnswer)
			}

			questionNum++
		}
	}

	b.WriteString("\n## Answer Key Summary\n\n")
	for _, entry := range answerKey {
		fmt.Fprintf(&b, "- %s\n", entry)
	}

	return b.String()
}

// BuildDeckJSON serializes the deck with the layout chosen for each slide.
func BuildDeckJSON(outline *CourseOutline, slides []SlideContent) ([]byte, error) {
	type deckSlide struct {
		SlideContent
		Layout string `json:"layout"`
		Theme  string `json:"theme"`
	}

	deck := struct {
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Duration    string      `json:"duration"`
		SlideCount  int         `json:"slide_count"`
		Slides      []deckSlide `json:"slides"`
	}{
		Title:       outline.Title,
		Description: outline.Description,
		Duration:    outline.Duration,
		SlideCount:  len(slides),
	}

	for _, slide := range slides {
		template := GetSlideTemplate(slide)
		deck.Slides = append(deck.Slides, deckSlide{
			SlideContent: slide,
			Layout:       template.Layout,
			Theme:        template.Theme,
		})
	}

	return json.MarshalIndent(deck, "", "  ")
}

// CreateZipPackage writes the named contents into a zip archive at
// outputPath.
func CreateZipPackage(files map[string][]byte, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create zip file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("failed to add %s to zip: %w", name, err)
		}
		if _, err := w.Write(content); err != nil {
			zw.Close()
			return fmt.Errorf("failed to write %s to zip: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize zip: %w", err)
	}

	log.Info().Str("path", outputPath).Int("files", len(files)).Msg("ZIP package created")
	return nil
}

// ExportBundle renders all output documents and bundles them into a zip
// archive under outputDir. It returns the archive path.
func ExportBundle(outline *CourseOutline, slides []SlideContent, questionsByModule map[int][]AssessmentQuestion, outputDir, courseID string) (string, error) {
	deck, err := BuildDeckJSON(outline, slides)
	if err != nil {
		return "", fmt.Errorf("failed to serialize deck: %w", err)
	}

	files := map[string][]byte{
		"presentation.json": deck,
		"trainer_guide.md":  []byte(BuildTrainerGuide(outline, slides)),
		"assessment.md":     []byte(BuildAssessmentDoc(outline, questionsByModule)),
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_training_package.zip", courseID))
	if err := CreateZipPackage(files, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}
