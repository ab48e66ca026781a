package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// OutlineGenerator turns topics plus target module/slide counts into a
// structured multi-module course outline.
type OutlineGenerator struct {
	ai    AIProvider
	retry retryPolicy
}

func NewOutlineGenerator(ai AIProvider) *OutlineGenerator {
	return &OutlineGenerator{
		ai:    ai,
		retry: retryPolicy{attempts: 5, base: 4 * time.Second, cap: 60 * time.Second},
	}
}

// GenerateOutline prompts the model for exactly targetModules modules and
// reconciles any slide-count drift by adjusting the first module.
func (g *OutlineGenerator) GenerateOutline(topics []TopicInfo, targetModules, targetSlides int, duration, template string) (*CourseOutline, error) {
	log.Info().Int("modules", targetModules).Int("slides", targetSlides).Msg("Generating outline")

	digestLines := make([]string, 0, len(topics))
	for i, t := range topics {
		concepts := t.KeyConcepts
		if len(concepts) > 4 {
			concepts = concepts[:4]
		}
		digestLines = append(digestLines, fmt.Sprintf("%d. %s\n   Concepts: %s\n   Duration: %dmin",
			i+1, t.Title, strings.Join(concepts, ", "), t.DurationMinutes))
	}
	topicsSummary := strings.Join(digestLines, "\n")

	slidesPerModule := targetSlides / targetModules

	prompt := fmt.Sprintf(`Create a detailed training outline with %d modules and approximately %d total slides.

TOPICS IDENTIFIED:
%s

REQUIREMENTS:
- Duration: %s
- Modules: %d
- Total Slides: ~%d (approximately %d per module)
- Template Style: %s

Return JSON with this EXACT structure:
{
  "title": "Comprehensive Training Program Title",
  "description": "2-3 sentence program overview",
  "duration": "%s",
  "total_modules": %d,
  "estimated_slides": %d,
  "objectives": [
    "Primary learning objective 1",
    "Primary learning objective 2",
    "Primary learning objective 3",
    "Primary learning objective 4"
  ],
  "modules": [
    {
      "id": 1,
      "title": "Module Title",
      "duration": "2 hours",
      "objectives": [
        "Module objective 1",
        "Module objective 2",
        "Module objective 3"
      ],
      "topics": ["topic1", "topic2", "topic3"],
      "key_points": [
        "Key point 1",
        "Key point 2",
        "Key point 3",
        "Key point 4",
        "Key point 5"
      ],
      "estimated_slides": %d
    }
  ]
}

Requirements:
- Create exactly %d modules
- Distribute %d slides evenly across modules
- Each module should have 3-4 objectives
- Each module should have 5-8 key points
- Modules should build progressively
- Return ONLY valid JSON`,
		targetModules, targetSlides, topicsSummary, duration, targetModules, targetSlides,
		slidesPerModule, template, duration, targetModules, targetSlides, slidesPerModule,
		targetModules, targetSlides)

	systemPrompt := "You are an expert instructional designer creating comprehensive training outlines. Return only valid JSON."

	var outline CourseOutline
	err := g.retry.run(func() error {
		response, err := g.ai.GenerateJSON(prompt, systemPrompt, 0.7, 4000)
		if err != nil {
			return err
		}

		outline = CourseOutline{}
		if err := DecodeModelJSON(response, &outline); err != nil {
			log.Error().Err(err).Msg("Outline generation returned malformed JSON")
			return err
		}
		if len(outline.Modules) == 0 {
			return &ResponseParseError{Err: fmt.Errorf("outline has no modules")}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("outline generation failed: %w", err)
	}

	ReconcileOutline(&outline, targetSlides, slidesPerModule)

	log.Info().Int("modules", len(outline.Modules)).Msg("Successfully generated outline")
	return &outline, nil
}

// ReconcileOutline backfills missing module ids and slide counts, then pins
// the outline totals to the requested slide count. Any drift between the
// declared per-module counts and the target lands entirely on the first
// module; downstream consumers rely on this exact tie-break.
func ReconcileOutline(outline *CourseOutline, targetSlides, slidesPerModule int) {
	for i := range outline.Modules {
		if outline.Modules[i].ID == 0 {
			outline.Modules[i].ID = i + 1
		}
		if outline.Modules[i].EstimatedSlides == 0 {
			outline.Modules[i].EstimatedSlides = slidesPerModule
		}
	}

	actualTotal := 0
	for _, m := range outline.Modules {
		actualTotal += m.EstimatedSlides
	}
	if actualTotal != targetSlides && len(outline.Modules) > 0 {
		outline.Modules[0].EstimatedSlides += targetSlides - actualTotal
	}

	outline.EstimatedSlides = targetSlides
	outline.TotalModules = len(outline.Modules)
}
