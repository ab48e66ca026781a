package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	slideBatchSize        = 15
	maxSlidesPerModule    = 100
	slideContextChunkSize = 60000
	slideContextChunks    = 2
	slideContextMaxChars  = 10000
	previousSlidesCarried = 5
)

// SlideGenerator produces slide records grounded in the source document,
// one module at a time. State is not carried between modules.
type SlideGenerator struct {
	ai            AIProvider
	sourceContent string
}

func NewSlideGenerator(ai AIProvider) *SlideGenerator {
	return &SlideGenerator{ai: ai}
}

// SetSourceContent sets the document text used as grounding context.
func (g *SlideGenerator) SetSourceContent(content string) error {
	if len(strings.TrimSpace(content)) < 100 {
		return fmt.Errorf("source document must contain at least 100 characters")
	}
	g.sourceContent = content
	log.Info().Int("chars", len(content)).Msg("Source content set")
	return nil
}

// GenerateSlidesForModule generates the module's slides in fixed batches.
// A failed batch is logged and skipped, so the result can be shorter than
// requested; partial module content is acceptable, total module failure is
// not. Each batch after the first carries the last few generated slides as
// context so the model avoids repeating content.
func (g *SlideGenerator) GenerateSlidesForModule(module ModuleOutline, progress ProgressFunc) ([]SlideContent, error) {
	targetSlides := module.EstimatedSlides
	if targetSlides <= 0 {
		targetSlides = 8
	}
	if targetSlides > maxSlidesPerModule {
		targetSlides = maxSlidesPerModule
	}
	log.Info().Int("slides", targetSlides).Str("module", module.Title).Msg("Generating slides for module")

	if progress != nil {
		progress(fmt.Sprintf("Generating %d slides...", targetSlides), 0)
	}

	contextChunks := ChunkText(g.sourceContent, slideContextChunkSize)
	if len(contextChunks) > slideContextChunks {
		contextChunks = contextChunks[:slideContextChunks]
	}
	baseContext := truncateRunes(strings.Join(contextChunks, "\n\n"), slideContextMaxChars)

	objectives := module.Objectives
	if len(objectives) > 3 {
		objectives = objectives[:3]
	}
	moduleTopics := module.Topics
	if len(moduleTopics) > 3 {
		moduleTopics = moduleTopics[:3]
	}

	totalBatches := (targetSlides + slideBatchSize - 1) / slideBatchSize
	var allSlides []SlideContent

	for batchStart := 0; batchStart < targetSlides; batchStart += slideBatchSize {
		batchCount := slideBatchSize
		if remaining := targetSlides - batchStart; remaining < batchCount {
			batchCount = remaining
		}
		batchNum := batchStart/slideBatchSize + 1

		if progress != nil {
			progress(fmt.Sprintf("Batch %d/%d...", batchNum, totalBatches), batchStart*100/targetSlides)
		}

		previousContext := "None"
		if len(allSlides) > 0 {
			tail := allSlides
			if len(tail) > previousSlidesCarried {
				tail = tail[len(tail)-previousSlidesCarried:]
			}
			encoded, _ := json.Marshal(tail)
			previousContext = string(encoded)
		}

		prompt := fmt.Sprintf(`Generate %d training slides for this module.

MODULE: %s
OBJECTIVES: %s
TOPICS: %s

SOURCE CONTENT:
%s

PREVIOUS SLIDES:
%s

Return JSON array with %d slides:
[
  {
    "slide_number": %d,
    "title": "Specific Topic Title",
    "content": [
      "Specific fact with data/numbers",
      "Another distinct detail",
      "Different concrete example",
      "Unique application"
    ],
    "notes": "Detailed 200+ word teaching guide",
    "slide_type": "content"
  }
]

CRITICAL: Extract REAL information from source content above.`,
			batchCount, module.Title, strings.Join(objectives, ", "), strings.Join(moduleTopics, ", "),
			baseContext, previousContext, batchCount, batchStart+1)

		batch, err := g.generateBatch(prompt)
		if err != nil {
			log.Warn().Err(err).Int("batch", batchNum).Msg("Batch failed, skipping")
			continue
		}

		for i := range batch {
			batch[i].SlideNumber = batchStart + i + 1
		}
		allSlides = append(allSlides, batch...)
	}

	if len(allSlides) > targetSlides {
		allSlides = allSlides[:targetSlides]
	}

	// Slide type is forced by position within the module's sequence.
	for i := range allSlides {
		switch i {
		case 0:
			allSlides[i].SlideType = "title"
		case len(allSlides) - 1:
			allSlides[i].SlideType = "summary"
		default:
			allSlides[i].SlideType = "content"
		}
	}

	if progress != nil {
		progress(fmt.Sprintf("Generated %d slides", len(allSlides)), 100)
	}

	return allSlides, nil
}

// generateBatch issues one model call and decodes either a bare array or a
// {"slides": [...]} wrapper.
func (g *SlideGenerator) generateBatch(prompt string) ([]SlideContent, error) {
	systemPrompt := "Extract specific information from source documents. Return only valid JSON."

	response, err := g.ai.GenerateJSON(prompt, systemPrompt, 0.1, 4000)
	if err != nil {
		return nil, err
	}

	cleaned := CleanJSONResponse(response)
	if strings.HasPrefix(cleaned, "[") {
		var batch []SlideContent
		if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
			return nil, &ResponseParseError{Err: err}
		}
		return batch, nil
	}

	var wrapper struct {
		Slides []SlideContent `json:"slides"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapper); err != nil {
		return nil, &ResponseParseError{Err: err}
	}
	return wrapper.Slides, nil
}

// NumberSlides reassigns contiguous 1-based slide numbers across a stitched
// multi-module deck. Only the very first slide of the deck keeps the title
// type; module-leading title slides further in are demoted to content.
// Module-closing summary slides keep their type.
func NumberSlides(slides []SlideContent) {
	for i := range slides {
		slides[i].SlideNumber = i + 1
		if i > 0 && slides[i].SlideType == "title" {
			slides[i].SlideType = "content"
		}
	}
	if len(slides) > 0 {
		slides[0].SlideType = "title"
	}
}
