package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	topicSampleChunkSize = 100000
	topicSampleChunks    = 3
	topicSampleCharsPer  = 5000

	defaultTopicDuration = 45
)

// TopicAnalyzer extracts the main topics of a document with the model.
type TopicAnalyzer struct {
	ai    AIProvider
	retry retryPolicy
}

func NewTopicAnalyzer(ai AIProvider) *TopicAnalyzer {
	return &TopicAnalyzer{
		ai:    ai,
		retry: retryPolicy{attempts: 3, base: 4 * time.Second, cap: 60 * time.Second},
	}
}

// ExtractTopics sends a bounded sample of the content to the model and
// returns the structured topic set. The whole call is retried on malformed
// responses or API failures before the error surfaces.
func (t *TopicAnalyzer) ExtractTopics(content string, numTopics int) ([]TopicInfo, error) {
	log.Info().Int("num_topics", numTopics).Msg("Extracting topics from content")

	// A bounded sample, not the full document, is what the model sees.
	chunks := ChunkText(content, topicSampleChunkSize)
	if len(chunks) > topicSampleChunks {
		chunks = chunks[:topicSampleChunks]
	}
	sampleParts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		sampleParts = append(sampleParts, truncateRunes(chunk, topicSampleCharsPer))
	}
	sample := strings.Join(sampleParts, "\n\n")

	log.Info().Int("sample_chars", len(sample)).Msg("Using content sample for topic extraction")

	prompt := fmt.Sprintf(`Analyze this training document and extract %d distinct main topics.

DOCUMENT:
%s

Return JSON with this EXACT structure:
{
  "topics": [
    {
      "id": 1,
      "title": "Specific Topic Name",
      "description": "What this topic covers (2-3 sentences)",
      "key_concepts": ["concept1", "concept2", "concept3", "concept4", "concept5"],
      "importance": "high",
      "estimated_duration_minutes": 45
    }
  ]
}

Requirements:
- Extract %d topics
- Each topic must have 4-6 key concepts
- Importance: high/medium/low
- Duration: 20-90 minutes based on topic complexity
- Topics should be distinct and cover different aspects
- Return ONLY valid JSON, no additional text`, numTopics, sample, numTopics)

	systemPrompt := "You are an expert instructional designer analyzing training content. Return only valid JSON."

	var topics []TopicInfo
	err := t.retry.run(func() error {
		response, err := t.ai.GenerateJSON(prompt, systemPrompt, 0.7, 4000)
		if err != nil {
			return err
		}

		var result struct {
			Topics []TopicInfo `json:"topics"`
		}
		if err := DecodeModelJSON(response, &result); err != nil {
			log.Error().Err(err).Msg("Topic extraction returned malformed JSON")
			return err
		}

		topics = result.Topics
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("topic extraction failed: %w", err)
	}

	// Backfill fields the model omitted or got wrong.
	for i := range topics {
		if topics[i].ID == 0 {
			topics[i].ID = i + 1
		}
		switch topics[i].Importance {
		case "high", "medium", "low":
		default:
			topics[i].Importance = "medium"
		}
		if topics[i].DurationMinutes == 0 {
			topics[i].DurationMinutes = defaultTopicDuration
		}
	}

	log.Info().Int("topics", len(topics)).Msg("Successfully extracted topics")
	return topics, nil
}
