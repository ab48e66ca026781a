package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTopicsBackfill(t *testing.T) {
	response := `{"topics": [
		{"title": "Alpha", "description": "First", "key_concepts": ["a"], "importance": "high", "estimated_duration_minutes": 30},
		{"title": "Beta", "description": "Second", "key_concepts": ["b"], "importance": "urgent"},
		{"title": "Gamma", "description": "Third", "key_concepts": ["c"], "importance": "low", "estimated_duration_minutes": 60}
	]}`

	analyzer := NewTopicAnalyzer(alwaysRespond(response))
	analyzer.retry = fastRetry(3)

	topics, err := analyzer.ExtractTopics("some training content", 3)
	require.NoError(t, err)
	require.Len(t, topics, 3)

	// Missing ids are positional.
	assert.Equal(t, 1, topics[0].ID)
	assert.Equal(t, 2, topics[1].ID)
	assert.Equal(t, 3, topics[2].ID)

	// Unknown importance collapses to medium, known values survive.
	assert.Equal(t, "high", topics[0].Importance)
	assert.Equal(t, "medium", topics[1].Importance)
	assert.Equal(t, "low", topics[2].Importance)

	// Missing duration gets the default.
	assert.Equal(t, 30, topics[0].DurationMinutes)
	assert.Equal(t, 45, topics[1].DurationMinutes)
	assert.Equal(t, 60, topics[2].DurationMinutes)
}

func TestExtractTopicsRetriesThenFails(t *testing.T) {
	provider := alwaysFail(errors.New("api down"))
	analyzer := NewTopicAnalyzer(provider)
	analyzer.retry = fastRetry(3)

	_, err := analyzer.ExtractTopics("content", 5)
	require.Error(t, err)
	assert.Equal(t, 3, provider.calls)
	assert.Contains(t, err.Error(), "api down")
}

func TestExtractTopicsRetriesMalformedJSON(t *testing.T) {
	provider := &scriptedProvider{respond: func(call int, _ string) (string, error) {
		if call < 3 {
			return "not json", nil
		}
		return `{"topics": [{"id": 1, "title": "Recovered", "importance": "high", "estimated_duration_minutes": 20}]}`, nil
	}}
	analyzer := NewTopicAnalyzer(provider)
	analyzer.retry = fastRetry(3)

	topics, err := analyzer.ExtractTopics("content", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, provider.calls)
	require.Len(t, topics, 1)
	assert.Equal(t, "Recovered", topics[0].Title)
}

func TestExtractTopicsSamplesBoundedContent(t *testing.T) {
	// A 400k-char document must be sampled down, never sent whole.
	var seenPrompt string
	provider := &scriptedProvider{respond: func(_ int, prompt string) (string, error) {
		seenPrompt = prompt
		return `{"topics": [{"id": 1, "title": "T", "importance": "high", "estimated_duration_minutes": 45}]}`, nil
	}}
	analyzer := NewTopicAnalyzer(provider)
	analyzer.retry = fastRetry(1)

	content := strings.Repeat("x", 400000)
	_, err := analyzer.ExtractTopics(content, 1)
	require.NoError(t, err)

	// 3 chunks at 5000 chars each plus separators and prompt scaffolding.
	assert.Less(t, len(seenPrompt), 17000)
	assert.Contains(t, seenPrompt, strings.Repeat("x", 5000))
}
