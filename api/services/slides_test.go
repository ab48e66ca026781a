package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slideModule(title string, slides int) ModuleOutline {
	return ModuleOutline{
		ID:              1,
		Title:           title,
		Objectives:      []string{"obj1", "obj2"},
		Topics:          []string{"topic1"},
		KeyPoints:       []string{"kp1", "kp2"},
		EstimatedSlides: slides,
	}
}

// batchResponder produces a well-formed slide batch of the size the prompt
// asked for, by reading the requested count out of the prompt text.
func batchResponder(t *testing.T) *scriptedProvider {
	t.Helper()
	return &scriptedProvider{respond: func(_ int, prompt string) (string, error) {
		var count int
		_, err := fmt.Sscanf(prompt, "Generate %d training slides", &count)
		require.NoError(t, err)

		slides := make([]SlideContent, count)
		for i := range slides {
			slides[i] = SlideContent{
				Title:     fmt.Sprintf("Slide %d", i+1),
				Content:   []string{"point"},
				Notes:     "notes",
				SlideType: "content",
			}
		}
		encoded, _ := json.Marshal(slides)
		return string(encoded), nil
	}}
}

func newTestSlideGenerator(t *testing.T, provider AIProvider) *SlideGenerator {
	t.Helper()
	g := NewSlideGenerator(provider)
	require.NoError(t, g.SetSourceContent(strings.Repeat("source material ", 20)))
	return g
}

func TestSetSourceContentRejectsShortInput(t *testing.T) {
	g := NewSlideGenerator(alwaysRespond("[]"))
	err := g.SetSourceContent("too short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100 characters")
}

func TestGenerateSlidesBatching(t *testing.T) {
	provider := batchResponder(t)
	g := newTestSlideGenerator(t, provider)

	slides, err := g.GenerateSlidesForModule(slideModule("Big Module", 37), nil)
	require.NoError(t, err)

	// 37 slides means batches of 15, 15 and 7.
	assert.Equal(t, 3, provider.calls)
	require.Len(t, slides, 37)

	for i, slide := range slides {
		assert.Equal(t, i+1, slide.SlideNumber)
	}
	assert.Equal(t, "title", slides[0].SlideType)
	assert.Equal(t, "summary", slides[36].SlideType)
	for _, slide := range slides[1:36] {
		assert.Equal(t, "content", slide.SlideType)
	}
}

func TestGenerateSlidesDefaultTarget(t *testing.T) {
	provider := batchResponder(t)
	g := newTestSlideGenerator(t, provider)

	slides, err := g.GenerateSlidesForModule(slideModule("No Estimate", 0), nil)
	require.NoError(t, err)
	assert.Len(t, slides, 8)
	assert.Equal(t, 1, provider.calls)
}

func TestGenerateSlidesCapsTarget(t *testing.T) {
	provider := batchResponder(t)
	g := newTestSlideGenerator(t, provider)

	slides, err := g.GenerateSlidesForModule(slideModule("Huge", 250), nil)
	require.NoError(t, err)
	assert.Len(t, slides, 100)
}

func TestGenerateSlidesSkipsFailedBatch(t *testing.T) {
	// Middle batch fails; the module result is shorter but not an error.
	inner := batchResponder(t)
	provider := &scriptedProvider{respond: func(call int, prompt string) (string, error) {
		if call == 2 {
			return "", fmt.Errorf("timeout")
		}
		return inner.respond(call, prompt)
	}}
	g := newTestSlideGenerator(t, provider)

	slides, err := g.GenerateSlidesForModule(slideModule("Flaky", 37), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, provider.calls)
	assert.Len(t, slides, 22)
	assert.Equal(t, "title", slides[0].SlideType)
	assert.Equal(t, "summary", slides[21].SlideType)
}

func TestGenerateSlidesAcceptsWrappedArray(t *testing.T) {
	provider := alwaysRespond(`{"slides": [
		{"title": "A", "content": ["x"], "notes": "n", "slide_type": "content"},
		{"title": "B", "content": ["y"], "notes": "n", "slide_type": "content"}
	]}`)
	g := newTestSlideGenerator(t, provider)

	slides, err := g.GenerateSlidesForModule(slideModule("Wrapped", 2), nil)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "A", slides[0].Title)
}

func TestGenerateSlidesReportsProgress(t *testing.T) {
	provider := batchResponder(t)
	g := newTestSlideGenerator(t, provider)

	var statuses []string
	var percents []int
	progress := func(status string, percent int) {
		statuses = append(statuses, status)
		percents = append(percents, percent)
	}

	_, err := g.GenerateSlidesForModule(slideModule("Tracked", 20), progress)
	require.NoError(t, err)

	require.NotEmpty(t, statuses)
	assert.Equal(t, 0, percents[0])
	assert.Equal(t, 100, percents[len(percents)-1])
	assert.Contains(t, statuses[len(statuses)-1], "Generated 20 slides")
}

func TestNumberSlides(t *testing.T) {
	deck := []SlideContent{
		{SlideNumber: 1, SlideType: "title"},
		{SlideNumber: 2, SlideType: "content"},
		{SlideNumber: 3, SlideType: "summary"},
		{SlideNumber: 1, SlideType: "title"},
		{SlideNumber: 2, SlideType: "summary"},
	}
	NumberSlides(deck)

	for i, slide := range deck {
		assert.Equal(t, i+1, slide.SlideNumber)
	}
	// Only the deck's first slide stays a title; module-leading titles
	// further in are demoted, summaries keep their type.
	assert.Equal(t, "title", deck[0].SlideType)
	assert.Equal(t, "content", deck[1].SlideType)
	assert.Equal(t, "summary", deck[2].SlideType)
	assert.Equal(t, "content", deck[3].SlideType)
	assert.Equal(t, "summary", deck[4].SlideType)
}

func TestGenerateSlidesCarriesPreviousContext(t *testing.T) {
	var prompts []string
	inner := batchResponder(t)
	provider := &scriptedProvider{respond: func(call int, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return inner.respond(call, prompt)
	}}
	g := newTestSlideGenerator(t, provider)

	_, err := g.GenerateSlidesForModule(slideModule("Context", 20), nil)
	require.NoError(t, err)
	require.Len(t, prompts, 2)

	assert.Contains(t, prompts[0], "PREVIOUS SLIDES:\nNone")
	assert.NotContains(t, prompts[1], "PREVIOUS SLIDES:\nNone")
	assert.Contains(t, prompts[1], `"slide_number":15`)
	// Only the last 5 slides are carried.
	assert.NotContains(t, prompts[1], `"slide_number":10`)
}
