package services

import (
	"github.com/rs/zerolog/log"
)

// ChunkText splits text into segments of at most maxChars characters so a
// single request never exceeds the model context window. Splits happen at
// fixed offsets with no sentence or word awareness: the point is a hard
// upper bound on request size, not linguistic correctness. Text at or under
// the limit comes back as a single chunk, unchanged.
func ChunkText(text string, maxChars int) []string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	log.Info().Int("chars", len(runes)).Int("chunks", len(chunks)).Msg("Chunked text")
	return chunks
}

// truncateRunes caps s at n characters.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
