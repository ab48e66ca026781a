package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBulletsMarkers(t *testing.T) {
	text := "- dash bullet\n* star bullet\n• dot bullet\n1. numbered\n2) paren numbered\na. lettered\nb) paren lettered\nplain line"
	bullets := ExtractBullets(text)

	assert.Equal(t, []string{
		"dash bullet",
		"star bullet",
		"dot bullet",
		"numbered",
		"paren numbered",
		"lettered",
		"paren lettered",
	}, bullets)
}

func TestExtractBulletsSentenceFallback(t *testing.T) {
	text := "Too short. This sentence has more than five words in it. Tiny one. Another sentence that easily clears the five word bar!"
	bullets := ExtractBullets(text)

	require.Len(t, bullets, 2)
	assert.Equal(t, "This sentence has more than five words in it", bullets[0])
	assert.Equal(t, "Another sentence that easily clears the five word bar", bullets[1])
}

func TestExtractBulletsCap(t *testing.T) {
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf("- bullet %d", i))
	}
	bullets := ExtractBullets(strings.Join(lines, "\n"))
	assert.Len(t, bullets, 20)
}

func TestExtractTextPagination(t *testing.T) {
	dir := t.TempDir()
	words := make([]string, 2500)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(words, " ")), 0644))

	extractor := NewExtractor(dir)
	doc, err := extractor.ExtractFile(path, "doc.txt")
	require.NoError(t, err)

	assert.Equal(t, "txt", doc.Format)
	assert.Equal(t, 2500, doc.WordCount)
	require.Equal(t, 3, doc.PageCount)
	for i, page := range doc.Pages {
		assert.Equal(t, i+1, page.PageNumber)
	}
	assert.Len(t, strings.Fields(doc.Pages[0].Text), 1000)
	assert.Len(t, strings.Fields(doc.Pages[2].Text), 500)
}

func TestExtractMarkdownSections(t *testing.T) {
	dir := t.TempDir()
	content := "Intro paragraph.\n# First Section\nBody one.\n## Subsection\nBody two.\n# Second Section\nBody three."
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	extractor := NewExtractor(dir)
	doc, err := extractor.ExtractFile(path, "notes.md")
	require.NoError(t, err)

	assert.Equal(t, "md", doc.Format)
	assert.Equal(t, 4, doc.PageCount)
	assert.Equal(t, content, doc.Text)
	for i, page := range doc.Pages {
		assert.Equal(t, i+1, page.PageNumber)
	}
}

func TestExtractUploadRemovesScratchFile(t *testing.T) {
	dir := t.TempDir()
	extractor := NewExtractor(dir)

	doc, err := extractor.ExtractUpload([]byte("hello world from the upload path test"), "upload.txt")
	require.NoError(t, err)
	assert.Equal(t, "upload.txt", doc.Filename)

	_, statErr := os.Stat(filepath.Join(dir, "upload.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractUploadSanitizesFilename(t *testing.T) {
	base := t.TempDir()
	victim := filepath.Join(base, "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("precious"), 0644))

	tempDir := filepath.Join(base, "temp")
	require.NoError(t, os.Mkdir(tempDir, 0755))

	// A traversal filename must not write or delete outside the temp dir.
	extractor := NewExtractor(tempDir)
	doc, err := extractor.ExtractUpload([]byte("uploaded words for the scratch file"), "../victim.txt")
	require.NoError(t, err)
	assert.Equal(t, "victim.txt", doc.Filename)

	data, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, "precious", string(data))
}

func TestExtractFileUnsupportedFormat(t *testing.T) {
	extractor := NewExtractor(t.TempDir())
	_, err := extractor.ExtractFile("whatever.exe", "whatever.exe")
	require.Error(t, err)

	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "exe", unsupported.Extension)
	assert.EqualError(t, err, "unsupported format: exe")
}

func TestExtractCSV(t *testing.T) {
	dir := t.TempDir()
	content := "name,role\nAda,Engineer\nGrace,Admiral\n"
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	extractor := NewExtractor(dir)
	doc, err := extractor.ExtractFile(path, "people.csv")
	require.NoError(t, err)

	assert.Equal(t, "csv", doc.Format)
	assert.Contains(t, doc.Text, "HEADERS: name, role")
	assert.Contains(t, doc.Text, "name: Ada | role: Engineer")
	assert.Contains(t, doc.Text, "Rows: 2")
	assert.Contains(t, doc.Text, "Columns: 2")

	require.Len(t, doc.Records, 2)
	assert.Equal(t, "Grace", doc.Records[1]["name"])
	assert.Equal(t, "Admiral", doc.Records[1]["role"])
}
