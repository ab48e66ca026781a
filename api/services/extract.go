package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// SupportedFormats lists the file extensions the extractor accepts.
var SupportedFormats = []string{"pdf", "docx", "pptx", "txt", "csv", "xlsx", "md"}

// Page is one page, slide or section of an extracted document. Page numbers
// are 1-based and contiguous.
type Page struct {
	PageNumber int      `json:"page_number"`
	Text       string   `json:"text"`
	Bullets    []string `json:"bullets"`
}

// ExtractedDocument is the normalized output of ingesting one file.
type ExtractedDocument struct {
	Text      string              `json:"text"`
	Pages     []Page              `json:"pages"`
	PageCount int                 `json:"page_count"`
	WordCount int                 `json:"word_count"`
	Format    string              `json:"format"`
	Filename  string              `json:"filename"`
	Bullets   []string            `json:"bullets"`
	Records   []map[string]string `json:"records,omitempty"` // spreadsheet rows
}

// UnsupportedFormatError reports a file extension the extractor cannot handle.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Extension)
}

// Extractor converts heterogeneous documents into normalized text plus a
// page breakdown and best-effort bullet extraction.
type Extractor struct {
	tempDir string
}

func NewExtractor(tempDir string) *Extractor {
	return &Extractor{tempDir: tempDir}
}

// ExtractUpload writes the uploaded bytes to a scratch file so the
// format-specific readers can open it, extracts, and removes the scratch
// file when done regardless of outcome. The client-supplied filename is
// reduced to its base name; it must never influence the scratch path.
func (e *Extractor) ExtractUpload(content []byte, filename string) (*ExtractedDocument, error) {
	name := filepath.Base(filename)
	tempPath := filepath.Join(e.tempDir, name)
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	defer os.Remove(tempPath)

	return e.ExtractFile(tempPath, name)
}

// ExtractFile extracts a document from disk. The extension of filename
// selects the format-specific reader.
func (e *Extractor) ExtractFile(path string, filename string) (*ExtractedDocument, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	log.Info().Str("format", ext).Str("file", filename).Msg("Processing file")

	var doc *ExtractedDocument
	var err error

	switch ext {
	case "pdf":
		doc, err = extractPDF(path)
	case "docx":
		doc, err = extractDocx(path)
	case "pptx":
		doc, err = extractPptx(path)
	case "txt":
		doc, err = extractText(path)
	case "md":
		doc, err = extractMarkdown(path)
	case "csv", "xlsx":
		doc, err = extractSpreadsheet(path, ext)
	default:
		return nil, &UnsupportedFormatError{Extension: ext}
	}

	if err != nil {
		log.Error().Err(err).Str("file", filename).Msg("Extraction failed")
		return nil, err
	}

	doc.Format = ext
	doc.Filename = filename
	doc.WordCount = len(strings.Fields(doc.Text))
	doc.Bullets = ExtractBullets(doc.Text)

	log.Info().Str("file", filename).Int("words", doc.WordCount).Int("pages", doc.PageCount).
		Msg("Successfully processed file")
	return doc, nil
}

func extractText(path string) (*ExtractedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	text := string(data)

	// Re-paginate plain text into fixed 1000-word windows.
	words := strings.Fields(text)
	const pageSize = 1000

	var pages []Page
	for i := 0; i < len(words); i += pageSize {
		end := i + pageSize
		if end > len(words) {
			end = len(words)
		}
		pageText := strings.Join(words[i:end], " ")
		pages = append(pages, Page{
			PageNumber: len(pages) + 1,
			Text:       pageText,
			Bullets:    ExtractBullets(pageText),
		})
	}

	return &ExtractedDocument{Text: text, Pages: pages, PageCount: len(pages)}, nil
}

var markdownHeading = regexp.MustCompile(`\n#+\s+`)

func extractMarkdown(path string) (*ExtractedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown file: %w", err)
	}
	text := string(data)

	var pages []Page
	for _, section := range markdownHeading.Split(text, -1) {
		if strings.TrimSpace(section) == "" {
			continue
		}
		pages = append(pages, Page{
			PageNumber: len(pages) + 1,
			Text:       section,
			Bullets:    ExtractBullets(section),
		})
	}

	return &ExtractedDocument{Text: text, Pages: pages, PageCount: len(pages)}, nil
}

var bulletPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*[-*\x{2022}]\s+(.+)$`),
	regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`),
	regexp.MustCompile(`^\s*[a-zA-Z][.)]\s+(.+)$`),
}

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// ExtractBullets scans each line against the bullet patterns in order, first
// match wins. When no line matches anywhere, it falls back to keeping
// sentences of at least 5 words. At most 20 bullets are returned.
func ExtractBullets(text string) []string {
	var bullets []string

	for _, line := range strings.Split(text, "\n") {
		for _, pattern := range bulletPatterns {
			if m := pattern.FindStringSubmatch(line); m != nil {
				bullets = append(bullets, strings.TrimSpace(m[1]))
				break
			}
		}
	}

	if len(bullets) == 0 {
		for _, sentence := range sentenceEnd.Split(text, -1) {
			if len(strings.Fields(sentence)) >= 5 {
				bullets = append(bullets, strings.TrimSpace(sentence))
			}
			if len(bullets) == 10 {
				break
			}
		}
	}

	if len(bullets) > 20 {
		bullets = bullets[:20]
	}
	return bullets
}
