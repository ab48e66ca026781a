package services

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Office documents are zip archives of XML parts. The readers below walk the
// XML token stream directly instead of binding to a schema, which keeps them
// tolerant of the many producers in the wild.

func extractDocx(path string) (*ExtractedDocument, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx archive: %w", err)
	}
	defer archive.Close()

	body, err := readArchiveFile(archive, "word/document.xml")
	if err != nil {
		return nil, err
	}

	paragraphs, tableRows, err := parseDocxBody(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx body: %w", err)
	}

	// Paragraphs accumulate into synthetic pages under a 500-word soft cap.
	var pages []Page
	var currentPage []string
	flush := func() {
		if len(currentPage) == 0 {
			return
		}
		pageText := strings.Join(currentPage, "\n")
		pages = append(pages, Page{
			PageNumber: len(pages) + 1,
			Text:       pageText,
			Bullets:    ExtractBullets(pageText),
		})
		currentPage = nil
	}

	for _, para := range paragraphs {
		currentPage = append(currentPage, para)
		if len(strings.Fields(strings.Join(currentPage, " "))) > 500 {
			flush()
		}
	}
	flush()

	fullText := strings.Join(paragraphs, "\n\n")
	if len(tableRows) > 0 {
		fullText += "\n\nTABLES:\n" + strings.Join(tableRows, "\n")
	}

	return &ExtractedDocument{Text: fullText, Pages: pages, PageCount: len(pages)}, nil
}

// parseDocxBody returns the non-empty paragraphs outside tables and every
// table row serialized as pipe-joined cell values.
func parseDocxBody(r io.Reader) (paragraphs []string, tableRows []string, err error) {
	decoder := xml.NewDecoder(r)

	var (
		tableDepth int
		inText     bool
		para       strings.Builder
		cell       strings.Builder
		row        []string
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				row = nil
			case "tc":
				cell.Reset()
			case "p":
				if tableDepth == 0 {
					para.Reset()
				}
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth--
			case "tr":
				if tableDepth > 0 {
					tableRows = append(tableRows, strings.Join(row, " | "))
				}
			case "tc":
				row = append(row, cell.String())
			case "p":
				if tableDepth == 0 {
					if text := strings.TrimSpace(para.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				if tableDepth > 0 {
					cell.Write(t)
				} else {
					para.Write(t)
				}
			}
		}
	}

	return paragraphs, tableRows, nil
}

var slidePartName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func extractPptx(path string) (*ExtractedDocument, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pptx archive: %w", err)
	}
	defer archive.Close()

	// Slide parts are not stored in deck order inside the archive.
	type slidePart struct {
		num  int
		name string
	}
	var parts []slidePart
	for _, f := range archive.File {
		if m := slidePartName.FindStringSubmatch(f.Name); m != nil {
			num, _ := strconv.Atoi(m[1])
			parts = append(parts, slidePart{num: num, name: f.Name})
		}
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].num < parts[j].num })

	var textParts []string
	var pages []Page

	for _, part := range parts {
		body, err := readArchiveFile(archive, part.name)
		if err != nil {
			return nil, err
		}
		lines, err := parseSlideText(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse slide %d: %w", part.num, err)
		}

		slideText := strings.Join(lines, "\n")
		textParts = append(textParts, slideText)
		pages = append(pages, Page{
			PageNumber: len(pages) + 1,
			Text:       slideText,
			Bullets:    ExtractBullets(slideText),
		})
	}

	return &ExtractedDocument{
		Text:      strings.Join(textParts, "\n\n"),
		Pages:     pages,
		PageCount: len(pages),
	}, nil
}

// parseSlideText collects one line per drawing paragraph, which covers text
// frames in shapes as well as table cells.
func parseSlideText(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		lines  []string
		line   strings.Builder
		inText bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				line.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if text := strings.TrimSpace(line.String()); text != "" {
					lines = append(lines, text)
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}

	return lines, nil
}

func readArchiveFile(archive *zip.ReadCloser, name string) (io.Reader, error) {
	for _, f := range archive.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open %s: %w", name, err)
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", name, err)
			}
			return strings.NewReader(string(data)), nil
		}
	}
	return nil, fmt.Errorf("missing archive part: %s", name)
}
