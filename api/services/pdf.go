package services

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
)

// extractPDF extracts text page by page. Pages with no embedded text are
// rendered to an image and run through OCR; an OCR failure on a single page
// leaves that page empty rather than failing the document.
func extractPDF(path string) (*ExtractedDocument, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textParts []string
	var pages []Page

	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Msg("Text extraction failed for page")
			pageText = ""
		}

		if strings.TrimSpace(pageText) == "" {
			ocrText, ocrErr := ocrPage(doc, i)
			if ocrErr != nil {
				log.Warn().Err(ocrErr).Int("page", i+1).Msg("OCR failed for page")
			} else {
				pageText = ocrText
			}
		}

		textParts = append(textParts, pageText)
		pages = append(pages, Page{
			PageNumber: i + 1,
			Text:       pageText,
			Bullets:    ExtractBullets(pageText),
		})
	}

	return &ExtractedDocument{
		Text:      strings.Join(textParts, "\n\n"),
		Pages:     pages,
		PageCount: len(pages),
	}, nil
}

// ocrPage renders one page to an image and runs Tesseract on it. Grayscale
// conversion before OCR improves recognition on scanned pages.
func ocrPage(doc *fitz.Document, pageIndex int) (string, error) {
	img, err := doc.Image(pageIndex)
	if err != nil {
		return "", fmt.Errorf("failed to render page %d: %w", pageIndex+1, err)
	}

	gray := imaging.Grayscale(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to load page image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}
