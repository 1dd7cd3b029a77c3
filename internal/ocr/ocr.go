// Package ocr provides word-level OCR for raster images. The default
// engine wraps Tesseract via gosseract; extraction consumes the word
// stream it produces.
package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/ibatulanandjp/procrai/internal/logger"
)

// Word is a single recognized word with its bounding box in image pixel
// coordinates (origin top-left) and the raw engine confidence in [0,100].
// LineNum is monotonically increasing across the whole page so that words
// from different paragraphs never share a line number.
type Word struct {
	Text       string
	Confidence float64
	LineNum    int
	X0         float64
	Y0         float64
	Width      float64
	Height     float64
}

// Engine recognizes words in an image
type Engine interface {
	// Recognize returns the word stream for the given image bytes in
	// reading order.
	Recognize(ctx context.Context, image []byte) ([]Word, error)
}

// TesseractEngine implements Engine using a local Tesseract installation
type TesseractEngine struct {
	language string
}

// NewTesseractEngine creates an engine for the given Tesseract language
// code (e.g. "eng", "jpn"). An empty language defaults to "eng".
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{language: language}
}

// Recognize runs Tesseract over the image and returns the word stream.
// Each gosseract call gets a fresh client; the client is not safe for
// concurrent use.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("failed to set OCR language %q: %w", e.language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to load image for OCR: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("OCR recognition failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	line := 0
	var prevBlock, prevPar, prevLine = -1, -1, -1
	for _, b := range boxes {
		// A new (block, paragraph, line) triple starts a new global line.
		if b.BlockNum != prevBlock || b.ParNum != prevPar || b.LineNum != prevLine {
			line++
			prevBlock, prevPar, prevLine = b.BlockNum, b.ParNum, b.LineNum
		}
		words = append(words, Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			LineNum:    line,
			X0:         float64(b.Box.Min.X),
			Y0:         float64(b.Box.Min.Y),
			Width:      float64(b.Box.Dx()),
			Height:     float64(b.Box.Dy()),
		})
	}

	logger.Debug("OCR recognition complete",
		logger.String("language", e.language),
		logger.Int("words", len(words)),
		logger.Int("lines", line),
	)
	return words, nil
}
