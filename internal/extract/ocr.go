package extract

import (
	"strings"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/logger"
	"github.com/ibatulanandjp/procrai/internal/ocr"
)

// ocrBlock accumulates consecutive OCR words into one candidate element
type ocrBlock struct {
	box         document.Box
	lines       []ocrLine
	confidences []float64
	wordCount   int
	lastY       float64
	lastBottom  float64
	lastX1      float64
}

type ocrLine struct {
	num   int
	words []string
}

func newOCRBlock(w ocr.Word) *ocrBlock {
	b := &ocrBlock{
		box: document.Box{X0: w.X0, Y0: w.Y0, X1: w.X0 + w.Width, Y1: w.Y0 + w.Height},
	}
	b.add(w)
	return b
}

func (b *ocrBlock) add(w ocr.Word) {
	wordBox := document.Box{X0: w.X0, Y0: w.Y0, X1: w.X0 + w.Width, Y1: w.Y0 + w.Height}
	b.box = b.box.Union(wordBox)
	b.confidences = append(b.confidences, w.Confidence)
	b.wordCount++
	b.lastY = w.Y0
	b.lastBottom = w.Y0 + w.Height
	b.lastX1 = w.X0 + w.Width

	if n := len(b.lines); n > 0 && b.lines[n-1].num == w.LineNum {
		b.lines[n-1].words = append(b.lines[n-1].words, w.Text)
		return
	}
	b.lines = append(b.lines, ocrLine{num: w.LineNum, words: []string{w.Text}})
}

// continues reports whether w extends the block, judged against the
// previous accepted word: no large downward gap past its bottom edge, no
// upward movement (a new column or region), no large horizontal gap.
func (b *ocrBlock) continues(w ocr.Word) bool {
	if w.Y0-b.lastBottom > ocrVerticalGapMax {
		return false
	}
	if w.Y0 < b.lastY {
		return false
	}
	return w.X0-b.lastX1 <= ocrHorizontalGapMax
}

func (b *ocrBlock) element(page int) document.Element {
	parts := make([]string, len(b.lines))
	for i, line := range b.lines {
		parts[i] = strings.Join(line.words, " ")
	}
	content := strings.Join(parts, "\n")

	sum := 0.0
	for _, c := range b.confidences {
		sum += c
	}
	meanConf := sum / float64(len(b.confidences))

	// Font size is estimated from the whole block box, so a multi-line
	// block reads larger than its words. Heading classification lives in
	// block_type only; the element type stays text until the layout
	// detector refines it.
	fontSize := b.box.Height() * ocrFontSizeFactor
	blockType := "paragraph"
	if fontSize > headingFontSizeMin {
		blockType = "heading"
	}

	return document.Element{
		Type:    document.TypeText,
		Content: content,
		Position: document.Position{
			Box:           b.box,
			Page:          page,
			Scale:         1,
			TextAlignment: ocrAlignment(b.box),
		},
		Metadata: document.Metadata{
			FontSize:      fontSize,
			BlockType:     blockType,
			WordCount:     b.wordCount,
			LineCount:     len(b.lines),
			RawConfidence: meanConf,
		},
		Confidence: meanConf / 100,
	}
}

// ElementsFromWords folds an OCR word stream into positioned elements.
// Low-confidence or empty words are dropped, and a drop terminates the
// block being built so noise never bridges two paragraphs.
func ElementsFromWords(words []ocr.Word, page int) []document.Element {
	var elements []document.Element
	var cur *ocrBlock

	flush := func() {
		if cur != nil {
			elements = append(elements, cur.element(page))
			cur = nil
		}
	}

	for _, w := range words {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text == "" || w.Confidence <= minWordConfidence {
			flush()
			continue
		}
		if cur == nil {
			cur = newOCRBlock(w)
			continue
		}
		if cur.continues(w) {
			cur.add(w)
			continue
		}
		flush()
		cur = newOCRBlock(w)
	}
	flush()

	logger.Debug("OCR block assembly complete",
		logger.Int("words", len(words)),
		logger.Int("elements", len(elements)),
	)
	return elements
}
