package extract

import (
	"math"
	"testing"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/ocr"
)

func word(text string, conf float64, line int, x0, y0, w, h float64) ocr.Word {
	return ocr.Word{Text: text, Confidence: conf, LineNum: line, X0: x0, Y0: y0, Width: w, Height: h}
}

func TestElementsFromWords_SingleBlock(t *testing.T) {
	words := []ocr.Word{
		word("Hello", 90, 1, 10, 10, 40, 12),
		word("world", 80, 1, 55, 10, 40, 12),
		word("again", 85, 2, 10, 24, 40, 12),
	}

	elements := ElementsFromWords(words, 1)
	if len(elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(elements))
	}

	el := elements[0]
	if el.Content != "Hello world\nagain" {
		t.Errorf("content = %q", el.Content)
	}
	if el.Metadata.WordCount != 3 || el.Metadata.LineCount != 2 {
		t.Errorf("counts = %d words %d lines", el.Metadata.WordCount, el.Metadata.LineCount)
	}

	// Bounding box covers every word.
	want := document.Box{X0: 10, Y0: 10, X1: 95, Y1: 36}
	if el.Position.Box != want {
		t.Errorf("box = %+v, want %+v", el.Position.Box, want)
	}
}

func TestElementsFromWords_ConfidenceNormalization(t *testing.T) {
	words := []ocr.Word{
		word("a", 90, 1, 10, 10, 20, 12),
		word("b", 70, 1, 35, 10, 20, 12),
	}

	elements := ElementsFromWords(words, 1)
	if len(elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(elements))
	}

	if got := elements[0].Confidence; math.Abs(got-0.8) > 1e-9 {
		t.Errorf("confidence = %v, want 0.8", got)
	}
	if got := elements[0].Metadata.RawConfidence; math.Abs(got-80) > 1e-9 {
		t.Errorf("raw confidence = %v, want 80", got)
	}
}

func TestElementsFromWords_ConfidenceFloorBoundary(t *testing.T) {
	// Confidence exactly 30 is dropped; 31 survives.
	words := []ocr.Word{
		word("kept", 31, 1, 10, 10, 30, 12),
		word("dropped", 30, 1, 45, 10, 30, 12),
	}

	elements := ElementsFromWords(words, 1)
	if len(elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(elements))
	}
	if elements[0].Content != "kept" {
		t.Errorf("content = %q, want kept", elements[0].Content)
	}
}

func TestElementsFromWords_DropFlushesBlock(t *testing.T) {
	// A low-confidence word between two good runs splits them even though
	// the geometry alone would keep one block.
	words := []ocr.Word{
		word("first", 90, 1, 10, 10, 30, 12),
		word("noise", 20, 1, 45, 10, 30, 12),
		word("second", 90, 1, 80, 10, 30, 12),
	}

	elements := ElementsFromWords(words, 1)
	if len(elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(elements))
	}
	if elements[0].Content != "first" || elements[1].Content != "second" {
		t.Errorf("contents = %q, %q", elements[0].Content, elements[1].Content)
	}
}

func TestElementsFromWords_VerticalGapBoundary(t *testing.T) {
	// The gap is measured from the previous word's bottom edge (y0 10 +
	// height 12 = 22). A step of exactly 15 continues; 16 breaks.
	within := []ocr.Word{
		word("a", 90, 1, 10, 10, 20, 12),
		word("b", 90, 2, 10, 37, 20, 12),
	}
	if got := ElementsFromWords(within, 1); len(got) != 1 {
		t.Errorf("gap == 15: got %d elements, want 1", len(got))
	}

	beyond := []ocr.Word{
		word("a", 90, 1, 10, 10, 20, 12),
		word("b", 90, 2, 10, 38, 20, 12),
	}
	if got := ElementsFromWords(beyond, 1); len(got) != 2 {
		t.Errorf("gap == 16: got %d elements, want 2", len(got))
	}
}

func TestElementsFromWords_UpwardMovementBreaks(t *testing.T) {
	// A new line that starts above the previous word is a new column or
	// region, never a continuation.
	words := []ocr.Word{
		word("bottom", 90, 1, 10, 300, 40, 12),
		word("top", 90, 2, 10, 50, 40, 12),
	}
	if got := ElementsFromWords(words, 1); len(got) != 2 {
		t.Errorf("got %d elements, want 2", len(got))
	}
}

func TestElementsFromWords_HorizontalGapBoundary(t *testing.T) {
	// Same line: a gap of exactly 20 continues, 21 breaks.
	within := []ocr.Word{
		word("a", 90, 1, 10, 10, 20, 12),
		word("b", 90, 1, 50, 10, 20, 12), // gap == 20
	}
	if got := ElementsFromWords(within, 1); len(got) != 1 {
		t.Errorf("gap == 20: got %d elements, want 1", len(got))
	}

	beyond := []ocr.Word{
		word("a", 90, 1, 10, 10, 20, 12),
		word("b", 90, 1, 51, 10, 20, 12), // gap == 21
	}
	if got := ElementsFromWords(beyond, 1); len(got) != 2 {
		t.Errorf("gap == 21: got %d elements, want 2", len(got))
	}
}

func TestElementsFromWords_HeadingFromFontSize(t *testing.T) {
	// Block box height 20 estimates font size 15, above the heading
	// threshold. Heading lives in the block type; the element type stays
	// text until the layout detector refines it.
	big := []ocr.Word{word("Title", 95, 1, 10, 10, 60, 20)}
	elements := ElementsFromWords(big, 1)
	if len(elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(elements))
	}
	if elements[0].Type != document.TypeText {
		t.Errorf("type = %s, want text", elements[0].Type)
	}
	if elements[0].Metadata.BlockType != "heading" {
		t.Errorf("block type = %q, want heading", elements[0].Metadata.BlockType)
	}
	if got := elements[0].Metadata.FontSize; math.Abs(got-15) > 1e-9 {
		t.Errorf("font size = %v, want 15", got)
	}

	// Height 16 estimates exactly 12, a paragraph.
	small := []ocr.Word{word("body", 95, 1, 10, 10, 60, 16)}
	elements = ElementsFromWords(small, 1)
	if elements[0].Metadata.BlockType != "paragraph" {
		t.Errorf("block type = %q, want paragraph", elements[0].Metadata.BlockType)
	}
}

func TestElementsFromWords_FontSizeFromBlockBox(t *testing.T) {
	// Two lines of 10-unit words spanning y 0..22: the estimate comes from
	// the block box, not the word heights, so the block classifies as a
	// heading even though no single word is heading-sized.
	words := []ocr.Word{
		word("two", 90, 1, 10, 0, 30, 10),
		word("lines", 90, 2, 10, 12, 30, 10),
	}

	elements := ElementsFromWords(words, 1)
	if len(elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(elements))
	}
	if got := elements[0].Metadata.FontSize; math.Abs(got-16.5) > 1e-9 {
		t.Errorf("font size = %v, want 16.5", got)
	}
	if elements[0].Metadata.BlockType != "heading" {
		t.Errorf("block type = %q, want heading", elements[0].Metadata.BlockType)
	}
	if elements[0].Type != document.TypeText {
		t.Errorf("type = %s, want text", elements[0].Type)
	}
}

func TestElementsFromWords_AlignmentFromBoxExtents(t *testing.T) {
	// Without span margins the box's own x extents are the only signal:
	// any block wider than the tolerance reads as left-aligned.
	words := []ocr.Word{word("wide", 90, 1, 10, 10, 80, 12)}
	elements := ElementsFromWords(words, 1)
	if got := elements[0].Position.TextAlignment; got != document.AlignLeft {
		t.Errorf("alignment = %s, want left", got)
	}
}

func TestElementsFromWords_BBoxMonotonicity(t *testing.T) {
	// Adding a word to a block never shrinks its bounding box.
	base := []ocr.Word{
		word("a", 90, 1, 100, 100, 20, 12),
		word("b", 90, 1, 125, 100, 20, 12),
	}
	extended := append(append([]ocr.Word{}, base...),
		word("c", 90, 2, 60, 114, 20, 12))

	boxA := ElementsFromWords(base, 1)[0].Position.Box
	boxB := ElementsFromWords(extended, 1)[0].Position.Box

	if boxB.X0 > boxA.X0 || boxB.Y0 > boxA.Y0 || boxB.X1 < boxA.X1 || boxB.Y1 < boxA.Y1 {
		t.Errorf("box shrank: %+v -> %+v", boxA, boxB)
	}
}

func TestElementsFromWords_Empty(t *testing.T) {
	if got := ElementsFromWords(nil, 1); len(got) != 0 {
		t.Errorf("got %d elements, want 0", len(got))
	}
}
