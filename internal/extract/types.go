package extract

import "github.com/ibatulanandjp/procrai/internal/document"

// BlockKind tags a raw native block as text or image
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockImage
)

// Span is a run of text sharing one font within a line
type Span struct {
	Text     string
	Font     string
	Size     float64
	Box      document.Box
	Rotation float64
}

// Line is one visual line of a native text block
type Line struct {
	Box   document.Box
	Spans []Span
}

// NativeBlock is a raw block read from a PDF text layer before merging.
// Image blocks carry no lines; ImageExt records the embedded image format.
type NativeBlock struct {
	Kind     BlockKind
	Box      document.Box
	Lines    []Line
	ImageExt string
}

// Text concatenates the block's span texts with single spaces between
// spans and newlines between lines.
func (b *NativeBlock) Text() string {
	if b.Kind != BlockText {
		return ""
	}
	var out []byte
	for i, line := range b.Lines {
		if i > 0 {
			out = append(out, '\n')
		}
		for j, sp := range line.Spans {
			if j > 0 {
				out = append(out, ' ')
			}
			out = append(out, sp.Text...)
		}
	}
	return string(out)
}

// FirstSpan returns the block's first span, or nil for image or empty blocks
func (b *NativeBlock) FirstSpan() *Span {
	if len(b.Lines) == 0 || len(b.Lines[0].Spans) == 0 {
		return nil
	}
	return &b.Lines[0].Spans[0]
}

// AvgFontSize returns the mean span font size in the block, 0 if none
func (b *NativeBlock) AvgFontSize() float64 {
	sum, n := 0.0, 0
	for _, line := range b.Lines {
		for _, sp := range line.Spans {
			sum += sp.Size
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
