package extract

import (
	"math"

	"github.com/ibatulanandjp/procrai/internal/document"
)

// detectAlignment classifies horizontal alignment from the first line's
// margins inside the block box. Near-equal margins mean centered text;
// otherwise the smaller margin wins.
func detectAlignment(block document.Box, firstSpanX0, lastSpanX1 float64) document.TextAlignment {
	leftMargin := firstSpanX0 - block.X0
	rightMargin := block.X1 - lastSpanX1

	if math.Abs(leftMargin-rightMargin) < alignTolerance {
		return document.AlignCenter
	}
	if leftMargin < rightMargin {
		return document.AlignLeft
	}
	return document.AlignRight
}

// ocrAlignment infers alignment for OCR blocks, which carry no per-span
// margins. The only signal available is the block's own x extents compared
// under the shared tolerance, a materially weaker heuristic than the
// native-path margin comparison.
func ocrAlignment(box document.Box) document.TextAlignment {
	if math.Abs(box.X1-box.X0) < alignTolerance {
		return document.AlignCenter
	}
	if box.X0 < box.X1 {
		return document.AlignLeft
	}
	return document.AlignRight
}

// blockAlignment applies detectAlignment to a native block using its
// first line's span extents. Blocks without spans default to left.
func blockAlignment(b *NativeBlock) document.TextAlignment {
	if len(b.Lines) == 0 || len(b.Lines[0].Spans) == 0 {
		return document.AlignLeft
	}
	first := b.Lines[0].Spans[0]
	last := b.Lines[0].Spans[len(b.Lines[0].Spans)-1]
	return detectAlignment(b.Box, first.Box.X0, last.Box.X1)
}

// blockRotation reports the rotation of a native block, taken from its
// first span. Blocks without spans are upright.
func blockRotation(b *NativeBlock) float64 {
	if sp := b.FirstSpan(); sp != nil {
		return sp.Rotation
	}
	return 0
}
