package extract

import "math"

// canMerge reports whether b should be absorbed into the preceding block a.
// Both must be non-empty text blocks with the same leading font, near-equal
// font sizes, and a vertical gap small relative to their heights.
func canMerge(a, b *NativeBlock) bool {
	if a.Kind != BlockText || b.Kind != BlockText {
		return false
	}

	sa, sb := a.FirstSpan(), b.FirstSpan()
	if sa == nil || sb == nil {
		return false
	}
	if a.Text() == "" || b.Text() == "" {
		return false
	}
	if sa.Font != sb.Font {
		return false
	}
	if math.Abs(sa.Size-sb.Size) > mergeFontSizeDeltaMax {
		return false
	}

	avgHeight := (a.Box.Height() + b.Box.Height()) / 2
	if avgHeight <= 0 {
		return false
	}
	spacingRatio := (b.Box.Y0 - a.Box.Y1) / avgHeight
	return spacingRatio <= mergeSpacingRatioMax
}

// mergeInto absorbs b into a: the bounding box becomes the union and
// b's lines are appended in order.
func mergeInto(a, b *NativeBlock) {
	a.Box = a.Box.Union(b.Box)
	a.Lines = append(a.Lines, b.Lines...)
}

// MergeBlocks merges vertically adjacent same-style text blocks. The scan
// is greedy: each block is compared only against the most recently accepted
// block, so a merge extends the candidate for the next comparison.
func MergeBlocks(blocks []NativeBlock) []NativeBlock {
	if len(blocks) == 0 {
		return blocks
	}

	merged := make([]NativeBlock, 0, len(blocks))
	merged = append(merged, blocks[0])
	for i := 1; i < len(blocks); i++ {
		last := &merged[len(merged)-1]
		b := blocks[i]
		if canMerge(last, &b) {
			mergeInto(last, &b)
			continue
		}
		merged = append(merged, b)
	}
	return merged
}
