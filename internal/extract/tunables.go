package extract

// Extraction thresholds. Values were tuned on scanned papers and the
// native text layers of typeset PDFs; they are shared by tests.
const (
	// minWordConfidence is the OCR confidence floor. Words at or below it
	// are dropped, and a drop terminates the current block.
	minWordConfidence = 30.0

	// ocrVerticalGapMax is the largest downward gap (px) between a word and
	// the previous line that still continues the current block.
	ocrVerticalGapMax = 15.0

	// ocrHorizontalGapMax is the largest same-line horizontal gap (px)
	// between consecutive words that still continues the current block.
	ocrHorizontalGapMax = 20.0

	// mergeSpacingRatioMax bounds the vertical gap between two native
	// blocks, measured relative to their average height. Strictly larger
	// ratios reject the merge.
	mergeSpacingRatioMax = 0.65

	// mergeFontSizeDeltaMax is the largest font size difference between
	// two native blocks that still allows merging.
	mergeFontSizeDeltaMax = 1.0

	// alignTolerance is the margin difference (units) under which a block
	// counts as centered.
	alignTolerance = 5.0

	// headingFontSizeMin: estimated sizes strictly above this classify an
	// OCR block as a heading.
	headingFontSizeMin = 14.0

	// ocrFontSizeFactor converts a word-box height to an estimated font size.
	ocrFontSizeFactor = 0.75
)
