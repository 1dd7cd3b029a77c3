package extract

import (
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/logger"
)

// defaultPageHeight is the A4 height in points, used when a page has no
// readable MediaBox.
const defaultPageHeight = 842.0

// NativeReader extracts raw text blocks from a PDF text layer
type NativeReader struct{}

// NewNativeReader creates a NativeReader
func NewNativeReader() *NativeReader {
	return &NativeReader{}
}

// PageCount returns the number of pages in the PDF
func (nr *NativeReader) PageCount(pdfPath string) (int, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return 0, NewInvalidInputError(pdfPath, err)
	}
	defer f.Close()
	return r.NumPage(), nil
}

// HasTextLayer reports whether the PDF contains extractable text. It scans
// up to the first three pages and counts non-whitespace characters.
func (nr *NativeReader) HasTextLayer(pdfPath string) (bool, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		if os.IsNotExist(err) {
			return false, NewNotFoundError(pdfPath, err)
		}
		return false, NewInvalidInputError(pdfPath, err)
	}

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return false, NewInvalidInputError(pdfPath, err)
	}
	defer f.Close()

	maxPages := 3
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	textLen := 0
	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, c := range content {
			if !unicode.IsSpace(c) {
				textLen++
			}
		}
		if textLen > 50 {
			return true, nil
		}
	}
	return textLen > 0, nil
}

// ReadPage returns the raw blocks of one page, one block per text row in
// top-to-bottom order. Coordinates are converted to a top-left origin.
// Row blocks are later folded into paragraphs by MergeBlocks.
func (nr *NativeReader) ReadPage(r *pdf.Reader, pageNum int) ([]NativeBlock, error) {
	page := r.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}
	if page.V.Key("Contents").Kind() == pdf.Null {
		return nil, nil
	}

	pageHeight := mediaBoxHeight(page)
	rotation := pageRotation(page)

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, NewExtractFailedError("failed to read text rows", pageNum, err)
	}

	var blocks []NativeBlock
	for _, row := range rows {
		line, ok := rowToLine(row, pageHeight, rotation)
		if !ok {
			continue
		}
		blocks = append(blocks, NativeBlock{
			Kind:  BlockText,
			Box:   line.Box,
			Lines: []Line{line},
		})
	}

	// Rows arrive in document stream order; reading order is top to bottom.
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Box.Y0 < blocks[j].Box.Y0
	})
	return blocks, nil
}

// Read extracts, merges and classifies all pages of a text-layer PDF
func (nr *NativeReader) Read(pdfPath string) (*document.Set, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(pdfPath, err)
		}
		return nil, NewInvalidInputError(pdfPath, err)
	}

	hasText, err := nr.HasTextLayer(pdfPath)
	if err != nil {
		return nil, err
	}
	if !hasText {
		return nil, NewNoTextLayerError(pdfPath)
	}

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, NewInvalidInputError(pdfPath, err)
	}
	defer f.Close()

	set := &document.Set{PageCount: r.NumPage()}
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		blocks, err := nr.ReadPage(r, pageNum)
		if err != nil {
			logger.Warn("skipping unreadable page",
				logger.Int("page", pageNum), logger.Err(err))
			continue
		}
		merged := MergeBlocks(blocks)
		for i := range merged {
			if el, ok := BlockToElement(&merged[i], pageNum); ok {
				set.Elements = append(set.Elements, el)
			}
		}
	}

	logger.Info("native extraction complete",
		logger.String("file", pdfPath),
		logger.Int("pages", set.PageCount),
		logger.Int("elements", len(set.Elements)),
	)
	return set, nil
}

// BlockToElement converts a merged native block to a document element.
// Empty text blocks are dropped; native text is fully trusted (confidence 1).
func BlockToElement(b *NativeBlock, page int) (document.Element, bool) {
	if b.Kind == BlockImage {
		return document.Element{
			Type: document.TypeImage,
			Position: document.Position{
				Box:   b.Box,
				Page:  page,
				Scale: 1,
			},
			Metadata:   document.Metadata{BlockType: "image", Extra: map[string]string{"image_ext": b.ImageExt}},
			Confidence: 1,
		}, true
	}

	text := b.Text()
	if strings.TrimSpace(text) == "" {
		return document.Element{}, false
	}

	sp := b.FirstSpan()
	fontSize := b.AvgFontSize()
	blockType := "paragraph"
	if fontSize > headingFontSizeMin {
		blockType = "heading"
	}

	wordCount := len(strings.Fields(text))
	el := document.Element{
		Type:    document.TypeText,
		Content: text,
		Position: document.Position{
			Box:           b.Box,
			Page:          page,
			Rotation:      blockRotation(b),
			Scale:         1,
			TextAlignment: blockAlignment(b),
		},
		Metadata: document.Metadata{
			FontSize:  fontSize,
			BlockType: blockType,
			WordCount: wordCount,
			LineCount: len(b.Lines),
		},
		Confidence: 1,
	}
	if sp != nil {
		el.Metadata.Font = sp.Font
	}
	return el, true
}

// rowToLine folds one text row into a Line of font-contiguous spans
func rowToLine(row *pdf.Row, pageHeight, rotation float64) (Line, bool) {
	var line Line
	var cur *Span

	for _, t := range row.Content {
		if t.S == "" || looksLikeOperatorCode(t.S) {
			continue
		}

		top := pageHeight - t.Y - t.FontSize
		if top < 0 {
			top = 0
		}
		box := document.Box{X0: t.X, Y0: top, X1: t.X + t.W, Y1: pageHeight - t.Y}

		if cur != nil && cur.Font == t.Font && cur.Size == t.FontSize {
			cur.Text += t.S
			cur.Box = cur.Box.Union(box)
			continue
		}
		line.Spans = append(line.Spans, Span{
			Text:     t.S,
			Font:     t.Font,
			Size:     t.FontSize,
			Box:      box,
			Rotation: rotation,
		})
		cur = &line.Spans[len(line.Spans)-1]
	}

	keep := line.Spans[:0]
	for _, sp := range line.Spans {
		sp.Text = strings.TrimRight(sp.Text, " ")
		if strings.TrimSpace(sp.Text) != "" {
			keep = append(keep, sp)
		}
	}
	line.Spans = keep
	if len(line.Spans) == 0 {
		return Line{}, false
	}

	line.Box = line.Spans[0].Box
	for _, sp := range line.Spans[1:] {
		line.Box = line.Box.Union(sp.Box)
	}
	return line, true
}

func mediaBoxHeight(page pdf.Page) float64 {
	mb := page.V.Key("MediaBox")
	if mb.Kind() != pdf.Array || mb.Len() < 4 {
		return defaultPageHeight
	}
	y0 := mb.Index(1).Float64()
	y1 := mb.Index(3).Float64()
	h := y1 - y0
	if h <= 0 {
		return defaultPageHeight
	}
	return h
}

func pageRotation(page pdf.Page) float64 {
	rot := page.V.Key("Rotate")
	if rot.Kind() != pdf.Integer {
		return 0
	}
	return float64(rot.Int64())
}

// looksLikeOperatorCode filters content-stream operator fragments that some
// generators leak into the text layer.
func looksLikeOperatorCode(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	operators := 0
	fields := strings.Fields(trimmed)
	for _, f := range fields {
		switch f {
		case "re", "W", "n", "cm", "gs", "Do", "BT", "ET", "Tf", "Td", "Tj", "TJ", "q", "Q":
			operators++
		}
	}
	return len(fields) > 2 && operators*2 >= len(fields)
}
