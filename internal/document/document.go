// Package document defines the element model shared by extraction,
// translation and reconstruction: geometry primitives, positioned
// elements and the per-document element set.
package document

// ElementType classifies an extracted element
type ElementType string

const (
	TypeText    ElementType = "text"
	TypeImage   ElementType = "image"
	TypeTable   ElementType = "table"
	TypeHeading ElementType = "heading"
	TypeFooter  ElementType = "footer"
)

// Translatable reports whether elements of this type carry natural-language
// content that should be sent for translation.
func (t ElementType) Translatable() bool {
	switch t {
	case TypeText, TypeHeading, TypeFooter, TypeTable:
		return true
	default:
		return false
	}
}

// TextAlignment describes the horizontal alignment of a text element
// within its block.
type TextAlignment string

const (
	AlignLeft   TextAlignment = "left"
	AlignCenter TextAlignment = "center"
	AlignRight  TextAlignment = "right"
)

// Box is an axis-aligned bounding box in page coordinates. The origin is the
// top-left corner of the page; Y grows downward. X0 <= X1 and Y0 <= Y1.
type Box struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box
func (b Box) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent of the box
func (b Box) Height() float64 {
	return b.Y1 - b.Y0
}

// Union returns the smallest box containing both b and other. Neither
// operand is modified.
func (b Box) Union(other Box) Box {
	u := b
	if other.X0 < u.X0 {
		u.X0 = other.X0
	}
	if other.Y0 < u.Y0 {
		u.Y0 = other.Y0
	}
	if other.X1 > u.X1 {
		u.X1 = other.X1
	}
	if other.Y1 > u.Y1 {
		u.Y1 = other.Y1
	}
	return u
}

// Position locates an element on a page. Page numbers are 1-based.
// Rotation is in degrees counter-clockwise; 0 means upright text.
type Position struct {
	Box
	Page          int           `json:"page"`
	Rotation      float64       `json:"rotation"`
	Scale         float64       `json:"scale"`
	ZIndex        int           `json:"z_index"`
	TextAlignment TextAlignment `json:"text_alignment,omitempty"`
}

// Metadata carries extraction details that reconstruction and grouping need.
// Extra holds extractor-specific values that have no dedicated field.
type Metadata struct {
	Font          string            `json:"font,omitempty"`
	FontSize      float64           `json:"font_size,omitempty"`
	BlockType     string            `json:"block_type,omitempty"`
	WordCount     int               `json:"word_count,omitempty"`
	LineCount     int               `json:"line_count,omitempty"`
	RawConfidence float64           `json:"raw_confidence,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Element is a positioned unit of document content. Content holds the
// source text (empty for images); TranslatedContent is filled in by the
// translation stage and left empty otherwise. Confidence is normalized
// to [0,1]; native text-layer extraction reports 1.0.
type Element struct {
	Type              ElementType `json:"type"`
	Content           string      `json:"content"`
	TranslatedContent string      `json:"translated_content,omitempty"`
	Position          Position    `json:"position"`
	Metadata          Metadata    `json:"metadata"`
	Confidence        float64     `json:"confidence"`
}

// Translatable reports whether the element should be translated: its type
// must be translatable and it must carry non-empty content.
func (e *Element) Translatable() bool {
	return e.Type.Translatable() && e.Content != ""
}

// Set is the complete extraction result for one document
type Set struct {
	Elements  []Element `json:"elements"`
	PageCount int       `json:"page_count"`
}
