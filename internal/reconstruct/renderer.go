package reconstruct

import (
	gopdf "github.com/VantageDataChat/GoPDF2"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/logger"
)

// Renderer serializes page plans to a PDF. Fonts are loaded on first use,
// so a document mixing scripts embeds one resource per script actually
// drawn. It also implements Measurer against the loaded fonts' real
// metrics, so planning and rendering agree on line wrapping.
type Renderer struct {
	pdf      *gopdf.GoPdf
	loaded   map[string]bool
	family   string
	fontSize float64
}

// NewRenderer creates a renderer with no fonts loaded yet. A missing font
// file surfaces as a FONT_MISSING error from the first command using it.
func NewRenderer() *Renderer {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	return &Renderer{pdf: pdf, loaded: make(map[string]bool)}
}

// SplitLines implements Measurer by wrapping text to the given width using
// the named font's metrics.
func (r *Renderer) SplitLines(font Font, text string, width, fontSize float64) ([]string, error) {
	if err := r.setFont(font, fontSize); err != nil {
		return nil, err
	}
	return r.pdf.SplitText(text, width)
}

// Render writes the page plans to outPath
func (r *Renderer) Render(plans []PagePlan, outPath string) error {
	for _, page := range plans {
		r.pdf.AddPage()
		for _, cmd := range page.Commands {
			if err := r.draw(cmd, page.Number); err != nil {
				return err
			}
		}
	}

	if err := r.pdf.WritePdf(outPath); err != nil {
		return NewRenderFailedError(outPath, 0, err)
	}

	logger.Info("document rendered",
		logger.String("output", outPath),
		logger.Int("pages", len(plans)),
		logger.Int("fonts", len(r.loaded)),
	)
	return nil
}

func (r *Renderer) draw(cmd DrawCommand, page int) error {
	if err := r.setFont(cmd.Font, cmd.FontSize); err != nil {
		return err
	}

	if cmd.Rect == nil {
		// Command Y is the text bottom; the cell anchor is its top edge.
		r.pdf.SetXY(cmd.X, cmd.Y-cmd.FontSize)
		if err := r.pdf.Cell(nil, cmd.Text); err != nil {
			return NewRenderFailedError("text draw failed", page, err)
		}
		return nil
	}

	r.pdf.SetXY(cmd.Rect.X0, cmd.Rect.Y0)
	rect := &gopdf.Rect{W: cmd.Rect.Width(), H: cmd.Rect.Height()}
	opt := gopdf.CellOption{Align: alignFlag(cmd.Alignment) | gopdf.Top}
	if err := r.pdf.MultiCellWithOption(rect, cmd.Text, opt); err != nil {
		return NewRenderFailedError("text flow failed", page, err)
	}
	return nil
}

// setFont loads the font file on first use and makes it current at the
// given size.
func (r *Renderer) setFont(font Font, size float64) error {
	if !r.loaded[font.Family] {
		if err := r.pdf.AddTTFFont(font.Family, font.Path); err != nil {
			return NewFontMissingError(font.Path, err)
		}
		r.loaded[font.Family] = true
	}
	if font.Family == r.family && size == r.fontSize {
		return nil
	}
	if err := r.pdf.SetFont(font.Family, "", size); err != nil {
		return NewFontMissingError(font.Family, err)
	}
	r.family = font.Family
	r.fontSize = size
	return nil
}

func alignFlag(a document.TextAlignment) int {
	switch a {
	case document.AlignCenter:
		return gopdf.Center
	case document.AlignRight:
		return gopdf.Right
	default:
		return gopdf.Left
	}
}
