// Package reconstruct places translated elements back onto pages. The
// planner turns an element set into per-page draw commands, growing boxes
// that overflow; the renderer serializes those commands to a PDF.
package reconstruct

import (
	"sort"
	"strings"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/logger"
)

// Layout tuning
const (
	// DefaultFontSize is used when an element carries no font size
	DefaultFontSize = 11.0

	// singleLineFactor: a box shorter than fontSize times this holds a
	// single line and is never reflowed.
	singleLineFactor = 1.5

	// lineHeightFactor converts a font size to the vertical advance of one
	// flowed line.
	lineHeightFactor = 1.2
)

// DrawCommand renders one text run. (X, Y) anchors the first text
// baseline. Single-line commands carry a nil Rect; multi-line commands
// flow Text inside Rect with the given alignment. Font names the
// resource covering the run's script; runs in different scripts on the
// same page carry different fonts.
type DrawCommand struct {
	X         float64
	Y         float64
	Rect      *document.Box
	Text      string
	Font      Font
	FontSize  float64
	Alignment document.TextAlignment
}

// PagePlan is the ordered draw list for one output page
type PagePlan struct {
	Number   int
	Commands []DrawCommand
}

// Measurer wraps text to a width, reporting the resulting lines. The
// renderer implements this against the named font's real metrics.
type Measurer interface {
	SplitLines(font Font, text string, width, fontSize float64) ([]string, error)
}

// Planner converts a translated element set into page plans
type Planner struct {
	measurer Measurer
	fonts    *FontRegistry
}

// NewPlanner creates a Planner using the given measurer. A nil registry
// leaves every command on the zero font.
func NewPlanner(m Measurer, fonts *FontRegistry) *Planner {
	return &Planner{measurer: m, fonts: fonts}
}

// Plan lays out the set's elements onto pages in reading order. Pages are
// created on demand up to the set's page count. Image elements are not
// redrawn. Each page carries a cumulative height adjustment: every unit of
// overflow injected by an earlier element shifts all later elements on
// that page down by the same amount.
func (p *Planner) Plan(set *document.Set) []PagePlan {
	order := make([]int, len(set.Elements))
	for i := range order {
		order[i] = i
	}
	// Within a page the extraction order stands; the stable sort only
	// regroups elements by page.
	sort.SliceStable(order, func(a, b int) bool {
		return set.Elements[order[a]].Position.Page < set.Elements[order[b]].Position.Page
	})

	pageCount := set.PageCount
	if pageCount < 1 {
		pageCount = 1
	}
	plans := make([]PagePlan, 0, pageCount)
	pageIndex := make(map[int]int)
	ensurePage := func(n int) *PagePlan {
		for len(plans) < n {
			plans = append(plans, PagePlan{Number: len(plans) + 1})
			pageIndex[len(plans)] = len(plans) - 1
		}
		return &plans[pageIndex[n]]
	}
	ensurePage(pageCount)

	adjustment := make(map[int]float64)
	overflows := 0

	for _, i := range order {
		el := &set.Elements[i]
		if el.Type == document.TypeImage {
			continue
		}
		text := renderText(el)
		if text == "" {
			continue
		}

		pageNum := el.Position.Page
		if pageNum < 1 {
			pageNum = 1
		}
		page := ensurePage(pageNum)
		adj := adjustment[pageNum]

		fontSize := el.Metadata.FontSize
		if fontSize <= 0 {
			fontSize = DefaultFontSize
		}
		font := p.fontFor(text)

		box := el.Position.Box
		if box.Height() < fontSize*singleLineFactor {
			page.Commands = append(page.Commands, DrawCommand{
				X:         box.X0,
				Y:         box.Y0 + fontSize + adj,
				Text:      text,
				Font:      font,
				FontSize:  fontSize,
				Alignment: el.Position.TextAlignment,
			})
			continue
		}

		rect := document.Box{X0: box.X0, Y0: box.Y0 + adj, X1: box.X1, Y1: box.Y1 + adj}
		overflow := p.measureOverflow(font, text, rect, fontSize, pageNum)
		if overflow > 0 {
			rect.Y1 += overflow
			adjustment[pageNum] = adj + overflow
			overflows++
			logger.Debug("box grown to fit translated text",
				logger.Int("page", pageNum),
				logger.Float64("overflow", overflow),
			)
		}

		page.Commands = append(page.Commands, DrawCommand{
			X:         rect.X0,
			Y:         rect.Y0 + fontSize,
			Rect:      &rect,
			Text:      text,
			Font:      font,
			FontSize:  fontSize,
			Alignment: el.Position.TextAlignment,
		})
	}

	if overflows > 0 {
		logger.Info("layout adjusted for overflowing elements",
			logger.Int("elements", overflows))
	}
	return plans
}

// fontFor resolves the font covering the script of the text to draw
func (p *Planner) fontFor(text string) Font {
	if p.fonts == nil {
		return Font{}
	}
	return p.fonts.ForText(text)
}

// measureOverflow returns how many units the flowed text extends past the
// bottom of rect, 0 when it fits or cannot be measured.
func (p *Planner) measureOverflow(font Font, text string, rect document.Box, fontSize float64, page int) float64 {
	lines, err := p.splitAll(font, text, rect.Width(), fontSize)
	if err != nil {
		logger.Warn("text measurement failed, keeping original box",
			logger.Int("page", page), logger.Err(err))
		return 0
	}
	needed := float64(len(lines)) * fontSize * lineHeightFactor
	if overflow := needed - rect.Height(); overflow > 0 {
		return overflow
	}
	return 0
}

// splitAll wraps each source line independently so explicit line breaks
// survive reflow.
func (p *Planner) splitAll(font Font, text string, width, fontSize float64) ([]string, error) {
	var all []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			all = append(all, "")
			continue
		}
		wrapped, err := p.measurer.SplitLines(font, line, width, fontSize)
		if err != nil {
			return nil, err
		}
		all = append(all, wrapped...)
	}
	return all, nil
}

// renderText picks the text to draw: the translation when present, the
// source text otherwise so untranslated elements keep their place.
func renderText(el *document.Element) string {
	if el.TranslatedContent != "" {
		return el.TranslatedContent
	}
	return el.Content
}
