package reconstruct

import (
	"path/filepath"
	"strings"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/logger"
)

// OutputName returns the deterministic output filename for a source file:
// "translated_<stem>.pdf".
func OutputName(sourcePath string) string {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	return "translated_" + stem + ".pdf"
}

// Reconstructor renders a translated element set to a new PDF
type Reconstructor struct {
	fonts *FontRegistry
}

// NewReconstructor creates a Reconstructor over the given font directory.
// Fails with FONT_MISSING when no default font is available.
func NewReconstructor(fontDir string) (*Reconstructor, error) {
	fonts, err := NewFontRegistry(fontDir)
	if err != nil {
		return nil, err
	}
	return &Reconstructor{fonts: fonts}, nil
}

// Reconstruct plans and renders the set and writes the result to outPath.
// Each text run gets the font covering its own script; the output is
// verified before returning.
func (rc *Reconstructor) Reconstruct(set *document.Set, outPath string) error {
	renderer := NewRenderer()
	plans := NewPlanner(renderer, rc.fonts).Plan(set)
	if err := renderer.Render(plans, outPath); err != nil {
		return err
	}

	if err := Verify(outPath, len(plans)); err != nil {
		return err
	}

	logger.Info("reconstruction complete",
		logger.String("output", outPath),
		logger.Int("pages", len(plans)),
	)
	return nil
}
