package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/logger"
	"github.com/ibatulanandjp/procrai/internal/ocr"
)

// Extractor dispatches extraction by input format: PDFs go through the
// native text-layer reader, raster images through the OCR engine. An
// optional layout detector refines element types after extraction.
type Extractor struct {
	reader   *NativeReader
	engine   ocr.Engine
	detector *LayoutDetector
}

// NewExtractor creates an Extractor. The OCR engine may be nil when only
// PDF inputs are expected; detector may be nil to skip type refinement.
func NewExtractor(engine ocr.Engine, detector *LayoutDetector) *Extractor {
	return &Extractor{
		reader:   NewNativeReader(),
		engine:   engine,
		detector: detector,
	}
}

// Extract produces the element set for the given input file. Unsupported
// extensions yield an empty set and an UNSUPPORTED_FORMAT error.
func (e *Extractor) Extract(ctx context.Context, path string) (*document.Set, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		set *document.Set
		err error
	)
	switch ext {
	case ".pdf":
		set, err = e.reader.Read(path)
	case ".png", ".jpg", ".jpeg":
		set, err = e.extractImage(ctx, path)
	default:
		return &document.Set{}, NewUnsupportedFormatError(ext)
	}
	if err != nil {
		return nil, err
	}

	if e.detector != nil {
		e.detector.Refine(set)
	}
	return set, nil
}

// extractImage runs the OCR path over a single raster image. The result is
// a one-page element set.
func (e *Extractor) extractImage(ctx context.Context, path string) (*document.Set, error) {
	if e.engine == nil {
		return nil, NewExtractFailedError("no OCR engine configured", 0, nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(path, err)
		}
		return nil, NewInvalidInputError(path, err)
	}

	words, err := e.engine.Recognize(ctx, data)
	if err != nil {
		return nil, NewExtractFailedError("OCR recognition failed", 1, err)
	}

	set := &document.Set{Elements: ElementsFromWords(words, 1), PageCount: 1}

	if e.detector != nil && e.detector.Ready() {
		regions, derr := e.detector.DetectRegions(data)
		if derr != nil {
			logger.Warn("layout detection failed, keeping word-stream types",
				logger.Err(derr))
		} else {
			ClassifyElements(set, regions)
		}
	}

	logger.Info("image extraction complete",
		logger.String("file", path),
		logger.Int("elements", len(set.Elements)),
	)
	return set, nil
}
