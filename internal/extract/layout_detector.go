package extract

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sort"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/logger"
)

// Model input side length and detection thresholds for DocLayout-YOLO
const (
	detectorInputSize     = 1024
	detectorScoreMin      = 0.25
	detectorIoUMax        = 0.45
	footerPageFraction    = 0.92
	footerMaxHeightPoints = 30.0
)

// DocLayout-YOLO class indices
var detectorClasses = map[int64]document.ElementType{
	0: document.TypeHeading, // title
	1: document.TypeText,    // plain text
	2: document.TypeFooter,  // abandon (headers/footers/page numbers)
	3: document.TypeImage,   // figure
	4: document.TypeText,    // figure caption
	5: document.TypeTable,   // table
	6: document.TypeText,    // table caption
	7: document.TypeFooter,  // table footnote
	8: document.TypeText,    // isolated formula
	9: document.TypeText,    // formula caption
}

// Region is one detected layout region in source image coordinates
type Region struct {
	Box   document.Box
	Type  document.ElementType
	Score float64
}

// LayoutDetectorConfig holds configuration for the layout detector
type LayoutDetectorConfig struct {
	ModelPath string
	Enabled   bool
}

// LayoutDetector refines element types after extraction. With a model
// loaded it classifies regions with DocLayout-YOLO over a page raster;
// without one it applies positional rules only.
type LayoutDetector struct {
	modelPath string
	enabled   bool
	session   *ort.DynamicAdvancedSession
}

// NewLayoutDetector creates a layout detector. A model load failure is not
// fatal: the detector degrades to rule-based refinement.
func NewLayoutDetector(config LayoutDetectorConfig) (*LayoutDetector, error) {
	d := &LayoutDetector{
		modelPath: config.ModelPath,
		enabled:   config.Enabled,
	}

	if config.Enabled {
		if err := d.loadModel(); err != nil {
			logger.Warn("failed to load layout model, using rule-based refinement",
				logger.Err(err))
			d.enabled = false
		}
	}
	return d, nil
}

func (d *LayoutDetector) loadModel() error {
	if d.modelPath == "" {
		return fmt.Errorf("model path not specified")
	}
	if _, err := os.Stat(d.modelPath); err != nil {
		return fmt.Errorf("model file not found: %w", err)
	}

	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to initialize onnxruntime: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(d.modelPath,
		[]string{"images"}, []string{"output0"}, nil)
	if err != nil {
		return fmt.Errorf("failed to create inference session: %w", err)
	}
	d.session = session

	logger.Info("layout detection model loaded", logger.String("path", d.modelPath))
	return nil
}

// Ready reports whether the inference session is loaded and usable
func (d *LayoutDetector) Ready() bool {
	return d.enabled && d.session != nil
}

// Close releases the inference session
func (d *LayoutDetector) Close() error {
	if d.session != nil {
		return d.session.Destroy()
	}
	return nil
}

// Refine adjusts element types in place using positional rules: short text
// elements in the bottom band of their page become footers.
func (d *LayoutDetector) Refine(set *document.Set) {
	if set == nil || len(set.Elements) == 0 {
		return
	}

	// Page extent approximated by the lowest element edge per page.
	pageBottom := make(map[int]float64)
	for _, el := range set.Elements {
		if el.Position.Y1 > pageBottom[el.Position.Page] {
			pageBottom[el.Position.Page] = el.Position.Y1
		}
	}

	refined := 0
	for i := range set.Elements {
		el := &set.Elements[i]
		if el.Type != document.TypeText {
			continue
		}
		bottom := pageBottom[el.Position.Page]
		if bottom <= 0 {
			continue
		}
		if el.Position.Y0 >= bottom*footerPageFraction &&
			el.Position.Box.Height() <= footerMaxHeightPoints {
			el.Type = document.TypeFooter
			refined++
		}
	}
	if refined > 0 {
		logger.Debug("rule-based type refinement", logger.Int("reclassified", refined))
	}
}

// DetectRegions classifies layout regions in a page raster. Results are in
// source image pixel coordinates.
func (d *LayoutDetector) DetectRegions(imageBytes []byte) ([]Region, error) {
	if !d.enabled || d.session == nil {
		return nil, fmt.Errorf("layout model not loaded")
	}

	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}

	input, scaleX, scaleY := preprocessForDetector(img)
	inputShape := ort.NewShape(1, 3, detectorInputSize, detectorInputSize)
	inputTensor, err := ort.NewTensor(inputShape, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := d.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	regions := decodeDetections(outTensor.GetData(), scaleX, scaleY)
	regions = suppressOverlaps(regions)

	logger.Debug("layout detection complete", logger.Int("regions", len(regions)))
	return regions, nil
}

// ClassifyElements reassigns element types from detected regions by best
// box overlap. Elements with no overlapping region keep their type.
func ClassifyElements(set *document.Set, regions []Region) {
	for i := range set.Elements {
		el := &set.Elements[i]
		bestIoU := 0.0
		var bestType document.ElementType
		for _, r := range regions {
			if iou := boxIoU(el.Position.Box, r.Box); iou > bestIoU {
				bestIoU = iou
				bestType = r.Type
			}
		}
		if bestIoU > 0.5 && bestType != "" {
			el.Type = bestType
		}
	}
}

// preprocessForDetector letterbox-free resizes to the model input and
// normalizes to CHW float32 in [0,1]. Returns the scale factors that map
// model coordinates back to source pixels.
func preprocessForDetector(img image.Image) ([]float32, float64, float64) {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	resized := image.NewRGBA(image.Rect(0, 0, detectorInputSize, detectorInputSize))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, bounds, draw.Src, nil)

	n := detectorInputSize * detectorInputSize
	data := make([]float32, 3*n)
	for y := 0; y < detectorInputSize; y++ {
		for x := 0; x < detectorInputSize; x++ {
			off := resized.PixOffset(x, y)
			idx := y*detectorInputSize + x
			data[idx] = float32(resized.Pix[off]) / 255     // R
			data[n+idx] = float32(resized.Pix[off+1]) / 255 // G
			data[2*n+idx] = float32(resized.Pix[off+2]) / 255
		}
	}

	return data,
		float64(srcW) / detectorInputSize,
		float64(srcH) / detectorInputSize
}

// decodeDetections reads rows of (x0, y0, x1, y1, score, class) and maps
// them back to source coordinates.
func decodeDetections(out []float32, scaleX, scaleY float64) []Region {
	var regions []Region
	for i := 0; i+6 <= len(out); i += 6 {
		score := float64(out[i+4])
		if score < detectorScoreMin {
			continue
		}
		class := int64(out[i+5])
		elemType, ok := detectorClasses[class]
		if !ok {
			continue
		}
		regions = append(regions, Region{
			Box: document.Box{
				X0: float64(out[i]) * scaleX,
				Y0: float64(out[i+1]) * scaleY,
				X1: float64(out[i+2]) * scaleX,
				Y1: float64(out[i+3]) * scaleY,
			},
			Type:  elemType,
			Score: score,
		})
	}
	return regions
}

// suppressOverlaps keeps the highest-scoring region of each overlapping pair
func suppressOverlaps(regions []Region) []Region {
	sort.Slice(regions, func(i, j int) bool { return regions[i].Score > regions[j].Score })

	var kept []Region
	for _, r := range regions {
		overlaps := false
		for _, k := range kept {
			if boxIoU(r.Box, k.Box) > detectorIoUMax {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, r)
		}
	}
	return kept
}

func boxIoU(a, b document.Box) float64 {
	ix0, iy0 := max64(a.X0, b.X0), max64(a.Y0, b.Y0)
	ix1, iy1 := min64(a.X1, b.X1), min64(a.Y1, b.Y1)
	if ix1 <= ix0 || iy1 <= iy0 {
		return 0
	}
	inter := (ix1 - ix0) * (iy1 - iy0)
	union := a.Width()*a.Height() + b.Width()*b.Height() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
