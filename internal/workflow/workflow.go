// Package workflow runs the extract, translate and reconstruct stages as
// one cancellable pipeline with phase and progress reporting.
package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/extract"
	"github.com/ibatulanandjp/procrai/internal/logger"
	"github.com/ibatulanandjp/procrai/internal/reconstruct"
	"github.com/ibatulanandjp/procrai/internal/results"
	"github.com/ibatulanandjp/procrai/internal/translate"
)

// Phase represents the current pipeline stage
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseExtracting     Phase = "extracting"
	PhaseTranslating    Phase = "translating"
	PhaseReconstructing Phase = "reconstructing"
	PhaseComplete       Phase = "complete"
	PhaseError          Phase = "error"
)

// Progress milestones per phase
const (
	progressExtracted  = 20
	progressTranslated = 80
	progressComplete   = 100
)

// Status is a snapshot of pipeline progress
type Status struct {
	Phase      Phase  `json:"phase"`
	Progress   int    `json:"progress"`
	Message    string `json:"message"`
	OutputName string `json:"output_name,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Translator fills translated content on a set
type Translator interface {
	TranslateSet(ctx context.Context, set *document.Set, progress translate.ProgressFunc) error
}

// Reconstructor renders a set to a PDF file
type Reconstructor interface {
	Reconstruct(set *document.Set, outPath string) error
}

// Pipeline wires the stages together for one document at a time
type Pipeline struct {
	extractor     *extract.Extractor
	translator    Translator
	reconstructor Reconstructor
	store         *results.Manager
	sourceLang    string
	targetLang    string

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
}

// NewPipeline creates a Pipeline
func NewPipeline(extractor *extract.Extractor, translator Translator, reconstructor Reconstructor, store *results.Manager, sourceLang, targetLang string) *Pipeline {
	return &Pipeline{
		extractor:     extractor,
		translator:    translator,
		reconstructor: reconstructor,
		store:         store,
		sourceLang:    sourceLang,
		targetLang:    targetLang,
		status:        Status{Phase: PhaseIdle},
	}
}

// Status returns the current pipeline status
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Cancel aborts the running pipeline, if any
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Pipeline) setStatus(phase Phase, progress int, message string) {
	p.mu.Lock()
	p.status = Status{Phase: phase, Progress: progress, Message: message, OutputName: p.status.OutputName}
	p.mu.Unlock()
}

func (p *Pipeline) fail(id string, err error, page int) error {
	p.mu.Lock()
	p.status = Status{Phase: PhaseError, Progress: p.status.Progress, Error: err.Error()}
	p.mu.Unlock()

	if p.store != nil {
		if sErr := p.store.UpdateStatus(id, results.StatusError, err.Error(), page); sErr != nil {
			logger.Warn("failed to record error status", logger.Err(sErr))
		}
	}
	return err
}

// Run processes one document end to end and returns the output filename.
// Extraction and reconstruction run synchronously; translation reports
// incremental progress. A concurrent Cancel aborts between stages and
// inside translation.
func (p *Pipeline) Run(ctx context.Context, id, sourcePath string) (string, error) {
	runCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	outputName := reconstruct.OutputName(sourcePath)

	if p.store != nil {
		info := &results.DocumentInfo{
			ID:          id,
			SourceName:  filepath.Base(sourcePath),
			SourcePath:  sourcePath,
			OutputName:  outputName,
			SourceLang:  p.sourceLang,
			TargetLang:  p.targetLang,
			Status:      results.StatusPending,
			ProcessedAt: time.Now(),
		}
		if err := p.store.Save(info); err != nil {
			return "", p.fail(id, err, 0)
		}
	}

	// Extract
	p.setStatus(PhaseExtracting, 0, "extracting elements")
	set, err := p.extractor.Extract(runCtx, sourcePath)
	if err != nil {
		return "", p.fail(id, err, pageOf(err))
	}
	p.setStatus(PhaseExtracting, progressExtracted, "extraction complete")
	p.recordExtraction(id, set)

	if err := runCtx.Err(); err != nil {
		return "", p.fail(id, err, 0)
	}

	// Translate
	p.setStatus(PhaseTranslating, progressExtracted, "translating elements")
	progress := func(done, total int) {
		span := progressTranslated - progressExtracted
		p.setStatus(PhaseTranslating, progressExtracted+span*done/total, "translating elements")
	}
	if err := p.translator.TranslateSet(runCtx, set, progress); err != nil {
		return "", p.fail(id, err, pageOf(err))
	}
	p.setStatus(PhaseTranslating, progressTranslated, "translation complete")
	p.updateStoreStatus(id, results.StatusTranslated)

	if err := runCtx.Err(); err != nil {
		return "", p.fail(id, err, 0)
	}

	// Reconstruct
	p.setStatus(PhaseReconstructing, progressTranslated, "rendering output")
	outPath := outputName
	if p.store != nil {
		outPath = p.store.OutputPath(id, outputName)
	}
	if err := p.reconstructor.Reconstruct(set, outPath); err != nil {
		return "", p.fail(id, err, pageOf(err))
	}

	p.mu.Lock()
	p.status = Status{Phase: PhaseComplete, Progress: progressComplete, Message: "complete", OutputName: outputName}
	p.mu.Unlock()
	p.updateStoreStatus(id, results.StatusComplete)

	logger.Info("workflow complete",
		logger.String("id", id),
		logger.String("output", outputName),
	)
	return outputName, nil
}

func (p *Pipeline) recordExtraction(id string, set *document.Set) {
	if p.store == nil {
		return
	}
	info, err := p.store.Load(id)
	if err != nil {
		return
	}
	info.Status = results.StatusExtracted
	info.PageCount = set.PageCount
	info.ElementCount = len(set.Elements)
	if err := p.store.Save(info); err != nil {
		logger.Warn("failed to record extraction result", logger.Err(err))
	}
}

func (p *Pipeline) updateStoreStatus(id string, status results.Status) {
	if p.store == nil {
		return
	}
	if err := p.store.UpdateStatus(id, status, "", 0); err != nil {
		logger.Warn("failed to update document status", logger.Err(err))
	}
}

// pageOf extracts the failing page from stage errors for resumable
// reprocessing records.
func pageOf(err error) int {
	var exErr *extract.ExtractError
	if errors.As(err, &exErr) {
		return exErr.Page
	}
	var tErr *translate.TranslateError
	if errors.As(err, &tErr) {
		return tErr.Page
	}
	var rErr *reconstruct.ReconstructError
	if errors.As(err, &rErr) {
		return rErr.Page
	}
	return 0
}
