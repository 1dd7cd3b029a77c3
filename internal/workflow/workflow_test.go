package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/extract"
	"github.com/ibatulanandjp/procrai/internal/ocr"
	"github.com/ibatulanandjp/procrai/internal/results"
	"github.com/ibatulanandjp/procrai/internal/translate"
)

type fakeOCR struct{}

func (f *fakeOCR) Recognize(ctx context.Context, image []byte) ([]ocr.Word, error) {
	return []ocr.Word{
		{Text: "Hello", Confidence: 95, LineNum: 1, X0: 10, Y0: 10, Width: 40, Height: 12},
	}, nil
}

type fakeTranslator struct {
	err error
}

func (f *fakeTranslator) TranslateSet(ctx context.Context, set *document.Set, progress translate.ProgressFunc) error {
	if f.err != nil {
		return f.err
	}
	for i := range set.Elements {
		if set.Elements[i].Translatable() {
			set.Elements[i].TranslatedContent = "T:" + set.Elements[i].Content
		}
	}
	if progress != nil {
		progress(1, 1)
	}
	return nil
}

type fakeReconstructor struct {
	err      error
	rendered string
}

func (f *fakeReconstructor) Reconstruct(set *document.Set, outPath string) error {
	if f.err != nil {
		return f.err
	}
	f.rendered = outPath
	return os.WriteFile(outPath, []byte("%PDF"), 0644)
}

func newTestPipeline(t *testing.T, tr Translator, rc Reconstructor) (*Pipeline, *results.Manager, string) {
	t.Helper()

	store, err := results.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "scan.png")
	if err := os.WriteFile(srcPath, []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	extractor := extract.NewExtractor(&fakeOCR{}, nil)
	return NewPipeline(extractor, tr, rc, store, "en", "ja"), store, srcPath
}

func TestPipeline_RunComplete(t *testing.T) {
	rc := &fakeReconstructor{}
	p, store, srcPath := newTestPipeline(t, &fakeTranslator{}, rc)

	outputName, err := p.Run(context.Background(), "doc1", srcPath)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outputName != "translated_scan.pdf" {
		t.Errorf("output name = %q", outputName)
	}

	status := p.Status()
	if status.Phase != PhaseComplete || status.Progress != 100 {
		t.Errorf("status = %+v", status)
	}
	if status.OutputName != outputName {
		t.Errorf("status output = %q", status.OutputName)
	}

	info, err := store.Load("doc1")
	if err != nil {
		t.Fatalf("store load failed: %v", err)
	}
	if info.Status != results.StatusComplete {
		t.Errorf("stored status = %s", info.Status)
	}
	if info.ElementCount != 1 || info.PageCount != 1 {
		t.Errorf("stored counts = %+v", info)
	}

	if _, err := os.Stat(rc.rendered); err != nil {
		t.Errorf("rendered file missing: %v", err)
	}
}

func TestPipeline_TranslationFailure(t *testing.T) {
	cause := translate.NewServiceError("boom", nil)
	p, store, srcPath := newTestPipeline(t, &fakeTranslator{err: cause}, &fakeReconstructor{})

	_, err := p.Run(context.Background(), "doc1", srcPath)
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want service error", err)
	}

	if status := p.Status(); status.Phase != PhaseError || status.Error == "" {
		t.Errorf("status = %+v", status)
	}

	info, _ := store.Load("doc1")
	if info.Status != results.StatusError {
		t.Errorf("stored status = %s", info.Status)
	}
}

func TestPipeline_ReconstructionFailure(t *testing.T) {
	cause := errors.New("render broke")
	p, _, srcPath := newTestPipeline(t, &fakeTranslator{}, &fakeReconstructor{err: cause})

	if _, err := p.Run(context.Background(), "doc1", srcPath); !errors.Is(err, cause) {
		t.Fatalf("err = %v", err)
	}
	if status := p.Status(); status.Phase != PhaseError {
		t.Errorf("phase = %s", status.Phase)
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	p, _, srcPath := newTestPipeline(t, &fakeTranslator{}, &fakeReconstructor{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Run(ctx, "doc1", srcPath); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestPipeline_StatusStartsIdle(t *testing.T) {
	p, _, _ := newTestPipeline(t, &fakeTranslator{}, &fakeReconstructor{})
	if status := p.Status(); status.Phase != PhaseIdle {
		t.Errorf("initial phase = %s", status.Phase)
	}
}
