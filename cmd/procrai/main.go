package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ibatulanandjp/procrai/internal/config"
	"github.com/ibatulanandjp/procrai/internal/extract"
	"github.com/ibatulanandjp/procrai/internal/logger"
	"github.com/ibatulanandjp/procrai/internal/ocr"
	"github.com/ibatulanandjp/procrai/internal/reconstruct"
	"github.com/ibatulanandjp/procrai/internal/results"
	"github.com/ibatulanandjp/procrai/internal/server"
	"github.com/ibatulanandjp/procrai/internal/translate"
	"github.com/ibatulanandjp/procrai/internal/workflow"
)

// Command line flags
var (
	configFlag = flag.String("config", "", "Path to the configuration file")
	addrFlag   = flag.String("addr", ":8080", "HTTP listen address (server mode)")
	inputFlag  = flag.String("input", "", "Document to translate directly (PDF or image)")
	sourceFlag = flag.String("source", "", "Source language override")
	targetFlag = flag.String("target", "", "Target language override")
	outputFlag = flag.String("output", "", "Output directory override")
)

func printHelp() {
	fmt.Println("procrai - document layout extraction, translation and reconstruction")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  procrai [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <PATH>    Configuration file path")
	fmt.Println("  --addr <ADDR>      HTTP listen address (default :8080)")
	fmt.Println("  --input <PATH>     Translate one document and exit")
	fmt.Println("  --source <LANG>    Source language override")
	fmt.Println("  --target <LANG>    Target language override")
	fmt.Println("  --output <PATH>    Output directory override")
	fmt.Println("  -h, --help         Show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  procrai                          # start the HTTP server")
	fmt.Println("  procrai --input paper.pdf        # translate one document")
	fmt.Println("  procrai --input scan.png --target ja")
}

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "procrai: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(logger.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	manager, err := config.NewManager(*configFlag)
	if err != nil {
		return err
	}
	if err := manager.Load(); err != nil {
		return err
	}
	cfg := manager.Get()

	if *sourceFlag != "" {
		cfg.SourceLang = *sourceFlag
	}
	if *targetFlag != "" {
		cfg.TargetLang = *targetFlag
	}
	if *outputFlag != "" {
		cfg.OutputDir = *outputFlag
	}
	if err := manager.Set(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, store, extractor, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	if *inputFlag != "" {
		return runOnce(ctx, pipeline, *inputFlag)
	}

	srv := server.New(cfg, extractor, pipeline, store)
	return srv.Start(ctx, *addrFlag)
}

// buildPipeline assembles the processing stages from the configuration
func buildPipeline(ctx context.Context, cfg *config.Config) (*workflow.Pipeline, *results.Manager, *extract.Extractor, error) {
	detector, err := extract.NewLayoutDetector(extract.LayoutDetectorConfig{
		ModelPath: cfg.LayoutModelPath,
		Enabled:   cfg.LayoutModelEnabled,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	engine := ocr.NewTesseractEngine(cfg.OCRLanguage)
	extractor := extract.NewExtractor(engine, detector)

	client, err := translate.NewChatClient(ctx, translate.ChatClientConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.RequestTimeout(),
	})
	if err != nil {
		return nil, nil, nil, err
	}

	translator := translate.NewTranslator(client, translate.TranslatorConfig{
		SourceLang:  cfg.SourceLang,
		TargetLang:  cfg.TargetLang,
		Concurrency: cfg.Concurrency,
		CachePath:   cfg.CachePath,
	})

	reconstructor, err := reconstruct.NewReconstructor(cfg.FontDir)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := results.NewManager(cfg.OutputDir)
	if err != nil {
		return nil, nil, nil, err
	}

	pipeline := workflow.NewPipeline(extractor, translator, reconstructor, store, cfg.SourceLang, cfg.TargetLang)
	return pipeline, store, extractor, nil
}

// runOnce translates a single document from the command line
func runOnce(ctx context.Context, pipeline *workflow.Pipeline, input string) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("input file not accessible: %w", err)
	}

	id := fmt.Sprintf("%s-%d",
		filepath.Base(input[:len(input)-len(filepath.Ext(input))]),
		time.Now().Unix())

	outputName, err := pipeline.Run(ctx, id, input)
	if err != nil {
		return err
	}

	fmt.Printf("translated document written as %s\n", outputName)
	return nil
}
