// Package translate groups extracted elements into context runs and fills
// in their translated content through an LLM-backed client, with retry,
// bounded concurrency and a persistent cache.
package translate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/logger"
)

// Retry tuning
const (
	DefaultMaxRetries  = 3
	DefaultConcurrency = 3
	baseRetryDelay     = 2 * time.Second
	maxRetryDelay      = 30 * time.Second
)

// TranslatorConfig holds configuration for a Translator
type TranslatorConfig struct {
	SourceLang  string
	TargetLang  string
	MaxRetries  int
	Concurrency int
	CachePath   string
}

// ProgressFunc receives completed and total element counts
type ProgressFunc func(completed, total int)

// Translator fills TranslatedContent on translatable elements in place
type Translator struct {
	client      Client
	cache       *Cache
	sourceLang  string
	targetLang  string
	maxRetries  int
	concurrency int
}

// NewTranslator creates a Translator around the given client
func NewTranslator(client Client, cfg TranslatorConfig) *Translator {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	cache := NewCache(cfg.CachePath)
	if err := cache.Load(); err != nil {
		logger.Warn("translation cache unavailable", logger.Err(err))
	}

	return &Translator{
		client:      client,
		cache:       cache,
		sourceLang:  cfg.SourceLang,
		targetLang:  cfg.TargetLang,
		maxRetries:  maxRetries,
		concurrency: concurrency,
	}
}

// TranslateSet translates every translatable element of the set in place.
// Groups run concurrently under a semaphore; elements within a group run
// sequentially so each request's context is stable. The first hard error
// aborts the run.
func (t *Translator) TranslateSet(ctx context.Context, set *document.Set, progress ProgressFunc) error {
	groups := GroupElements(set.Elements)
	total := 0
	for _, g := range groups {
		total += len(g.Members)
	}
	if total == 0 {
		return nil
	}

	logger.Info("translation started",
		logger.Int("groups", len(groups)),
		logger.Int("elements", total),
		logger.String("source", t.sourceLang),
		logger.String("target", t.targetLang),
	)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
		firstErr  error
	)
	sem := make(chan struct{}, t.concurrency)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, g := range groups {
		g := g
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			for pos, i := range g.Members {
				if runCtx.Err() != nil {
					return
				}
				el := &set.Elements[i]
				translated, err := t.translateElement(runCtx, set.Elements, g, pos)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					mu.Unlock()
					return
				}
				el.TranslatedContent = translated
				completed++
				done := completed
				mu.Unlock()
				if progress != nil {
					progress(done, total)
				}
			}
		}()
	}
	wg.Wait()

	if err := t.cache.Save(); err != nil {
		logger.Warn("failed to persist translation cache", logger.Err(err))
	}

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return NewCancelledError(err)
	}

	logger.Info("translation complete", logger.Int("elements", completed))
	return nil
}

func (t *Translator) translateElement(ctx context.Context, elements []document.Element, g Group, pos int) (string, error) {
	el := &elements[g.Members[pos]]

	if cached, ok := t.cache.Get(t.sourceLang, t.targetLang, el.Content); ok {
		return cached, nil
	}

	req := Request{
		Text:       el.Content,
		Context:    BuildContext(elements, g, pos),
		SourceLang: t.sourceLang,
		TargetLang: t.targetLang,
	}

	translated, err := t.translateWithRetry(ctx, req)
	if err != nil {
		return "", stampElement(err, g.Members[pos], el.Position.Page)
	}

	t.cache.Set(t.sourceLang, t.targetLang, el.Content, translated)
	return translated, nil
}

// stampElement records the failing element's set index and page on a stage
// error so the caller can resume from it.
func stampElement(err error, element, page int) error {
	var tErr *TranslateError
	if errors.As(err, &tErr) {
		tErr.Element = element
		tErr.Page = page
		return err
	}
	return &TranslateError{
		Code:    ErrCodeService,
		Message: "translation service call failed",
		Details: err.Error(),
		Element: element,
		Page:    page,
		Cause:   err,
	}
}

func (t *Translator) translateWithRetry(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= t.maxRetries; attempt++ {
		translated, err := t.client.Translate(ctx, req)
		if err == nil {
			return translated, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == t.maxRetries {
			break
		}

		delay := backoffDelay(attempt)
		logger.Warn("translation attempt failed, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
		select {
		case <-ctx.Done():
			return "", NewCancelledError(ctx.Err())
		case <-time.After(delay):
		}
	}
	return "", lastErr
}

// isRetryable: timeouts and service failures may be transient; malformed
// responses and cancellations are final.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if tErr, ok := err.(*TranslateError); ok {
		switch tErr.Code {
		case ErrCodeTimeout, ErrCodeService:
			return true
		default:
			return false
		}
	}

	msg := err.Error()
	for _, hint := range []string{"connection", "timeout", "network", "EOF", "reset by peer"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// backoffDelay doubles per attempt: 2s, 4s, 8s, capped at 30s
func backoffDelay(attempt int) time.Duration {
	delay := baseRetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
