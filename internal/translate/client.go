package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"github.com/ibatulanandjp/procrai/internal/logger"
)

// Request carries one text to translate with its surrounding context
type Request struct {
	Text       string
	Context    string
	SourceLang string
	TargetLang string
}

// Client translates a single text
type Client interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// ChatClientConfig holds configuration for the LLM-backed client
type ChatClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultRequestTimeout bounds one translation call
const DefaultRequestTimeout = 60 * time.Second

// ChatClient implements Client over an OpenAI-compatible chat model
type ChatClient struct {
	model   *openai.ChatModel
	timeout time.Duration
}

// NewChatClient creates a ChatClient
func NewChatClient(ctx context.Context, cfg ChatClientConfig) (*ChatClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	model, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: timeout,
	})
	if err != nil {
		return nil, NewServiceError("failed to create chat model", err)
	}

	return &ChatClient{model: model, timeout: timeout}, nil
}

// Translate sends one translation request and returns the translated text
func (c *ChatClient) Translate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []*schema.Message{
		schema.SystemMessage(buildSystemPrompt(req.SourceLang, req.TargetLang)),
		schema.UserMessage(buildUserPrompt(req)),
	}

	resp, err := c.model.Generate(callCtx, messages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", NewTimeoutError(fmt.Sprintf("after %s", c.timeout), err)
		}
		if errors.Is(err, context.Canceled) {
			return "", NewCancelledError(err)
		}
		logger.Error("translation request failed", err)
		return "", NewServiceError("chat completion failed", err)
	}

	translated := strings.TrimSpace(resp.Content)
	if translated == "" {
		return "", NewMalformedError("empty completion")
	}
	return translated, nil
}

func buildSystemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf(
		"You are a professional document translator. Translate the user's text from %s to %s. "+
			"Preserve numbers, formulas, line breaks and inline formatting exactly. "+
			"Output only the translated text with no explanations.",
		sourceLang, targetLang)
}

func buildUserPrompt(req Request) string {
	if req.Context == "" {
		return req.Text
	}
	return fmt.Sprintf(
		"Surrounding text for context (the target is marked %q, do not translate the context):\n%s\n\nText to translate:\n%s",
		contextMask, req.Context, req.Text)
}
