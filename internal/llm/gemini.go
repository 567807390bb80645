// Package llm implements the Gemini-backed type inference provider over the
// OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vvka-141/csv2pg/internal/retry"
	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// DefaultEndpoint is Gemini's OpenAI-compatible API base URL.
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/openai"

// Config holds the settings for creating a Gemini provider.
type Config struct {
	// Endpoint is the OpenAI-compatible base URL. Defaults to DefaultEndpoint.
	Endpoint string

	// Model is the Gemini model name, e.g. "gemini-1.5-pro".
	Model string

	// APIKey authenticates requests. Required.
	APIKey string

	// Timeout bounds each individual API attempt.
	Timeout time.Duration
}

// GeminiProvider implements csv2pg.TypeProvider against the Gemini API.
//
// Each InferTypes call is retried through the configured executor; a single
// attempt is bounded by the configured timeout. The provider is immutable
// after construction and safe for concurrent use.
type GeminiProvider struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	executor *retry.Executor
	logger   csv2pg.Logger
}

var _ csv2pg.TypeProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider from the given configuration.
func NewGeminiProvider(cfg Config, executor *retry.Executor, logger csv2pg.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required: %w", csv2pg.ErrInvalidConfig)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = csv2pg.DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = csv2pg.DefaultProviderTimeout
	}
	if executor == nil {
		return nil, fmt.Errorf("retry executor is required: %w", csv2pg.ErrInvalidConfig)
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required: %w", csv2pg.ErrInvalidConfig)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(endpoint, "/")

	return &GeminiProvider{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    model,
		timeout:  timeout,
		executor: executor,
		logger:   logger,
	}, nil
}

// InferTypes asks the model for PostgreSQL types covering the chunk's columns.
//
// Returned types are validated individually; items the model got wrong are
// dropped rather than failing the chunk, so the result may cover fewer
// columns than requested. The caller reconciles missing columns.
func (p *GeminiProvider) InferTypes(ctx context.Context, chunk csv2pg.ColumnChunk) ([]csv2pg.InferredType, error) {
	prompt, err := buildPrompt(chunk)
	if err != nil {
		return nil, fmt.Errorf("build prompt for chunk %d: %w", chunk.ChunkID, err)
	}

	executor := p.executor.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		p.logger.Verbose("chunk %d/%d: attempt %d failed (%v), retrying in %s",
			chunk.ChunkID+1, chunk.TotalChunks, attempt+1, err, delay.Round(time.Millisecond))
	})

	var types []csv2pg.InferredType
	err = executor.Execute(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		content, err := p.complete(attemptCtx, prompt)
		if err != nil {
			return err
		}

		parsed, err := parseResponse(content, p.logger)
		if err != nil {
			return err
		}

		types = parsed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chunk %d/%d: %w", chunk.ChunkID+1, chunk.TotalChunks, err)
	}

	if len(types) != len(chunk.Columns) {
		p.logger.Verbose("chunk %d/%d: expected %d types, got %d",
			chunk.ChunkID+1, chunk.TotalChunks, len(chunk.Columns), len(types))
	}

	return types, nil
}

// complete runs one chat completion and returns the raw model output.
func (p *GeminiProvider) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion: %w", csv2pg.ErrMalformedResponse)
	}

	return resp.Choices[0].Message.Content, nil
}
