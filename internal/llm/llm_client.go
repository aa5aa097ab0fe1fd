package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"taicc-readiness/utilities"
)

// ErrTextGenerationUnavailable means no API key was configured.
var ErrTextGenerationUnavailable = errors.New("text generation is not configured: set GEMINI_API_KEY")

// LLMClient generates report text from a prompt.
type LLMClient interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// geminiClient implements LLMClient on the Gemini API. One instance is shared
// by every session; the limiter caps calls across the process.
type geminiClient struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewGeminiClient builds the shared client. ratePerMinute <= 0 disables the limiter.
func NewGeminiClient(ctx context.Context, apiKey, model string, ratePerMinute int) (LLMClient, error) {
	if apiKey == "" {
		return nil, ErrTextGenerationUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiClient{
		client:  client,
		model:   model,
		limiter: newLimiter(ratePerMinute),
	}, nil
}

func newLimiter(ratePerMinute int) *rate.Limiter {
	if ratePerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(float64(ratePerMinute)/60.0), 1)
}

// GenerateResponse makes a single GenerateContent call. There is no retry.
func (c *geminiClient) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("text generation rate limit: %w", err)
	}

	utilities.Debug("Requesting report text from %s (%d prompt chars)", c.model, len(prompt))
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("Gemini returned an empty response")
	}
	return text, nil
}
