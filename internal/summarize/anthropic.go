package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-haiku-20240307"

// DefaultMaxTokens caps the length of a generated summary.
const DefaultMaxTokens = 1024

// AnthropicConfig configures an AnthropicGenerator.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int64
}

// AnthropicGenerator calls the Anthropic Messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	hasKey    bool
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicGenerator builds a generator from cfg. The key is taken from cfg
// only; an empty key makes every call fail with ErrMissingCredentials.
// Retries are disabled so one invocation is one remote call.
func NewAnthropicGenerator(cfg AnthropicConfig, opts ...option.RequestOption) *AnthropicGenerator {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &AnthropicGenerator{
		client:    anthropic.NewClient(reqOpts...),
		hasKey:    strings.TrimSpace(cfg.APIKey) != "",
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
	}
}

// Generate sends one message and returns the concatenated text blocks.
func (g *AnthropicGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if !g.hasKey {
		return "", ErrMissingCredentials
	}

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: status %d: %w", ErrUpstream, apiErr.StatusCode, err)
		}
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(v.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: no text in response", ErrUpstream)
	}
	return sb.String(), nil
}
