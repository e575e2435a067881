package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/config"
	"gitlab.com/timkado/api/agency-core/internal/observer"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

const defaultOpenAIModel = "o3-mini-2025-01-31"

// OpenAI calls the chat completions API.
type OpenAI struct {
	cfg    config.ProviderConfig
	client *openai.Client
}

var _ Provider = (*OpenAI)(nil)

// NewOpenAI builds the provider. Empty settings fall back to defaults.
func NewOpenAI(cfg config.ProviderConfig) *OpenAI {
	if cfg.ModelID == "" {
		cfg.ModelID = defaultOpenAIModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAI{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return ProviderOpenAI }

// Complete implements Provider.
func (o *OpenAI) Complete(ctx context.Context, system, user string) (text string, err error) {
	start := time.Now()
	defer func() { observer.ObserveExternalCall(ProviderOpenAI, "complete", time.Since(start), err) }()

	if o.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: openai api key is not configured", apperrors.ErrExternalService)
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: o.cfg.ModelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxCompletionTokens: o.cfg.MaxTokens,
		Temperature:         o.cfg.Temperature,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openai request failed: %w", apperrors.ErrExternalService, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", apperrors.ErrExternalService)
	}

	content := resp.Choices[0].Message.Content
	logger.FromContext(ctx).Debug("OpenAI completion received",
		zap.String("model", o.cfg.ModelID),
		zap.Int("chars", len(content)),
		zap.Duration("duration", time.Since(start)),
	)
	return content, nil
}
