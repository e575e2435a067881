package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/config"
	"gitlab.com/timkado/api/agency-core/internal/observer"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

const (
	anthropicVersion          = "2023-06-01"
	defaultAnthropicBaseURL   = "https://api.anthropic.com"
	defaultAnthropicModel     = "claude-3-7-sonnet-latest"
	defaultAnthropicMaxTokens = 4000
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Anthropic calls the Messages API.
type Anthropic struct {
	cfg    config.ProviderConfig
	client *http.Client
}

var _ Provider = (*Anthropic)(nil)

// NewAnthropic builds the provider. Empty settings fall back to defaults.
func NewAnthropic(cfg config.ProviderConfig) *Anthropic {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAnthropicBaseURL
	}
	if cfg.ModelID == "" {
		cfg.ModelID = defaultAnthropicModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultAnthropicMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Anthropic{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Name implements Provider.
func (a *Anthropic) Name() string { return ProviderAnthropic }

// Complete implements Provider.
func (a *Anthropic) Complete(ctx context.Context, system, user string) (text string, err error) {
	start := time.Now()
	defer func() { observer.ObserveExternalCall(ProviderAnthropic, "complete", time.Since(start), err) }()

	if a.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: anthropic api key is not configured", apperrors.ErrExternalService)
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       a.cfg.ModelID,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		System:      system,
		Messages:    []anthropicMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode anthropic request: %w", err)
	}

	url := strings.TrimRight(a.cfg.BaseURL, "/") + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic request failed: %w", apperrors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read anthropic response: %w", apperrors.ErrExternalService, err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: invalid anthropic response (status %d): %w", apperrors.ErrExternalService, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("%w: anthropic returned %d: %s", apperrors.ErrExternalService, resp.StatusCode, msg)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	logger.FromContext(ctx).Debug("Anthropic completion received",
		zap.String("model", a.cfg.ModelID),
		zap.Int("chars", sb.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return sb.String(), nil
}
