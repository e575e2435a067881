// Package voice places outbound calls that collect missing field values.
package voice

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

const providerName = "vapi"

// StatusQueued is the only call status that counts as a started call.
const StatusQueued = "queued"

// CallRequest describes one outbound call.
type CallRequest struct {
	CustomerName  string
	CustomerPhone string
	BusinessName  string
	MissingFields string
	Schema        Schema
}

// CallResponse is the provider's view of a created call.
type CallResponse struct {
	CallID string `json:"id"`
	Status string `json:"status"`
}

// Caller starts outbound calls.
type Caller interface {
	InitiateCall(ctx context.Context, req CallRequest) (*CallResponse, error)
}

type callCustomer struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

type structuredDataPlan struct {
	Enabled bool   `json:"enabled"`
	Schema  Schema `json:"schema"`
}

type analysisPlan struct {
	StructuredDataPlan structuredDataPlan `json:"structuredDataPlan"`
}

type assistantOverrides struct {
	AnalysisPlan   analysisPlan      `json:"analysisPlan"`
	VariableValues map[string]string `json:"variableValues"`
}

type callPayload struct {
	AssistantID        string             `json:"assistantId"`
	PhoneNumberID      string             `json:"phoneNumberId"`
	Customer           callCustomer       `json:"customer"`
	AssistantOverrides assistantOverrides `json:"assistantOverrides"`
}

// Client calls the Vapi REST API.
type Client struct {
	cfg    config.VoiceConfig
	client *http.Client
}

var _ Caller = (*Client)(nil)

// NewClient builds a Vapi client.
func NewClient(cfg config.VoiceConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.vapi.ai"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// InitiateCall implements Caller. Anything but 201 with a queued status is an error.
func (c *Client) InitiateCall(ctx context.Context, req CallRequest) (resp *CallResponse, err error) {
	start := time.Now()
	defer func() { observer.ObserveExternalCall(providerName, "initiate_call", time.Since(start), err) }()

	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: voice api key is not configured", apperrors.ErrExternalService)
	}

	body, err := json.Marshal(callPayload{
		AssistantID:   c.cfg.AssistantID,
		PhoneNumberID: c.cfg.PhoneNumberID,
		Customer:      callCustomer{Name: req.CustomerName, Number: req.CustomerPhone},
		AssistantOverrides: assistantOverrides{
			AnalysisPlan: analysisPlan{StructuredDataPlan: structuredDataPlan{Enabled: true, Schema: req.Schema}},
			VariableValues: map[string]string{
				"businessName":  req.BusinessName,
				"customerName":  req.CustomerName,
				"missingFields": req.MissingFields,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/call", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build call request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: call request failed: %w", apperrors.ErrExternalService, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read call response: %w", apperrors.ErrExternalService, err)
	}

	var parsed CallResponse
	_ = json.Unmarshal(raw, &parsed)
	if httpResp.StatusCode != http.StatusCreated || parsed.Status != StatusQueued {
		return nil, fmt.Errorf("%w: failed to initiate call: status %d, call status %q: %s",
			apperrors.ErrExternalService, httpResp.StatusCode, parsed.Status, truncate(string(raw), 200))
	}

	logger.FromContext(ctx).Info("Voice call queued",
		zap.String("call_id", parsed.CallID),
		zap.Duration("duration", time.Since(start)),
	)
	return &parsed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
