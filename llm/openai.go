package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/use-agent/aeoaudit/models"
	"github.com/use-agent/aeoaudit/oracle"
	"golang.org/x/time/rate"
)

// maxResponseBytes bounds the completion body read from the provider.
const maxResponseBytes = 4 << 20

// Params configures the scoring model (OpenAI-compatible endpoint).
type Params struct {
	APIKey      string
	Model       string
	BaseURL     string // e.g. "https://api.openai.com/v1"
	Temperature float64
	MaxTokens   int
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is a lightweight OpenAI-compatible chat client that implements
// oracle.Oracle. It uses net/http directly, no provider SDK.
type Client struct {
	httpClient *http.Client
	params     Params
	limiter    *rate.Limiter

	// OnUsage, when set, receives token usage for every completion.
	OnUsage func(Usage)
}

var _ oracle.Oracle = (*Client)(nil)

// NewClient creates a client. Pass nil httpClient to use a default one.
// ratePerMinute <= 0 disables client-side pacing.
func NewClient(httpClient *http.Client, params Params, ratePerMinute int) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if params.BaseURL == "" {
		params.BaseURL = "https://api.openai.com/v1"
	}
	c := &Client{httpClient: httpClient, params: params}
	if ratePerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), 1)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.params.Model }

// chatRequest is the OpenAI chat completion request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the minimal OpenAI chat completion response we need.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// chatErrorResponse captures an API error from the provider.
type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends the prompts and returns the raw completion text. The text
// is not validated here; oracle.Parse owns the contract.
func (c *Client) Complete(ctx context.Context, p oracle.Prompts) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	reqBody := chatRequest{
		Model: c.params.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		Temperature:    c.params.Temperature,
		MaxTokens:      c.params.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.params.BaseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.params.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.params.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", models.NewAuditError(models.ErrCodeOracleCall, "LLM request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", models.NewAuditError(models.ErrCodeOracleCall, "failed to read LLM response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyLLMError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", models.NewAuditError(models.ErrCodeOracleCall, "failed to decode LLM response envelope", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", models.NewAuditError(models.ErrCodeOracleCall, "LLM returned no choices", nil)
	}

	usage := Usage{
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
		TotalTokens:      chatResp.Usage.TotalTokens,
	}
	slog.Debug("llm: completion",
		"model", c.params.Model,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
	)
	if c.OnUsage != nil {
		c.OnUsage(usage)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// classifyLLMError maps HTTP status codes to oracle error codes.
func classifyLLMError(statusCode int, body []byte) *models.AuditError {
	var errResp chatErrorResponse
	msg := "LLM API error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return models.NewAuditError(models.ErrCodeOracleAuth, msg, nil)
	case statusCode == http.StatusTooManyRequests:
		return models.NewAuditError(models.ErrCodeOracleRateLimit, msg, nil)
	default:
		return models.NewAuditError(models.ErrCodeOracleCall, fmt.Sprintf("LLM API returned %d: %s", statusCode, msg), nil)
	}
}
