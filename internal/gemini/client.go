// Package gemini asks the Gemini API for a written analysis of quarterly results.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/VxVxN/stockinsight/internal/models"
	"github.com/VxVxN/stockinsight/internal/upstream"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
)

var (
	ErrMissingAPIKey = errors.New("gemini API key is not configured")
	ErrEmptyResponse = errors.New("gemini returned no text")
)

// APIError is the error object of a failed generateContent call.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: %s (%d): %s", e.Status, e.Code, e.Message)
}

type Config struct {
	BaseURL string
	Model   string
}

type Client struct {
	baseURL string
	model   string
	http    *upstream.Client
	logger  *slog.Logger
}

func NewClient(cfg Config, httpClient *upstream.Client, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    httpClient,
		logger:  logger,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Summarize returns the model's analysis of fin verbatim.
func (c *Client) Summarize(ctx context.Context, apiKey string, fin *models.CompanyFinancials) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", ErrMissingAPIKey
	}

	prompt, err := BuildPrompt(fin)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))

	body, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", apiKey)
		return req, nil
	})
	if err != nil {
		return "", decodeError(err)
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		for _, p := range candidate.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("Generated analysis",
		"symbol", fin.Symbol,
		"model", c.model,
		"chars", sb.Len())

	return sb.String(), nil
}

// decodeError turns an HTTP failure carrying a Gemini error body into *APIError.
func decodeError(err error) error {
	var statusErr *upstream.StatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("failed to call gemini: %w", err)
	}

	var payload struct {
		Error *APIError `json:"error"`
	}
	if jsonErr := json.Unmarshal([]byte(statusErr.Body), &payload); jsonErr != nil || payload.Error == nil {
		return fmt.Errorf("failed to call gemini: %w", err)
	}
	return payload.Error
}
