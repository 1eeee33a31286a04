package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Farid841/rara/internal/config"
	"github.com/Farid841/rara/internal/model"
	appErr "github.com/Farid841/rara/internal/pkg/errors"
)

// Sampling settings are part of the remote request and not tunable by
// callers.
const (
	completionTemperature = 0.7
	completionMaxTokens   = 800
)

// User-presentable answers substituted when the generation service fails.
// The chat surface never exposes a hard error to the end user.
const (
	fallbackServiceError = "Sorry, I could not generate an answer because the language service returned an error. Please try again later."
	fallbackConnection   = "Sorry, I could not generate an answer because of a connection problem with the language service."
	fallbackTimeout      = "Sorry, the language service took too long to respond. Please try again later."
	fallbackUnexpected   = "Sorry, an unexpected error occurred while generating the answer. Please try again."
)

// Completer produces an answer for a structured conversation.
type Completer interface {
	Complete(ctx context.Context, messages []model.ChatMessage) (string, error)
}

// CompletionClient calls the remote chat-completions deployment. Remote
// failures degrade into user-presentable fallback strings instead of errors;
// a non-nil error is only returned when the request cannot even be built.
type CompletionClient struct {
	endpoint   string
	apiKey     string
	apiVersion string
	deployment string
	client     *http.Client
}

func NewCompletionClient(cfg config.OpenAIConfig, timeout time.Duration) *CompletionClient {
	return &CompletionClient{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		deployment: cfg.Deployment,
		client:     &http.Client{Timeout: timeout},
	}
}

type completionRequest struct {
	Messages    []model.ChatMessage `json:"messages"`
	Model       string              `json:"model"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *CompletionClient) Complete(ctx context.Context, messages []model.ChatMessage) (string, error) {
	logger := logutil.GetLogger(ctx)
	data, err := json.Marshal(completionRequest{
		Messages:    messages,
		Model:       c.deployment,
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		classified := appErr.ClassifyTransport(err)
		logger.Warn("completion call degraded", zap.Error(classified))
		if errors.Is(classified, appErr.ErrTimeout) {
			return fallbackTimeout, nil
		}
		return fallbackConnection, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("completion call degraded", zap.Error(err))
		return fallbackUnexpected, nil
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warn("completion call degraded",
			zap.Int("status", resp.StatusCode),
			zap.String("body", strings.TrimSpace(string(body))),
		)
		return fallbackServiceError, nil
	}
	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil || len(out.Choices) == 0 {
		logger.Warn("completion response unusable", zap.Error(err))
		return fallbackUnexpected, nil
	}
	return out.Choices[0].Message.Content, nil
}
