package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/Farid841/rara/internal/config"
	appErr "github.com/Farid841/rara/internal/pkg/errors"
)

// The embeddings deployment rejects inputs above its token limit. Four
// characters per token is a rough estimate; anything beyond the limit is
// silently dropped.
const (
	maxInputTokens = 8191
	charsPerToken  = 4
	inputCharLimit = maxInputTokens * charsPerToken
)

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Deployment() string
}

// EmbeddingClient calls the remote Azure-style embeddings endpoint. One
// synchronous attempt per call, no retry; failures propagate to the caller.
type EmbeddingClient struct {
	endpoint   string
	apiKey     string
	deployment string
	client     *http.Client
}

func NewEmbeddingClient(cfg config.EmbeddingConfig, timeout time.Duration) *EmbeddingClient {
	return &EmbeddingClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		deployment: cfg.Deployment,
		client:     &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *EmbeddingClient) Deployment() string {
	return c.deployment
}

func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	data, err := json.Marshal(embedRequest{
		Input: truncate(text, inputCharLimit),
		Model: c.deployment,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, appErr.ClassifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &appErr.ServiceError{
			Service:    "embedding",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("embed response has no data")
	}
	return out.Data[0].Embedding, nil
}

// truncate cuts text to at most limit bytes without splitting a rune.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
