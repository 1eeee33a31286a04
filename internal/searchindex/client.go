package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Farid841/rara/internal/config"
	appErr "github.com/Farid841/rara/internal/pkg/errors"
)

// Store persists document chunks in the remote vector index and retrieves
// the texts nearest to a query vector. Ranking is delegated to the remote
// service entirely.
//
// Search keeps "no matches" and "hard failure" apart: zero matches is an
// empty slice with a nil error, never an error.
type Store interface {
	Upsert(ctx context.Context, id, content string, embedding []float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]string, error)
}

// Client talks to an Azure Cognitive Search index over its REST API.
type Client struct {
	endpoint   string
	apiKey     string
	index      string
	apiVersion string
	client     *http.Client
}

func NewClient(cfg config.SearchConfig, timeout time.Duration) *Client {
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		index:      cfg.Index,
		apiVersion: cfg.APIVersion,
		client:     &http.Client{Timeout: timeout},
	}
}

type indexDocument struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
	Action    string    `json:"@search.action"`
}

type upsertRequest struct {
	Value []indexDocument `json:"value"`
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	Fields string    `json:"fields"`
	K      int       `json:"k"`
}

type searchRequest struct {
	VectorQueries []vectorQuery `json:"vectorQueries"`
	Select        string        `json:"select"`
}

type searchResponse struct {
	Value []struct {
		Content string `json:"content"`
	} `json:"value"`
}

// Upsert writes one (id, content, embedding) record as a single-element
// batch. Success is any of the index API's accepted statuses.
func (c *Client) Upsert(ctx context.Context, id, content string, embedding []float32) error {
	payload := upsertRequest{Value: []indexDocument{{
		ID:        id,
		Content:   content,
		Embedding: embedding,
		Action:    "mergeOrUpload",
	}}}
	url := fmt.Sprintf("%s/indexes/%s/docs/index?api-version=%s", c.endpoint, c.index, c.apiVersion)
	status, body, err := c.post(ctx, url, payload)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	}
	return &appErr.ServiceError{Service: "search index", StatusCode: status, Body: body}
}

// Search returns the contents of the topK stored chunks nearest to vector,
// in the ranking order the remote service produced.
func (c *Client) Search(ctx context.Context, vector []float32, topK int) ([]string, error) {
	payload := searchRequest{
		VectorQueries: []vectorQuery{{
			Kind:   "vector",
			Vector: vector,
			Fields: "embedding",
			K:      topK,
		}},
		Select: "content",
	}
	url := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", c.endpoint, c.index, c.apiVersion)
	status, body, err := c.post(ctx, url, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &appErr.ServiceError{Service: "search index", StatusCode: status, Body: body}
	}
	var out searchResponse
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	results := make([]string, 0, len(out.Value))
	for _, item := range out.Value {
		results = append(results, item.Content)
	}
	return results, nil
}

func (c *Client) post(ctx context.Context, url string, payload interface{}) (int, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("marshal search request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", appErr.ClassifyTransport(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("read search response: %w", err)
	}
	return resp.StatusCode, string(body), nil
}
