// Package deploy implements the client side of the remote knowledge-storage
// service: chunked bulk upload, health readback and search. The service
// itself is a black box; only HTTP status codes are interpreted.
package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"factkb/models"
)

// Wire-boundary field limits. Applied only when building the upload payload;
// in-memory entries are never truncated.
const (
	maxQuestionLen = 500
	maxAnswerLen   = 1500
	maxTagsLen     = 200
)

// Defaults for the batcher.
const (
	DefaultChunkSize  = 10
	DefaultTimeout    = 30 * time.Second
	DefaultChunkDelay = 500 * time.Millisecond
)

// Config configures the service client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	ChunkSize  int
	ChunkDelay time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.ChunkSize <= 0 {
		out.ChunkSize = DefaultChunkSize
	}
	// Zero delay means no rate limiting; the config layer supplies the
	// default for production runs.
	if out.ChunkDelay < 0 {
		out.ChunkDelay = 0
	}
	return out
}

// Result reports the outcome of a chunked deployment. Uploaded counts only
// entries in chunks whose upload returned success.
type Result struct {
	Chunks       int `json:"chunks"`
	FailedChunks int `json:"failed_chunks"`
	Uploaded     int `json:"uploaded"`
	Attempted    int `json:"attempted"`
}

// Client talks to the remote knowledge service.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  *log.Logger
	metrics *Metrics
}

func NewClient(cfg Config, metrics *Metrics, logger *log.Logger) *Client {
	cfg = (&cfg).withDefaults()
	if logger == nil {
		logger = log.New(log.Writer(), "[DEPLOY] ", log.LstdFlags)
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

type uploadEntry struct {
	ID         int     `json:"id"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Category   string  `json:"category"`
	State      *string `json:"state"`
	Tags       string  `json:"tags"`
	Priority   string  `json:"priority"`
	Difficulty string  `json:"difficulty"`
}

type uploadRequest struct {
	DataType      string        `json:"data_type"`
	Data          []uploadEntry `json:"data"`
	ClearExisting bool          `json:"clear_existing"`
}

// Deploy uploads entries in fixed-size chunks, sequentially, with a small
// delay between chunks for client-side rate limiting. A failed chunk is
// logged and skipped, never retried, and never aborts the loop. When
// clearExisting is set it applies to the first chunk only.
func (c *Client) Deploy(ctx context.Context, entries []*models.KnowledgeEntry, clearExisting bool) Result {
	result := Result{Attempted: len(entries)}
	for start := 0; start < len(entries); start += c.cfg.ChunkSize {
		end := start + c.cfg.ChunkSize
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[start:end]

		if result.Chunks > 0 && c.cfg.ChunkDelay > 0 {
			select {
			case <-ctx.Done():
				c.logger.Printf("WARN deploy cancelled after %d chunks: %v", result.Chunks, ctx.Err())
				return result
			case <-time.After(c.cfg.ChunkDelay):
			}
		}

		result.Chunks++
		clearFlag := clearExisting && result.Chunks == 1
		if err := c.uploadChunk(ctx, chunk, clearFlag); err != nil {
			c.logger.Printf("WARN chunk %d (%d entries) failed: %v", result.Chunks, len(chunk), err)
			result.FailedChunks++
			c.metrics.chunkFailed()
			continue
		}
		result.Uploaded += len(chunk)
		c.metrics.uploaded(len(chunk))
	}
	c.logger.Printf("deploy finished: %d/%d entries in %d chunks (%d failed)",
		result.Uploaded, result.Attempted, result.Chunks, result.FailedChunks)
	return result
}

func (c *Client) uploadChunk(ctx context.Context, chunk []*models.KnowledgeEntry, clearExisting bool) error {
	payload := uploadRequest{
		DataType:      "knowledge_base",
		Data:          make([]uploadEntry, 0, len(chunk)),
		ClearExisting: clearExisting,
	}
	for _, e := range chunk {
		payload.Data = append(payload.Data, toWire(e))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/upload-data", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload chunk: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload chunk: unexpected status %s", resp.Status)
	}
	return nil
}

// Health returns the entry count reported by the service.
func (c *Client) Health(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("health check: unexpected status %s", resp.Status)
	}
	var out struct {
		Metrics struct {
			EnhancedRetrieverEntries int `json:"enhanced_retriever_entries"`
		} `json:"metrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode health response: %w", err)
	}
	return out.Metrics.EnhancedRetrieverEntries, nil
}

// Search queries the service's retrieval endpoint.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.KnowledgeEntry, error) {
	body, err := json.Marshal(map[string]interface{}{"query": query, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/knowledge/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: unexpected status %s", resp.Status)
	}
	var out struct {
		Results []models.KnowledgeEntry `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return out.Results, nil
}

// toWire truncates fields to the service's limits and joins tags.
func toWire(e *models.KnowledgeEntry) uploadEntry {
	var state *string
	if e.State != "" {
		s := e.State
		state = &s
	}
	return uploadEntry{
		ID:         e.ID,
		Question:   truncate(e.Question, maxQuestionLen),
		Answer:     truncate(e.Answer, maxAnswerLen),
		Category:   e.Category,
		State:      state,
		Tags:       truncate(strings.Join(e.Tags, ","), maxTagsLen),
		Priority:   string(e.Priority),
		Difficulty: string(e.Difficulty),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
