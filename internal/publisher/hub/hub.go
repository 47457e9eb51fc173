// Package hub publishes dataset splits to a remote dataset hub over HTTP.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/alexandrainst/lrytas-scraper/internal/publisher"
	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
)

// Config controls the hub client.
type Config struct {
	// Endpoint is the hub base URL.
	Endpoint string
	// Token is the bearer token, usually sourced from the environment.
	Token string
	// Timeout bounds one publish request.
	Timeout time.Duration
}

// Client implements publisher.Publisher against the hub's dataset API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

type publishRequest struct {
	Private bool             `json:"private"`
	RunID   string           `json:"run_id,omitempty"`
	Records []scraper.Sample `json:"records"`
}

type publishResponse struct {
	ID string `json:"id"`
}

// New builds a hub client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("hub endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// Publish uploads the dataset as a single named split. The upload is one
// request; a failure is returned to the caller and never retried here.
func (c *Client) Publish(ctx context.Context, ds publisher.Dataset) (string, error) {
	if ds.Repo == "" || ds.Split == "" {
		return "", fmt.Errorf("dataset repo and split are required")
	}

	body, err := json.Marshal(publishRequest{
		Private: ds.Private,
		RunID:   ds.RunID,
		Records: ds.Records,
	})
	if err != nil {
		return "", fmt.Errorf("marshal dataset: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/datasets/%s/%s",
		c.cfg.Endpoint, ds.Repo, url.PathEscape(ds.Split))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	c.logger.Info("publishing dataset",
		zap.String("repo", ds.Repo),
		zap.String("split", ds.Split),
		zap.Int("records", len(ds.Records)),
		zap.Bool("private", ds.Private),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish dataset: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort drain

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("hub rejected publish: status %d: %s", resp.StatusCode, snippet)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read publish response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// Some hub deployments reply with an empty body on success.
		return "", nil
	}
	var out publishResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode publish response: %w", err)
	}
	return out.ID, nil
}
