package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultPredictTimeout bounds a single batched inference call.
const DefaultPredictTimeout = 120 * time.Second

// HTTPConfig configures an HTTPModel.
type HTTPConfig struct {
	// Name identifies the served model in reports (required).
	Name string

	// BaseURL is the inference server endpoint (required).
	BaseURL string

	// Framework is the framework variant the server hosts.
	// Defaults to FrameworkTransformer.
	Framework Framework

	// Timeout bounds each predict call. Defaults to DefaultPredictTimeout.
	Timeout time.Duration

	// Logger receives request diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// HTTPModel is a Model backed by a local inference server speaking a
// plain JSON protocol: POST {base_url}/predict with a Batch body,
// response is an Output body.
type HTTPModel struct {
	name      string
	baseURL   string
	framework Framework
	http      *http.Client
	logger    *slog.Logger
}

// NewHTTPModel creates a client for a served model.
func NewHTTPModel(cfg HTTPConfig) (*HTTPModel, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("inference server base URL is required")
	}
	if cfg.Framework == "" {
		cfg.Framework = FrameworkTransformer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPredictTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPModel{
		name:      cfg.Name,
		baseURL:   cfg.BaseURL,
		framework: cfg.Framework,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logger.With("component", "http-model", "model", cfg.Name),
	}, nil
}

// Name returns the configured model name.
func (m *HTTPModel) Name() string { return m.name }

// Framework returns the hosted framework variant.
func (m *HTTPModel) Framework() Framework { return m.framework }

// Predict posts the batch to the inference server and decodes the raw
// outputs. Non-2xx responses surface the status and a body snippet.
// A batch carries either tensor inputs (InputIDs) or raw token
// sequences (Tokens); rule-engine servers consume only the latter.
func (m *HTTPModel) Predict(ctx context.Context, batch *Batch) (*Output, error) {
	if batch == nil || (len(batch.InputIDs) == 0 && len(batch.Tokens) == 0) {
		return nil, fmt.Errorf("predict called with empty batch")
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := m.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference server returned %d: %s", resp.StatusCode, string(snippet))
	}

	var out Output
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}

	size := len(batch.InputIDs)
	if size == 0 {
		size = len(batch.Tokens)
	}
	m.logger.Debug("predict call finished",
		"batch_size", size,
		"duration", time.Since(start))

	return &out, nil
}
