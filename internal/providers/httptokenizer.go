package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPTokenizerConfig configures an HTTPTokenizer.
type HTTPTokenizerConfig struct {
	// BaseURL is the tokenization server endpoint (required).
	BaseURL string

	// ModelMaxLength caps the encoded window size in tokens (required).
	ModelMaxLength int

	// ClassTokenID is the vocabulary id of the class token.
	ClassTokenID int

	// Timeout bounds each encode call. Defaults to DefaultPredictTimeout.
	Timeout time.Duration
}

// HTTPTokenizer is a Tokenizer backed by a tokenization server:
// POST {base_url}/encode with texts, pairs, and options, response is
// the list of encoded windows.
type HTTPTokenizer struct {
	baseURL        string
	modelMaxLength int
	classTokenID   int
	http           *http.Client
}

// NewHTTPTokenizer creates a client for a served tokenizer.
func NewHTTPTokenizer(cfg HTTPTokenizerConfig) (*HTTPTokenizer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tokenizer base URL is required")
	}
	if cfg.ModelMaxLength <= 0 {
		return nil, fmt.Errorf("tokenizer model max length must be positive")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPredictTimeout
	}
	return &HTTPTokenizer{
		baseURL:        cfg.BaseURL,
		modelMaxLength: cfg.ModelMaxLength,
		classTokenID:   cfg.ClassTokenID,
		http:           &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ModelMaxLength returns the configured window cap.
func (t *HTTPTokenizer) ModelMaxLength() int { return t.modelMaxLength }

// ClassTokenID returns the configured class token id.
func (t *HTTPTokenizer) ClassTokenID() int { return t.classTokenID }

type encodeRequest struct {
	Texts   []string      `json:"texts"`
	Pairs   []string      `json:"pairs,omitempty"`
	Options EncodeOptions `json:"options"`
}

// Encode posts the texts to the tokenization server and decodes the
// returned windows.
func (t *HTTPTokenizer) Encode(ctx context.Context, texts, pairs []string, opts EncodeOptions) (*Encoding, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("encode called with no texts")
	}
	if len(pairs) > 0 && len(pairs) != len(texts) {
		return nil, fmt.Errorf("encode called with %d texts but %d pairs", len(texts), len(pairs))
	}

	body, err := json.Marshal(encodeRequest{Texts: texts, Pairs: pairs, Options: opts})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/encode", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build encode request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tokenizer server returned %d: %s", resp.StatusCode, string(snippet))
	}

	var out Encoding
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode encode response: %w", err)
	}
	return &out, nil
}
