// Package moderation calls the external content-safety classifier.
//
// The gate is fail-closed: any failure to obtain a clear verdict counts as
// unsafe.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultURL is the classifier endpoint used when none is configured.
const DefaultURL = "https://spam.dw-dengwei.workers.dev"

// DefaultTimeout bounds a single classification call.
const DefaultTimeout = 5 * time.Second

// Gate decides whether a text value is unsafe.
type Gate interface {
	IsUnsafe(ctx context.Context, text string) bool
}

// HTTPGate posts {"text": ...} to a classifier and reads {"sensitive": bool}.
type HTTPGate struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewHTTPGate(url string, logger *zap.Logger) *HTTPGate {
	if url == "" {
		url = DefaultURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPGate{
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
		logger: logger,
	}
}

type verdict struct {
	Sensitive *bool `json:"sensitive"`
	// Unsafe is the older response key; either one is accepted.
	Unsafe *bool `json:"unsafe"`
}

func (g *HTTPGate) IsUnsafe(ctx context.Context, text string) bool {
	unsafe, err := g.classify(ctx, text)
	if err != nil {
		g.logger.Warn("moderation failed, treating text as unsafe", zap.Error(err))
		return true
	}
	return unsafe
}

func (g *HTTPGate) classify(ctx context.Context, text string) (bool, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return true, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return true, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return true, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var v verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return true, fmt.Errorf("failed to decode response: %w", err)
	}

	switch {
	case v.Sensitive != nil:
		return *v.Sensitive, nil
	case v.Unsafe != nil:
		return *v.Unsafe, nil
	}
	return true, fmt.Errorf("response carries no verdict")
}
