// Package engine holds adapters for the external diagram renderer.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
)

// maxErrorBody bounds how much of a rejection body ends up in a diagnostic.
const maxErrorBody = 4 << 10

// HTTPEngine renders through a Kroki-compatible server (POST /mermaid/svg).
type HTTPEngine struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPEngine creates a client for the renderer at baseURL.
func NewHTTPEngine(baseURL string, timeout time.Duration) *HTTPEngine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Render posts the diagram source and returns the SVG. A 4xx response means the
// source was rejected and is reported as a *domain.RenderFailure.
func (e *HTTPEngine) Render(ctx context.Context, requestID, text string) (*domain.Graphic, error) {
	url := fmt.Sprintf("%s/mermaid/svg", e.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(text))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "image/svg+xml")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call render engine: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return &domain.Graphic{RequestID: requestID, SVG: string(body)}, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &domain.RenderFailure{RequestID: requestID, Message: diagnostic(body)}
	default:
		return nil, fmt.Errorf("render engine returned status %d: %s", resp.StatusCode, diagnostic(body))
	}
}

// Ping checks that the renderer answers at all.
func (e *HTTPEngine) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("render engine unreachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("render engine unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func diagnostic(body []byte) string {
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "render rejected"
	}
	return msg
}
