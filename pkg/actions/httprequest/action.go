// Package httprequest provides an HTTP request action handler with optional
// retry behavior.
package httprequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/template"
)

const defaultTimeoutSeconds = 30

var (
	// ErrURLRequired is returned when the configuration carries no url.
	ErrURLRequired = errors.New("missing or invalid 'url' in configuration")
	// ErrServerError is returned when the server answers with a 5xx status.
	ErrServerError = errors.New("server error during HTTP request")
)

// RetryConfig defines retry behavior for failed requests.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

type Action struct {
	id      string
	url     string
	method  string
	headers map[string]string
	body    string
	timeout time.Duration
	retry   RetryConfig
}

func NewAction(id string, config map[string]any) (*Action, error) {
	url, ok := config["url"].(string)
	if !ok || url == "" {
		return nil, ErrURLRequired
	}

	method, _ := config["method"].(string)
	if method == "" {
		method = http.MethodGet
	}

	body, _ := config["body"].(string)

	headers := make(map[string]string)

	if headersConfig, ok := config["headers"].(map[string]any); ok {
		for k, v := range headersConfig {
			if strVal, ok := v.(string); ok {
				headers[k] = strVal
			}
		}
	}

	retry := RetryConfig{Attempts: 1}

	if retryConfig, ok := config["retry"].(map[string]any); ok {
		if attempts, ok := retryConfig["attempts"].(float64); ok && attempts >= 1 {
			retry.Attempts = int(attempts)
		}

		if delay, ok := retryConfig["delay"].(float64); ok {
			retry.Delay = time.Duration(delay) * time.Millisecond
		}
	}

	timeout := defaultTimeoutSeconds * time.Second
	if seconds, ok := config["timeout"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	return &Action{
		id:      id,
		url:     url,
		method:  strings.ToUpper(method),
		headers: headers,
		body:    body,
		timeout: timeout,
		retry:   retry,
	}, nil
}

// Execute performs the HTTP request and returns the decoded response.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("module", "http_request_action", "node_id", a.id)

	var (
		lastErr error
		resp    *http.Response
	)

	for attempt := 1; attempt <= a.retry.Attempts; attempt++ {
		if attempt > 1 {
			logger.InfoContext(ctx, "Retrying HTTP request", "attempt", attempt, "of", a.retry.Attempts)
			time.Sleep(a.retry.Delay)
		}

		req, err := a.buildRequest(ctx, executionCtx)
		if err != nil {
			return nil, err
		}

		client := &http.Client{Timeout: a.timeout}

		resp, err = client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request failed: %w", err)

			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError && attempt < a.retry.Attempts {
			if err := resp.Body.Close(); err != nil {
				logger.ErrorContext(ctx, "failed to close response body", "error", err)
			}

			lastErr = fmt.Errorf("status %d: %w", resp.StatusCode, ErrServerError)

			continue
		}

		break
	}

	if resp == nil {
		return nil, fmt.Errorf("all retry attempts failed, last error: %w", lastErr)
	}

	return a.processResponse(resp)
}

func (a *Action) buildRequest(ctx context.Context, executionCtx models.ExecutionContext) (*http.Request, error) {
	url, err := a.renderString(a.url, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render url template: %w", err)
	}

	var bodyReader io.Reader = strings.NewReader("")

	if a.body != "" {
		body, err := template.RenderWithContext(a.body, &executionCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to render body template: %w", err)
		}

		switch v := body.(type) {
		case string:
			bodyReader = strings.NewReader(v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}

			bodyReader = strings.NewReader(string(encoded))
		}
	}

	req, err := http.NewRequestWithContext(ctx, a.method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	for key, value := range a.headers {
		rendered, err := a.renderString(value, &executionCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to render header '%s': %w", key, err)
		}

		req.Header.Set(key, rendered)
	}

	return req, nil
}

func (a *Action) renderString(input string, executionCtx *models.ExecutionContext) (string, error) {
	rendered, err := template.RenderWithContext(input, executionCtx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%v", rendered), nil
}

func (a *Action) processResponse(resp *http.Response) (any, error) {
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var body any = string(raw)

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		body = decoded
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"headers":     flattenHeaders(resp.Header),
		"body":        body,
	}, nil
}

func flattenHeaders(header http.Header) map[string]string {
	flat := make(map[string]string, len(header))
	for key := range header {
		flat[key] = header.Get(key)
	}

	return flat
}
