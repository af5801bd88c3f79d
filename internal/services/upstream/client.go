// Package upstream fetches raw wait-time records from the ER backend.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/j-veylop/erwait-dashboard-tui/internal/logger"
	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
)

const (
	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 16 << 20

	// errorBodyExcerpt is how much of an error body is kept in StatusError.
	errorBodyExcerpt = 256

	userAgent = "erwait-dashboard-tui"
)

// Endpoint names used in errors and metrics.
const (
	EndpointPermanence = "permanence"
	EndpointSeverity   = "severity"
)

// Batch is one endpoint's decoded records.
type Batch[T any] struct {
	Records []T
	// Degraded counts values that were missing or unreadable and read as zero.
	Degraded int
}

// Source provides the two record lists consumed by the aggregation pipelines.
type Source interface {
	FetchPermanence(ctx context.Context) (Batch[models.WaitRecord], error)
	FetchSeverity(ctx context.Context) (Batch[models.SeverityRecord], error)
}

// StatusError is returned when the backend answers with a non-200 status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s request failed (status %d)", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed (status %d): %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client fetches records over HTTP.
type Client struct {
	baseURL        string
	permanencePath string
	severityPath   string
	httpClient     *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL, permanencePath, severityPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		permanencePath: ensureLeadingSlash(permanencePath),
		severityPath:   ensureLeadingSlash(severityPath),
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// FetchPermanence retrieves the wait duration of every case.
func (c *Client) FetchPermanence(ctx context.Context) (Batch[models.WaitRecord], error) {
	raw, err := c.fetch(ctx, EndpointPermanence, c.permanencePath)
	if err != nil {
		return Batch[models.WaitRecord]{}, err
	}

	records, degraded := toWaitRecords(raw)
	logDegraded(EndpointPermanence, degraded, len(records))
	return Batch[models.WaitRecord]{Records: records, Degraded: degraded}, nil
}

// FetchSeverity retrieves the severity category and wait duration of every case.
func (c *Client) FetchSeverity(ctx context.Context) (Batch[models.SeverityRecord], error) {
	raw, err := c.fetch(ctx, EndpointSeverity, c.severityPath)
	if err != nil {
		return Batch[models.SeverityRecord]{}, err
	}

	records, degraded := toSeverityRecords(raw)
	logDegraded(EndpointSeverity, degraded, len(records))
	return Batch[models.SeverityRecord]{Records: records, Degraded: degraded}, nil
}

func (c *Client) fetch(ctx context.Context, endpoint, path string) ([]rawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "endpoint", endpoint, "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: bodyExcerpt(body)}
	}

	raw, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return raw, nil
}

// bodyExcerpt trims an error body to errorBodyExcerpt bytes without splitting a rune.
func bodyExcerpt(body []byte) string {
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) <= errorBodyExcerpt {
		return excerpt
	}
	cut := errorBodyExcerpt
	for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
		cut--
	}
	return excerpt[:cut] + "..."
}

func logDegraded(endpoint string, degraded, total int) {
	if degraded == 0 {
		logger.Debug("records fetched", "endpoint", endpoint, "count", total)
		return
	}
	logger.Warn("unreadable wait durations treated as zero",
		"endpoint", endpoint, "degraded", degraded, "count", total)
}

func ensureLeadingSlash(path string) string {
	if path == "" || strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
