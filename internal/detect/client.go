package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Service is the boundary to the external face-detection service.
// Implementations must be safe for use from concurrent analysis runs.
type Service interface {
	// SubmitDetectionJob starts asynchronous face detection for a source
	// locator (file path, object-store URL, ...) and returns the job id.
	SubmitDetectionJob(ctx context.Context, source string) (JobID, error)

	// GetJobStatus fetches the current state of a job. Detection events are
	// populated only once the job has succeeded.
	GetJobStatus(ctx context.Context, id JobID) (*JobStatus, error)
}

// HTTPClient talks JSON to a face-detection HTTP API
type HTTPClient struct {
	logger   zerolog.Logger
	client   *http.Client
	endpoint string
	apiKey   string
}

// NewHTTPClient creates a client for the given service endpoint
func NewHTTPClient(logger zerolog.Logger, endpoint, apiKey string) (*HTTPClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("detection endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid detection endpoint %q: %w", endpoint, err)
	}

	return &HTTPClient{
		logger:   logger.With().Str("component", "detect-client").Logger(),
		client:   &http.Client{Timeout: 30 * time.Second},
		endpoint: endpoint,
		apiKey:   apiKey,
	}, nil
}

type submitRequest struct {
	Source string `json:"source"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

// SubmitDetectionJob implements Service
func (c *HTTPClient) SubmitDetectionJob(ctx context.Context, source string) (JobID, error) {
	body, _ := json.Marshal(submitRequest{Source: source})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/v1/detection/jobs", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit detection job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("submit detection job: %s: %s", resp.Status, string(msg))
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("submit decode: %w", err)
	}
	if out.JobID == "" {
		return "", ErrNoJobID
	}

	c.logger.Debug().Str("job_id", out.JobID).Str("source", source).Msg("detection job submitted")
	return JobID(out.JobID), nil
}

// GetJobStatus implements Service
func (c *HTTPClient) GetJobStatus(ctx context.Context, id JobID) (*JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"/v1/detection/jobs/"+url.PathEscape(string(id)), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get job status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get job status: %s: %s", resp.Status, string(msg))
	}

	var status JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("status decode: %w", err)
	}
	return &status, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
}
