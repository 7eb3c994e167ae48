package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/models"
	"checkcheck-api/pkg/logger"
)

const (
	analyzeSMSPath   = "/api/analyze"
	analyzeEmailPath = "/api/analyze-email"

	// The upstream rejects empty subject/body values
	defaultEmailSubject = "No Subject"
	defaultEmailBody    = "No Content"

	maxUpstreamErrorBody = 4 << 10
)

var (
	// ErrUpstreamUnavailable covers transport failures and 5xx responses
	ErrUpstreamUnavailable = errors.New("analysis service unavailable")
	// ErrAnalysisDisabled is returned when no upstream is configured
	ErrAnalysisDisabled = errors.New("remote analysis disabled")
)

// UpstreamError is a request the analysis service answered with an error message
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analysis service rejected request (status %d): %s", e.StatusCode, e.Message)
}

// AnalysisClient calls the upstream anti-phishing analysis API
type AnalysisClient struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

// NewAnalysisClient creates a client. It returns nil when analysis is
// disabled or no base URL is configured.
func NewAnalysisClient(cfg config.AnalysisConfig, log *logger.Logger) *AnalysisClient {
	if !cfg.Enabled || cfg.BaseURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &AnalysisClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithComponent("analysis-client"),
	}
}

// AnalyzeSMS requests the remote verdict for a sender number and link
func (c *AnalysisClient) AnalyzeSMS(ctx context.Context, req models.SMSAnalysisRequest) (*models.SMSAnalysisResponse, error) {
	if c == nil {
		return nil, ErrAnalysisDisabled
	}

	var resp models.SMSAnalysisResponse
	status, err := c.post(ctx, analyzeSMSPath, req, &resp)
	if err != nil {
		return nil, err
	}
	if err := checkUpstreamStatus(status, resp.Error); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AnalyzeEmail requests the remote verdict for an e-mail. Empty subject and
// body are replaced with placeholders before sending.
func (c *AnalysisClient) AnalyzeEmail(ctx context.Context, req models.EmailAnalysisRequest) (*models.EmailAnalysisResponse, error) {
	if c == nil {
		return nil, ErrAnalysisDisabled
	}

	req = NormalizeEmailRequest(req)

	var resp models.EmailAnalysisResponse
	status, err := c.post(ctx, analyzeEmailPath, req, &resp)
	if err != nil {
		return nil, err
	}
	if err := checkUpstreamStatus(status, resp.Error); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NormalizeEmailRequest trims the subject and body and substitutes placeholders
// for empty values
func NormalizeEmailRequest(req models.EmailAnalysisRequest) models.EmailAnalysisRequest {
	req.FromEmail = strings.TrimSpace(req.FromEmail)
	req.FromName = strings.TrimSpace(req.FromName)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Body = strings.TrimSpace(req.Body)
	if req.Subject == "" {
		req.Subject = defaultEmailSubject
	}
	if req.Body == "" {
		req.Body = defaultEmailBody
	}
	return req
}

// checkUpstreamStatus turns an error field or a non-200 status into an *UpstreamError
func checkUpstreamStatus(status int, message string) error {
	if message == "" && status == http.StatusOK {
		return nil
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &UpstreamError{StatusCode: status, Message: message}
}

func (c *AnalysisClient) post(ctx context.Context, path string, body, dest any) (int, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("analysis request completed")

	if resp.StatusCode >= http.StatusInternalServerError {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamErrorBody))
		return resp.StatusCode, fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, &UpstreamError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}

	return resp.StatusCode, nil
}
