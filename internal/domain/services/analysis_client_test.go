package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/models"
	"checkcheck-api/pkg/logger"
)

func newTestAnalysisClient(t *testing.T, h http.HandlerFunc) *AnalysisClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAnalysisClient(config.AnalysisConfig{
		Enabled: true,
		BaseURL: srv.URL + "/",
		Timeout: 5 * time.Second,
	}, logger.NewNop())
}

func TestAnalyzeSMS(t *testing.T) {
	t.Parallel()

	client := newTestAnalysisClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analyze" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req models.SMSAnalysisRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.PhoneNumber != "+15551234567" || req.URL != "http://bit.ly/x" {
			http.Error(w, `{"error":"unexpected body"}`, http.StatusBadRequest)
			return
		}
		score := 90.0
		_ = json.NewEncoder(w).Encode(models.SMSAnalysisResponse{
			PhoneSummary: &models.PhoneSummary{
				Verdict: "Dangerous",
				Reason:  "reported",
				Details: &models.PhoneSummaryDetails{FraudScore: &score},
			},
			URLSummary: &models.URLSummary{Verdict: "Safe", Reason: "clean"},
		})
	})

	resp, err := client.AnalyzeSMS(context.Background(), models.SMSAnalysisRequest{
		PhoneNumber: "+15551234567",
		URL:         "http://bit.ly/x",
	})
	if err != nil {
		t.Fatalf("AnalyzeSMS() error = %v", err)
	}
	if resp.PhoneSummary == nil || resp.PhoneSummary.Verdict != "Dangerous" {
		t.Errorf("PhoneSummary = %+v, want Dangerous verdict", resp.PhoneSummary)
	}
	if resp.PhoneSummary.Details == nil || *resp.PhoneSummary.Details.FraudScore != 90 {
		t.Errorf("FraudScore not decoded: %+v", resp.PhoneSummary.Details)
	}
}

func TestAnalyzeSMSFractionalScore(t *testing.T) {
	t.Parallel()

	client := newTestAnalysisClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"phoneSummary":{"verdict":"Suspicious","reason":"reported","details":{"fraud_score":87.5}}}`))
	})

	resp, err := client.AnalyzeSMS(context.Background(), models.SMSAnalysisRequest{PhoneNumber: "+15551234567"})
	if err != nil {
		t.Fatalf("AnalyzeSMS() error = %v", err)
	}
	if d := resp.PhoneSummary.Details; d == nil || d.FraudScore == nil || *d.FraudScore != 87.5 {
		t.Errorf("FraudScore = %+v, want 87.5", resp.PhoneSummary.Details)
	}
}

func TestAnalyzeSMSErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		status       int
		body         string
		wantUnavail  bool
		wantUpstream bool
	}{
		{"server error", http.StatusBadGateway, "bad gateway", true, false},
		{"error field", http.StatusOK, `{"error":"quota exceeded"}`, false, true},
		{"client error with message", http.StatusBadRequest, `{"error":"url required"}`, false, true},
		{"client error without body", http.StatusTooManyRequests, "", false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestAnalysisClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.AnalyzeSMS(context.Background(), models.SMSAnalysisRequest{URL: "http://x"})
			if err == nil {
				t.Fatal("AnalyzeSMS() error = nil")
			}
			if got := errors.Is(err, ErrUpstreamUnavailable); got != tc.wantUnavail {
				t.Errorf("errors.Is(ErrUpstreamUnavailable) = %v, want %v (err: %v)", got, tc.wantUnavail, err)
			}
			var upstream *UpstreamError
			if got := errors.As(err, &upstream); got != tc.wantUpstream {
				t.Errorf("errors.As(*UpstreamError) = %v, want %v (err: %v)", got, tc.wantUpstream, err)
			}
		})
	}
}

func TestAnalyzeEmailNormalisesRequest(t *testing.T) {
	t.Parallel()

	var got models.EmailAnalysisRequest
	client := newTestAnalysisClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analyze-email" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"summary":{"overall":"Suspicious","reasons":["lookalike domain"]}}`))
	})

	resp, err := client.AnalyzeEmail(context.Background(), models.EmailAnalysisRequest{
		FromEmail: " alerts@bank.example ",
		Subject:   "   ",
	})
	if err != nil {
		t.Fatalf("AnalyzeEmail() error = %v", err)
	}

	want := models.EmailAnalysisRequest{
		FromEmail: "alerts@bank.example",
		Subject:   "No Subject",
		Body:      "No Content",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if resp.Summary == nil || resp.Summary.Overall != "Suspicious" {
		t.Errorf("Summary = %+v, want Suspicious", resp.Summary)
	}
}

func TestAnalyzeEmailKeepsUnknownFields(t *testing.T) {
	t.Parallel()

	client := newTestAnalysisClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary":{"overall":"phishing","reasons":["spoofed"]},"links":["http://x.example"],"headers":{"spf":"fail"}}`))
	})

	resp, err := client.AnalyzeEmail(context.Background(), models.EmailAnalysisRequest{FromEmail: "a@b.example"})
	if err != nil {
		t.Fatalf("AnalyzeEmail() error = %v", err)
	}
	if resp.Summary == nil || resp.Summary.Overall != "phishing" {
		t.Fatalf("Summary = %+v, want phishing", resp.Summary)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := map[string]any{
		"summary": map[string]any{"overall": "phishing", "reasons": []any{"spoofed"}},
		"links":   []any{"http://x.example"},
		"headers": map[string]any{"spf": "fail"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("re-encoded response mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeEmailOddSummaryShape(t *testing.T) {
	t.Parallel()

	client := newTestAnalysisClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary":"looks fine"}`))
	})

	resp, err := client.AnalyzeEmail(context.Background(), models.EmailAnalysisRequest{FromEmail: "a@b.example"})
	if err != nil {
		t.Fatalf("AnalyzeEmail() error = %v", err)
	}
	if resp.Summary != nil {
		t.Errorf("Summary = %+v, want nil", resp.Summary)
	}
	if string(resp.Extra["summary"]) != `"looks fine"` {
		t.Errorf("Extra[summary] = %s, want the raw string", resp.Extra["summary"])
	}
}

func TestAnalysisClientDisabled(t *testing.T) {
	t.Parallel()

	if c := NewAnalysisClient(config.AnalysisConfig{Enabled: false, BaseURL: "http://x"}, logger.NewNop()); c != nil {
		t.Fatal("NewAnalysisClient(disabled) != nil")
	}
	if c := NewAnalysisClient(config.AnalysisConfig{Enabled: true}, logger.NewNop()); c != nil {
		t.Fatal("NewAnalysisClient(no base url) != nil")
	}

	var c *AnalysisClient
	if _, err := c.AnalyzeSMS(context.Background(), models.SMSAnalysisRequest{}); !errors.Is(err, ErrAnalysisDisabled) {
		t.Errorf("nil AnalyzeSMS error = %v, want ErrAnalysisDisabled", err)
	}
	if _, err := c.AnalyzeEmail(context.Background(), models.EmailAnalysisRequest{}); !errors.Is(err, ErrAnalysisDisabled) {
		t.Errorf("nil AnalyzeEmail error = %v, want ErrAnalysisDisabled", err)
	}
}
