package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"checkcheck-api/internal/domain/models"
	"checkcheck-api/pkg/logger"
)

type fakeRemote struct {
	calls atomic.Int32
	resp  *models.SMSAnalysisResponse
	err   error
}

func (f *fakeRemote) AnalyzeSMS(_ context.Context, _ models.SMSAnalysisRequest) (*models.SMSAnalysisResponse, error) {
	f.calls.Add(1)
	return f.resp, f.err
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if !ok {
		return errors.New("cache miss")
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	results []*models.SmishingCheckResult
}

func (p *recordingPublisher) PublishSmishingDetected(_ context.Context, r *models.SmishingCheckResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, r)
	return nil
}

func newTestSmishingService(cfg SmishingServiceConfig) *SmishingService {
	cfg.HomeRegion = "KR"
	return NewSmishingService(NewHeuristicEvaluator(DefaultHeuristicRules()), cfg, logger.NewNop())
}

func TestSmishingCheckLocalOnly(t *testing.T) {
	t.Parallel()

	svc := newTestSmishingService(SmishingServiceConfig{})
	got := svc.Check(context.Background(), models.HeuristicInput{URL: "http://bit.ly/abc"})

	if got.Source != models.VerdictSourceLocal {
		t.Errorf("Source = %q, want %q", got.Source, models.VerdictSourceLocal)
	}
	if got.Verdict != models.HeuristicVerdictSuspicious {
		t.Errorf("Verdict = %q, want suspicious", got.Verdict)
	}
	if got.Remote != nil {
		t.Errorf("Remote = %+v, want nil", got.Remote)
	}
}

func TestSmishingCheckRemoteFallback(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{err: fmt.Errorf("%w: status 503", ErrUpstreamUnavailable)}
	svc := newTestSmishingService(SmishingServiceConfig{Remote: remote})

	got := svc.Check(context.Background(), models.HeuristicInput{PhoneNumber: "+1-416-555-0100"})

	if got.Source != models.VerdictSourceLocalFallback {
		t.Errorf("Source = %q, want %q", got.Source, models.VerdictSourceLocalFallback)
	}
	if got.RemoteError == "" {
		t.Error("RemoteError is empty")
	}
	if got.Verdict != models.HeuristicVerdictSuspicious {
		t.Errorf("Verdict = %q, want local verdict suspicious", got.Verdict)
	}
	if got.Phone == nil || got.Phone.CountryCode != 1 {
		t.Errorf("Phone = %+v, want country code 1", got.Phone)
	}
}

func TestSmishingCheckDisabledRemoteIsLocal(t *testing.T) {
	t.Parallel()

	var client *AnalysisClient
	svc := newTestSmishingService(SmishingServiceConfig{Remote: client})

	got := svc.Check(context.Background(), models.HeuristicInput{URL: "https://example.com"})
	if got.Source != models.VerdictSourceLocal {
		t.Errorf("Source = %q, want %q", got.Source, models.VerdictSourceLocal)
	}
	if got.RemoteError != "" {
		t.Errorf("RemoteError = %q, want empty", got.RemoteError)
	}
}

func TestSmishingCheckRemoteIsCached(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{resp: &models.SMSAnalysisResponse{
		URLSummary: &models.URLSummary{Verdict: "Dangerous", Reason: "known phishing"},
	}}
	svc := newTestSmishingService(SmishingServiceConfig{
		Remote:   remote,
		Cache:    newMemoryCache(),
		CacheTTL: time.Minute,
	})

	in := models.HeuristicInput{URL: "https://example.com/login"}

	first := svc.Check(context.Background(), in)
	if first.Source != models.VerdictSourceRemote || first.Cached {
		t.Errorf("first: Source = %q Cached = %v, want remote uncached", first.Source, first.Cached)
	}
	if first.RemoteSummary == "" {
		t.Error("first: RemoteSummary is empty")
	}
	// the local verdict stays authoritative
	if first.Verdict != models.HeuristicVerdictSafe {
		t.Errorf("first: Verdict = %q, want safe", first.Verdict)
	}

	second := svc.Check(context.Background(), in)
	if !second.Cached {
		t.Error("second: Cached = false, want true")
	}
	if second.Remote == nil || second.Remote.URLSummary.Verdict != "Dangerous" {
		t.Errorf("second: Remote = %+v", second.Remote)
	}
	if n := remote.calls.Load(); n != 1 {
		t.Errorf("remote calls = %d, want 1", n)
	}
}

func TestSmishingCheckEmptyInputSkipsRemote(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{resp: &models.SMSAnalysisResponse{}}
	svc := newTestSmishingService(SmishingServiceConfig{Remote: remote})

	got := svc.Check(context.Background(), models.HeuristicInput{})
	if got.Verdict != models.HeuristicVerdictInvalid {
		t.Errorf("Verdict = %q, want invalid", got.Verdict)
	}
	if n := remote.calls.Load(); n != 0 {
		t.Errorf("remote calls = %d, want 0", n)
	}
}

func TestSmishingCheckPublishesDetections(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	svc := newTestSmishingService(SmishingServiceConfig{Publisher: pub})

	svc.Check(context.Background(), models.HeuristicInput{URL: "http://malware.example/app.apk"})
	svc.Check(context.Background(), models.HeuristicInput{URL: "https://example.com"})

	if len(pub.results) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.results))
	}
	if pub.results[0].Verdict != models.HeuristicVerdictSmishing {
		t.Errorf("published verdict = %q", pub.results[0].Verdict)
	}
}

func TestSmishingCheckBatchKeepsOrder(t *testing.T) {
	t.Parallel()

	svc := newTestSmishingService(SmishingServiceConfig{BatchConcurrency: 2})

	inputs := []models.HeuristicInput{
		{URL: "http://malware.example/app.apk"},
		{PhoneNumber: "+15551234567"},
		{},
		{URL: "https://example.com"},
		{PhoneNumber: "15881234"},
	}
	want := []models.HeuristicVerdict{
		models.HeuristicVerdictSmishing,
		models.HeuristicVerdictSuspicious,
		models.HeuristicVerdictInvalid,
		models.HeuristicVerdictSafe,
		models.HeuristicVerdictSafe,
	}

	got, err := svc.CheckBatch(context.Background(), inputs)
	if err != nil {
		t.Fatalf("CheckBatch() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Input != inputs[i] {
			t.Errorf("[%d] Input = %+v, want %+v", i, got[i].Input, inputs[i])
		}
		if got[i].Verdict != want[i] {
			t.Errorf("[%d] Verdict = %q, want %q", i, got[i].Verdict, want[i])
		}
	}
}

func TestSmishingCheckBatchCancelled(t *testing.T) {
	t.Parallel()

	svc := newTestSmishingService(SmishingServiceConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.CheckBatch(ctx, []models.HeuristicInput{{URL: "https://example.com"}}); !errors.Is(err, context.Canceled) {
		t.Errorf("CheckBatch(cancelled) error = %v, want context.Canceled", err)
	}
}
