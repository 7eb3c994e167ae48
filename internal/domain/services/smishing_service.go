package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"checkcheck-api/internal/domain/models"
	"checkcheck-api/pkg/logger"
)

// KeyVerdictPrefix namespaces cached upstream verdicts
const KeyVerdictPrefix = "cache:verdict:"

const defaultBatchConcurrency = 4

// VerdictCache stores upstream verdicts between identical requests
type VerdictCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RemoteSMSAnalyzer is the upstream SMS/URL analysis call
type RemoteSMSAnalyzer interface {
	AnalyzeSMS(ctx context.Context, req models.SMSAnalysisRequest) (*models.SMSAnalysisResponse, error)
}

// SmishingEventPublisher is notified when the local pre-check flags smishing
type SmishingEventPublisher interface {
	PublishSmishingDetected(ctx context.Context, result *models.SmishingCheckResult) error
}

// SmishingServiceConfig holds the optional collaborators of SmishingService
type SmishingServiceConfig struct {
	Remote           RemoteSMSAnalyzer
	Cache            VerdictCache
	CacheTTL         time.Duration
	Publisher        SmishingEventPublisher
	HomeRegion       string
	BatchConcurrency int
}

// SmishingService runs the local heuristic pre-check on every request and,
// when an upstream is configured, attaches the remote verdict. A failed
// remote call never fails the check: the local report becomes the fallback.
type SmishingService struct {
	evaluator   *HeuristicEvaluator
	remote      RemoteSMSAnalyzer
	cache       VerdictCache
	cacheTTL    time.Duration
	publisher   SmishingEventPublisher
	homeRegion  string
	concurrency int
	logger      *logger.Logger
}

// NewSmishingService creates the service
func NewSmishingService(evaluator *HeuristicEvaluator, cfg SmishingServiceConfig, log *logger.Logger) *SmishingService {
	concurrency := cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	return &SmishingService{
		evaluator:   evaluator,
		remote:      cfg.Remote,
		cache:       cfg.Cache,
		cacheTTL:    cfg.CacheTTL,
		publisher:   cfg.Publisher,
		homeRegion:  cfg.HomeRegion,
		concurrency: concurrency,
		logger:      log.WithComponent("smishing-service"),
	}
}

// Evaluate runs only the local rule table
func (s *SmishingService) Evaluate(input models.HeuristicInput) models.HeuristicReport {
	return s.evaluator.Evaluate(input)
}

// Check runs the local pre-check and the remote analysis
func (s *SmishingService) Check(ctx context.Context, input models.HeuristicInput) *models.SmishingCheckResult {
	local := s.evaluator.Evaluate(input)
	result := &models.SmishingCheckResult{
		Input:   input,
		Source:  models.VerdictSourceLocal,
		Verdict: local.Verdict(),
		Local:   local,
		Phone:   DescribePhone(input.PhoneNumber, s.homeRegion),
	}

	if !input.IsEmpty() && s.remote != nil {
		s.attachRemote(ctx, input, result)
	}

	if result.Verdict == models.HeuristicVerdictSmishing && s.publisher != nil {
		if err := s.publisher.PublishSmishingDetected(ctx, result); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish smishing event")
		}
	}

	return result
}

func (s *SmishingService) attachRemote(ctx context.Context, input models.HeuristicInput, result *models.SmishingCheckResult) {
	key := KeyVerdictPrefix + verdictCacheKey(input)

	if s.cache != nil {
		var cached models.SMSAnalysisResponse
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			result.Remote = &cached
			result.RemoteSummary = FormatSMSAnalysis(&cached)
			result.Source = models.VerdictSourceRemote
			result.Cached = true
			return
		}
	}

	resp, err := s.remote.AnalyzeSMS(ctx, models.SMSAnalysisRequest{
		URL:         input.URL,
		PhoneNumber: input.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, ErrAnalysisDisabled) {
			return
		}
		s.logger.Warn().Err(err).Msg("remote analysis failed, falling back to local verdict")
		result.Source = models.VerdictSourceLocalFallback
		result.RemoteError = err.Error()
		return
	}

	result.Remote = resp
	result.RemoteSummary = FormatSMSAnalysis(resp)
	result.Source = models.VerdictSourceRemote

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, key, resp, s.cacheTTL); err != nil {
			s.logger.Debug().Err(err).Msg("failed to cache remote verdict")
		}
	}
}

// CheckBatch checks every input with bounded concurrency. Results keep the
// input order. The only error is context cancellation.
func (s *SmishingService) CheckBatch(ctx context.Context, inputs []models.HeuristicInput) ([]*models.SmishingCheckResult, error) {
	results := make([]*models.SmishingCheckResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.Check(gctx, in)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func verdictCacheKey(input models.HeuristicInput) string {
	h := sha256.New()
	h.Write([]byte(input.PhoneNumber))
	h.Write([]byte{0})
	h.Write([]byte(input.URL))
	return hex.EncodeToString(h.Sum(nil))
}
