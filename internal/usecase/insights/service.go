package insights

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/callsight-io/callsight/errors"
	"github.com/callsight-io/callsight/internal/domain/entities"
	"github.com/callsight-io/callsight/internal/domain/repositories"
	"github.com/callsight-io/callsight/internal/infrastructure/cache"
	"github.com/callsight-io/callsight/internal/usecase/aggregate"
	"github.com/callsight-io/callsight/internal/usecase/escalation"
)

// How many trailing utterances feed the live call-context view.
const recentWindow = 20

// ReadMeta tells the consumer whether it got fresh or explicitly
// stale data, and how old it is. Consumers never see silently stale
// values.
type ReadMeta struct {
	Freshness  cache.Freshness `json:"freshness"`
	AgeSeconds float64         `json:"age_seconds"`
}

// Service defines the read API consumed by agent-assist and
// supervisor surfaces. All reads go through the read cache with the
// per-entity TTLs from configuration.
type Service interface {
	GetCallContext(ctx context.Context, callID string) (*entities.CallContext, ReadMeta, error)
	CheckCompliance(ctx context.Context, callID string) ([]entities.ComplianceViolation, ReadMeta, error)
	IdentifyEscalation(ctx context.Context, callID string) (*entities.EscalationAssessment, ReadMeta, error)
	IdentifyEscalationBatch(ctx context.Context, callIDs []string) (map[string]*entities.EscalationAssessment, error)
	GetAgentPerformance(ctx context.Context, agentID string, from, to time.Time) ([]*entities.AgentDayPerformance, ReadMeta, error)
	GetDailyStatistics(ctx context.Context, from, to time.Time) ([]*entities.DayStatistics, ReadMeta, error)
}

type service struct {
	utterances repositories.UtteranceRepository
	rollups    repositories.RollupRepository
	scorer     *escalation.Scorer
	readCache  *cache.ReadCache
	logger     *zap.Logger
}

// NewService constructs a new insights service
func NewService(
	utterances repositories.UtteranceRepository,
	rollups repositories.RollupRepository,
	scorer *escalation.Scorer,
	readCache *cache.ReadCache,
	logger *zap.Logger,
) Service {
	return &service{
		utterances: utterances,
		rollups:    rollups,
		scorer:     scorer,
		readCache:  readCache,
		logger:     logger,
	}
}

func (s *service) GetCallContext(ctx context.Context, callID string) (*entities.CallContext, ReadMeta, error) {
	var out entities.CallContext
	freshness, age, err := s.readCache.Get(ctx, cache.EntityCallContext, callID, &out, func(rctx context.Context) (interface{}, error) {
		return s.buildCallContext(rctx, callID)
	})
	meta, rerr := finishRead("call context", freshness, age, err)
	if rerr != nil {
		return nil, meta, rerr
	}
	return &out, meta, nil
}

func (s *service) buildCallContext(ctx context.Context, callID string) (*entities.CallContext, error) {
	recent, err := s.utterances.ListRecentByCall(ctx, callID, recentWindow)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, apperrors.ErrCallNotFound(callID)
	}

	// The majority/tie rules are the call aggregator's; reuse them on
	// the recent window instead of re-deriving anything here.
	summary := aggregate.BuildCallSummary(callID, recent)

	callCtx := &entities.CallContext{
		CallID:    callID,
		Sentiment: summary.OverallSentiment,
	}

	seen := make(map[string]struct{})
	for _, u := range recent {
		callCtx.RecentTranscript = append(callCtx.RecentTranscript, entities.TranscriptLine{
			Speaker:   u.Speaker,
			Text:      u.Text,
			Timestamp: u.Timestamp,
		})
		if _, ok := seen[u.IntentCategory]; !ok {
			seen[u.IntentCategory] = struct{}{}
			callCtx.Intents = append(callCtx.Intents, u.IntentCategory)
		}
		if u.MemberName != "" {
			callCtx.MemberName = u.MemberName
			callCtx.Balance = u.Balance
		}
	}

	violations, err := s.utterances.ListViolationsByCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	callCtx.ComplianceIssues = toViolations(violations)

	return callCtx, nil
}

func (s *service) CheckCompliance(ctx context.Context, callID string) ([]entities.ComplianceViolation, ReadMeta, error) {
	var out []entities.ComplianceViolation
	freshness, age, err := s.readCache.Get(ctx, cache.EntityCompliance, callID, &out, func(rctx context.Context) (interface{}, error) {
		violations, err := s.utterances.ListViolationsByCall(rctx, callID)
		if err != nil {
			return nil, err
		}
		return toViolations(violations), nil
	})
	meta, rerr := finishRead("compliance report", freshness, age, err)
	if rerr != nil {
		return nil, meta, rerr
	}
	return out, meta, nil
}

func (s *service) IdentifyEscalation(ctx context.Context, callID string) (*entities.EscalationAssessment, ReadMeta, error) {
	var out entities.EscalationAssessment
	freshness, age, err := s.readCache.Get(ctx, cache.EntityEscalation, callID, &out, func(rctx context.Context) (interface{}, error) {
		utterances, err := s.utterances.ListByCall(rctx, callID)
		if err != nil {
			return nil, err
		}
		if len(utterances) == 0 {
			return nil, apperrors.ErrCallNotFound(callID)
		}
		return s.scorer.Score(callID, utterances, time.Now()), nil
	})
	meta, rerr := finishRead("escalation assessment", freshness, age, err)
	if rerr != nil {
		return nil, meta, rerr
	}
	return &out, meta, nil
}

// IdentifyEscalationBatch evaluates many calls and returns only those
// where escalation is recommended. Per-call failures are logged and
// skipped so one broken call cannot empty the supervisor view.
func (s *service) IdentifyEscalationBatch(ctx context.Context, callIDs []string) (map[string]*entities.EscalationAssessment, error) {
	result := make(map[string]*entities.EscalationAssessment)
	for _, callID := range callIDs {
		assessment, _, err := s.IdentifyEscalation(ctx, callID)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("escalation assessment failed in batch",
					zap.String("call_id", callID),
					zap.Error(err),
				)
			}
			continue
		}
		if assessment.EscalationRecommended {
			result[callID] = assessment
		}
	}
	return result, nil
}

func (s *service) GetAgentPerformance(ctx context.Context, agentID string, from, to time.Time) ([]*entities.AgentDayPerformance, ReadMeta, error) {
	var out []*entities.AgentDayPerformance
	key := fmt.Sprintf("agent:%s:%s:%s", agentID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	freshness, age, err := s.readCache.Get(ctx, cache.EntityRollup, key, &out, func(rctx context.Context) (interface{}, error) {
		return s.rollups.ListAgentDays(rctx, agentID, from, to)
	})
	meta, rerr := finishRead("agent performance", freshness, age, err)
	if rerr != nil {
		return nil, meta, rerr
	}
	return out, meta, nil
}

func (s *service) GetDailyStatistics(ctx context.Context, from, to time.Time) ([]*entities.DayStatistics, ReadMeta, error) {
	var out []*entities.DayStatistics
	key := fmt.Sprintf("daily:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	freshness, age, err := s.readCache.Get(ctx, cache.EntityRollup, key, &out, func(rctx context.Context) (interface{}, error) {
		return s.rollups.ListDayStats(rctx, from, to)
	})
	meta, rerr := finishRead("daily statistics", freshness, age, err)
	if rerr != nil {
		return nil, meta, rerr
	}
	return out, meta, nil
}

func toViolations(utterances []*entities.EnrichedUtterance) []entities.ComplianceViolation {
	violations := make([]entities.ComplianceViolation, 0, len(utterances))
	for _, u := range utterances {
		violations = append(violations, entities.ComplianceViolation{
			ViolationType: u.ComplianceFlag,
			Severity:      u.ComplianceSeverity,
			Segment:       u.Text,
			Timestamp:     u.Timestamp,
		})
	}
	return violations
}

// finishRead maps cache freshness into the ReadMeta surfaced to
// consumers; Unavailable keeps the recompute error so callers can
// treat it as retryable.
func finishRead(entity string, freshness cache.Freshness, age time.Duration, err error) (ReadMeta, error) {
	meta := ReadMeta{Freshness: freshness, AgeSeconds: age.Seconds()}
	if err == nil {
		return meta, nil
	}
	var appErr apperrors.AppError
	if stderrors.As(err, &appErr) && appErr.Code == apperrors.ErrorCode_CALL_NOT_FOUND {
		return meta, appErr
	}
	return meta, apperrors.ErrUnavailable(entity, err)
}
