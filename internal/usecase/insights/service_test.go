package insights

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/callsight-io/callsight/errors"
	"github.com/callsight-io/callsight/internal/domain/entities"
	"github.com/callsight-io/callsight/internal/infrastructure/cache"
	"github.com/callsight-io/callsight/internal/usecase/escalation"
	"github.com/callsight-io/callsight/pkg/config"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeUtteranceRepo struct {
	byCall  map[string][]*entities.EnrichedUtterance
	listErr error
}

func (f *fakeUtteranceRepo) Append(ctx context.Context, u *entities.EnrichedUtterance) error {
	return nil
}

func (f *fakeUtteranceRepo) ListByCall(ctx context.Context, callID string) ([]*entities.EnrichedUtterance, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byCall[callID], nil
}

func (f *fakeUtteranceRepo) ListRecentByCall(ctx context.Context, callID string, n int) ([]*entities.EnrichedUtterance, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	utterances := f.byCall[callID]
	if len(utterances) > n {
		utterances = utterances[len(utterances)-n:]
	}
	return utterances, nil
}

func (f *fakeUtteranceRepo) ListViolationsByCall(ctx context.Context, callID string) ([]*entities.EnrichedUtterance, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var violations []*entities.EnrichedUtterance
	utterances := f.byCall[callID]
	for i := len(utterances) - 1; i >= 0; i-- {
		if utterances[i].HasComplianceIssue() {
			violations = append(violations, utterances[i])
		}
	}
	return violations, nil
}

func (f *fakeUtteranceRepo) ListQuietCalls(ctx context.Context, quietSince, lookbackSince time.Time) ([]string, error) {
	return nil, nil
}

type fakeRollupRepo struct {
	agentDays []*entities.AgentDayPerformance
	dayStats  []*entities.DayStatistics
}

func (f *fakeRollupRepo) UpsertAgentDay(ctx context.Context, perf *entities.AgentDayPerformance) error {
	return nil
}

func (f *fakeRollupRepo) UpsertDayStats(ctx context.Context, stats *entities.DayStatistics) error {
	return nil
}

func (f *fakeRollupRepo) ListAgentDays(ctx context.Context, agentID string, from, to time.Time) ([]*entities.AgentDayPerformance, error) {
	return f.agentDays, nil
}

func (f *fakeRollupRepo) ListDayStats(ctx context.Context, from, to time.Time) ([]*entities.DayStatistics, error) {
	return f.dayStats, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.TranscriptTTL = time.Minute
	cfg.Cache.CallContextTTL = time.Minute
	cfg.Cache.ComplianceTTL = time.Minute
	cfg.Cache.EscalationTTL = time.Minute
	cfg.Cache.RollupTTL = time.Minute
	cfg.Pipeline.RecomputeTimeout = time.Second
	return cfg
}

func newTestService(utterances *fakeUtteranceRepo, rollups *fakeRollupRepo) Service {
	readCache := cache.NewReadCache(cache.NewMemoryStore(), testConfig(), nil)
	return NewService(utterances, rollups, escalation.NewScorer(), readCache, nil)
}

func line(offset time.Duration, speaker, text, sentiment, intent, flag, severity string) *entities.EnrichedUtterance {
	return &entities.EnrichedUtterance{
		CallID:             "call-1",
		AgentID:            "agent-1",
		Timestamp:          base.Add(offset),
		Speaker:            speaker,
		Text:               text,
		Sentiment:          sentiment,
		IntentCategory:     intent,
		ComplianceFlag:     flag,
		ComplianceSeverity: severity,
	}
}

func TestGetCallContext(t *testing.T) {
	member := line(0, "customer", "hi, about my insurance", entities.SentimentNeutral, entities.IntentInsurance, entities.ComplianceOK, entities.SeverityLow)
	member.MemberName = "Alex Chen"
	member.Balance = 84000

	repo := &fakeUtteranceRepo{byCall: map[string][]*entities.EnrichedUtterance{
		"call-1": {
			member,
			line(time.Minute, "agent", "I recommend you switch", entities.SentimentNeutral, entities.IntentInsurance, entities.CompliancePersonalAdvice, entities.SeverityHigh),
			line(2*time.Minute, "customer", "this is terrible", entities.SentimentNegative, entities.IntentComplaint, entities.ComplianceOK, entities.SeverityLow),
		},
	}}
	svc := newTestService(repo, &fakeRollupRepo{})

	callCtx, meta, err := svc.GetCallContext(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, cache.Fresh, meta.Freshness)

	assert.Equal(t, "call-1", callCtx.CallID)
	assert.Equal(t, "Alex Chen", callCtx.MemberName)
	assert.Equal(t, 84000.0, callCtx.Balance)
	assert.Len(t, callCtx.RecentTranscript, 3)
	assert.Equal(t, []string{entities.IntentInsurance, entities.IntentComplaint}, callCtx.Intents)
	require.Len(t, callCtx.ComplianceIssues, 1)
	assert.Equal(t, entities.CompliancePersonalAdvice, callCtx.ComplianceIssues[0].ViolationType)
}

func TestGetCallContext_NotFound(t *testing.T) {
	svc := newTestService(&fakeUtteranceRepo{byCall: map[string][]*entities.EnrichedUtterance{}}, &fakeRollupRepo{})

	_, _, err := svc.GetCallContext(context.Background(), "missing")
	require.Error(t, err)

	var appErr apperrors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_CALL_NOT_FOUND, appErr.Code)
}

func TestCheckCompliance_NewestFirst(t *testing.T) {
	repo := &fakeUtteranceRepo{byCall: map[string][]*entities.EnrichedUtterance{
		"call-1": {
			line(0, "agent", "I guarantee it", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceGuaranteeLanguage, entities.SeverityCritical),
			line(time.Minute, "agent", "you should do this", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.CompliancePersonalAdvice, entities.SeverityHigh),
		},
	}}
	svc := newTestService(repo, &fakeRollupRepo{})

	violations, meta, err := svc.CheckCompliance(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, cache.Fresh, meta.Freshness)
	require.Len(t, violations, 2)
	assert.Equal(t, entities.CompliancePersonalAdvice, violations[0].ViolationType)
	assert.Equal(t, entities.ComplianceGuaranteeLanguage, violations[1].ViolationType)
}

func TestCheckCompliance_EmptyForCleanCall(t *testing.T) {
	repo := &fakeUtteranceRepo{byCall: map[string][]*entities.EnrichedUtterance{
		"call-1": {
			line(0, "customer", "hello", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
		},
	}}
	svc := newTestService(repo, &fakeRollupRepo{})

	violations, _, err := svc.CheckCompliance(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestIdentifyEscalation(t *testing.T) {
	repo := &fakeUtteranceRepo{byCall: map[string][]*entities.EnrichedUtterance{
		"call-1": {
			line(0, "agent", "I guarantee it", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceGuaranteeLanguage, entities.SeverityCritical),
		},
	}}
	svc := newTestService(repo, &fakeRollupRepo{})

	assessment, meta, err := svc.IdentifyEscalation(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, cache.Fresh, meta.Freshness)
	assert.True(t, assessment.EscalationRecommended)
	assert.Equal(t, entities.EscalationStateEscalate, assessment.State)
}

func TestIdentifyEscalationBatch_FiltersAndSkipsFailures(t *testing.T) {
	repo := &fakeUtteranceRepo{byCall: map[string][]*entities.EnrichedUtterance{
		"hot": {
			line(0, "agent", "I guarantee it", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceGuaranteeLanguage, entities.SeverityCritical),
		},
		"calm": {
			line(0, "customer", "hello", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
		},
	}}
	svc := newTestService(repo, &fakeRollupRepo{})

	result, err := svc.IdentifyEscalationBatch(context.Background(), []string{"hot", "calm", "missing"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.True(t, result["hot"].EscalationRecommended)
}

func TestGetAgentPerformance(t *testing.T) {
	rollups := &fakeRollupRepo{agentDays: []*entities.AgentDayPerformance{
		{AgentID: "agent-1", CallDate: base, TotalCalls: 12, PerformanceScore: 81.5},
	}}
	svc := newTestService(&fakeUtteranceRepo{}, rollups)

	days, meta, err := svc.GetAgentPerformance(context.Background(), "agent-1", base.AddDate(0, 0, -7), base)
	require.NoError(t, err)
	assert.Equal(t, cache.Fresh, meta.Freshness)
	require.Len(t, days, 1)
	assert.Equal(t, 12, days[0].TotalCalls)
}

func TestGetDailyStatistics(t *testing.T) {
	rollups := &fakeRollupRepo{dayStats: []*entities.DayStatistics{
		{CallDate: base, TotalCalls: 40, TotalAgents: 5},
	}}
	svc := newTestService(&fakeUtteranceRepo{}, rollups)

	stats, meta, err := svc.GetDailyStatistics(context.Background(), base.AddDate(0, 0, -7), base)
	require.NoError(t, err)
	assert.Equal(t, cache.Fresh, meta.Freshness)
	require.Len(t, stats, 1)
	assert.Equal(t, 40, stats[0].TotalCalls)
}

func TestReadErrorsMapToUnavailable(t *testing.T) {
	repo := &fakeUtteranceRepo{listErr: stderrors.New("db down")}
	svc := newTestService(repo, &fakeRollupRepo{})

	_, meta, err := svc.CheckCompliance(context.Background(), "call-1")
	require.Error(t, err)
	assert.Equal(t, cache.Unavailable, meta.Freshness)

	var appErr apperrors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_UNAVAILABLE, appErr.Code)
}
