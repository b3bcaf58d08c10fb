package aggregate

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/callsight-io/callsight/errors"
	"github.com/callsight-io/callsight/internal/domain/entities"
)

type fakeUtteranceRepo struct {
	byCall map[string][]*entities.EnrichedUtterance
	quiet  []string
}

func (f *fakeUtteranceRepo) Append(ctx context.Context, u *entities.EnrichedUtterance) error {
	return nil
}

func (f *fakeUtteranceRepo) ListByCall(ctx context.Context, callID string) ([]*entities.EnrichedUtterance, error) {
	return f.byCall[callID], nil
}

func (f *fakeUtteranceRepo) ListRecentByCall(ctx context.Context, callID string, n int) ([]*entities.EnrichedUtterance, error) {
	return f.byCall[callID], nil
}

func (f *fakeUtteranceRepo) ListViolationsByCall(ctx context.Context, callID string) ([]*entities.EnrichedUtterance, error) {
	return nil, nil
}

func (f *fakeUtteranceRepo) ListQuietCalls(ctx context.Context, quietSince, lookbackSince time.Time) ([]string, error) {
	return f.quiet, nil
}

type fakeSummaryRepo struct {
	mu        sync.Mutex
	upserts   map[string]*entities.CallSummary
	upsertErr error
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{upserts: make(map[string]*entities.CallSummary)}
}

func (f *fakeSummaryRepo) Upsert(ctx context.Context, s *entities.CallSummary) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts[s.CallID] = s
	return nil
}

func (f *fakeSummaryRepo) GetByCallID(ctx context.Context, callID string) (*entities.CallSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts[callID], nil
}

func (f *fakeSummaryRepo) ListByAgentDate(ctx context.Context, agentID string, date time.Time) ([]*entities.CallSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.CallSummary
	for _, s := range f.upserts {
		if s.AgentID == agentID && s.CallDate.Equal(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSummaryRepo) ListByDate(ctx context.Context, date time.Time) ([]*entities.CallSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.CallSummary
	for _, s := range f.upserts {
		if s.CallDate.Equal(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRollupRepo struct {
	mu        sync.Mutex
	agentDays map[string]*entities.AgentDayPerformance
	dayStats  map[string]*entities.DayStatistics
}

func newFakeRollupRepo() *fakeRollupRepo {
	return &fakeRollupRepo{
		agentDays: make(map[string]*entities.AgentDayPerformance),
		dayStats:  make(map[string]*entities.DayStatistics),
	}
}

func (f *fakeRollupRepo) UpsertAgentDay(ctx context.Context, p *entities.AgentDayPerformance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agentDays[p.AgentID+":"+p.CallDate.Format("2006-01-02")] = p
	return nil
}

func (f *fakeRollupRepo) UpsertDayStats(ctx context.Context, s *entities.DayStatistics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dayStats[s.CallDate.Format("2006-01-02")] = s
	return nil
}

func (f *fakeRollupRepo) ListAgentDays(ctx context.Context, agentID string, from, to time.Time) ([]*entities.AgentDayPerformance, error) {
	return nil, nil
}

func (f *fakeRollupRepo) ListDayStats(ctx context.Context, from, to time.Time) ([]*entities.DayStatistics, error) {
	return nil, nil
}

func newTestScheduler(utterances *fakeUtteranceRepo, summaries *fakeSummaryRepo, rollups *fakeRollupRepo) *Scheduler {
	locks := NewKeyLocks()
	calls := NewCallAggregator(utterances, summaries, locks, nil)
	rollupAgg := NewRollupAggregator(summaries, rollups, locks, nil)
	return NewScheduler(utterances, calls, rollupAgg, 5*time.Minute, time.Minute, nil)
}

func TestSweep_AggregatesQuietCallsAndRollups(t *testing.T) {
	utterances := &fakeUtteranceRepo{
		byCall: map[string][]*entities.EnrichedUtterance{
			"call-1": {
				enriched(0, "customer", "hello", entities.SentimentPositive, entities.IntentWithdrawal, entities.ComplianceOK, entities.SeverityLow),
				enriched(time.Minute, "agent", "sure", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
			},
		},
		quiet: []string{"call-1"},
	}
	summaries := newFakeSummaryRepo()
	rollups := newFakeRollupRepo()
	s := newTestScheduler(utterances, summaries, rollups)

	s.Sweep(context.Background())

	require.Contains(t, summaries.upserts, "call-1")
	summary := summaries.upserts["call-1"]
	assert.Equal(t, 2, summary.TotalSegments)

	dateKey := summary.CallDate.Format("2006-01-02")
	require.Contains(t, rollups.agentDays, "agent-1:"+dateKey)
	assert.Equal(t, 1, rollups.agentDays["agent-1:"+dateKey].TotalCalls)
	require.Contains(t, rollups.dayStats, dateKey)
	assert.Equal(t, 1, rollups.dayStats[dateKey].TotalCalls)
}

func TestSweep_OneFailureDoesNotBlockOthers(t *testing.T) {
	// "ghost" has no utterances: CALL_NOT_FOUND, not retried, and the
	// other call still aggregates.
	utterances := &fakeUtteranceRepo{
		byCall: map[string][]*entities.EnrichedUtterance{
			"call-1": {
				enriched(0, "customer", "hello", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
			},
		},
		quiet: []string{"ghost", "call-1"},
	}
	summaries := newFakeSummaryRepo()
	rollups := newFakeRollupRepo()
	s := newTestScheduler(utterances, summaries, rollups)

	start := time.Now()
	s.Sweep(context.Background())

	assert.Contains(t, summaries.upserts, "call-1")
	assert.NotContains(t, summaries.upserts, "ghost")
	// CALL_NOT_FOUND is permanent; the sweep must not sit in backoff.
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAggregateNow(t *testing.T) {
	utterances := &fakeUtteranceRepo{
		byCall: map[string][]*entities.EnrichedUtterance{
			"call-1": {
				enriched(0, "customer", "hello", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
			},
		},
	}
	summaries := newFakeSummaryRepo()
	rollups := newFakeRollupRepo()
	s := newTestScheduler(utterances, summaries, rollups)

	summary, err := s.AggregateNow(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, "call-1", summary.CallID)
	assert.Contains(t, summaries.upserts, "call-1")
	assert.Len(t, rollups.agentDays, 1)
	assert.Len(t, rollups.dayStats, 1)
}

func TestAggregateNow_CallNotFound(t *testing.T) {
	s := newTestScheduler(&fakeUtteranceRepo{byCall: map[string][]*entities.EnrichedUtterance{}}, newFakeSummaryRepo(), newFakeRollupRepo())

	_, err := s.AggregateNow(context.Background(), "missing")
	require.Error(t, err)

	var appErr apperrors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_CALL_NOT_FOUND, appErr.Code)
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler(&fakeUtteranceRepo{}, newFakeSummaryRepo(), newFakeRollupRepo())

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))

	s.Stop()
	// Stop is idempotent.
	s.Stop()
}
