package aggregate

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/callsight-io/callsight/errors"
	"github.com/callsight-io/callsight/internal/domain/entities"
	"github.com/callsight-io/callsight/internal/domain/repositories"
	"github.com/callsight-io/callsight/internal/infrastructure/metrics"
)

// RollupAggregator derives agent-day and day rollups from completed
// call summaries. Both builders are pure functions of the summary set
// for their key, so recomputes are idempotent.
type RollupAggregator struct {
	summaries repositories.SummaryRepository
	rollups   repositories.RollupRepository
	locks     *KeyLocks
	logger    *zap.Logger
}

// NewRollupAggregator creates a new rollup aggregator
func NewRollupAggregator(
	summaries repositories.SummaryRepository,
	rollups repositories.RollupRepository,
	locks *KeyLocks,
	logger *zap.Logger,
) *RollupAggregator {
	metrics.Init()
	return &RollupAggregator{
		summaries: summaries,
		rollups:   rollups,
		locks:     locks,
		logger:    logger,
	}
}

// RollupAgentDay recomputes and stores one (agent, day) rollup.
func (a *RollupAggregator) RollupAgentDay(ctx context.Context, agentID string, date time.Time) (*entities.AgentDayPerformance, error) {
	key := "agent_day:" + agentID + ":" + date.Format("2006-01-02")
	unlock := a.locks.Lock(key)
	defer unlock()

	summaries, err := a.summaries.ListByAgentDate(ctx, agentID, date)
	if err != nil {
		metrics.AggregationFailures.WithLabelValues("agent_day").Inc()
		return nil, apperrors.ErrDBQueryFailed("list summaries by agent date", err)
	}

	perf := BuildAgentDay(agentID, date, summaries)
	if err := a.rollups.UpsertAgentDay(ctx, perf); err != nil {
		metrics.AggregationFailures.WithLabelValues("agent_day").Inc()
		return nil, apperrors.ErrDBQueryFailed("upsert agent day performance", err)
	}

	metrics.AggregationRuns.WithLabelValues("agent_day").Inc()
	return perf, nil
}

// RollupDay recomputes and stores one day statistics row.
func (a *RollupAggregator) RollupDay(ctx context.Context, date time.Time) (*entities.DayStatistics, error) {
	key := "day:" + date.Format("2006-01-02")
	unlock := a.locks.Lock(key)
	defer unlock()

	summaries, err := a.summaries.ListByDate(ctx, date)
	if err != nil {
		metrics.AggregationFailures.WithLabelValues("day").Inc()
		return nil, apperrors.ErrDBQueryFailed("list summaries by date", err)
	}

	stats := BuildDayStats(date, summaries)
	if err := a.rollups.UpsertDayStats(ctx, stats); err != nil {
		metrics.AggregationFailures.WithLabelValues("day").Inc()
		return nil, apperrors.ErrDBQueryFailed("upsert day statistics", err)
	}

	metrics.AggregationRuns.WithLabelValues("day").Inc()
	return stats, nil
}

// BuildAgentDay computes one agent's daily performance from that day's
// call summaries. All rates are 0 when the agent had no calls.
func BuildAgentDay(agentID string, date time.Time, summaries []*entities.CallSummary) *entities.AgentDayPerformance {
	perf := &entities.AgentDayPerformance{
		AgentID:  agentID,
		CallDate: truncateToDay(date),
	}

	var durationSum, confidenceSum float64
	for _, s := range summaries {
		perf.TotalCalls++
		durationSum += s.DurationSeconds
		confidenceSum += s.AvgConfidence

		switch s.OverallSentiment {
		case entities.SentimentPositive:
			perf.PositiveCalls++
		case entities.SentimentNegative:
			perf.NegativeCalls++
		}
		if s.HasComplianceIssues {
			perf.CallsWithIssues++
		}
	}

	if perf.TotalCalls == 0 {
		return perf
	}

	total := float64(perf.TotalCalls)
	perf.TotalCallTimeMinutes = durationSum / 60
	perf.AvgCallDuration = durationSum / total
	perf.AvgConfidence = confidenceSum / total
	perf.ComplianceRate = float64(perf.CallsWithIssues) / total * 100
	perf.PositiveRate = float64(perf.PositiveCalls) / total * 100
	perf.NegativeRate = float64(perf.NegativeCalls) / total * 100
	perf.PerformanceScore = performanceScore(perf.ComplianceRate, perf.PositiveRate, perf.NegativeRate, perf.AvgConfidence)

	return perf
}

// performanceScore applies the fixed scoring weights. The weights are
// part of the reporting contract shared with supervisor dashboards.
func performanceScore(complianceRate, positiveRate, negativeRate, avgConfidence float64) float64 {
	confidenceComponent := avgConfidence * 100
	if confidenceComponent > 100 {
		confidenceComponent = 100
	}
	return (100-complianceRate)*0.4 +
		positiveRate*0.3 +
		(100-negativeRate)*0.2 +
		confidenceComponent*0.1
}

// BuildDayStats computes whole-of-day statistics from that day's call
// summaries.
func BuildDayStats(date time.Time, summaries []*entities.CallSummary) *entities.DayStatistics {
	stats := &entities.DayStatistics{
		CallDate: truncateToDay(date),
	}

	agents := make(map[string]struct{})
	intents := make(map[string]int)
	var durationSum float64

	for _, s := range summaries {
		stats.TotalCalls++
		durationSum += s.DurationSeconds
		agents[s.AgentID] = struct{}{}
		intents[s.PrimaryIntent]++

		switch s.OverallSentiment {
		case entities.SentimentPositive:
			stats.PositiveCalls++
		case entities.SentimentNegative:
			stats.NegativeCalls++
		default:
			stats.NeutralCalls++
		}
		if s.HasComplianceIssues {
			stats.CallsWithIssues++
		}
		stats.ComplianceViolations += s.ComplianceViolations
	}

	stats.TotalAgents = len(agents)
	stats.TotalCallTimeMinutes = durationSum / 60

	// encoding/json sorts map keys, keeping the column deterministic.
	if breakdown, err := json.Marshal(intents); err == nil {
		stats.IntentBreakdown = breakdown
	}

	return stats
}
