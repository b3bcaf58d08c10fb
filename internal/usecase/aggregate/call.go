package aggregate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/callsight-io/callsight/errors"
	"github.com/callsight-io/callsight/internal/domain/entities"
	"github.com/callsight-io/callsight/internal/domain/repositories"
	"github.com/callsight-io/callsight/internal/infrastructure/metrics"
)

// CallAggregator folds a call's enriched utterances into one
// CallSummary row. Building is a pure function of the utterance set,
// so re-running over unchanged input always produces an identical
// summary; the upsert replaces the row wholesale.
type CallAggregator struct {
	utterances repositories.UtteranceRepository
	summaries  repositories.SummaryRepository
	locks      *KeyLocks
	logger     *zap.Logger
}

// NewCallAggregator creates a new call aggregator
func NewCallAggregator(
	utterances repositories.UtteranceRepository,
	summaries repositories.SummaryRepository,
	locks *KeyLocks,
	logger *zap.Logger,
) *CallAggregator {
	metrics.Init()
	return &CallAggregator{
		utterances: utterances,
		summaries:  summaries,
		locks:      locks,
		logger:     logger,
	}
}

// AggregateCall recomputes and stores the summary for one call under
// the call's key lock.
func (a *CallAggregator) AggregateCall(ctx context.Context, callID string) (*entities.CallSummary, error) {
	unlock := a.locks.Lock("call:" + callID)
	defer unlock()

	utterances, err := a.utterances.ListByCall(ctx, callID)
	if err != nil {
		metrics.AggregationFailures.WithLabelValues("call").Inc()
		return nil, apperrors.ErrAggregationFailed(callID, err)
	}
	if len(utterances) == 0 {
		return nil, apperrors.ErrCallNotFound(callID)
	}

	summary := BuildCallSummary(callID, utterances)

	if err := a.summaries.Upsert(ctx, summary); err != nil {
		metrics.AggregationFailures.WithLabelValues("call").Inc()
		return nil, apperrors.ErrAggregationFailed(callID, err)
	}

	metrics.AggregationRuns.WithLabelValues("call").Inc()
	if a.logger != nil {
		a.logger.Debug("call aggregated",
			zap.String("call_id", callID),
			zap.Int("segments", summary.TotalSegments),
			zap.String("overall_sentiment", summary.OverallSentiment),
		)
	}
	return summary, nil
}

// BuildCallSummary computes a call's summary from its enriched
// utterances. utterances must be in timestamp order. Deterministic:
// the same input always yields an identical summary.
func BuildCallSummary(callID string, utterances []*entities.EnrichedUtterance) *entities.CallSummary {
	first := utterances[0]
	last := utterances[len(utterances)-1]

	summary := &entities.CallSummary{
		CallID:    callID,
		MemberID:  first.MemberID,
		AgentID:   first.AgentID,
		CallDate:  truncateToDay(first.Timestamp),
		StartTime: first.Timestamp,
		EndTime:   last.Timestamp,
	}
	summary.DurationSeconds = last.Timestamp.Sub(first.Timestamp).Seconds()
	summary.TotalSegments = len(utterances)

	intentCounts := make(map[string]int)
	intentFirstSeen := make(map[string]int)
	maxSeverity := entities.SeverityLow
	var confidenceSum float64
	var transcript strings.Builder

	for i, u := range utterances {
		switch u.Sentiment {
		case entities.SentimentPositive:
			summary.PositiveCount++
		case entities.SentimentNegative:
			summary.NegativeCount++
		default:
			summary.NeutralCount++
		}

		if _, seen := intentFirstSeen[u.IntentCategory]; !seen {
			intentFirstSeen[u.IntentCategory] = i
		}
		intentCounts[u.IntentCategory]++

		if u.HasComplianceIssue() {
			summary.ComplianceViolations++
			if entities.SeverityRank(u.ComplianceSeverity) > entities.SeverityRank(maxSeverity) {
				maxSeverity = u.ComplianceSeverity
			}
		}

		confidenceSum += u.Confidence

		if i > 0 {
			transcript.WriteByte('\n')
		}
		fmt.Fprintf(&transcript, "[%s] %s", u.Speaker, u.Text)
	}

	summary.OverallSentiment = majoritySentiment(summary.PositiveCount, summary.NegativeCount, summary.NeutralCount)
	summary.PrimaryIntent = primaryIntent(intentCounts, intentFirstSeen)
	summary.AvgConfidence = confidenceSum / float64(len(utterances))
	summary.HasComplianceIssues = summary.ComplianceViolations > 0
	summary.ComplianceSeverityLevel = maxSeverity
	summary.Transcript = transcript.String()

	return summary
}

// majoritySentiment picks the strict majority label; any tie for the
// top breaks toward neutral.
func majoritySentiment(positive, negative, neutral int) string {
	switch {
	case positive > negative && positive > neutral:
		return entities.SentimentPositive
	case negative > positive && negative > neutral:
		return entities.SentimentNegative
	default:
		return entities.SentimentNeutral
	}
}

// primaryIntent picks the most frequent intent; ties break toward the
// intent first seen in the call.
func primaryIntent(counts map[string]int, firstSeen map[string]int) string {
	best := ""
	for intent, count := range counts {
		if best == "" {
			best = intent
			continue
		}
		if count > counts[best] || (count == counts[best] && firstSeen[intent] < firstSeen[best]) {
			best = intent
		}
	}
	if best == "" {
		return entities.IntentGeneralInquiry
	}
	return best
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
