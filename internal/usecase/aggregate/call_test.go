package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callsight-io/callsight/internal/domain/entities"
)

var callStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func enriched(offset time.Duration, speaker, text, sentiment, intent, flag, severity string) *entities.EnrichedUtterance {
	return &entities.EnrichedUtterance{
		CallID:             "call-1",
		MemberID:           "member-1",
		AgentID:            "agent-1",
		Timestamp:          callStart.Add(offset),
		Speaker:            speaker,
		Text:               text,
		Confidence:         0.9,
		Sentiment:          sentiment,
		IntentCategory:     intent,
		ComplianceFlag:     flag,
		ComplianceSeverity: severity,
	}
}

func TestBuildCallSummary_Counts(t *testing.T) {
	utterances := []*entities.EnrichedUtterance{
		enriched(0, "customer", "hello", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
		enriched(30*time.Second, "agent", "hi there", entities.SentimentPositive, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
		enriched(60*time.Second, "customer", "this is terrible", entities.SentimentNegative, entities.IntentComplaint, entities.ComplianceOK, entities.SeverityLow),
		enriched(90*time.Second, "agent", "I guarantee it", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceGuaranteeLanguage, entities.SeverityCritical),
	}

	summary := BuildCallSummary("call-1", utterances)

	assert.Equal(t, "call-1", summary.CallID)
	assert.Equal(t, "member-1", summary.MemberID)
	assert.Equal(t, "agent-1", summary.AgentID)
	assert.Equal(t, 4, summary.TotalSegments)
	assert.Equal(t, 1, summary.PositiveCount)
	assert.Equal(t, 1, summary.NegativeCount)
	assert.Equal(t, 2, summary.NeutralCount)
	assert.Equal(t, 90.0, summary.DurationSeconds)
	assert.Equal(t, 1, summary.ComplianceViolations)
	assert.True(t, summary.HasComplianceIssues)
	assert.Equal(t, entities.SeverityCritical, summary.ComplianceSeverityLevel)
	assert.InDelta(t, 0.9, summary.AvgConfidence, 1e-9)

	// Sentiment counts always partition the segments.
	assert.Equal(t, summary.TotalSegments, summary.PositiveCount+summary.NegativeCount+summary.NeutralCount)
}

func TestBuildCallSummary_Idempotent(t *testing.T) {
	utterances := []*entities.EnrichedUtterance{
		enriched(0, "customer", "hello", entities.SentimentNeutral, entities.IntentWithdrawal, entities.ComplianceOK, entities.SeverityLow),
		enriched(time.Minute, "agent", "sure", entities.SentimentPositive, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
	}

	first := BuildCallSummary("call-1", utterances)
	second := BuildCallSummary("call-1", utterances)
	assert.Equal(t, first, second)
}

func TestBuildCallSummary_MajoritySentiment(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []string
		want       string
	}{
		{"positive majority", []string{"positive", "positive", "negative"}, entities.SentimentPositive},
		{"negative majority", []string{"negative", "negative", "neutral"}, entities.SentimentNegative},
		{"tie breaks neutral", []string{"positive", "negative"}, entities.SentimentNeutral},
		{"neutral plurality", []string{"neutral", "neutral", "positive"}, entities.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var utterances []*entities.EnrichedUtterance
			for i, s := range tt.sentiments {
				utterances = append(utterances, enriched(time.Duration(i)*time.Second, "customer", "x", s, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow))
			}
			summary := BuildCallSummary("call-1", utterances)
			assert.Equal(t, tt.want, summary.OverallSentiment)
		})
	}
}

func TestBuildCallSummary_PrimaryIntentTieBreak(t *testing.T) {
	// withdrawal and insurance both appear once; withdrawal is seen
	// first in timestamp order and must win the tie.
	utterances := []*entities.EnrichedUtterance{
		enriched(0, "customer", "a", entities.SentimentNeutral, entities.IntentWithdrawal, entities.ComplianceOK, entities.SeverityLow),
		enriched(time.Second, "customer", "b", entities.SentimentNeutral, entities.IntentInsurance, entities.ComplianceOK, entities.SeverityLow),
	}

	summary := BuildCallSummary("call-1", utterances)
	assert.Equal(t, entities.IntentWithdrawal, summary.PrimaryIntent)

	// A higher count beats first-seen.
	utterances = append(utterances,
		enriched(2*time.Second, "customer", "c", entities.SentimentNeutral, entities.IntentInsurance, entities.ComplianceOK, entities.SeverityLow),
	)
	summary = BuildCallSummary("call-1", utterances)
	assert.Equal(t, entities.IntentInsurance, summary.PrimaryIntent)
}

func TestBuildCallSummary_Transcript(t *testing.T) {
	utterances := []*entities.EnrichedUtterance{
		enriched(0, "customer", "hello", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
		enriched(time.Second, "agent", "hi", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
	}

	summary := BuildCallSummary("call-1", utterances)
	assert.Equal(t, "[customer] hello\n[agent] hi", summary.Transcript)
}

func TestBuildCallSummary_SingleUtterance(t *testing.T) {
	utterances := []*entities.EnrichedUtterance{
		enriched(0, "customer", "hello", entities.SentimentPositive, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
	}

	summary := BuildCallSummary("call-1", utterances)
	require.NotNil(t, summary)
	assert.Equal(t, 0.0, summary.DurationSeconds)
	assert.Equal(t, summary.StartTime, summary.EndTime)
	assert.Equal(t, entities.SentimentPositive, summary.OverallSentiment)
}

func TestBuildCallSummary_CallDateUTC(t *testing.T) {
	// 23:30 in UTC+10 is 13:30 UTC the same day; the call date must be
	// the UTC day.
	loc := time.FixedZone("AEST", 10*3600)
	u := enriched(0, "customer", "hello", entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow)
	u.Timestamp = time.Date(2026, 3, 11, 2, 30, 0, 0, loc) // 2026-03-10T16:30Z

	summary := BuildCallSummary("call-1", []*entities.EnrichedUtterance{u})
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), summary.CallDate)
}
