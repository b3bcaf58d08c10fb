package escalation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/callsight-io/callsight/internal/domain/entities"
)

var evalTime = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func signal(sentiment, intent, flag, severity string) *entities.EnrichedUtterance {
	return &entities.EnrichedUtterance{
		CallID:             "call-1",
		AgentID:            "agent-1",
		Timestamp:          evalTime,
		Speaker:            entities.SpeakerCustomer,
		Sentiment:          sentiment,
		IntentCategory:     intent,
		ComplianceFlag:     flag,
		ComplianceSeverity: severity,
	}
}

func neutral() *entities.EnrichedUtterance {
	return signal(entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow)
}

func TestScore_Normal(t *testing.T) {
	s := NewScorer()

	a := s.Score("call-1", []*entities.EnrichedUtterance{neutral(), neutral()}, evalTime)

	assert.False(t, a.EscalationRecommended)
	assert.Equal(t, entities.EscalationStateNormal, a.State)
	assert.Zero(t, a.RiskScore)
	assert.Empty(t, a.RiskFactors)
	assert.Equal(t, "No escalation required", a.Recommendation)
	assert.Equal(t, evalTime, a.EvaluatedAt)
}

func TestScore_EscalateOnTripleSignal(t *testing.T) {
	s := NewScorer()

	utterances := []*entities.EnrichedUtterance{
		signal(entities.SentimentNegative, entities.IntentComplaint, entities.ComplianceOK, entities.SeverityLow),
		signal(entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.CompliancePersonalAdvice, entities.SeverityHigh),
	}

	a := s.Score("call-1", utterances, evalTime)

	assert.True(t, a.EscalationRecommended)
	assert.Equal(t, entities.EscalationStateEscalate, a.State)
	assert.Contains(t, a.Recommendation, "negative sentiment combined with compliance violation and complaint")
}

func TestScore_EscalateOnCritical(t *testing.T) {
	s := NewScorer()

	// One critical violation escalates on its own.
	utterances := []*entities.EnrichedUtterance{
		signal(entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.ComplianceGuaranteeLanguage, entities.SeverityCritical),
	}

	a := s.Score("call-1", utterances, evalTime)

	assert.True(t, a.EscalationRecommended)
	assert.Equal(t, entities.EscalationStateEscalate, a.State)
	assert.Contains(t, a.Recommendation, "critical compliance violation")
	// 3 (compliance) + 5 (critical)
	assert.Equal(t, 8, a.RiskScore)
}

func TestScore_EscalateOnSustainedNegativeWithViolation(t *testing.T) {
	s := NewScorer()

	utterances := []*entities.EnrichedUtterance{
		signal(entities.SentimentNegative, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
		signal(entities.SentimentNegative, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
		signal(entities.SentimentNegative, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
		signal(entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.CompliancePersonalAdvice, entities.SeverityHigh),
	}

	a := s.Score("call-1", utterances, evalTime)

	assert.True(t, a.EscalationRecommended)
	assert.Contains(t, a.Recommendation, "sustained negative sentiment")
}

func TestScore_MonitorStates(t *testing.T) {
	s := NewScorer()

	t.Run("multiple compliance violations", func(t *testing.T) {
		utterances := []*entities.EnrichedUtterance{
			signal(entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.CompliancePersonalAdvice, entities.SeverityHigh),
			signal(entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.CompliancePrivacyBreach, entities.SeverityHigh),
		}
		a := s.Score("call-1", utterances, evalTime)
		assert.False(t, a.EscalationRecommended)
		assert.Equal(t, entities.EscalationStateMonitor, a.State)
		assert.Equal(t, "Monitor call: multiple compliance violations", a.Recommendation)
	})

	t.Run("high negative volume", func(t *testing.T) {
		var utterances []*entities.EnrichedUtterance
		for i := 0; i < 5; i++ {
			utterances = append(utterances, signal(entities.SentimentNegative, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow))
		}
		a := s.Score("call-1", utterances, evalTime)
		assert.Equal(t, entities.EscalationStateMonitor, a.State)
		assert.Equal(t, "Monitor call: high negative volume", a.Recommendation)
	})

	t.Run("elevated risk score", func(t *testing.T) {
		// 4 negatives score 8 without hitting the negative-count rule.
		var utterances []*entities.EnrichedUtterance
		for i := 0; i < 4; i++ {
			utterances = append(utterances, signal(entities.SentimentNegative, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow))
		}
		a := s.Score("call-1", utterances, evalTime)
		assert.Equal(t, entities.EscalationStateMonitor, a.State)
		assert.Equal(t, 8, a.RiskScore)
		assert.Equal(t, "Monitor call: elevated risk score", a.Recommendation)
	})
}

func TestScore_RiskScoreWeights(t *testing.T) {
	s := NewScorer()

	// 2 negative, 1 compliance (high), 1 complaint:
	// 2*2 + 3*1 + 2*1 + 5*0 + 3*1 = 12
	utterances := []*entities.EnrichedUtterance{
		signal(entities.SentimentNegative, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
		signal(entities.SentimentNegative, entities.IntentComplaint, entities.ComplianceOK, entities.SeverityLow),
		signal(entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.CompliancePersonalAdvice, entities.SeverityHigh),
	}

	a := s.Score("call-1", utterances, evalTime)
	assert.Equal(t, 12, a.RiskScore)
	assert.Equal(t, 2, a.NegativeCount)
	assert.Equal(t, 1, a.ComplianceCount)
	assert.Equal(t, 1, a.ComplaintCount)
}

func TestScore_RiskFactorsOrderedAndDeduped(t *testing.T) {
	s := NewScorer()

	utterances := []*entities.EnrichedUtterance{
		signal(entities.SentimentNegative, entities.IntentGeneralInquiry, entities.ComplianceOK, entities.SeverityLow),
		signal(entities.SentimentNegative, entities.IntentComplaint, entities.ComplianceOK, entities.SeverityLow),
		signal(entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.CompliancePersonalAdvice, entities.SeverityHigh),
		signal(entities.SentimentNegative, entities.IntentComplaint, entities.CompliancePersonalAdvice, entities.SeverityHigh),
	}

	a := s.Score("call-1", utterances, evalTime)
	assert.Equal(t, []string{
		"negative_sentiment",
		"complaint_intent",
		"compliance_personal_advice",
	}, a.RiskFactors)
}

func TestScore_Deterministic(t *testing.T) {
	s := NewScorer()

	utterances := []*entities.EnrichedUtterance{
		signal(entities.SentimentNegative, entities.IntentComplaint, entities.ComplianceOK, entities.SeverityLow),
		signal(entities.SentimentNeutral, entities.IntentGeneralInquiry, entities.CompliancePrivacyBreach, entities.SeverityHigh),
	}

	first := s.Score("call-1", utterances, evalTime)
	second := s.Score("call-1", utterances, evalTime)
	assert.Equal(t, first, second)
}
