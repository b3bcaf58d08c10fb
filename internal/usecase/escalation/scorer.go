// Package escalation is the single authoritative implementation of the
// escalation rule set. Every surface that reports escalation risk
// (agent assist, supervisor batch view, per-call endpoint) calls
// Scorer.Score; none re-derives the rules.
package escalation

import (
	"time"

	"github.com/callsight-io/callsight/internal/domain/entities"
	"github.com/callsight-io/callsight/internal/infrastructure/metrics"
)

// Risk score weights, one per signal kind.
const (
	weightNegative   = 2
	weightCompliance = 3
	weightComplaint  = 2
	weightCritical   = 5
	weightHigh       = 3
)

// MONITOR thresholds.
const (
	monitorComplianceCount = 2
	monitorNegativeCount   = 5
	monitorRiskScore       = 8
)

// Risk factor labels, reported in order of first contribution.
const (
	factorNegativeSentiment = "negative_sentiment"
	factorComplaintIntent   = "complaint_intent"
	compliancePrefix        = "compliance_"
)

// Scorer evaluates a call's enriched utterances against the fixed
// escalation rule set.
type Scorer struct{}

// NewScorer creates a new escalation scorer
func NewScorer() *Scorer {
	metrics.Init()
	return &Scorer{}
}

// Score evaluates the utterances of one call (call-to-date window) and
// produces its escalation assessment. Pure apart from metrics: the
// same utterances always yield the same assessment.
//
// The recommendation text, the state, and the escalation flag are all
// derived from one decision in decide; they can never disagree.
func (s *Scorer) Score(callID string, utterances []*entities.EnrichedUtterance, now time.Time) *entities.EscalationAssessment {
	var counts signalCounts
	var factors []string
	seen := make(map[string]struct{})

	addFactor := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		factors = append(factors, f)
	}

	for _, u := range utterances {
		if u.Sentiment == entities.SentimentNegative {
			counts.negative++
			addFactor(factorNegativeSentiment)
		}
		if u.HasComplianceIssue() {
			counts.compliance++
			addFactor(compliancePrefix + u.ComplianceFlag)
			switch u.ComplianceSeverity {
			case entities.SeverityCritical:
				counts.critical++
			case entities.SeverityHigh:
				counts.high++
			}
		}
		if u.IntentCategory == entities.IntentComplaint {
			counts.complaint++
			addFactor(factorComplaintIntent)
		}
	}

	riskScore := weightNegative*counts.negative +
		weightCompliance*counts.compliance +
		weightComplaint*counts.complaint +
		weightCritical*counts.critical +
		weightHigh*counts.high

	state, recommendation := decide(counts, riskScore)
	recommended := state == entities.EscalationStateEscalate
	if recommended {
		metrics.EscalationsRecommended.Inc()
	}

	return &entities.EscalationAssessment{
		CallID:                callID,
		EscalationRecommended: recommended,
		State:                 state,
		RiskScore:             riskScore,
		RiskFactors:           factors,
		NegativeCount:         counts.negative,
		ComplianceCount:       counts.compliance,
		ComplaintCount:        counts.complaint,
		Recommendation:        recommendation,
		EvaluatedAt:           now,
	}
}

type signalCounts struct {
	negative   int
	compliance int
	complaint  int
	critical   int
	high       int
}

// decide walks the rules in their fixed order; the first match sets
// both the state and the recommendation text.
func decide(c signalCounts, riskScore int) (state, recommendation string) {
	switch {
	case c.negative > 0 && c.compliance > 0 && c.complaint > 0:
		return entities.EscalationStateEscalate,
			"Escalate to supervisor: negative sentiment combined with compliance violation and complaint"
	case c.critical > 0:
		return entities.EscalationStateEscalate,
			"Escalate to supervisor: critical compliance violation detected"
	case c.negative >= 3 && c.compliance > 0:
		return entities.EscalationStateEscalate,
			"Escalate to supervisor: sustained negative sentiment with compliance violation"
	case c.compliance >= monitorComplianceCount:
		return entities.EscalationStateMonitor,
			"Monitor call: multiple compliance violations"
	case c.negative >= monitorNegativeCount:
		return entities.EscalationStateMonitor,
			"Monitor call: high negative volume"
	case riskScore >= monitorRiskScore:
		return entities.EscalationStateMonitor,
			"Monitor call: elevated risk score"
	default:
		return entities.EscalationStateNormal,
			"No escalation required"
	}
}
