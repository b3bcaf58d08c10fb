package entities

import "time"

// Escalation states
const (
	EscalationStateNormal   = "NORMAL"
	EscalationStateMonitor  = "MONITOR"
	EscalationStateEscalate = "ESCALATE"
)

// EscalationAssessment is the point-in-time risk evaluation for an
// active call. It is ephemeral: produced fresh (or served from the
// read cache), never persisted.
type EscalationAssessment struct {
	CallID                string    `json:"call_id"`
	EscalationRecommended bool      `json:"escalation_recommended"`
	State                 string    `json:"state"`
	RiskScore             int       `json:"risk_score"`
	RiskFactors           []string  `json:"risk_factors"`
	NegativeCount         int       `json:"negative_count"`
	ComplianceCount       int       `json:"compliance_count"`
	ComplaintCount        int       `json:"complaint_count"`
	Recommendation        string    `json:"recommendation"`
	EvaluatedAt           time.Time `json:"evaluated_at"`
}

// ComplianceViolation is one flagged utterance as reported to the
// supervisor surface, newest first.
type ComplianceViolation struct {
	ViolationType string    `json:"violation_type"`
	Severity      string    `json:"severity"`
	Segment       string    `json:"segment"`
	Timestamp     time.Time `json:"timestamp"`
}

// CallContext is the agent-assist view of a live call, derived from
// its most recent enriched utterances.
type CallContext struct {
	CallID           string                `json:"call_id"`
	MemberName       string                `json:"member_name"`
	Balance          float64               `json:"balance"`
	RecentTranscript []TranscriptLine      `json:"recent_transcript"`
	Sentiment        string                `json:"sentiment"`
	Intents          []string              `json:"intents"`
	ComplianceIssues []ComplianceViolation `json:"compliance_issues"`
}

// TranscriptLine is one rendered line of the recent-transcript view.
type TranscriptLine struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
