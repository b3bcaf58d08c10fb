package entities

import (
	"time"
)

// CallSummary is the aggregated record for one call. It is rebuilt as a
// whole from the call's enriched utterances on every aggregation run
// (overwritten, never appended), so it is always a pure function of
// enriched state.
type CallSummary struct {
	CallID                  string    `json:"call_id" gorm:"type:varchar(100);primary_key"`
	MemberID                string    `json:"member_id" gorm:"type:varchar(100);index"`
	AgentID                 string    `json:"agent_id" gorm:"type:varchar(100);not null;index"`
	CallDate                time.Time `json:"call_date" gorm:"type:date;not null;index"`
	StartTime               time.Time `json:"start_time" gorm:"not null"`
	EndTime                 time.Time `json:"end_time" gorm:"not null"`
	DurationSeconds         float64   `json:"duration_seconds" gorm:"not null"`
	TotalSegments           int       `json:"total_segments" gorm:"not null"`
	PositiveCount           int       `json:"positive_count" gorm:"not null"`
	NegativeCount           int       `json:"negative_count" gorm:"not null"`
	NeutralCount            int       `json:"neutral_count" gorm:"not null"`
	OverallSentiment        string    `json:"overall_sentiment" gorm:"type:varchar(20);not null"`
	PrimaryIntent           string    `json:"primary_intent" gorm:"type:varchar(50);not null"`
	AvgConfidence           float64   `json:"avg_confidence"`
	ComplianceViolations    int       `json:"compliance_violations" gorm:"not null"`
	HasComplianceIssues     bool      `json:"has_compliance_issues" gorm:"not null"`
	ComplianceSeverityLevel string    `json:"compliance_severity_level" gorm:"type:varchar(20);not null"`
	Transcript              string    `json:"transcript" gorm:"type:text"`
	UpdatedAt               time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (CallSummary) TableName() string {
	return "call_summaries"
}
