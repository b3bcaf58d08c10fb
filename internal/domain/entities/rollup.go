package entities

import (
	"time"

	"gorm.io/datatypes"
)

// AgentDayPerformance is the per-(agent, day) rollup of call summaries.
// Recomputing it from the same summaries always yields the same row.
type AgentDayPerformance struct {
	AgentID              string    `json:"agent_id" gorm:"type:varchar(100);primaryKey"`
	CallDate             time.Time `json:"call_date" gorm:"type:date;primaryKey"`
	TotalCalls           int       `json:"total_calls" gorm:"not null"`
	TotalCallTimeMinutes float64   `json:"total_call_time_minutes" gorm:"not null"`
	AvgCallDuration      float64   `json:"avg_call_duration_seconds"`
	PositiveCalls        int       `json:"positive_calls" gorm:"not null"`
	NegativeCalls        int       `json:"negative_calls" gorm:"not null"`
	CallsWithIssues      int       `json:"calls_with_issues" gorm:"not null"`
	ComplianceRate       float64   `json:"compliance_rate"`
	PositiveRate         float64   `json:"positive_rate"`
	NegativeRate         float64   `json:"negative_rate"`
	AvgConfidence        float64   `json:"avg_confidence"`
	PerformanceScore     float64   `json:"performance_score"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (AgentDayPerformance) TableName() string {
	return "agent_day_performance"
}

// DayStatistics is the whole-of-day rollup across all agents.
type DayStatistics struct {
	CallDate             time.Time      `json:"call_date" gorm:"type:date;primaryKey"`
	TotalCalls           int            `json:"total_calls" gorm:"not null"`
	TotalAgents          int            `json:"total_agents" gorm:"not null"`
	TotalCallTimeMinutes float64        `json:"total_call_time_minutes" gorm:"not null"`
	PositiveCalls        int            `json:"positive_calls" gorm:"not null"`
	NegativeCalls        int            `json:"negative_calls" gorm:"not null"`
	NeutralCalls         int            `json:"neutral_calls" gorm:"not null"`
	CallsWithIssues      int            `json:"calls_with_issues" gorm:"not null"`
	ComplianceViolations int            `json:"compliance_violations" gorm:"not null"`
	IntentBreakdown      datatypes.JSON `json:"intent_breakdown,omitempty" gorm:"type:jsonb"`
	UpdatedAt            time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (DayStatistics) TableName() string {
	return "day_statistics"
}
