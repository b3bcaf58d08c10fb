package repositories

import (
	"context"
	"time"

	"github.com/callsight-io/callsight/internal/domain/entities"
)

// SummaryRepository defines persistence operations for call summaries.
type SummaryRepository interface {
	// Upsert creates or fully replaces the summary row for its call.
	Upsert(ctx context.Context, s *entities.CallSummary) error

	// GetByCallID returns the summary for a call, or nil when absent.
	GetByCallID(ctx context.Context, callID string) (*entities.CallSummary, error)

	// ListByAgentDate returns all summaries for one agent on one day.
	ListByAgentDate(ctx context.Context, agentID string, date time.Time) ([]*entities.CallSummary, error)

	// ListByDate returns all summaries for one day.
	ListByDate(ctx context.Context, date time.Time) ([]*entities.CallSummary, error)
}

// RollupRepository defines persistence operations for agent-day and
// day rollups.
type RollupRepository interface {
	UpsertAgentDay(ctx context.Context, p *entities.AgentDayPerformance) error
	UpsertDayStats(ctx context.Context, s *entities.DayStatistics) error

	ListAgentDays(ctx context.Context, agentID string, from, to time.Time) ([]*entities.AgentDayPerformance, error)
	ListDayStats(ctx context.Context, from, to time.Time) ([]*entities.DayStatistics, error)
}
