package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/callsight-io/callsight/internal/domain/entities"
)

// RollupRepository handles agent-day and day rollup data operations
type RollupRepository struct {
	db *gorm.DB
}

// NewRollupRepository creates a new rollup repository
func NewRollupRepository(db *gorm.DB) *RollupRepository {
	return &RollupRepository{db: db}
}

// UpsertAgentDay creates or fully replaces one (agent, day) rollup row
func (r *RollupRepository) UpsertAgentDay(ctx context.Context, p *entities.AgentDayPerformance) error {
	if p == nil {
		return errors.New("agent day performance cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "agent_id"}, {Name: "call_date"}},
			UpdateAll: true,
		}).
		Create(p).Error
}

// UpsertDayStats creates or fully replaces one day statistics row
func (r *RollupRepository) UpsertDayStats(ctx context.Context, s *entities.DayStatistics) error {
	if s == nil {
		return errors.New("day statistics cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "call_date"}},
			UpdateAll: true,
		}).
		Create(s).Error
}

// ListAgentDays returns an agent's rollups within [from, to]
func (r *RollupRepository) ListAgentDays(ctx context.Context, agentID string, from, to time.Time) ([]*entities.AgentDayPerformance, error) {
	var rows []*entities.AgentDayPerformance
	if err := r.db.WithContext(ctx).
		Where("agent_id = ? AND call_date BETWEEN ? AND ?", agentID, from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("call_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListDayStats returns day statistics within [from, to]
func (r *RollupRepository) ListDayStats(ctx context.Context, from, to time.Time) ([]*entities.DayStatistics, error) {
	var rows []*entities.DayStatistics
	if err := r.db.WithContext(ctx).
		Where("call_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("call_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
