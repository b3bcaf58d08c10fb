package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/callsight-io/callsight/internal/domain/entities"
)

// SummaryRepository handles call summary data operations
type SummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Upsert creates or fully replaces the summary row for its call
func (r *SummaryRepository) Upsert(ctx context.Context, s *entities.CallSummary) error {
	if s == nil {
		return errors.New("summary cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "call_id"}},
			UpdateAll: true,
		}).
		Create(s).Error
}

// GetByCallID returns the summary for a call, or nil when absent
func (r *SummaryRepository) GetByCallID(ctx context.Context, callID string) (*entities.CallSummary, error) {
	var summary entities.CallSummary
	if err := r.db.WithContext(ctx).Where("call_id = ?", callID).First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

// ListByAgentDate returns all summaries for one agent on one day
func (r *SummaryRepository) ListByAgentDate(ctx context.Context, agentID string, date time.Time) ([]*entities.CallSummary, error) {
	var summaries []*entities.CallSummary
	if err := r.db.WithContext(ctx).
		Where("agent_id = ? AND call_date = ?", agentID, date.Format("2006-01-02")).
		Order("start_time ASC").
		Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// ListByDate returns all summaries for one day
func (r *SummaryRepository) ListByDate(ctx context.Context, date time.Time) ([]*entities.CallSummary, error) {
	var summaries []*entities.CallSummary
	if err := r.db.WithContext(ctx).
		Where("call_date = ?", date.Format("2006-01-02")).
		Order("start_time ASC").
		Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}
