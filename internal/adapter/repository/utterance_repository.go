package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/callsight-io/callsight/internal/domain/entities"
)

// UtteranceRepository handles enriched utterance data operations
type UtteranceRepository struct {
	db *gorm.DB
}

// NewUtteranceRepository creates a new utterance repository
func NewUtteranceRepository(db *gorm.DB) *UtteranceRepository {
	return &UtteranceRepository{db: db}
}

// Append stores a newly classified utterance
func (r *UtteranceRepository) Append(ctx context.Context, u *entities.EnrichedUtterance) error {
	if u == nil {
		return errors.New("utterance cannot be nil")
	}
	return r.db.WithContext(ctx).Create(u).Error
}

// ListByCall returns every enriched utterance of a call in timestamp order
func (r *UtteranceRepository) ListByCall(ctx context.Context, callID string) ([]*entities.EnrichedUtterance, error) {
	var utterances []*entities.EnrichedUtterance
	if err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Order("timestamp ASC").
		Find(&utterances).Error; err != nil {
		return nil, err
	}
	return utterances, nil
}

// ListRecentByCall returns the newest n utterances of a call in timestamp order
func (r *UtteranceRepository) ListRecentByCall(ctx context.Context, callID string, n int) ([]*entities.EnrichedUtterance, error) {
	var utterances []*entities.EnrichedUtterance
	if err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Order("timestamp DESC").
		Limit(n).
		Find(&utterances).Error; err != nil {
		return nil, err
	}
	// Reverse back into chronological order for the transcript view.
	for i, j := 0, len(utterances)-1; i < j; i, j = i+1, j-1 {
		utterances[i], utterances[j] = utterances[j], utterances[i]
	}
	return utterances, nil
}

// ListViolationsByCall returns flagged utterances of a call, newest first
func (r *UtteranceRepository) ListViolationsByCall(ctx context.Context, callID string) ([]*entities.EnrichedUtterance, error) {
	var utterances []*entities.EnrichedUtterance
	if err := r.db.WithContext(ctx).
		Where("call_id = ? AND compliance_flag <> ?", callID, entities.ComplianceOK).
		Order("timestamp DESC").
		Find(&utterances).Error; err != nil {
		return nil, err
	}
	return utterances, nil
}

// ListQuietCalls returns IDs of calls whose latest utterance falls in
// [lookbackSince, quietSince)
func (r *UtteranceRepository) ListQuietCalls(ctx context.Context, quietSince, lookbackSince time.Time) ([]string, error) {
	var callIDs []string
	if err := r.db.WithContext(ctx).
		Model(&entities.EnrichedUtterance{}).
		Select("call_id").
		Group("call_id").
		Having("MAX(timestamp) < ? AND MAX(timestamp) >= ?", quietSince, lookbackSince).
		Pluck("call_id", &callIDs).Error; err != nil {
		return nil, err
	}
	return callIDs, nil
}
