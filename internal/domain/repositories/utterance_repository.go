package repositories

import (
	"context"
	"time"

	"github.com/callsight-io/callsight/internal/domain/entities"
)

// UtteranceRepository defines persistence operations for the
// append-only enriched utterance store.
type UtteranceRepository interface {
	// Append stores a newly classified utterance. The table is
	// append-only; rows are never updated or deleted.
	Append(ctx context.Context, u *entities.EnrichedUtterance) error

	// ListByCall returns every enriched utterance of a call in
	// timestamp order.
	ListByCall(ctx context.Context, callID string) ([]*entities.EnrichedUtterance, error)

	// ListRecentByCall returns the newest n utterances of a call in
	// timestamp order.
	ListRecentByCall(ctx context.Context, callID string, n int) ([]*entities.EnrichedUtterance, error)

	// ListViolationsByCall returns the call's utterances with a
	// compliance flag other than ok, newest first.
	ListViolationsByCall(ctx context.Context, callID string) ([]*entities.EnrichedUtterance, error)

	// ListQuietCalls returns IDs of calls whose latest utterance falls
	// in [lookbackSince, quietSince), i.e. calls that have gone quiet
	// recently enough to still need (re-)aggregation.
	ListQuietCalls(ctx context.Context, quietSince, lookbackSince time.Time) ([]string, error)
}
