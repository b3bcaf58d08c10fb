package insights

import (
	"fmt"
	"time"
)

// EscalationBatchRequest asks for assessments of many live calls at
// once; only calls where escalation is recommended come back.
type EscalationBatchRequest struct {
	CallIDs []string `json:"call_ids" validate:"required,min=1,max=500,dive,required"`
}

// DateRangeRequest carries the from/to query parameters of the rollup
// endpoints. Missing values default to the last seven days.
type DateRangeRequest struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// Range resolves the request into concrete bounds.
func (r *DateRangeRequest) Range(now time.Time) (from, to time.Time, err error) {
	to = now.UTC().Truncate(24 * time.Hour)
	from = to.AddDate(0, 0, -7)

	if r.To != "" {
		if to, err = time.Parse("2006-01-02", r.To); err != nil {
			return from, to, fmt.Errorf("invalid to date: %w", err)
		}
	}
	if r.From != "" {
		if from, err = time.Parse("2006-01-02", r.From); err != nil {
			return from, to, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if from.After(to) {
		return from, to, fmt.Errorf("from date is after to date")
	}
	return from, to, nil
}
