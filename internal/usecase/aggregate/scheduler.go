package aggregate

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/callsight-io/callsight/errors"
	"github.com/callsight-io/callsight/internal/domain/entities"
	"github.com/callsight-io/callsight/internal/domain/repositories"
	"github.com/callsight-io/callsight/internal/infrastructure/metrics"
)

// lookback bounds each sweep to calls that went quiet recently; older
// calls were already aggregated on an earlier sweep and re-running
// them would only repeat identical upserts.
const defaultLookback = 24 * time.Hour

// Scheduler drives the batch aggregation path: every interval it finds
// calls that have been quiet for the configured quiet period,
// aggregates each one, and refreshes the rollups the new summaries
// touch. A failure for one key is logged and retried on the next
// sweep; it never affects other keys.
type Scheduler struct {
	utterances repositories.UtteranceRepository
	calls      *CallAggregator
	rollups    *RollupAggregator
	logger     *zap.Logger

	quietPeriod time.Duration
	interval    time.Duration
	lookback    time.Duration

	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new aggregation scheduler
func NewScheduler(
	utterances repositories.UtteranceRepository,
	calls *CallAggregator,
	rollups *RollupAggregator,
	quietPeriod, interval time.Duration,
	logger *zap.Logger,
) *Scheduler {
	metrics.Init()
	return &Scheduler{
		utterances:  utterances,
		calls:       calls,
		rollups:     rollups,
		logger:      logger,
		quietPeriod: quietPeriod,
		interval:    interval,
		lookback:    defaultLookback,
		stopChan:    make(chan struct{}),
	}
}

// Start launches the periodic sweep goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return fmt.Errorf("scheduler already running")
	}
	s.isRunning = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-s.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	if s.logger != nil {
		s.logger.Info("aggregation scheduler started",
			zap.Duration("interval", s.interval),
			zap.Duration("quiet_period", s.quietPeriod),
		)
	}
	return nil
}

// Stop signals the sweep goroutine and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
	s.isRunning = false
}

type agentDayKey struct {
	agentID string
	date    time.Time
}

// Sweep runs one aggregation pass: quiet calls first, then the
// rollups their summaries touch.
func (s *Scheduler) Sweep(ctx context.Context) {
	started := time.Now()
	defer func() {
		metrics.AggregationDuration.Observe(time.Since(started).Seconds())
	}()

	now := time.Now()
	callIDs, err := s.utterances.ListQuietCalls(ctx, now.Add(-s.quietPeriod), now.Add(-s.lookback))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to list quiet calls", zap.Error(err))
		}
		return
	}

	agentDays := make(map[agentDayKey]struct{})
	days := make(map[time.Time]struct{})

	for _, callID := range callIDs {
		summary, err := s.aggregateWithRetry(ctx, callID)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("call aggregation failed, will retry next sweep",
					zap.String("call_id", callID),
					zap.Error(err),
				)
			}
			continue
		}
		agentDays[agentDayKey{summary.AgentID, summary.CallDate}] = struct{}{}
		days[summary.CallDate] = struct{}{}
	}

	for key := range agentDays {
		if _, err := s.rollups.RollupAgentDay(ctx, key.agentID, key.date); err != nil && s.logger != nil {
			s.logger.Error("agent day rollup failed",
				zap.String("agent_id", key.agentID),
				zap.Time("date", key.date),
				zap.Error(err),
			)
		}
	}
	for date := range days {
		if _, err := s.rollups.RollupDay(ctx, date); err != nil && s.logger != nil {
			s.logger.Error("day rollup failed", zap.Time("date", date), zap.Error(err))
		}
	}

	if s.logger != nil && len(callIDs) > 0 {
		s.logger.Info("aggregation sweep finished",
			zap.Int("calls", len(callIDs)),
			zap.Int("agent_days", len(agentDays)),
			zap.Int("days", len(days)),
			zap.Duration("took", time.Since(started)),
		)
	}
}

// AggregateNow recomputes a single call and its rollups immediately,
// bypassing the quiet-period trigger. Used for explicit re-runs.
func (s *Scheduler) AggregateNow(ctx context.Context, callID string) (*entities.CallSummary, error) {
	summary, err := s.calls.AggregateCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	if _, err := s.rollups.RollupAgentDay(ctx, summary.AgentID, summary.CallDate); err != nil {
		return nil, err
	}
	if _, err := s.rollups.RollupDay(ctx, summary.CallDate); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Scheduler) aggregateWithRetry(ctx context.Context, callID string) (*entities.CallSummary, error) {
	var summary *entities.CallSummary

	operation := func() error {
		var err error
		summary, err = s.calls.AggregateCall(ctx, callID)
		var appErr apperrors.AppError
		if stderrors.As(err, &appErr) && appErr.Code == apperrors.ErrorCode_CALL_NOT_FOUND {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 15 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return summary, nil
}
