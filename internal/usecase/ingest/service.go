package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/callsight-io/callsight/internal/domain/entities"
	"github.com/callsight-io/callsight/internal/domain/repositories"
	"github.com/callsight-io/callsight/internal/usecase/classify"
	"github.com/callsight-io/callsight/internal/infrastructure/metrics"
)

// Service defines the ingestion boundary. Both ingest paths (HTTP and
// the Kafka consumer) go through it, so gate and classifier behavior
// is identical regardless of transport.
type Service interface {
	// IngestUtterance runs one utterance through gate and classifier.
	// A gate drop is not an error: accepted=false with the drop
	// reason. An error means the enriched store rejected the write.
	IngestUtterance(ctx context.Context, u entities.Utterance) (accepted bool, reason string, err error)

	// IngestBatch ingests a batch, isolating per-utterance failures.
	IngestBatch(ctx context.Context, batch []entities.Utterance) (*BatchResult, error)
}

// BatchResult reports what happened to a batch.
type BatchResult struct {
	Accepted int            `json:"accepted"`
	Dropped  map[string]int `json:"dropped,omitempty"`
	Failed   int            `json:"failed,omitempty"`
}

type service struct {
	gate       *classify.QualityGate
	classifier *classify.Classifier
	utterances repositories.UtteranceRepository
	logger     *zap.Logger
}

// NewService constructs a new ingestion service
func NewService(
	gate *classify.QualityGate,
	classifier *classify.Classifier,
	utterances repositories.UtteranceRepository,
	logger *zap.Logger,
) Service {
	return &service{
		gate:       gate,
		classifier: classifier,
		utterances: utterances,
		logger:     logger,
	}
}

func (s *service) IngestUtterance(ctx context.Context, u entities.Utterance) (bool, string, error) {
	ok, reason := s.gate.Admit(u)
	if !ok {
		return false, reason, nil
	}

	enriched := s.classifier.Classify(u)
	if err := s.utterances.Append(ctx, enriched); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to append enriched utterance",
				zap.String("call_id", u.CallID),
				zap.Error(err),
			)
		}
		return false, "", err
	}

	metrics.UtterancesIngested.Inc()
	return true, "", nil
}

func (s *service) IngestBatch(ctx context.Context, batch []entities.Utterance) (*BatchResult, error) {
	result := &BatchResult{Dropped: make(map[string]int)}

	for _, u := range batch {
		accepted, reason, err := s.IngestUtterance(ctx, u)
		switch {
		case err != nil:
			result.Failed++
		case accepted:
			result.Accepted++
		default:
			result.Dropped[reason]++
		}
	}

	if len(result.Dropped) == 0 {
		result.Dropped = nil
	}
	return result, nil
}
