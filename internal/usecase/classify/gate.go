package classify

import (
	"go.uber.org/zap"

	"github.com/callsight-io/callsight/internal/domain/entities"
	"github.com/callsight-io/callsight/internal/infrastructure/metrics"
)

// Drop reasons reported by the quality gate.
const (
	DropReasonMissingTimestamp = "missing_timestamp"
	DropReasonInvalidSpeaker   = "invalid_speaker"
)

// QualityGate validates utterances before they reach any derived
// state. Dropped utterances are counted and logged, never raised:
// they are excluded from every downstream count.
type QualityGate struct {
	logger *zap.Logger
}

// NewQualityGate creates a new quality gate
func NewQualityGate(logger *zap.Logger) *QualityGate {
	metrics.Init()
	return &QualityGate{logger: logger}
}

// Admit reports whether the utterance may enter the pipeline. When it
// returns false, reason is one of the drop-reason constants.
func (g *QualityGate) Admit(u entities.Utterance) (bool, string) {
	if u.Timestamp.IsZero() {
		g.drop(u, DropReasonMissingTimestamp)
		return false, DropReasonMissingTimestamp
	}
	if u.Speaker != entities.SpeakerAgent && u.Speaker != entities.SpeakerCustomer {
		g.drop(u, DropReasonInvalidSpeaker)
		return false, DropReasonInvalidSpeaker
	}
	return true, ""
}

func (g *QualityGate) drop(u entities.Utterance, reason string) {
	metrics.UtterancesDropped.WithLabelValues(reason).Inc()
	if g.logger != nil {
		g.logger.Warn("utterance dropped",
			zap.String("call_id", u.CallID),
			zap.String("speaker", u.Speaker),
			zap.String("reason", reason),
		)
	}
}
