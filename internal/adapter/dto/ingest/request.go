package ingest

import (
	"time"

	"github.com/callsight-io/callsight/internal/domain/entities"
)

// UtteranceRequest is one utterance as delivered by the telephony
// bridge. Speaker and timestamp are deliberately not validated here:
// the quality gate owns those rules so that HTTP and Kafka ingest
// drop (and count) identically instead of one path returning 400s.
type UtteranceRequest struct {
	CallID     string    `json:"call_id" validate:"required,max=100"`
	MemberID   string    `json:"member_id" validate:"max=100"`
	AgentID    string    `json:"agent_id" validate:"required,max=100"`
	Timestamp  time.Time `json:"timestamp"`
	Speaker    string    `json:"speaker"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence" validate:"min=0,max=1"`
	MemberName string    `json:"member_name,omitempty"`
	Balance    float64   `json:"balance,omitempty"`
}

// ToEntity converts the request to a domain utterance
func (r *UtteranceRequest) ToEntity() entities.Utterance {
	return entities.Utterance{
		CallID:     r.CallID,
		MemberID:   r.MemberID,
		AgentID:    r.AgentID,
		Timestamp:  r.Timestamp,
		Speaker:    r.Speaker,
		Text:       r.Text,
		Confidence: r.Confidence,
		MemberName: r.MemberName,
		Balance:    r.Balance,
	}
}

// BatchRequest is a batch of utterances to ingest
type BatchRequest struct {
	Utterances []UtteranceRequest `json:"utterances" validate:"required,min=1,max=1000,dive"`
}
