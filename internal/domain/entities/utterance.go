package entities

import (
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced an utterance.
const (
	SpeakerAgent    = "agent"
	SpeakerCustomer = "customer"
)

// Sentiment labels
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Intent categories, in classifier precedence order
const (
	IntentContribution   = "contribution"
	IntentWithdrawal     = "withdrawal"
	IntentInsurance      = "insurance"
	IntentPerformance    = "performance"
	IntentBeneficiary    = "beneficiary"
	IntentComplaint      = "complaint"
	IntentAccountUpdate  = "account_update"
	IntentGeneralInquiry = "general_inquiry"
)

// Compliance flags
const (
	ComplianceOK                = "ok"
	ComplianceGuaranteeLanguage = "guarantee_language"
	CompliancePersonalAdvice    = "personal_advice"
	CompliancePrivacyBreach     = "privacy_breach"
)

// Compliance severities
const (
	SeverityLow      = "LOW"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// SeverityRank orders severities for max-severity folds (higher is worse).
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 2
	case SeverityHigh:
		return 1
	default:
		return 0
	}
}

// Utterance is a single timestamped speech turn on a call, as delivered
// by the ingestion boundary. Immutable once ingested.
type Utterance struct {
	CallID     string    `json:"call_id"`
	MemberID   string    `json:"member_id"`
	AgentID    string    `json:"agent_id"`
	Timestamp  time.Time `json:"timestamp"`
	Speaker    string    `json:"speaker"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`

	// Optional member metadata forwarded by the telephony bridge;
	// used only to populate the agent-assist call context.
	MemberName string  `json:"member_name,omitempty"`
	Balance    float64 `json:"balance,omitempty"`
}

// EnrichedUtterance is an Utterance plus the labels attached by the
// classifier. Created exactly once per admitted utterance and never
// mutated afterward; the table is append-only.
type EnrichedUtterance struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CallID             string    `json:"call_id" gorm:"type:varchar(100);not null;index"`
	MemberID           string    `json:"member_id" gorm:"type:varchar(100);index"`
	AgentID            string    `json:"agent_id" gorm:"type:varchar(100);not null;index"`
	Timestamp          time.Time `json:"timestamp" gorm:"not null;index"`
	Speaker            string    `json:"speaker" gorm:"type:varchar(20);not null"`
	Text               string    `json:"text" gorm:"type:text;not null"`
	Confidence         float64   `json:"confidence" gorm:"default:0.0"`
	MemberName         string    `json:"member_name,omitempty" gorm:"type:varchar(200)"`
	Balance            float64   `json:"balance,omitempty"`
	Sentiment          string    `json:"sentiment" gorm:"type:varchar(20);not null"`
	IntentCategory     string    `json:"intent_category" gorm:"type:varchar(50);not null"`
	ComplianceFlag     string    `json:"compliance_flag" gorm:"type:varchar(50);not null"`
	ComplianceSeverity string    `json:"compliance_severity" gorm:"type:varchar(20);not null"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (EnrichedUtterance) TableName() string {
	return "enriched_utterances"
}

// NewEnrichedUtterance copies the immutable utterance fields into a new
// enriched row; the classifier fills in the label fields.
func NewEnrichedUtterance(u Utterance) *EnrichedUtterance {
	return &EnrichedUtterance{
		ID:         uuid.New(),
		CallID:     u.CallID,
		MemberID:   u.MemberID,
		AgentID:    u.AgentID,
		Timestamp:  u.Timestamp,
		Speaker:    u.Speaker,
		Text:       u.Text,
		Confidence: u.Confidence,
		MemberName: u.MemberName,
		Balance:    u.Balance,
	}
}

// HasComplianceIssue reports whether the utterance carries any
// compliance flag other than ok.
func (e *EnrichedUtterance) HasComplianceIssue() bool {
	return e.ComplianceFlag != ComplianceOK
}
