package classify

import (
	"strings"

	"github.com/callsight-io/callsight/internal/domain/entities"
	"github.com/callsight-io/callsight/internal/infrastructure/metrics"
)

// The rule tables below are the single authoritative definition of the
// three classification dimensions. Every consumer (HTTP ingest, Kafka
// ingest, aggregation, escalation scoring) labels utterances through
// Classify; nothing else re-derives these rules.
//
// Each dimension is an ordered list: first match wins. Utterance text
// routinely matches several patterns at once, so the order is part of
// the contract, not an implementation detail.

var negativeKeywords = []string{
	"frustrated",
	"angry",
	"upset",
	"unacceptable",
	"terrible",
	"ridiculous",
	"disappointed",
	"complaint",
	"complain",
	"worst",
	"useless",
	"fed up",
	"waste of time",
	"not happy",
}

var positiveKeywords = []string{
	"thank",
	"appreciate",
	"great",
	"excellent",
	"wonderful",
	"fantastic",
	"helpful",
	"perfect",
	"happy with",
	"good news",
}

type intentRule struct {
	category string
	keywords []string
}

// Intent rules in precedence order; general_inquiry is the fallback.
var intentRules = []intentRule{
	{entities.IntentContribution, []string{"contribution", "contribute", "salary sacrifice", "employer payment", "super guarantee"}},
	{entities.IntentWithdrawal, []string{"withdraw", "take out", "access my super", "lump sum", "early release"}},
	{entities.IntentInsurance, []string{"insurance", "premium", "death benefit", "income protection", "tpd", "cover"}},
	{entities.IntentPerformance, []string{"performance", "return", "investment", "growth option", "earnings", "market"}},
	{entities.IntentBeneficiary, []string{"beneficiary", "nomination", "nominate", "next of kin"}},
	{entities.IntentComplaint, []string{"complaint", "complain", "escalate", "ombudsman", "poor service", "unhappy"}},
	{entities.IntentAccountUpdate, []string{"update my details", "change my address", "change my phone", "update my email", "change my name"}},
}

type complianceRule struct {
	flag     string
	severity string
	match    func(speaker, text string) bool
}

// Compliance rules in precedence order. Severity is a property of the
// matched flag, never computed separately.
var complianceRules = []complianceRule{
	{
		flag:     entities.ComplianceGuaranteeLanguage,
		severity: entities.SeverityCritical,
		match: func(speaker, text string) bool {
			return containsAny(text, []string{"guarantee", "promise", "certain return", "can't lose", "risk-free"})
		},
	},
	{
		flag:     entities.CompliancePersonalAdvice,
		severity: entities.SeverityHigh,
		match: func(speaker, text string) bool {
			return speaker == entities.SpeakerAgent &&
				containsAny(text, []string{"should", "recommend", "my advice", "best option for you"})
		},
	},
	{
		flag:     entities.CompliancePrivacyBreach,
		severity: entities.SeverityHigh,
		match: func(speaker, text string) bool {
			return speaker == entities.SpeakerAgent &&
				strings.Contains(text, "balance") &&
				!strings.Contains(text, "your")
		},
	},
}

// Classifier labels utterances along sentiment, intent, and compliance.
// It is stateless and side-effect-free apart from metrics, so calls
// for different call IDs may run fully in parallel.
type Classifier struct{}

// NewClassifier creates a new classifier
func NewClassifier() *Classifier {
	metrics.Init()
	return &Classifier{}
}

// Classify attaches sentiment, intent, and compliance labels to an
// utterance. It is a total function: input that matches no rule gets
// the neutral/general_inquiry/ok fallback, never an error.
func (c *Classifier) Classify(u entities.Utterance) *entities.EnrichedUtterance {
	text := strings.ToLower(u.Text)

	enriched := entities.NewEnrichedUtterance(u)
	enriched.Sentiment = classifySentiment(text)
	enriched.IntentCategory = classifyIntent(text)
	enriched.ComplianceFlag, enriched.ComplianceSeverity = classifyCompliance(u.Speaker, text)

	metrics.SentimentLabels.WithLabelValues(enriched.Sentiment).Inc()
	metrics.IntentLabels.WithLabelValues(enriched.IntentCategory).Inc()
	metrics.ComplianceLabels.WithLabelValues(enriched.ComplianceFlag, enriched.ComplianceSeverity).Inc()

	return enriched
}

func classifySentiment(text string) string {
	if containsAny(text, negativeKeywords) {
		return entities.SentimentNegative
	}
	if containsAny(text, positiveKeywords) {
		return entities.SentimentPositive
	}
	return entities.SentimentNeutral
}

func classifyIntent(text string) string {
	for _, rule := range intentRules {
		if containsAny(text, rule.keywords) {
			return rule.category
		}
	}
	return entities.IntentGeneralInquiry
}

func classifyCompliance(speaker, text string) (flag, severity string) {
	for _, rule := range complianceRules {
		if rule.match(speaker, text) {
			return rule.flag, rule.severity
		}
	}
	return entities.ComplianceOK, entities.SeverityLow
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
