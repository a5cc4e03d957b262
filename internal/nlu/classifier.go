package nlu

import (
	"context"
	"regexp"
	"strings"
)

// Intent is the classified intent of a user utterance. The dialogue engine
// itself is intent-agnostic except for distinguishing a symptom report from
// the "no further symptoms" signal; the rest drives canned replies in the
// transport layer.
type Intent string

const (
	IntentSymptomReport  Intent = "symptom_report"
	IntentNoMoreSymptoms Intent = "no_more_symptoms"
	IntentGreeting       Intent = "greeting"
	IntentReset          Intent = "reset"
	IntentUnclear        Intent = "unclear"
)

// Result contains the classification outcome.
type Result struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Classifier maps raw utterances to dialogue intents.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// RuleClassifier performs rule-based intent classification with
// precompiled patterns. It is the default when no LLM provider is
// configured.
type RuleClassifier struct {
	noMorePatterns   []*regexp.Regexp
	greetingPatterns []*regexp.Regexp
	resetPatterns    []*regexp.Regexp
	symptomPatterns  []*regexp.Regexp
	spaceNormalizer  *regexp.Regexp
	punctNormalizer  *regexp.Regexp
}

// NewRuleClassifier creates the rule-based classifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		spaceNormalizer: regexp.MustCompile(`\s+`),
		punctNormalizer: regexp.MustCompile(`[^\w' ]`),
		noMorePatterns: compilePatterns([]string{
			`^(no|nope|none|nothing)[.! ]*$`,
			`\bno more symptoms\b`,
			`\bno other symptoms\b`,
			`\bnothing else\b`,
			`\bthat'?s (all|it|everything)\b`,
			`\bthat is (all|it|everything)\b`,
			`\bnone of (these|those|them)\b`,
			`\bi don'?t have any( of)? (these|those|them|more)\b`,
		}),
		greetingPatterns: compilePatterns([]string{
			`^\s*(hi|hello|hey|good morning|good afternoon|good evening)\b`,
			`\bhow are you\b`,
		}),
		resetPatterns: compilePatterns([]string{
			`\bstart over\b`,
			`\bstart again\b`,
			`\brestart\b`,
			`\breset\b`,
			`\bnew consultation\b`,
		}),
		symptomPatterns: compilePatterns([]string{
			`\b(pain|hurt|hurting|ache|aching|sore)\b`,
			`\bi (have|am having|feel|am feeling|got|noticed)\b`,
			`\bmy \w+ (hurts|aches|is|are)\b`,
			`\b(fever|cough|nausea|vomit|rash|headache|dizzy|tired|fatigue|chills|sneez)\w*\b`,
			`\b(suffering|experiencing)\b`,
		}),
	}
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// Classify determines the intent of the input message. It never returns an
// error; the interface carries one for LLM-backed implementations.
func (c *RuleClassifier) Classify(ctx context.Context, text string) (Result, error) {
	normalized := c.normalizeText(text)
	if normalized == "" {
		return Result{Intent: IntentUnclear, Confidence: 0.1}, nil
	}

	// "No more symptoms" wins over the symptom patterns: "no, nothing else
	// hurts" must close the round, not extend it.
	if c.matches(normalized, c.noMorePatterns) {
		return Result{Intent: IntentNoMoreSymptoms, Confidence: 0.9}, nil
	}
	if c.matches(normalized, c.resetPatterns) {
		return Result{Intent: IntentReset, Confidence: 0.9}, nil
	}
	if c.matches(normalized, c.symptomPatterns) {
		return Result{Intent: IntentSymptomReport, Confidence: 0.8}, nil
	}
	if c.matches(normalized, c.greetingPatterns) {
		return Result{Intent: IntentGreeting, Confidence: 0.9}, nil
	}
	// Unmatched text still goes through extraction; the engine handles the
	// empty-set case with its collecting prompt.
	return Result{Intent: IntentSymptomReport, Confidence: 0.3}, nil
}

func (c *RuleClassifier) normalizeText(text string) string {
	text = c.punctNormalizer.ReplaceAllString(strings.ToLower(text), " ")
	return strings.TrimSpace(c.spaceNormalizer.ReplaceAllString(text, " "))
}

func (c *RuleClassifier) matches(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
