package nlu

import (
	"context"
	"testing"
)

func TestRuleClassifier(t *testing.T) {
	c := NewRuleClassifier()
	ctx := context.Background()

	tests := []struct {
		text string
		want Intent
	}{
		{"I have a fever and a bad cough", IntentSymptomReport},
		{"my stomach hurts since yesterday", IntentSymptomReport},
		{"I am experiencing chills", IntentSymptomReport},
		{"no", IntentNoMoreSymptoms},
		{"Nope.", IntentNoMoreSymptoms},
		{"nothing else", IntentNoMoreSymptoms},
		{"that's all", IntentNoMoreSymptoms},
		{"no more symptoms", IntentNoMoreSymptoms},
		{"none of these", IntentNoMoreSymptoms},
		{"hello there", IntentGreeting},
		{"Hi! How are you?", IntentGreeting},
		{"let's start over", IntentReset},
		{"reset please", IntentReset},
		{"", IntentUnclear},
		{"   ", IntentUnclear},
	}
	for _, tt := range tests {
		res, err := c.Classify(ctx, tt.text)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tt.text, err)
		}
		if res.Intent != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.text, res.Intent, tt.want)
		}
	}
}

// Negations that mention symptoms still close the round; the no-more rules
// take precedence over the symptom patterns.
func TestRuleClassifierNegationPrecedence(t *testing.T) {
	c := NewRuleClassifier()
	res, err := c.Classify(context.Background(), "no, nothing else hurts")
	if err != nil {
		t.Fatal(err)
	}
	if res.Intent != IntentNoMoreSymptoms {
		t.Errorf("got %s, want %s", res.Intent, IntentNoMoreSymptoms)
	}
}

// Free text without any cue defaults to a symptom report so extraction
// still gets a chance; the engine prompts when nothing is found.
func TestRuleClassifierDefault(t *testing.T) {
	c := NewRuleClassifier()
	res, err := c.Classify(context.Background(), "the weather turned cold this week")
	if err != nil {
		t.Fatal(err)
	}
	if res.Intent != IntentSymptomReport {
		t.Errorf("got %s, want %s", res.Intent, IntentSymptomReport)
	}
	if res.Confidence >= 0.5 {
		t.Errorf("default classification should be low confidence, got %v", res.Confidence)
	}
}
