package nlu

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const classifyPrompt = `You classify a single patient utterance from a symptom-checker chat.
Reply with exactly one label and nothing else:
symptom_report - the user describes symptoms or health complaints
no_more_symptoms - the user says they have nothing further to report
greeting - small talk or a greeting
reset - the user wants to start the consultation over
unclear - anything else`

// OpenAIClassifier delegates intent classification to a chat-completion
// model. It satisfies the same Classifier interface as the rule-based
// implementation; callers fall back to rules when the call fails.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIClassifier constructs an OpenAI-backed classifier. An empty
// model falls back to gpt-4o-mini.
func NewOpenAIClassifier(apiKey, model string) *OpenAIClassifier {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClassifier{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Result, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifyPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return Result{Intent: IntentUnclear}, fmt.Errorf("classify intent: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{Intent: IntentUnclear}, nil
	}
	label := strings.TrimSpace(strings.ToLower(resp.Choices[0].Message.Content))
	switch Intent(label) {
	case IntentSymptomReport, IntentNoMoreSymptoms, IntentGreeting, IntentReset, IntentUnclear:
		return Result{Intent: Intent(label), Confidence: 0.9}, nil
	}
	return Result{Intent: IntentUnclear, Confidence: 0.3}, nil
}
