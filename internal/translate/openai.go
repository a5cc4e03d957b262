package translate

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAITranslator implements Translator over the chat-completion API.
type OpenAITranslator struct {
	client *openai.Client
	model  string
}

// NewOpenAITranslator constructs the translator. An empty model falls back
// to gpt-4o-mini.
func NewOpenAITranslator(apiKey, model string) *OpenAITranslator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAITranslator{client: openai.NewClient(apiKey), model: model}
}

func (t *OpenAITranslator) Detect(ctx context.Context, text string) (string, error) {
	resp, err := t.complete(ctx,
		"Identify the language of the user's message. Reply with only its ISO 639-1 code, e.g. 'en' or 'hi'.",
		text)
	if err != nil {
		return WorkingLanguage, fmt.Errorf("detect language: %w", err)
	}
	code := strings.TrimSpace(strings.ToLower(resp))
	if !Supported(code) {
		return WorkingLanguage, nil
	}
	return code, nil
}

func (t *OpenAITranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if targetLang == WorkingLanguage && !strings.ContainsFunc(text, func(r rune) bool { return r > 127 }) {
		return text, nil
	}
	name, ok := SupportedLanguages[targetLang]
	if !ok {
		return text, nil
	}
	resp, err := t.complete(ctx,
		fmt.Sprintf("Translate the user's message to %s. Reply with only the translation.", name),
		text)
	if err != nil {
		return text, fmt.Errorf("translate: %w", err)
	}
	return strings.TrimSpace(resp), nil
}

func (t *OpenAITranslator) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
