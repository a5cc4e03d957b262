package translate

import "context"

// WorkingLanguage is the language the catalog and the extraction rules
// operate in. Input in any other supported language is translated here
// before extraction and the response is translated back afterwards.
const WorkingLanguage = "en"

// SupportedLanguages maps the language codes the agent accepts to display
// names. Unsupported codes are treated as English.
var SupportedLanguages = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"ta": "Tamil",
	"te": "Telugu",
	"kn": "Kannada",
	"ml": "Malayalam",
	"bn": "Bengali",
	"mr": "Marathi",
	"gu": "Gujarati",
	"pa": "Punjabi",
}

// Supported reports whether lang is a code the agent can work with.
func Supported(lang string) bool {
	_, ok := SupportedLanguages[lang]
	return ok
}

// Translator is the optional pre/post-processing collaborator. Both methods
// degrade gracefully in callers: on error the untranslated text is used.
type Translator interface {
	Detect(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Noop passes text through untouched, for English-only deployments.
type Noop struct{}

func (Noop) Detect(ctx context.Context, text string) (string, error) {
	return WorkingLanguage, nil
}

func (Noop) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return text, nil
}
