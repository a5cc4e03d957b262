package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the hand-maintained parts of the catalog that do not live
// in the dataset CSVs: synonym spellings for extraction and the phrases that
// force an emergency escalation regardless of matched symptoms.
type Config struct {
	Synonyms         map[string][]string `yaml:"synonyms"`
	EmergencyPhrases []string            `yaml:"emergency_phrases"`
}

// DefaultConfig returns the built-in synonym and emergency-phrase tables,
// used when no config file is supplied.
func DefaultConfig() Config {
	return Config{
		Synonyms: map[string][]string{
			"high fever":     {"fever", "feverish", "high temperature", "burning up"},
			"mild fever":     {"slight fever", "low grade fever"},
			"headache":       {"head pain", "migraine", "head ache"},
			"nausea":         {"queasy", "feel sick", "feeling sick"},
			"vomiting":       {"throwing up", "puking"},
			"fatigue":        {"tired", "exhausted", "worn out"},
			"breathlessness": {"short of breath", "shortness of breath", "hard to breathe"},
			"chest pain":     {"pain in chest", "chest hurts", "tight chest"},
			"dizziness":      {"dizzy", "light headed", "lightheaded"},
			"diarrhoea":      {"diarrhea", "loose motions"},
			"cough":          {"coughing"},
			"itching":        {"itchy", "itch"},
		},
		EmergencyPhrases: []string{
			"can't breathe",
			"cannot breathe",
			"chest pain",
			"unconscious",
			"passed out",
			"severe pain",
			"severe bleeding",
			"heart attack",
			"stroke",
			"suicidal",
		},
	}
}

// LoadConfig reads a YAML config from path. Missing keys fall back to the
// built-in defaults so a config file can override just one table.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("catalog: read config: %w", err)
	}
	cfg := DefaultConfig()
	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Config{}, fmt.Errorf("catalog: parse config: %w", err)
	}
	if loaded.Synonyms != nil {
		cfg.Synonyms = loaded.Synonyms
	}
	if loaded.EmergencyPhrases != nil {
		cfg.EmergencyPhrases = loaded.EmergencyPhrases
	}
	return cfg, nil
}
