package dialogue

import (
	"regexp"
	"strings"

	"symptom-triage-agent/internal/catalog"
)

var nonWordRE = regexp.MustCompile(`[^a-z0-9' ]+`)
var spaceRE = regexp.MustCompile(`\s+`)

// normalizeText lowercases, strips punctuation (keeping apostrophes, which
// carry meaning in phrases like "can't breathe") and collapses whitespace.
func normalizeText(text string) string {
	text = strings.ToLower(text)
	text = nonWordRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRE.ReplaceAllString(text, " "))
}

type symptomPattern struct {
	canonical string
	re        *regexp.Regexp
}

// Extractor turns raw utterance text into canonical symptom names. It is a
// pure function over the catalog and the input; all patterns are compiled
// once at construction.
type Extractor struct {
	catalog  *catalog.Catalog
	patterns []symptomPattern
}

func NewExtractor(c *catalog.Catalog) *Extractor {
	e := &Extractor{catalog: c}
	for _, s := range c.Symptoms() {
		e.patterns = append(e.patterns, symptomPattern{s.Name, wholeWordPattern(s.Name)})
		for _, syn := range s.Synonyms {
			e.patterns = append(e.patterns, symptomPattern{s.Name, wholeWordPattern(syn)})
		}
	}
	return e
}

// wholeWordPattern matches phrase only on word boundaries, so "ache" does
// not fire inside "headache".
func wholeWordPattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
}

// Extract returns the distinct canonical symptoms found in text. Empty or
// unrecognizable input yields an empty set, never an error. Matching runs
// in three stages: whole-word canonical names, whole-word synonyms, and a
// last-resort bidirectional substring check between the normalized text and
// each canonical name. The substring fallback is deliberately loose and a
// known source of false positives; it only runs when the stricter stages
// found nothing.
func (e *Extractor) Extract(text string) SymptomSet {
	found := make(SymptomSet)
	norm := normalizeText(text)
	if norm == "" {
		return found
	}
	for _, p := range e.patterns {
		if p.re.MatchString(norm) {
			found.Add(p.canonical)
		}
	}
	if len(found) > 0 {
		return found
	}
	for _, s := range e.catalog.Symptoms() {
		if strings.Contains(norm, s.Name) || strings.Contains(s.Name, norm) {
			found.Add(s.Name)
		}
	}
	return found
}
