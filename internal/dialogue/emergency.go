package dialogue

import (
	"regexp"

	"symptom-triage-agent/internal/catalog"
)

// EmergencySeverity is the inclusive catalog severity at which a confirmed
// symptom escalates the session, covering the dataset's most severe marked
// symptoms.
const EmergencySeverity = 6

// EmergencyDetector flags turns that need urgent care instead of further
// narrowing. It fires on either a confirmed symptom at or above the
// severity threshold or a configured emergency phrase in the raw utterance.
type EmergencyDetector struct {
	catalog *catalog.Catalog
	phrases []*regexp.Regexp
}

func NewEmergencyDetector(c *catalog.Catalog, phrases []string) *EmergencyDetector {
	d := &EmergencyDetector{catalog: c}
	for _, p := range phrases {
		norm := normalizeText(p)
		if norm != "" {
			d.phrases = append(d.phrases, wholeWordPattern(norm))
		}
	}
	return d
}

// IsEmergency is evaluated every turn and takes priority over all other
// dialogue outcomes.
func (d *EmergencyDetector) IsEmergency(symptoms SymptomSet, rawText string) bool {
	for name := range symptoms {
		if s, ok := d.catalog.Symptom(name); ok && s.Severity >= EmergencySeverity {
			return true
		}
	}
	norm := normalizeText(rawText)
	if norm == "" {
		return false
	}
	for _, re := range d.phrases {
		if re.MatchString(norm) {
			return true
		}
	}
	return false
}
