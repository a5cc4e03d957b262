package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Symptom is a canonical condition indicator. Severity runs 1..7 where 7 is
// the most severe marker in the dataset.
type Symptom struct {
	Name     string   `json:"name"`
	Severity int      `json:"severity"`
	Synonyms []string `json:"synonyms,omitempty"`
}

// Disease associates a named condition with its known symptoms, a free-text
// description and an ordered list of precautions.
type Disease struct {
	Name        string   `json:"name"`
	Symptoms    []string `json:"symptoms"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
}

// Catalog is the read-only symptom/disease lookup shared by all sessions.
// It is fully constructed at startup and never mutated afterwards, so it is
// safe for concurrent use without locking.
type Catalog struct {
	symptoms map[string]Symptom
	diseases map[string]Disease
}

// New builds a catalog from pre-parsed entities and validates cross
// references. A disease referencing an unknown symptom (or a severity
// outside 1..7) is a fatal configuration error: partial catalogs produce
// undefined rankings, so we refuse to start instead.
func New(symptoms []Symptom, diseases []Disease) (*Catalog, error) {
	c := &Catalog{
		symptoms: make(map[string]Symptom, len(symptoms)),
		diseases: make(map[string]Disease, len(diseases)),
	}
	for _, s := range symptoms {
		s.Name = Normalize(s.Name)
		if s.Name == "" {
			return nil, fmt.Errorf("catalog: symptom with empty name")
		}
		if s.Severity < 1 || s.Severity > 7 {
			return nil, fmt.Errorf("catalog: symptom %q has severity %d, want 1..7", s.Name, s.Severity)
		}
		for i, syn := range s.Synonyms {
			s.Synonyms[i] = Normalize(syn)
		}
		c.symptoms[s.Name] = s
	}
	for _, d := range diseases {
		if d.Name == "" {
			return nil, fmt.Errorf("catalog: disease with empty name")
		}
		if len(d.Symptoms) == 0 {
			return nil, fmt.Errorf("catalog: disease %q has no symptoms", d.Name)
		}
		seen := make(map[string]bool, len(d.Symptoms))
		norm := make([]string, 0, len(d.Symptoms))
		for _, name := range d.Symptoms {
			name = Normalize(name)
			if _, ok := c.symptoms[name]; !ok {
				return nil, fmt.Errorf("catalog: disease %q references unknown symptom %q", d.Name, name)
			}
			if !seen[name] {
				seen[name] = true
				norm = append(norm, name)
			}
		}
		sort.Strings(norm)
		d.Symptoms = norm
		c.diseases[d.Name] = d
	}
	return c, nil
}

// Symptom looks up a symptom by canonical name.
func (c *Catalog) Symptom(name string) (Symptom, bool) {
	s, ok := c.symptoms[name]
	return s, ok
}

// Disease looks up a disease by name.
func (c *Catalog) Disease(name string) (Disease, bool) {
	d, ok := c.diseases[name]
	return d, ok
}

// Symptoms returns all symptoms ordered by name.
func (c *Catalog) Symptoms() []Symptom {
	out := make([]Symptom, 0, len(c.symptoms))
	for _, s := range c.symptoms {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Diseases returns all diseases ordered by name.
func (c *Catalog) Diseases() []Disease {
	out := make([]Disease, 0, len(c.diseases))
	for _, d := range c.diseases {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NumSymptoms reports the catalog size, used for startup logging.
func (c *Catalog) NumSymptoms() int { return len(c.symptoms) }

// NumDiseases reports the catalog size, used for startup logging.
func (c *Catalog) NumDiseases() int { return len(c.diseases) }

// Normalize maps raw symptom text to the catalog's canonical form:
// lowercase, underscores to spaces, collapsed whitespace. The dataset mixes
// "chest_pain" and " chest pain " spellings for the same symptom.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}
