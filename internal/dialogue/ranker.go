package dialogue

import (
	"sort"

	"symptom-triage-agent/internal/catalog"
)

// Candidate is a disease with a positive score under the coverage rule.
type Candidate struct {
	Disease catalog.Disease
	Score   float64
}

// Ranker scores diseases against the accumulated symptom set. The score is
// the fraction of the disease's known symptoms currently confirmed; diseases
// with no overlap are excluded. An exact match (all disease symptoms
// confirmed) scores 1.0.
type Ranker struct {
	catalog *catalog.Catalog
}

func NewRanker(c *catalog.Catalog) *Ranker {
	return &Ranker{catalog: c}
}

// Rank returns candidates ordered by score descending, ties broken by
// disease name ascending. The ordering is deterministic for a fixed catalog
// and input set. An empty input yields no candidates: zero evidence ranks
// nothing.
func (r *Ranker) Rank(symptoms SymptomSet) []Candidate {
	if len(symptoms) == 0 {
		return nil
	}
	var out []Candidate
	for _, d := range r.catalog.Diseases() {
		matched := 0
		for _, s := range d.Symptoms {
			if symptoms.Has(s) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		out = append(out, Candidate{Disease: d, Score: float64(matched) / float64(len(d.Symptoms))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Disease.Name < out[j].Disease.Name
	})
	return out
}
