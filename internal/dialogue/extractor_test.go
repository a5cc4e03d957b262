package dialogue

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"symptom-triage-agent/internal/catalog"
)

// testCatalog mirrors the narrowing scenario used across the package tests:
// two diseases sharing a base symptom plus a severity-7 emergency symptom.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]catalog.Symptom{
			{Name: "fever", Severity: 3, Synonyms: []string{"high temperature", "feverish"}},
			{Name: "cough", Severity: 2, Synonyms: []string{"coughing"}},
			{Name: "rash", Severity: 2},
			{Name: "headache", Severity: 3},
			{Name: "ache", Severity: 1},
			{Name: "chest pain", Severity: 7},
		},
		[]catalog.Disease{
			{
				Name:        "Disease A",
				Symptoms:    []string{"fever", "cough"},
				Description: "An airway infection.",
				Precautions: []string{"rest", "drink fluids"},
			},
			{
				Name:        "Disease B",
				Symptoms:    []string{"fever", "rash"},
				Description: "A viral skin condition.",
				Precautions: []string{"see a doctor"},
			},
			{
				Name:        "Disease C",
				Symptoms:    []string{"headache"},
				Description: "Tension headache.",
				Precautions: []string{"rest"},
			},
		},
	)
	if err != nil {
		t.Fatalf("test catalog: %v", err)
	}
	return c
}

func TestExtract(t *testing.T) {
	e := NewExtractor(testCatalog(t))

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"canonical whole word", "I have fever and a cough!", []string{"cough", "fever"}},
		{"synonym maps to canonical", "running a high temperature since monday", []string{"fever"}},
		{"word boundary respected", "I have a headache", []string{"headache"}},
		{"no partial word match", "recovering nicely", nil},
		{"empty input", "", nil},
		{"unrecognizable input", "xyz123", nil},
		{"punctuation stripped", "Fever, cough... and RASH?!", []string{"cough", "fever", "rash"}},
		{"substring fallback", "highfever", []string{"fever"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text).Sorted()
			want := tt.want
			if want == nil {
				want = []string{}
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Extract(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

// "ache" must not fire inside "headache"; only the longer symptom matches.
func TestExtractWordBoundaryInsideLongerSymptom(t *testing.T) {
	e := NewExtractor(testCatalog(t))
	got := e.Extract("a pounding headache all day").Sorted()
	if diff := cmp.Diff([]string{"headache"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := NewExtractor(testCatalog(t))
	text := "fever and coughing fits"
	first := e.Extract(text).Sorted()
	second := e.Extract(text).Sorted()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("extraction not idempotent (-first +second):\n%s", diff)
	}
}

func TestMergeCollapsesDuplicates(t *testing.T) {
	s := NewSymptomSet("fever")
	s.Merge(NewSymptomSet("fever", "cough"))
	if len(s) != 2 {
		t.Errorf("got %d symptoms, want 2", len(s))
	}
	s.Merge(NewSymptomSet("fever"))
	if len(s) != 2 {
		t.Errorf("re-merging a confirmed symptom changed the set: %v", s.Sorted())
	}
}
