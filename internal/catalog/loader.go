package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Dataset file names, matching the layout the agent was originally trained
// against: one row per disease occurrence with up to N symptom columns, plus
// per-disease description and precaution tables and a symptom severity table.
const (
	diseaseFile     = "disease.csv"
	descriptionFile = "symptom_Description.csv"
	precautionFile  = "symptom_precaution.csv"
	severityFile    = "Symptom-severity.csv"
)

// Load reads the four dataset CSVs from dir and assembles a validated
// Catalog. The synonyms map (canonical name -> variant spellings) is merged
// into the loaded symptoms; unknown canonical names in it are a fatal error.
func Load(dir string, synonyms map[string][]string) (*Catalog, error) {
	severities, err := loadSeverities(filepath.Join(dir, severityFile))
	if err != nil {
		return nil, err
	}
	descriptions, err := loadKeyValue(filepath.Join(dir, descriptionFile))
	if err != nil {
		return nil, err
	}
	precautions, err := loadKeyList(filepath.Join(dir, precautionFile))
	if err != nil {
		return nil, err
	}
	diseaseSymptoms, err := loadDiseaseSymptoms(filepath.Join(dir, diseaseFile))
	if err != nil {
		return nil, err
	}

	// Config keys may use any spelling of the canonical name.
	normSynonyms := make(map[string][]string, len(synonyms))
	for canonical, variants := range synonyms {
		name := Normalize(canonical)
		if _, ok := severities[name]; !ok {
			return nil, fmt.Errorf("catalog: synonym config references unknown symptom %q", canonical)
		}
		normSynonyms[name] = variants
	}

	symptoms := make([]Symptom, 0, len(severities))
	for name, sev := range severities {
		symptoms = append(symptoms, Symptom{Name: name, Severity: sev, Synonyms: normSynonyms[name]})
	}

	diseases := make([]Disease, 0, len(diseaseSymptoms))
	for name, syms := range diseaseSymptoms {
		diseases = append(diseases, Disease{
			Name:        name,
			Symptoms:    syms,
			Description: descriptions[name],
			Precautions: precautions[name],
		})
	}
	return New(symptoms, diseases)
}

func openCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open dataset: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // precaution table is variable-width
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", filepath.Base(path), err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("catalog: %s has no data rows", filepath.Base(path))
	}
	return records[1:], nil // skip header
}

// loadSeverities parses the Symptom,Severity table.
func loadSeverities(path string) (map[string]int, error) {
	rows, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := Normalize(row[0])
		if name == "" {
			continue
		}
		sev, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("catalog: bad severity for %q: %w", name, err)
		}
		out[name] = sev
	}
	return out, nil
}

// loadKeyValue parses a Disease,Description table.
func loadKeyValue(path string) (map[string]string, error) {
	rows, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		out[row[0]] = row[1]
	}
	return out, nil
}

// loadKeyList parses a Disease,Precaution_1..Precaution_N table, dropping
// empty cells and keeping column order.
func loadKeyList(path string) (map[string][]string, error) {
	rows, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		var list []string
		for _, cell := range row[1:] {
			if cell != "" {
				list = append(list, cell)
			}
		}
		out[row[0]] = list
	}
	return out, nil
}

// loadDiseaseSymptoms parses the Disease,Symptom_1..Symptom_N table. The
// dataset repeats each disease over many rows with different symptom
// combinations; the catalog wants the union per disease.
func loadDiseaseSymptoms(path string) (map[string][]string, error) {
	rows, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	sets := make(map[string]map[string]bool)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := row[0]
		if sets[name] == nil {
			sets[name] = make(map[string]bool)
		}
		for _, cell := range row[1:] {
			sym := Normalize(cell)
			if sym != "" {
				sets[name][sym] = true
			}
		}
	}
	out := make(map[string][]string, len(sets))
	for name, set := range sets {
		list := make([]string, 0, len(set))
		for sym := range set {
			list = append(list, sym)
		}
		out[name] = list
	}
	return out, nil
}
