package dialogue

import (
	"fmt"
	"strings"

	"symptom-triage-agent/internal/catalog"
)

// Engine is the per-turn transition function. It owns no mutable state of
// its own; everything turn-scoped lives in the SessionState the caller
// passes in, so one Engine serves all sessions concurrently.
type Engine struct {
	extractor *Extractor
	ranker    *Ranker
	emergency *EmergencyDetector
}

func NewEngine(c *catalog.Catalog, cfg catalog.Config) *Engine {
	return &Engine{
		extractor: NewExtractor(c),
		ranker:    NewRanker(c),
		emergency: NewEmergencyDetector(c, cfg.EmergencyPhrases),
	}
}

// Step runs one turn: extract, merge, emergency check, rank, decide. It
// mutates state in place and returns the outcome. noMoreSymptoms is the
// caller-mapped "nothing else to report" signal; in the follow-up phase it
// forces resolution to the current top candidate so the dialogue always
// terminates.
func (e *Engine) Step(state *SessionState, text string, noMoreSymptoms bool) DialogueResult {
	// A terminal phase ended the previous round; a new report starts a
	// fresh one.
	if state.Phase.Terminal() {
		state.ResetRound()
	}

	found := e.extractor.Extract(text)
	state.Symptoms.Merge(found)
	state.Candidates = nil

	if e.emergency.IsEmergency(state.Symptoms, text) {
		// Symptoms stay recorded for logging; no diagnosis is computed.
		state.Phase = PhaseEmergency
		return DialogueResult{State: PhaseEmergency, ResponseText: PromptEmergency, IsEmergency: true}
	}

	if len(state.Symptoms) == 0 {
		state.Phase = PhaseCollecting
		return DialogueResult{State: PhaseCollecting, ResponseText: PromptDescribeSymptoms}
	}

	candidates := e.ranker.Rank(state.Symptoms)

	if noMoreSymptoms && state.Phase == PhaseAwaitingFollowup {
		if len(candidates) == 0 {
			return e.unresolved(state)
		}
		return e.resolve(state, candidates[0].Disease)
	}

	switch {
	case len(candidates) > 1:
		followups := e.followupSymptoms(candidates, state)
		if len(followups) == 0 {
			// Nothing left to ask; force resolution to the top candidate.
			return e.resolve(state, candidates[0].Disease)
		}
		state.Phase = PhaseAwaitingFollowup
		for _, s := range followups {
			state.Asked.Add(s)
		}
		state.Candidates = candidateNames(candidates)
		return DialogueResult{
			State:        PhaseAwaitingFollowup,
			ResponseText: followupPrefix + strings.Join(followups, ", ") + "?",
		}
	case len(candidates) == 1:
		return e.resolve(state, candidates[0].Disease)
	default:
		return e.unresolved(state)
	}
}

// followupSymptoms is the union of the remaining candidates' symptoms minus
// everything already confirmed or already asked this round, sorted for a
// stable question.
func (e *Engine) followupSymptoms(candidates []Candidate, state *SessionState) []string {
	union := make(SymptomSet)
	for _, c := range candidates {
		for _, s := range c.Disease.Symptoms {
			if !state.Symptoms.Has(s) && !state.Asked.Has(s) {
				union.Add(s)
			}
		}
	}
	return union.Sorted()
}

func (e *Engine) resolve(state *SessionState, d catalog.Disease) DialogueResult {
	state.Phase = PhaseResolved
	state.ResolvedDisease = d.Name
	state.Candidates = []string{d.Name}
	resolved := &ResolvedDisease{Name: d.Name, Description: d.Description, Precautions: d.Precautions}
	text := diagnosisPrefix + d.Name + "."
	if d.Description != "" {
		text += " " + d.Description
	}
	if len(d.Precautions) > 0 {
		text += fmt.Sprintf(" Precautions: %s.", strings.Join(d.Precautions, ", "))
	}
	return DialogueResult{State: PhaseResolved, ResponseText: text, Resolved: resolved}
}

func (e *Engine) unresolved(state *SessionState) DialogueResult {
	state.Phase = PhaseUnresolved
	return DialogueResult{State: PhaseUnresolved, ResponseText: PromptNoMatch}
}

func candidateNames(candidates []Candidate) []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Disease.Name
	}
	return names
}
