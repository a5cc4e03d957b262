package dialogue

import (
	"strings"
	"testing"

	"symptom-triage-agent/internal/catalog"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := catalog.Config{EmergencyPhrases: []string{"can't breathe", "severe pain"}}
	return NewEngine(testCatalog(t), cfg)
}

// The canonical narrowing flow: one shared symptom leaves two candidates
// and a follow-up question; confirming a discriminating symptom resolves.
func TestStepNarrowsToDiagnosis(t *testing.T) {
	e := testEngine(t)
	state := NewSessionState("s1")

	res := e.Step(state, "I have fever", false)
	if res.State != PhaseAwaitingFollowup {
		t.Fatalf("state = %s, want %s", res.State, PhaseAwaitingFollowup)
	}
	if !strings.Contains(res.ResponseText, "cough") || !strings.Contains(res.ResponseText, "rash") {
		t.Errorf("follow-up question %q should offer cough and rash", res.ResponseText)
	}
	if !state.Asked.Has("cough") || !state.Asked.Has("rash") {
		t.Errorf("asked set = %v, want cough and rash remembered", state.Asked.Sorted())
	}

	res = e.Step(state, "I have cough", false)
	if res.State != PhaseResolved {
		t.Fatalf("state = %s, want %s", res.State, PhaseResolved)
	}
	if res.Resolved == nil || res.Resolved.Name != "Disease A" {
		t.Fatalf("resolved = %+v, want Disease A", res.Resolved)
	}
	if !strings.Contains(res.ResponseText, "Disease A") || !strings.Contains(res.ResponseText, "Precautions") {
		t.Errorf("response %q should carry diagnosis and precautions", res.ResponseText)
	}
}

func TestStepEmergencyShortCircuits(t *testing.T) {
	e := testEngine(t)

	t.Run("severe symptom", func(t *testing.T) {
		state := NewSessionState("s1")
		res := e.Step(state, "crushing chest pain", false)
		if res.State != PhaseEmergency || !res.IsEmergency {
			t.Fatalf("got %+v, want emergency", res)
		}
		if res.Resolved != nil {
			t.Error("no diagnosis may be computed on an emergency turn")
		}
		// Symptoms stay recorded for logging.
		if !state.Symptoms.Has("chest pain") {
			t.Error("emergency symptom not retained in state")
		}
	})

	t.Run("emergency phrase overrides any phase", func(t *testing.T) {
		state := NewSessionState("s2")
		e.Step(state, "I have fever", false)
		res := e.Step(state, "now I can't breathe", false)
		if res.State != PhaseEmergency || !res.IsEmergency {
			t.Fatalf("got %+v, want emergency", res)
		}
	})
}

func TestStepUnrecognizableInput(t *testing.T) {
	e := testEngine(t)
	state := NewSessionState("s1")

	res := e.Step(state, "xyz123", false)
	if res.State != PhaseCollecting {
		t.Fatalf("state = %s, want %s", res.State, PhaseCollecting)
	}
	if res.ResponseText != PromptDescribeSymptoms {
		t.Errorf("response = %q, want the describe-symptoms prompt", res.ResponseText)
	}

	// Still collecting on a second unrecognizable turn.
	res = e.Step(state, "asdf", false)
	if res.State != PhaseCollecting {
		t.Errorf("state = %s, want %s", res.State, PhaseCollecting)
	}
}

func TestStepNoMoreSymptomsForcesResolution(t *testing.T) {
	e := testEngine(t)
	state := NewSessionState("s1")

	e.Step(state, "I have fever", false)
	if state.Phase != PhaseAwaitingFollowup {
		t.Fatalf("setup: phase = %s", state.Phase)
	}

	// Two candidates remain, but the user is done: resolve to the top
	// ranked one in the same turn.
	res := e.Step(state, "no, nothing else", true)
	if res.State != PhaseResolved {
		t.Fatalf("state = %s, want %s", res.State, PhaseResolved)
	}
	if res.Resolved == nil || res.Resolved.Name != "Disease A" {
		t.Fatalf("resolved = %+v, want top-ranked Disease A", res.Resolved)
	}
}

func TestStepUnresolvedWhenNothingMatches(t *testing.T) {
	c, err := catalog.New(
		[]catalog.Symptom{
			{Name: "fever", Severity: 3},
			{Name: "toothache", Severity: 2},
		},
		[]catalog.Disease{
			{Name: "Flu", Symptoms: []string{"fever"}},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(c, catalog.Config{})
	state := NewSessionState("s1")

	res := e.Step(state, "I have a toothache", false)
	if res.State != PhaseUnresolved {
		t.Fatalf("state = %s, want %s", res.State, PhaseUnresolved)
	}
	if res.ResponseText != PromptNoMatch {
		t.Errorf("response = %q, want the referral message", res.ResponseText)
	}
}

// The asked set bounds the dialogue: once every candidate symptom has been
// offered, the engine resolves instead of looping.
func TestStepFollowupExhaustionTerminates(t *testing.T) {
	e := testEngine(t)
	state := NewSessionState("s1")

	e.Step(state, "I have fever", false)
	// Report something that keeps both candidates alive without answering
	// the follow-up; all remaining symptoms were already asked, so the
	// engine must force-resolve rather than re-ask.
	res := e.Step(state, "also feverish", false)
	if res.State != PhaseResolved {
		t.Fatalf("state = %s, want forced resolution, response %q", res.State, res.ResponseText)
	}
	if res.Resolved == nil || res.Resolved.Name != "Disease A" {
		t.Fatalf("resolved = %+v, want Disease A", res.Resolved)
	}
}

// Terminal phases end the round; the next report starts over with a fresh
// accumulated set.
func TestStepNewRoundAfterTerminal(t *testing.T) {
	e := testEngine(t)
	state := NewSessionState("s1")

	e.Step(state, "I have fever", false)
	e.Step(state, "and cough", false)
	if state.Phase != PhaseResolved {
		t.Fatalf("setup: phase = %s", state.Phase)
	}

	res := e.Step(state, "I have a headache", false)
	if res.State != PhaseResolved || res.Resolved == nil || res.Resolved.Name != "Disease C" {
		t.Fatalf("got %+v, want fresh round resolving Disease C", res)
	}
	if state.Symptoms.Has("fever") {
		t.Error("previous round's symptoms leaked into the new round")
	}
}
