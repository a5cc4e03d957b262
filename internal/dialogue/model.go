package dialogue

import (
	"encoding/json"
	"sort"
	"time"
)

// Phase is the position of a session within one diagnostic round.
type Phase string

const (
	PhaseInit             Phase = "init"
	PhaseCollecting       Phase = "collecting"
	PhaseAwaitingFollowup Phase = "awaiting_followup"
	PhaseResolved         Phase = "resolved"
	PhaseUnresolved       Phase = "unresolved"
	PhaseEmergency        Phase = "emergency"
)

// Terminal reports whether the phase ends the current diagnostic round.
// A terminal session is not reset automatically; the next symptom report
// starts a fresh round.
func (p Phase) Terminal() bool {
	return p == PhaseResolved || p == PhaseUnresolved || p == PhaseEmergency
}

// SymptomSet is an unordered set of canonical symptom names.
type SymptomSet map[string]struct{}

func NewSymptomSet(names ...string) SymptomSet {
	s := make(SymptomSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s SymptomSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s SymptomSet) Add(name string) { s[name] = struct{}{} }

// Merge adds every symptom in other. Duplicates collapse, so merging an
// already-confirmed symptom never changes the set.
func (s SymptomSet) Merge(other SymptomSet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Sorted returns the members in ascending order, for stable storage and
// user-facing listings.
func (s SymptomSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array; map-of-empty-struct is an
// implementation detail that should not leak into stored or served JSON.
func (s SymptomSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *SymptomSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSymptomSet(names...)
	return nil
}

// SessionState is one user's multi-turn conversation. The id is supplied by
// the caller and opaque to the engine. Candidates is a cached snapshot of
// the last narrowing step, invalidated on the next symptom update; Asked
// records which symptoms have already been offered as follow-up questions
// this round so the engine never re-asks.
type SessionState struct {
	ID              string     `json:"id"`
	Phase           Phase      `json:"phase"`
	Symptoms        SymptomSet `json:"symptoms"`
	Asked           SymptomSet `json:"asked"`
	Candidates      []string   `json:"candidates,omitempty"`
	ResolvedDisease string     `json:"resolved_disease,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewSessionState creates a fresh session in the initial phase.
func NewSessionState(id string) *SessionState {
	now := time.Now()
	return &SessionState{
		ID:        id,
		Phase:     PhaseInit,
		Symptoms:  make(SymptomSet),
		Asked:     make(SymptomSet),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ResetRound clears everything the current round accumulated while keeping
// the session identity.
func (s *SessionState) ResetRound() {
	s.Phase = PhaseInit
	s.Symptoms = make(SymptomSet)
	s.Asked = make(SymptomSet)
	s.Candidates = nil
	s.ResolvedDisease = ""
}

// ResolvedDisease is the diagnosis payload attached to a resolved turn.
type ResolvedDisease struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
}

// DialogueResult is the outcome of one processed turn.
type DialogueResult struct {
	State        Phase            `json:"state"`
	ResponseText string           `json:"response_text"`
	IsEmergency  bool             `json:"is_emergency"`
	Resolved     *ResolvedDisease `json:"resolved,omitempty"`
}
