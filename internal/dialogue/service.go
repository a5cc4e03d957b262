package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// ReportService delivers a clinician-facing report for terminal turns.
// Defined here to decouple from the concrete report implementation.
type ReportService interface {
	SendDiagnosisReport(ctx context.Context, s SessionState, result DialogueResult) error
}

// Service is the inbound boundary of the engine: one call per conversational
// turn, plus session lifecycle operations for external callers.
type Service interface {
	ProcessTurn(ctx context.Context, sessionID, text string, noMoreSymptoms bool) (*DialogueResult, error)
	CreateSession(ctx context.Context) (*SessionState, error)
	GetSession(ctx context.Context, sessionID string) (*SessionState, error)
	ResetSession(ctx context.Context, sessionID string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

type service struct {
	repo      Repository
	engine    *Engine
	reportSvc ReportService
	locks     sessionLocks
}

// NewService wires the engine to a session store. reportSvc may be nil when
// clinician reporting is not configured.
func NewService(repo Repository, engine *Engine, reportSvc ReportService) Service {
	return &service{
		repo:      repo,
		engine:    engine,
		reportSvc: reportSvc,
		locks:     sessionLocks{held: make(map[string]*sessionLock)},
	}
}

func (s *service) CreateSession(ctx context.Context) (*SessionState, error) {
	state := NewSessionState(uuid.New().String())
	if err := s.repo.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *service) GetSession(ctx context.Context, sessionID string) (*SessionState, error) {
	return s.repo.Get(ctx, sessionID)
}

func (s *service) ResetSession(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	state.ResetRound()
	return s.repo.Save(ctx, state)
}

func (s *service) DeleteSession(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

// ProcessTurn runs one transition under the session's lock. Turns for
// different sessions proceed in parallel; turns for the same session are
// serialized, because out-of-order merges would corrupt the accumulated
// symptom set. Store failures propagate to the caller as retryable errors:
// the merged-but-unpersisted state is never silently dropped.
func (s *service) ProcessTurn(ctx context.Context, sessionID, text string, noMoreSymptoms bool) (*DialogueResult, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("load session %s: %w", sessionID, err)
		}
		state = NewSessionState(sessionID)
	}

	result := s.engine.Step(state, text, noMoreSymptoms)

	if err := s.repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}

	// Terminal outcomes go to the clinician channel in the background;
	// report failure never fails the turn.
	if s.reportSvc != nil && (result.State == PhaseResolved || result.State == PhaseEmergency) {
		go func(state SessionState, result DialogueResult) {
			if err := s.reportSvc.SendDiagnosisReport(context.Background(), state, result); err != nil {
				log.Printf("failed to send clinician report for session %s: %v", state.ID, err)
			}
		}(*copySession(state), result)
	}

	return &result, nil
}

// sessionLocks hands out one mutex per live session id. Entries are
// reference-counted and removed once the last holder releases, so the map
// does not grow with the total number of sessions ever seen.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	sl, ok := l.held[id]
	if !ok {
		sl = &sessionLock{}
		l.held[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.held, id)
		}
		l.mu.Unlock()
	}
}
