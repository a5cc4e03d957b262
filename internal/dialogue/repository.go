package dialogue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSessionNotFound is returned by Get for unknown session ids. Callers
// treat it as implicit session creation, never as a user-facing error.
var ErrSessionNotFound = errors.New("session not found")

// Repository is the session store contract. Durability and expiry are the
// implementation's responsibility; the engine only reads and writes.
type Repository interface {
	Get(ctx context.Context, id string) (*SessionState, error)
	Save(ctx context.Context, s *SessionState) error
	Delete(ctx context.Context, id string) error
}

type postgresRepo struct {
	db *sql.DB
}

// NewRepository builds the Postgres-backed session store.
func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*SessionState, error) {
	query := `SELECT id, phase, symptoms, asked, candidates, resolved_disease, created_at, updated_at FROM sessions WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	var s SessionState
	var symptomsJSON, askedJSON, candidatesJSON []byte

	err := row.Scan(
		&s.ID,
		&s.Phase,
		&symptomsJSON,
		&askedJSON,
		&candidatesJSON,
		&s.ResolvedDisease,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if s.Symptoms, err = decodeSet(symptomsJSON); err != nil {
		return nil, fmt.Errorf("failed to unmarshal symptoms: %w", err)
	}
	if s.Asked, err = decodeSet(askedJSON); err != nil {
		return nil, fmt.Errorf("failed to unmarshal asked set: %w", err)
	}
	if len(candidatesJSON) > 0 {
		if err := json.Unmarshal(candidatesJSON, &s.Candidates); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidates: %w", err)
		}
	}

	return &s, nil
}

func (r *postgresRepo) Save(ctx context.Context, s *SessionState) error {
	symptomsJSON, err := json.Marshal(s.Symptoms.Sorted())
	if err != nil {
		return err
	}
	askedJSON, err := json.Marshal(s.Asked.Sorted())
	if err != nil {
		return err
	}
	candidatesJSON, err := json.Marshal(s.Candidates)
	if err != nil {
		return err
	}

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = time.Now()

	query := `
		INSERT INTO sessions (id, phase, symptoms, asked, candidates, resolved_disease, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			phase = $2,
			symptoms = $3,
			asked = $4,
			candidates = $5,
			resolved_disease = $6,
			updated_at = $8
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.Phase, symptomsJSON, askedJSON, candidatesJSON, s.ResolvedDisease, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func decodeSet(data []byte) (SymptomSet, error) {
	set := make(SymptomSet)
	if len(data) == 0 {
		return set, nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	for _, n := range names {
		set.Add(n)
	}
	return set, nil
}

// memoryRepo keeps sessions in process memory. Used in tests and when no
// DATABASE_URL is configured.
type memoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

// NewMemoryRepository builds an in-memory session store.
func NewMemoryRepository() Repository {
	return &memoryRepo{sessions: make(map[string]*SessionState)}
}

func (r *memoryRepo) Get(ctx context.Context, id string) (*SessionState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(s), nil
}

func (r *memoryRepo) Save(ctx context.Context, s *SessionState) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = copySession(s)
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// copySession deep-copies so callers never share mutable sets with the
// store.
func copySession(s *SessionState) *SessionState {
	out := *s
	out.Symptoms = NewSymptomSet(s.Symptoms.Sorted()...)
	out.Asked = NewSymptomSet(s.Asked.Sorted()...)
	out.Candidates = append([]string(nil), s.Candidates...)
	return &out
}
