package scenario

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"runway-forecast/internal/model"
)

// MemoryStore keeps scenarios in process memory. Dial values are stored
// encoded so callers never share maps with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]memoryRecord
}

type memoryRecord struct {
	scenario Scenario
	dial     []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]memoryRecord)}
}

func (m *MemoryStore) Create(_ context.Context, s Scenario) error {
	rec, err := newMemoryRecord(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[s.ID]; exists {
		return fmt.Errorf("scenario %s already exists", s.ID)
	}
	m.byID[s.ID] = rec
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Scenario, error) {
	m.mu.RLock()
	rec, ok := m.byID[id]
	m.mu.RUnlock()
	if !ok {
		return Scenario{}, ErrNotFound
	}
	return rec.decode()
}

func (m *MemoryStore) ListByUser(_ context.Context, userID string) ([]Scenario, error) {
	m.mu.RLock()
	recs := make([]memoryRecord, 0)
	for _, rec := range m.byID {
		if rec.scenario.UserID == userID {
			recs = append(recs, rec)
		}
	}
	m.mu.RUnlock()

	out := make([]Scenario, 0, len(recs))
	for _, rec := range recs {
		s, err := rec.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, s Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[s.ID]
	if !ok {
		return ErrNotFound
	}
	s.UserID = existing.scenario.UserID
	s.CreatedAt = existing.scenario.CreatedAt
	rec, err := newMemoryRecord(s)
	if err != nil {
		return err
	}
	m.byID[s.ID] = rec
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func newMemoryRecord(s Scenario) (memoryRecord, error) {
	dial, err := encodeDialValues(s.DialValues)
	if err != nil {
		return memoryRecord{}, fmt.Errorf("encoding dial values: %w", err)
	}
	s.DialValues = model.Assumptions{}
	return memoryRecord{scenario: s, dial: dial}, nil
}

func (r memoryRecord) decode() (Scenario, error) {
	s := r.scenario
	dial, err := decodeDialValues(r.dial)
	if err != nil {
		return Scenario{}, fmt.Errorf("decoding dial values: %w", err)
	}
	s.DialValues = dial
	return s, nil
}
