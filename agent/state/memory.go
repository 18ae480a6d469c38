package state

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps call state in process. It is the default when no Upstash
// database is configured.
type MemoryStore struct {
	mu    sync.Mutex
	calls map[string]*CallState
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{calls: make(map[string]*CallState)}
}

func (m *MemoryStore) Load(_ context.Context, callID string) (*CallState, error) {
	if callID == "" {
		return nil, ErrInvalidCall
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.calls[callID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStateNotFound, callID)
	}
	out := st.Clone()
	out.loadedVersion = out.Version
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, st *CallState) error {
	if err := prepareSave(st); err != nil {
		return err
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := 0
	if cur, ok := m.calls[st.CallID]; ok {
		stored = cur.Version
	}
	if stored != st.loadedVersion {
		return fmt.Errorf("%w: %s at version %d", ErrVersionConflict, st.CallID, st.loadedVersion)
	}
	m.calls[st.CallID] = st.Clone()
	st.loadedVersion = st.Version
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, callID string) error {
	if callID == "" {
		return ErrInvalidCall
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.calls, callID)
	return nil
}
