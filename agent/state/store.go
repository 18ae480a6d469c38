package state

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrStateNotFound = errors.New("call state not found")
	ErrNilCallState  = errors.New("call state is nil")
	ErrInvalidCall   = errors.New("call id is empty")
	// ErrVersionConflict means another turn saved the call after this copy
	// was loaded. The caller should reload and retry the turn.
	ErrVersionConflict = errors.New("call state version conflict")
)

// Store keeps call state between turns.
//
// Save is a compare-and-set: it succeeds only when the stored version still
// matches the version the state was loaded at (or nothing is stored for a
// state that was never loaded).
type Store interface {
	Load(ctx context.Context, callID string) (*CallState, error)
	Save(ctx context.Context, st *CallState) error
	Delete(ctx context.Context, callID string) error
}

func prepareSave(st *CallState) error {
	if st == nil {
		return ErrNilCallState
	}
	if strings.TrimSpace(st.CallID) == "" {
		return ErrInvalidCall
	}
	if st.Version <= 0 {
		st.Version = 1
	}
	return st.Validate()
}
