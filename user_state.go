package authscreen

import (
	"context"
	"sync"
)

// UserStateFunc adapts a dispatch function to UserState. Lookups always miss.
type UserStateFunc func(ctx context.Context, action UserAction) error

// Dispatch implements UserState.
func (f UserStateFunc) Dispatch(ctx context.Context, action UserAction) error {
	if f == nil {
		return nil
	}
	return f(ctx, action)
}

// Lookup implements UserState.
func (f UserStateFunc) Lookup(context.Context, string) (*UserIdentity, error) {
	return nil, ErrUserNotFound
}

type noopUserState struct{}

func (noopUserState) Dispatch(context.Context, UserAction) error {
	return nil
}

func (noopUserState) Lookup(context.Context, string) (*UserIdentity, error) {
	return nil, ErrUserNotFound
}

func normalizeUserState(s UserState) UserState {
	if s == nil {
		return noopUserState{}
	}
	return s
}

// MemoryUserState keeps the last dispatched identity per user in process
type MemoryUserState struct {
	mu      sync.RWMutex
	users   map[string]UserIdentity
	actions map[string]UserActionType
}

// NewMemoryUserState returns an empty in-memory user state
func NewMemoryUserState() *MemoryUserState {
	return &MemoryUserState{
		users:   map[string]UserIdentity{},
		actions: map[string]UserActionType{},
	}
}

// Dispatch implements UserState.
func (m *MemoryUserState) Dispatch(_ context.Context, action UserAction) error {
	if action.User.UID == "" {
		return ErrUserNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[action.User.UID] = action.User
	m.actions[action.User.UID] = action.Type
	return nil
}

// Lookup implements UserState.
func (m *MemoryUserState) Lookup(_ context.Context, uid string) (*UserIdentity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// LastAction returns the last action type dispatched for uid
func (m *MemoryUserState) LastAction(uid string) (UserActionType, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	action, ok := m.actions[uid]
	return action, ok
}
