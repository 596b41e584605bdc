package authscreen_test

import (
	"context"
	"sync"

	"github.com/goliatone/go-authscreen"
	"github.com/stretchr/testify/mock"
)

// MockIdentityService implements authscreen.IdentityService
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) Verify(ctx context.Context, email, password string) (*authscreen.Account, error) {
	args := m.Called(ctx, email, password)
	account, _ := args.Get(0).(*authscreen.Account)
	return account, args.Error(1)
}

func (m *MockIdentityService) CreateAccount(ctx context.Context, email, password string) (*authscreen.Account, error) {
	args := m.Called(ctx, email, password)
	account, _ := args.Get(0).(*authscreen.Account)
	return account, args.Error(1)
}

func (m *MockIdentityService) SetDisplayName(ctx context.Context, account *authscreen.Account, name string) error {
	args := m.Called(ctx, account, name)
	return args.Error(0)
}

// MockTokenVerifier implements authscreen.TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

// MockSessionStore implements authscreen.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockNavigator implements authscreen.Navigator
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Navigate(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// MockUserState implements authscreen.UserState
type MockUserState struct {
	mock.Mock
}

func (m *MockUserState) Dispatch(ctx context.Context, action authscreen.UserAction) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}

func (m *MockUserState) Lookup(ctx context.Context, uid string) (*authscreen.UserIdentity, error) {
	args := m.Called(ctx, uid)
	user, _ := args.Get(0).(*authscreen.UserIdentity)
	return user, args.Error(1)
}

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	mu    sync.Mutex
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(format string, args ...any) { l.record("debug", format, args...) }
func (l *captureLogger) Info(format string, args ...any)  { l.record("info", format, args...) }
func (l *captureLogger) Warn(format string, args ...any)  { l.record("warn", format, args...) }
func (l *captureLogger) Error(format string, args ...any) { l.record("error", format, args...) }

func (l *captureLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, call := range l.calls {
		if call.level == level {
			n++
		}
	}
	return n
}
