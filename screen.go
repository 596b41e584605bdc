package authscreen

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// AuthScreen runs the sign-in / sign-up submission against an IdentityService
type AuthScreen struct {
	identity   IdentityService
	users      UserState
	logger     Logger
	browsePath string
	sessionKey string
	debug      bool
	now        func() time.Time
}

// NewAuthScreen returns a screen bound to the given provider and user state
func NewAuthScreen(identity IdentityService, users UserState) *AuthScreen {
	if identity == nil {
		panic("authscreen: missing IdentityService")
	}

	return &AuthScreen{
		identity:   identity,
		users:      normalizeUserState(users),
		logger:     defLogger{},
		browsePath: DefaultBrowsePath,
		sessionKey: SessionTokenKey,
		now:        time.Now,
	}
}

func (s *AuthScreen) WithLogger(logger Logger) *AuthScreen {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithBrowsePath overrides where the screen navigates on success
func (s *AuthScreen) WithBrowsePath(path string) *AuthScreen {
	if path != "" {
		s.browsePath = path
	}
	return s
}

// WithDebug dumps submitted forms to the logger. Passwords are never dumped.
func (s *AuthScreen) WithDebug(debug bool) *AuthScreen {
	s.debug = debug
	return s
}

// BrowsePath returns the navigation target used on success
func (s *AuthScreen) BrowsePath() string {
	return s.browsePath
}

// Submit runs one submission. Form errors are written to form.ErrorMessage
// and returned. On success the user is dispatched to UserState, the token is
// written to session and nav moves to the browse view.
func (s *AuthScreen) Submit(ctx context.Context, form *FormState, session SessionStore, nav Navigator) (*UserIdentity, error) {
	if form == nil {
		return nil, goerrors.New("form state is required", goerrors.CategoryBadInput)
	}

	form.ErrorMessage = ""

	if s.debug {
		s.logger.Debug("auth screen submit: %s", print.MaybePrettyJSON(form))
	}

	action, account, err := s.authenticate(ctx, form)
	if err != nil {
		form.ErrorMessage = ErrorMessage(err)
		return nil, err
	}

	identity := account.Identity()

	s.dispatch(ctx, action, identity)
	s.persist(ctx, session, account.Token)

	if nav == nil {
		return &identity, nil
	}

	if err := nav.Navigate(ctx, s.browsePath); err != nil {
		s.logger.Error("auth screen navigate to %s: %v", s.browsePath, err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to navigate after authentication").
			WithCode(goerrors.CodeInternal)
	}

	return &identity, nil
}

func (s *AuthScreen) authenticate(ctx context.Context, form *FormState) (UserActionType, *Account, error) {
	if msg := ValidateEmail(form.Email); msg != "" {
		return "", nil, NewValidationError(msg)
	}

	if form.IsSignIn() {
		account, err := s.identity.Verify(ctx, form.Email, form.Password)
		if err = ensureAccount(account, err); err != nil {
			s.logger.Debug("sign in rejected for %s: %v", form.Email, err)
			return "", nil, NewProviderError(err, StageVerify)
		}
		return UserActionLogin, account, nil
	}

	account, err := s.identity.CreateAccount(ctx, form.Email, form.Password)
	if err = ensureAccount(account, err); err != nil {
		s.logger.Debug("account creation rejected for %s: %v", form.Email, err)
		return "", nil, NewProviderError(err, StageCreateAccount)
	}

	if err := s.identity.SetDisplayName(ctx, account, form.DisplayName); err != nil {
		s.logger.Debug("display name update rejected for %s: %v", account.UID, err)
		return "", nil, NewProviderError(err, StageSetDisplayName)
	}
	account.DisplayName = form.DisplayName

	return UserActionSignup, account, nil
}

func (s *AuthScreen) dispatch(ctx context.Context, action UserActionType, identity UserIdentity) {
	err := s.users.Dispatch(ctx, UserAction{
		Type:       action,
		User:       identity,
		OccurredAt: s.now(),
	})
	if err != nil {
		s.logger.Warn("user state dispatch %s for %s: %v", action, identity.UID, err)
	}
}

func (s *AuthScreen) persist(ctx context.Context, session SessionStore, token string) {
	if session == nil {
		s.logger.Warn("no session store configured, token not persisted")
		return
	}
	if err := session.Set(ctx, s.sessionKey, token); err != nil {
		s.logger.Warn("session store set %s: %v", s.sessionKey, err)
	}
}

func ensureAccount(account *Account, err error) error {
	if err != nil {
		return err
	}
	if account == nil || account.UID == "" {
		return ErrUserNotFound
	}
	return nil
}
