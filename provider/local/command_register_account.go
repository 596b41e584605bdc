package local

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterAccountMessage asks for a new account with email and password
type RegisterAccountMessage struct {
	Email      string      `json:"email"`
	Password   string      `json:"-"`
	UseHashid  bool        `json:"use_hashid"`
	OnResponse func(*User) `json:"-"`
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// RegisterAccountHandler stores new accounts
type RegisterAccountHandler struct {
	users *Users
	cost  int
}

var (
	_ command.Message                           = RegisterAccountMessage{}
	_ command.Commander[RegisterAccountMessage] = (*RegisterAccountHandler)(nil)
)

func NewRegisterAccountHandler(users *Users, cost int) *RegisterAccountHandler {
	return &RegisterAccountHandler{users: users, cost: cost}
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, msg RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, msg)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, msg RegisterAccountMessage) error {
	if len(msg.Password) < MinPasswordLength {
		return ErrWeakPassword
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user := &User{Email: msg.Email}

	err := h.users.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		exists, err := h.users.ExistsByEmailTx(ctx, tx, msg.Email)
		if err != nil {
			return fmt.Errorf("local: lookup user: %w", err)
		}
		if exists {
			return ErrEmailInUse
		}

		hash, err := HashPassword(msg.Password, h.cost)
		if err != nil {
			return fmt.Errorf("local: hash password: %w", err)
		}
		user.PasswordHash = hash

		if msg.UseHashid {
			if id, err := hashid.NewUUID(normalizeEmail(msg.Email)); err == nil {
				user.ID = id
			}
		}

		if user, err = h.users.CreateTx(ctx, tx, user); err != nil {
			return fmt.Errorf("local: create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if msg.OnResponse != nil {
		msg.OnResponse(user)
	}

	return nil
}
