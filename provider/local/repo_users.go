package local

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the bun backed account repository
type Users struct {
	repository.Repository[*User]
	db *bun.DB
}

// NewUsersRepository returns a repository over db
func NewUsersRepository(db *bun.DB) *Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &Users{
		Repository: repo,
		db:         db,
	}
}

// Migrate creates the users table when missing
func (u *Users) Migrate(ctx context.Context) error {
	_, err := u.db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (u *Users) RunInTx(ctx context.Context, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return u.db.RunInTx(ctx, nil, f)
	}
}

// GetByEmail returns sql.ErrNoRows when no user matches
func (u *Users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return u.GetByEmailTx(ctx, u.db, email)
}

func (u *Users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetByID returns sql.ErrNoRows when no user matches
func (u *Users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := u.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ExistsByEmailTx reports whether an account is registered with email
func (u *Users) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	return tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Exists(ctx)
}

func (u *Users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return u.Repository.CreateTx(ctx, tx, record, criteria...)
}

// UpdateDisplayName returns ErrAccountNotFound when id matches no row
func (u *Users) UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) error {
	res, err := u.db.NewUpdate().
		Model((*User)(nil)).
		Set("display_name = ?", name).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// TrackSuccessfulLogin stamps loggedin_at
func (u *Users) TrackSuccessfulLogin(ctx context.Context, id uuid.UUID) error {
	loggedInAt := time.Now().UTC()
	_, err := u.db.NewUpdate().
		Model((*User)(nil)).
		Set("loggedin_at = ?", loggedInAt).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// IsRecordNotFound reports whether err means the row is missing
func IsRecordNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = normalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
