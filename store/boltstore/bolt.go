// Package boltstore keeps auth screen user state in a bolt file.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/goliatone/go-authscreen"
)

var usersBucket = []byte("users")

type record struct {
	User       authscreen.UserIdentity   `json:"user"`
	LastAction authscreen.UserActionType `json:"last_action"`
	OccurredAt time.Time                 `json:"occurred_at"`
}

// Store implements authscreen.UserState over a bolt database
type Store struct {
	db *bolt.DB
}

var _ authscreen.UserState = (*Store)(nil)

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database, creating the users bucket if needed
func New(db *bolt.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("bolt db is required")
	}

	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(usersBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create users bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Dispatch implements authscreen.UserState.
func (s *Store) Dispatch(ctx context.Context, action authscreen.UserAction) error {
	if action.User.UID == "" {
		return authscreen.ErrUserNotFound
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(record{
		User:       action.User,
		LastAction: action.Type,
		OccurredAt: action.OccurredAt,
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(usersBucket).Put([]byte(action.User.UID), data)
	})
}

// Lookup implements authscreen.UserState.
func (s *Store) Lookup(ctx context.Context, uid string) (*authscreen.UserIdentity, error) {
	rec, err := s.get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &rec.User, nil
}

// LastAction returns the last action dispatched for uid
func (s *Store) LastAction(ctx context.Context, uid string) (authscreen.UserActionType, error) {
	rec, err := s.get(ctx, uid)
	if err != nil {
		return "", err
	}
	return rec.LastAction, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, uid string) (*record, error) {
	if uid == "" {
		return nil, authscreen.ErrUserNotFound
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(usersBucket).Get([]byte(uid))
		if data == nil {
			return authscreen.ErrUserNotFound
		}
		rec = &record{}
		return json.Unmarshal(data, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
