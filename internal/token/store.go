// Package token holds the persisted access token the terminal obtained at
// login. The transaction core only ever reads it; writing happens in the
// login flow, outside this core.
package token

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Source yields the current access token. An empty token means the terminal
// is anonymous and requests go out without an Authorization header.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// StaticSource is a fixed token, mostly for tests and one-off tooling.
type StaticSource string

func (s StaticSource) Token(context.Context) (string, error) { return string(s), nil }

var (
	bucketAuth     = []byte("auth")
	keyAccessToken = []byte("access_token")
)

// Store persists the access token in a local bbolt file so the terminal
// stays logged in across restarts.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the token database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAuth)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init token store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Token returns the stored access token, or "" when none is saved.
func (s *Store) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var tok string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketAuth).Get(keyAccessToken); v != nil {
			tok = string(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return tok, nil
}

// Save replaces the stored access token.
func (s *Store) Save(ctx context.Context, tok string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAuth).Put(keyAccessToken, []byte(tok))
	})
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the stored token, logging the terminal out.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAuth).Delete(keyAccessToken)
	})
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
