package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/listenupapp/bookshelf-server/internal/domain"
)

// CreateUser stores a new account. Usernames are case-sensitive keys.
func (s *BadgerStore) CreateUser(_ context.Context, user *domain.User) error {
	key := buildKey(userPrefix, user.Username)
	defer releaseKey(key)

	return s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check user exists: %w", err)
		}

		return setTxn(txn, key, user)
	})
}

// GetUser retrieves a user by username.
func (s *BadgerStore) GetUser(_ context.Context, username string) (*domain.User, error) {
	key := buildKey(userPrefix, username)
	defer releaseKey(key)

	var user domain.User
	if err := s.get(key, &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}
