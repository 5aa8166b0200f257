package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/listenupapp/bookshelf-server/internal/domain"
)

// CreateSession stores a new login session.
func (s *BadgerStore) CreateSession(_ context.Context, session *domain.Session) error {
	key := buildKey(sessionPrefix, session.ID)
	defer releaseKey(key)

	return s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrSessionExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check session exists: %w", err)
		}

		return setTxn(txn, key, session)
	})
}

// GetSession retrieves a session by ID.
func (s *BadgerStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	key := buildKey(sessionPrefix, id)
	defer releaseKey(key)

	var session domain.Session
	if err := s.get(key, &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.IsExpired(time.Now()) {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// DeleteSession deletes a session (logout). Deleting a missing session is not an error.
func (s *BadgerStore) DeleteSession(_ context.Context, id string) error {
	key := buildKey(sessionPrefix, id)
	defer releaseKey(key)

	return s.update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// DeleteExpiredSessions removes every expired session and returns how many were removed.
func (s *BadgerStore) DeleteExpiredSessions(_ context.Context) (int, error) {
	now := time.Now()
	var expired []string

	err := s.iterate(sessionPrefix, func(val []byte) error {
		var session domain.Session
		if err := json.Unmarshal(val, &session); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		if session.IsExpired(now) {
			expired = append(expired, session.ID)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}

	if len(expired) == 0 {
		return 0, nil
	}

	err = s.update(func(txn *badger.Txn) error {
		for _, id := range expired {
			if err := txn.Delete([]byte(sessionPrefix + id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	return len(expired), nil
}
