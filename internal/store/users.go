package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/collegebuddy/backend/internal/model/user"
)

const (
	userKeyPrefix     = "user:id:"
	emailIdxPrefix    = "user:email:"
	usernameIdxPrefix = "user:username:"
)

// CreateUser persists a new account. Email and username must be unused;
// the caller supplies an already-hashed password.
func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(u)
	if err != nil {
		return user.User{}, fmt.Errorf("marshal user: %w", err)
	}

	emailKey := []byte(emailIdxPrefix + strings.ToLower(u.Email))
	usernameKey := []byte(usernameIdxPrefix + strings.ToLower(u.Username))

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey); err == nil {
			return ErrEmailTaken
		}
		if _, err := txn.Get(usernameKey); err == nil {
			return ErrUsernameTaken
		}
		if err := txn.Set([]byte(userKeyPrefix+u.ID), data); err != nil {
			return err
		}
		if err := txn.Set(emailKey, []byte(u.ID)); err != nil {
			return err
		}
		return txn.Set(usernameKey, []byte(u.ID))
	})
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// GetUser looks an account up by id.
func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	var u user.User
	if err := s.get(userKeyPrefix+id, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// GetUserByEmail resolves the email index and loads the account.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.getUserByIndex(ctx, emailIdxPrefix+strings.ToLower(email))
}

// GetUserByUsername resolves the username index and loads the account.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return s.getUserByIndex(ctx, usernameIdxPrefix+strings.ToLower(username))
}

func (s *Store) getUserByIndex(ctx context.Context, idxKey string) (user.User, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(idxKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return user.User{}, ErrNotFound
	}
	if err != nil {
		return user.User{}, err
	}
	return s.GetUser(ctx, id)
}

// UpdateUser loads the account, applies mutate, and writes it back.
func (s *Store) UpdateUser(ctx context.Context, id string, mutate func(*user.User)) (user.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	mutate(&u)
	if err := s.put(userKeyPrefix+u.ID, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// CountUsers reports the number of registered accounts.
func (s *Store) CountUsers(_ context.Context) (int, error) {
	return s.countPrefix(userKeyPrefix)
}
