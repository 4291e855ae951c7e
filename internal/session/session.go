// Package session reads the authentication state another component wrote to
// durable storage. Tokens and profiles are consumed here, never produced:
// acquiring them is the sign-in flow's job.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("no active session")

// User is the stored profile for the signed-in user.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"isAdmin,omitempty"`
}

type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Token returns the bearer credential for a user, or ErrNoSession when the
// user is not signed in.
func (s *Store) Token(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, sessionKey(userID, "token")).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("session token read failed: %w", err)
	}
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// User returns the stored profile for a signed-in user.
func (s *Store) User(ctx context.Context, userID string) (*User, error) {
	data, err := s.client.Get(ctx, sessionKey(userID, "user")).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session user read failed: %w", err)
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user failed: %w", err)
	}
	return &user, nil
}

func sessionKey(userID, field string) string {
	return fmt.Sprintf("%s:%s", field, userID)
}
