// Package session keeps the server side half of a login: the cookie carries
// a signed reference, the store decides whether that reference is still live.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/local_store/internal/models"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Create(ctx context.Context, s *models.Session) error
	// Get returns ErrNotFound for unknown, revoked or expired sessions.
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteUser revokes every session a user holds.
	DeleteUser(ctx context.Context, userID uint) error
}

func New(userID uint, role string, ttl time.Duration) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}
