package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
)

// SessionStore keeps at most one active session per user.
type SessionStore interface {
	Save(ctx context.Context, s entity.Session, ttl time.Duration) error
	// Get returns ErrNotFound when the user has no active session.
	Get(ctx context.Context, userID string) (*entity.Session, error)
	Delete(ctx context.Context, userID string) error
}
