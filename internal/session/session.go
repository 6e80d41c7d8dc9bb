package session

import (
	"context"
	"time"
)

// Snapshot is the subset of the user record copied into session state at
// login time.  It deliberately excludes the password hash.
type Snapshot struct {
	UserID     uint64 `json:"user_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Role       string `json:"role"`
}

// Store defines how session state is persisted.  Implementations must be
// safe for concurrent use and must treat an expired session as absent.
type Store interface {
	Create(ctx context.Context, id string, snap Snapshot, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Snapshot, error)
	Delete(ctx context.Context, id string) error
}
