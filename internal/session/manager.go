package session

import (
	"context"
	"time"
)

// Manager owns the session lifecycle: Anonymous -> Authenticated (Create on
// successful login) -> Anonymous (Destroy on logout, or TTL expiry enforced
// by the store).  There are no intermediate states.
type Manager struct {
	store Store
	ttl   time.Duration
	opts  CookieOptions
}

// NewManager builds a Manager over the given store.  secure controls the
// cookie's Secure attribute and should be true in production.
func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		store: store,
		ttl:   ttl,
		opts:  CookieOptions{Secure: secure},
	}
}

// Create stores a snapshot under a fresh unguessable ID and returns the ID.
func (m *Manager) Create(ctx context.Context, snap Snapshot) (string, error) {
	id, err := GenerateID()
	if err != nil {
		return "", err
	}
	if err := m.store.Create(ctx, id, snap, m.ttl); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the snapshot for id, or nil when the session does not exist
// or has expired.
func (m *Manager) Get(ctx context.Context, id string) (*Snapshot, error) {
	return m.store.Get(ctx, id)
}

// Destroy removes the session.  Destroying an unknown ID is not an error.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// CookieOptions returns the options session cookies are issued with.
func (m *Manager) CookieOptions() CookieOptions { return m.opts }
