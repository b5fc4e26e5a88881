package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/riverlabs/rivergauge/internal/models"
	"github.com/riverlabs/rivergauge/internal/store"
)

// SessionTTL is the fixed session lifetime, measured from creation.
const SessionTTL = 24 * time.Hour

// CreateSession generates an opaque session identifier, persists the binding
// to the user with a fixed expiry, and returns the identifier for the client
// cookie.
func (s *Service) CreateSession(ctx context.Context, user *models.User) (string, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return "", storageErr("session id", err)
	}

	now := s.now()
	session := &models.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", storageErr("session create", err)
	}

	return sessionID, nil
}

// ResolveSession maps a session identifier back to the current user record.
// Absent or expired sessions fail with ErrUnauthenticated. The user is
// re-fetched on every call, so profile changes are visible without re-login.
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessions.Find(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, storageErr("session lookup", err)
	}

	if session.Expired(s.now()) {
		// Best-effort cleanup; the purge task removes anything missed here.
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, storageErr("user lookup", err)
	}

	return user, nil
}

// DestroySession removes the session binding. Idempotent: destroying an
// already-absent session is not an error.
func (s *Service) DestroySession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return storageErr("session delete", err)
	}
	return nil
}

// generateSessionID returns 32 cryptographically random bytes, hex encoded.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
