// Package store defines the persistence boundaries for users, sessions,
// machine profiles, and sensor readings. Implementations are injected into
// the services that use them; their lifecycle is owned by the process
// startup sequence.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/riverlabs/rivergauge/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an insert would violate the
	// unique constraint on users.email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateCode is returned when an insert would violate the
	// unique constraint on machine_profiles.machine_code.
	ErrDuplicateCode = errors.New("machine code already registered")
)

// UserStore persists User records. Email uniqueness must be enforced
// atomically by the store itself: a concurrent duplicate insert fails with
// ErrDuplicateEmail rather than racing past a caller's existence check.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// SessionStore persists session bindings. Delete is idempotent: deleting an
// absent session is not an error.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes all sessions whose expiry is at or before the
	// given time and returns the number removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// MachineStore persists machine profiles.
type MachineStore interface {
	Create(ctx context.Context, machine *models.MachineProfile) error
	ListByUser(ctx context.Context, userID uint) ([]models.MachineProfile, error)
	FindByCode(ctx context.Context, code string) (*models.MachineProfile, error)
	Delete(ctx context.Context, id uint) error
}

// ReadingStore persists sensor readings.
type ReadingStore interface {
	Insert(ctx context.Context, reading *models.Reading) error
	// ListByMachine returns readings for the machine code with
	// from <= recorded_at < to, ordered by recorded_at ascending.
	ListByMachine(ctx context.Context, code string, from, to time.Time) ([]models.Reading, error)
}
