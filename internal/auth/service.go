package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/riverlabs/rivergauge/internal/crypto"
	"github.com/riverlabs/rivergauge/internal/models"
	"github.com/riverlabs/rivergauge/internal/store"
)

// MinPasswordLength is the minimum accepted password length for local signup.
const MinPasswordLength = 6

// Service implements credential verification, account creation and linking,
// and the session lifecycle, against injected stores.
type Service struct {
	users    store.UserStore
	sessions store.SessionStore
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates a Service with the default 24-hour session lifetime.
func NewService(users store.UserStore, sessions store.SessionStore) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      SessionTTL,
		now:      time.Now,
	}
}

// NormalizeEmail lowercases and trims an email address. All comparisons and
// storage go through this, so "Ann@X.com" and "ann@x.com" are the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthenticateLocal verifies an email/password pair and returns the matching
// user. Fails with ErrNoSuchUser or ErrBadCredentials; no side effects on
// failure beyond the error itself.
func (s *Service) AuthenticateLocal(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSuchUser
	}
	if err != nil {
		return nil, storageErr("user lookup", err)
	}

	// Accounts created purely via Google have no password hash.
	if !user.HasLocalCredentials() {
		return nil, ErrBadCredentials
	}

	if !crypto.VerifyPassword(password, *user.PasswordHash) {
		return nil, ErrBadCredentials
	}

	return user, nil
}

// SignupLocal validates the signup form, creates a local account, and returns
// it. All violated validation rules are collected into one ValidationError.
func (s *Service) SignupLocal(ctx context.Context, firstName, lastName, email, password, confirmPassword string) (*models.User, error) {
	var violations []string

	if firstName == "" || lastName == "" || email == "" || password == "" || confirmPassword == "" {
		violations = append(violations, "Please fill in all fields")
	}
	if password != confirmPassword {
		violations = append(violations, "Passwords do not match")
	}
	if password != "" && len(password) < MinPasswordLength {
		violations = append(violations, "Password must be at least 6 characters")
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	normalized := NormalizeEmail(email)

	_, err := s.users.FindByEmail(ctx, normalized)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, storageErr("user lookup", err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, storageErr("password hash", err)
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        normalized,
		PasswordHash: &hash,
		Provider:     models.ProviderLocal,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The existence check above is not sufficient under concurrency;
		// the store's unique index decides races, and the loser gets the
		// same failure as the pre-check path.
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, storageErr("user create", err)
	}

	return user, nil
}

// ProviderAssertion carries the verified identity a provider handshake yields.
type ProviderAssertion struct {
	ExternalID   string
	Email        string
	FirstName    string
	LastName     string
	AccessToken  string
	RefreshToken string
}

// AuthenticateExternal resolves a provider assertion to a user record.
// Lookup order is load-bearing: first by external ID (repeat logins always
// resolve to the same record), then by email (a pre-existing local account is
// linked instead of duplicated), and only then is a new account created.
func (s *Service) AuthenticateExternal(ctx context.Context, assertion ProviderAssertion) (*models.User, error) {
	normalized := NormalizeEmail(assertion.Email)

	for attempt := 0; ; attempt++ {
		user, err := s.users.FindByGoogleID(ctx, assertion.ExternalID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, storageErr("user lookup", err)
		}

		user, err = s.users.FindByEmail(ctx, normalized)
		if err == nil {
			// Link the Google identity to the existing account.
			externalID := assertion.ExternalID
			user.GoogleID = &externalID
			if user.HasLocalCredentials() {
				user.Provider = models.ProviderBoth
			} else {
				user.Provider = models.ProviderGoogle
			}
			user.AccessToken = assertion.AccessToken
			user.RefreshToken = assertion.RefreshToken
			if err := s.users.Update(ctx, user); err != nil {
				return nil, storageErr("user link", err)
			}
			return user, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, storageErr("user lookup", err)
		}

		externalID := assertion.ExternalID
		user = &models.User{
			FirstName:    assertion.FirstName,
			LastName:     assertion.LastName,
			Email:        normalized,
			GoogleID:     &externalID,
			Provider:     models.ProviderGoogle,
			AccessToken:  assertion.AccessToken,
			RefreshToken: assertion.RefreshToken,
		}

		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicateEmail) && attempt == 0 {
				// Lost a race with a concurrent signup for the same email;
				// take one more pass to link the now-existing record.
				continue
			}
			return nil, storageErr("user create", err)
		}

		return user, nil
	}
}
