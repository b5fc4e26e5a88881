package models

import (
	"time"

	"github.com/riverlabs/rivergauge/internal/crypto"
	"gorm.io/gorm"
)

// Provider tags describe how an account can authenticate.
const (
	ProviderLocal  = "local"  // password only
	ProviderGoogle = "google" // Google identity only
	ProviderBoth   = "both"   // local account linked to a Google identity
)

var encryptor *crypto.TokenEncryptor

// InitEncryption initializes the token encryptor for the models package.
// Must be called before any database operations involving User OAuth tokens.
func InitEncryption(encryptionKey string) error {
	var err error
	encryptor, err = crypto.NewTokenEncryptor(encryptionKey)
	return err
}

// User represents an application account. Exactly one record exists per email;
// PasswordHash and GoogleID are independently optional but at least one is set.
type User struct {
	gorm.Model
	Email        string  `gorm:"uniqueIndex:idx_users_email_not_deleted,where:deleted_at IS NULL;not null"`
	FirstName    string  `gorm:"not null;default:''"`
	LastName     string  `gorm:"not null;default:''"`
	PasswordHash *string `gorm:"type:text"`
	GoogleID     *string `gorm:"uniqueIndex:idx_users_google_id_not_deleted,where:deleted_at IS NULL"`
	Provider     string  `gorm:"not null;default:'local'"` // enum: local, google, both
	LastLoginAt  *time.Time

	// Google OAuth tokens, stored encrypted
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`

	// Associations
	Machines []MachineProfile `gorm:"constraint:OnDelete:CASCADE;"`
}

// HasLocalCredentials reports whether the account can log in with a password.
func (u *User) HasLocalCredentials() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// BeforeSave encrypts OAuth tokens before saving to database.
// Always encrypts non-empty tokens (GCM produces different output each time due to random nonce).
func (u *User) BeforeSave(tx *gorm.DB) error {
	if encryptor == nil {
		// Allow operations without encryption (e.g., for testing or if encryption not initialized)
		return nil
	}

	if u.AccessToken != "" {
		encrypted, err := encryptor.Encrypt(u.AccessToken)
		if err != nil {
			return err
		}
		u.AccessToken = encrypted
	}

	if u.RefreshToken != "" {
		encrypted, err := encryptor.Encrypt(u.RefreshToken)
		if err != nil {
			return err
		}
		u.RefreshToken = encrypted
	}

	return nil
}

// AfterFind decrypts OAuth tokens after loading from database
func (u *User) AfterFind(tx *gorm.DB) error {
	if encryptor == nil {
		return nil
	}

	if u.AccessToken != "" {
		decrypted, err := encryptor.Decrypt(u.AccessToken)
		if err != nil {
			return err
		}
		u.AccessToken = decrypted
	}

	if u.RefreshToken != "" {
		decrypted, err := encryptor.Decrypt(u.RefreshToken)
		if err != nil {
			return err
		}
		u.RefreshToken = decrypted
	}

	return nil
}
