package store

import (
	"context"
	"errors"
	"time"

	"github.com/riverlabs/rivergauge/internal/models"
	"gorm.io/gorm"
)

// GormUserStore is the Postgres-backed UserStore. The database connection is
// opened with error translation enabled so unique-index violations surface
// as gorm.ErrDuplicatedKey and can be mapped to the store sentinels.
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore creates a UserStore backed by the given connection.
func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) Update(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Save(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

// GormSessionStore is the Postgres-backed SessionStore. Sessions live in
// their own table so they survive process restarts.
type GormSessionStore struct {
	db *gorm.DB
}

// NewGormSessionStore creates a SessionStore backed by the given connection.
func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

func (s *GormSessionStore) Create(ctx context.Context, session *models.Session) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *GormSessionStore) Find(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *GormSessionStore) Delete(ctx context.Context, id string) error {
	// Deleting an absent row affects zero rows and is not an error.
	return s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error
}

func (s *GormSessionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&models.Session{}, "expires_at <= ?", before)
	return result.RowsAffected, result.Error
}

// GormMachineStore is the Postgres-backed MachineStore.
type GormMachineStore struct {
	db *gorm.DB
}

// NewGormMachineStore creates a MachineStore backed by the given connection.
func NewGormMachineStore(db *gorm.DB) *GormMachineStore {
	return &GormMachineStore{db: db}
}

func (s *GormMachineStore) Create(ctx context.Context, machine *models.MachineProfile) error {
	err := s.db.WithContext(ctx).Create(machine).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCode
	}
	return err
}

func (s *GormMachineStore) ListByUser(ctx context.Context, userID uint) ([]models.MachineProfile, error) {
	var machines []models.MachineProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&machines).Error
	return machines, err
}

func (s *GormMachineStore) FindByCode(ctx context.Context, code string) (*models.MachineProfile, error) {
	var machine models.MachineProfile
	err := s.db.WithContext(ctx).Where("machine_code = ?", code).First(&machine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

func (s *GormMachineStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.MachineProfile{}, id).Error
}

// GormReadingStore is the Postgres-backed ReadingStore.
type GormReadingStore struct {
	db *gorm.DB
}

// NewGormReadingStore creates a ReadingStore backed by the given connection.
func NewGormReadingStore(db *gorm.DB) *GormReadingStore {
	return &GormReadingStore{db: db}
}

func (s *GormReadingStore) Insert(ctx context.Context, reading *models.Reading) error {
	return s.db.WithContext(ctx).Create(reading).Error
}

func (s *GormReadingStore) ListByMachine(ctx context.Context, code string, from, to time.Time) ([]models.Reading, error) {
	var readings []models.Reading
	err := s.db.WithContext(ctx).
		Where("machine_code = ? AND recorded_at >= ? AND recorded_at < ?", code, from, to).
		Order("recorded_at").
		Find(&readings).Error
	return readings, err
}
