package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riverlabs/rivergauge/internal/models"
)

// MemoryUserStore is an in-memory UserStore. It backs tests and dev-mode runs
// without Postgres; uniqueness is enforced under the same lock as the insert,
// matching the atomicity the database index provides.
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
}

// NewMemoryUserStore creates an empty in-memory UserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{nextID: 1, users: make(map[uint]models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	user.ID = s.nextID
	s.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := u
	return &found, nil
}

func (s *MemoryUserStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return ErrNotFound
	}
	for id, u := range s.users {
		if id != user.ID && u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

// MemorySessionStore is an in-memory SessionStore.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

// NewMemorySessionStore creates an empty in-memory SessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session)}
}

func (s *MemorySessionStore) Create(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemorySessionStore) Find(ctx context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := sess
	return &found, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemorySessionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, sess := range s.sessions {
		if !sess.ExpiresAt.After(before) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// MemoryMachineStore is an in-memory MachineStore.
type MemoryMachineStore struct {
	mu       sync.Mutex
	nextID   uint
	machines map[uint]models.MachineProfile
}

// NewMemoryMachineStore creates an empty in-memory MachineStore.
func NewMemoryMachineStore() *MemoryMachineStore {
	return &MemoryMachineStore{nextID: 1, machines: make(map[uint]models.MachineProfile)}
}

func (s *MemoryMachineStore) Create(ctx context.Context, machine *models.MachineProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.machines {
		if m.MachineCode == machine.MachineCode {
			return ErrDuplicateCode
		}
	}

	machine.ID = s.nextID
	s.nextID++
	now := time.Now()
	machine.CreatedAt = now
	machine.UpdatedAt = now
	s.machines[machine.ID] = *machine
	return nil
}

func (s *MemoryMachineStore) ListByUser(ctx context.Context, userID uint) ([]models.MachineProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var machines []models.MachineProfile
	for _, m := range s.machines {
		if m.UserID == userID {
			machines = append(machines, m)
		}
	}
	sort.Slice(machines, func(i, j int) bool { return machines[i].ID < machines[j].ID })
	return machines, nil
}

func (s *MemoryMachineStore) FindByCode(ctx context.Context, code string) (*models.MachineProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.machines {
		if m.MachineCode == code {
			found := m
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryMachineStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.machines, id)
	return nil
}

// MemoryReadingStore is an in-memory ReadingStore.
type MemoryReadingStore struct {
	mu       sync.Mutex
	nextID   uint
	readings []models.Reading
}

// NewMemoryReadingStore creates an empty in-memory ReadingStore.
func NewMemoryReadingStore() *MemoryReadingStore {
	return &MemoryReadingStore{nextID: 1}
}

func (s *MemoryReadingStore) Insert(ctx context.Context, reading *models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reading.ID = s.nextID
	s.nextID++
	reading.CreatedAt = time.Now()
	s.readings = append(s.readings, *reading)
	return nil
}

func (s *MemoryReadingStore) ListByMachine(ctx context.Context, code string, from, to time.Time) ([]models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reading
	for _, r := range s.readings {
		if r.MachineCode != code {
			continue
		}
		if r.RecordedAt.Before(from) || !r.RecordedAt.Before(to) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}
