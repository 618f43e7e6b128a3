package authcore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryAccounts is an in-process [AccountProvider] backed by maps. It
// honors the same contract as the PostgreSQL store, including write-time
// uniqueness, so it can stand in for it in tests and demos.
type MemoryAccounts struct {
	mu         sync.Mutex
	byID       map[string]*memoryRecord
	byEmail    map[string]string
	byUsername map[string]string
	now        func() time.Time
}

type memoryRecord struct {
	account Account
	hash    string
}

// NewMemoryAccounts returns an empty in-memory account store.
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		byID:       make(map[string]*memoryRecord),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

// CreateAccount implements [AccountProvider].
func (m *MemoryAccounts) CreateAccount(_ context.Context, input NewAccount) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[input.Email]; ok {
		return nil, ErrEmailTaken
	}
	if _, ok := m.byUsername[input.Username]; ok {
		return nil, ErrUsernameTaken
	}

	now := m.now()
	rec := &memoryRecord{
		account: Account{
			ID:            uuid.NewString(),
			Username:      input.Username,
			Email:         input.Email,
			FirstName:     input.FirstName,
			LastName:      input.LastName,
			AccountType:   input.AccountType,
			Status:        input.Status,
			EmailVerified: input.EmailVerified,
			AgeVerified:   input.AgeVerified,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		hash: input.PasswordHash,
	}
	m.byID[rec.account.ID] = rec
	m.byEmail[rec.account.Email] = rec.account.ID
	m.byUsername[rec.account.Username] = rec.account.ID

	out := rec.account
	return &out, nil
}

// GetByID implements [AccountProvider].
func (m *MemoryAccounts) GetByID(_ context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	out := rec.account
	return &out, nil
}

// GetByEmail implements [AccountProvider].
func (m *MemoryAccounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	m.mu.Unlock()
	if !ok {
		return nil, ErrAccountNotFound
	}
	return m.GetByID(ctx, id)
}

// GetByUsername implements [AccountProvider].
func (m *MemoryAccounts) GetByUsername(ctx context.Context, username string) (*Account, error) {
	m.mu.Lock()
	id, ok := m.byUsername[username]
	m.mu.Unlock()
	if !ok {
		return nil, ErrAccountNotFound
	}
	return m.GetByID(ctx, id)
}

// SetEmailVerified implements [AccountProvider].
func (m *MemoryAccounts) SetEmailVerified(_ context.Context, id string, verified bool) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	rec.account.EmailVerified = verified
	rec.account.UpdatedAt = m.now()
	out := rec.account
	return &out, nil
}

// GetPasswordHash implements [AccountProvider].
func (m *MemoryAccounts) GetPasswordHash(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return "", ErrAccountNotFound
	}
	return rec.hash, nil
}

// UpdatePasswordHash implements [AccountProvider].
func (m *MemoryAccounts) UpdatePasswordHash(_ context.Context, id string, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	rec.hash = hash
	rec.account.UpdatedAt = m.now()
	return nil
}

// SetStatus updates the account lifecycle status. It exists for
// moderation tooling and tests; the engine never calls it.
func (m *MemoryAccounts) SetStatus(_ context.Context, id string, status AccountStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	rec.account.Status = status
	rec.account.UpdatedAt = m.now()
	return nil
}
