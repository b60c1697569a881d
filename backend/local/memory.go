package local

import (
	"context"
	"sync"
	"time"

	"github.com/medgate/medgate/core"
)

// MemoryStorage is an in-memory core.BackendStorage for development
// wiring and tests.
type MemoryStorage struct {
	mu         sync.RWMutex
	identities map[string]*core.Identity     // id -> identity
	byEmail    map[string]string             // email -> id
	sessions   map[string]*core.SessionRecord // token hash -> record
	profiles   map[string]*core.Profile      // id -> profile
}

var _ core.BackendStorage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		identities: make(map[string]*core.Identity),
		byEmail:    make(map[string]string),
		sessions:   make(map[string]*core.SessionRecord),
		profiles:   make(map[string]*core.Profile),
	}
}

func (m *MemoryStorage) CreateIdentity(_ context.Context, ident *core.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[ident.Email]; exists {
		return core.ErrIdentityExists
	}
	copied := *ident
	m.identities[ident.ID] = &copied
	m.byEmail[ident.Email] = ident.ID
	return nil
}

func (m *MemoryStorage) GetIdentityByID(_ context.Context, id string) (*core.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ident, ok := m.identities[id]
	if !ok {
		return nil, core.ErrIdentityNotFound
	}
	copied := *ident
	return &copied, nil
}

func (m *MemoryStorage) GetIdentityByEmail(_ context.Context, email string) (*core.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, core.ErrIdentityNotFound
	}
	copied := *m.identities[id]
	return &copied, nil
}

func (m *MemoryStorage) CreateSession(_ context.Context, rec *core.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *rec
	m.sessions[rec.TokenHash] = &copied
	return nil
}

func (m *MemoryStorage) GetSessionByHash(_ context.Context, tokenHash string) (*core.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	copied := *rec
	return &copied, nil
}

func (m *MemoryStorage) DeleteSessionByHash(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[tokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	delete(m.sessions, tokenHash)
	return nil
}

func (m *MemoryStorage) DeleteUserSessions(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, rec := range m.sessions {
		if rec.UserID == userID {
			delete(m.sessions, hash)
		}
	}
	return nil
}

func (m *MemoryStorage) DeleteExpiredSessions(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	n := 0
	for hash, rec := range m.sessions {
		if now.After(rec.ExpiresAt) {
			delete(m.sessions, hash)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStorage) FetchProfile(_ context.Context, userID string) (*core.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, core.ErrProfileMissing
	}
	copied := *p
	return &copied, nil
}

func (m *MemoryStorage) CreateProfile(_ context.Context, p *core.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *p
	m.profiles[p.ID] = &copied
	return nil
}

func (m *MemoryStorage) UpdateProfile(_ context.Context, userID string, changes core.ProfileChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return core.ErrProfileMissing
	}
	if changes.Name != nil {
		p.Name = changes.Name
	}
	if changes.Phone != nil {
		p.Phone = *changes.Phone
	}
	if changes.Address != nil {
		p.Address = *changes.Address
	}
	if changes.DOB != nil {
		p.DOB = *changes.DOB
	}
	if changes.AvatarURL != nil {
		p.AvatarURL = changes.AvatarURL
	}
	p.UpdatedAt = time.Now()
	return nil
}
